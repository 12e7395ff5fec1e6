package services

import (
	"errors"
	"fmt"
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrWeakPassword       = errors.New("password does not meet the strength policy")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError reports which input field was rejected and why, so
// callers can re-prompt with a specific reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
