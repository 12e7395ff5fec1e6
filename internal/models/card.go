package models

import (
	"time"

	"github.com/google/uuid"
)

type Card struct {
	ID          uuid.UUID `json:"id"`
	Owner       string    `json:"owner"`
	HolderName  string    `json:"holder_name"`
	PAN         string    `json:"-"`
	ExpiryMonth int       `json:"expiry_month"`
	ExpiryYear  int       `json:"expiry_year"`
	CVV         string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
