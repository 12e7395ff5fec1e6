package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/upal04/cardvault/internal/services"
)

type contextKey string

const usernameKey contextKey = "username"

// Authenticator verifies the bearer token and that its session is still
// live, then passes the authenticated username down via the request
// context. Everything below the middleware receives the acting user
// explicitly.
func Authenticator(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			headerParts := strings.SplitN(authHeader, " ", 2)
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			username, err := auth.ValidateSession(r.Context(), headerParts[1])
			if err != nil {
				writeServiceError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext returns the authenticated username set by
// Authenticator.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// bearerToken extracts the raw token from the Authorization header.
// Called only below Authenticator, which already checked the format.
func bearerToken(r *http.Request) string {
	headerParts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(headerParts) != 2 {
		return ""
	}
	return headerParts[1]
}
