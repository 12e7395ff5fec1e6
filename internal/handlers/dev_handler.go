package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/upal04/cardvault/internal/services"
)

// DevHandler serves the developer overview: account totals and
// per-account card counts. Disabled entirely when no key is configured.
type DevHandler struct {
	vault  *services.VaultService
	devKey string
}

func NewDevHandler(vault *services.VaultService, devKey string) *DevHandler {
	return &DevHandler{vault: vault, devKey: devKey}
}

type statsResponse struct {
	TotalAccounts int                     `json:"total_accounts"`
	Accounts      []services.AccountStats `json:"accounts"`
}

func (h *DevHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.devKey == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	key := r.Header.Get("X-Dev-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.devKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid developer key")
		return
	}

	stats, err := h.vault.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalAccounts: len(stats),
		Accounts:      stats,
	})
}
