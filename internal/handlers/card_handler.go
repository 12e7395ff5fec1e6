package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upal04/cardvault/internal/cardcheck"
	"github.com/upal04/cardvault/internal/models"
	"github.com/upal04/cardvault/internal/services"
)

type CardHandler struct {
	vault *services.VaultService
}

func NewCardHandler(vault *services.VaultService) *CardHandler {
	return &CardHandler{vault: vault}
}

type addCardRequest struct {
	HolderName  string `json:"holder_name"`
	PAN         string `json:"pan"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// cardResponse is the list/detail view of a stored card: the PAN is
// masked and the network is advisory display metadata.
type cardResponse struct {
	ID          uuid.UUID         `json:"id"`
	HolderName  string            `json:"holder_name"`
	MaskedPAN   string            `json:"masked_pan"`
	Network     cardcheck.Network `json:"network"`
	ExpiryMonth int               `json:"expiry_month"`
	ExpiryYear  int               `json:"expiry_year"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toCardResponse(card *models.Card) cardResponse {
	return cardResponse{
		ID:          card.ID,
		HolderName:  card.HolderName,
		MaskedPAN:   cardcheck.Mask(card.PAN),
		Network:     cardcheck.DetectNetwork(card.PAN),
		ExpiryMonth: card.ExpiryMonth,
		ExpiryYear:  card.ExpiryYear,
		CreatedAt:   card.CreatedAt,
	}
}

func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req addCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.vault.AddCard(r.Context(), username, services.AddCardRequest{
		HolderName:  req.HolderName,
		PAN:         req.PAN,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	cards, err := h.vault.ListCards(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, toCardResponse(card))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	username, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	card, err := h.vault.GetCard(r.Context(), username, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCardResponse(card))
}

func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	if err := h.vault.DeleteCard(r.Context(), username, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CardHandler) CheckValidity(w http.ResponseWriter, r *http.Request) {
	username, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	report, err := h.vault.CheckValidity(r.Context(), username, id, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *CardHandler) ownerAndID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return "", uuid.Nil, false
	}
	return username, id, true
}
