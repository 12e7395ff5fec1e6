package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upal04/cardvault/internal/cardcheck"
	"github.com/upal04/cardvault/internal/models"
	"github.com/upal04/cardvault/internal/repositories"
)

// VaultService stores card records scoped to their owning account.
// Every operation takes the acting owner explicitly; there is no
// ambient session state at this layer.
type VaultService struct {
	cardRepo    repositories.CardRepository
	accountRepo repositories.AccountRepository
}

// AddCardRequest carries the raw card fields as entered by the user.
type AddCardRequest struct {
	HolderName  string
	PAN         string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

// ValidityReport is the result of re-validating a stored card.
type ValidityReport struct {
	LuhnOK  bool              `json:"luhn_ok"`
	Expiry  cardcheck.Status  `json:"expiry"`
	Network cardcheck.Network `json:"network"`
}

// AccountStats is a per-account card count for the developer overview.
type AccountStats struct {
	Username  string `json:"username"`
	CardCount int64  `json:"card_count"`
}

func NewVaultService(cardRepo repositories.CardRepository, accountRepo repositories.AccountRepository) *VaultService {
	return &VaultService{
		cardRepo:    cardRepo,
		accountRepo: accountRepo,
	}
}

// validateCard applies the write-time checks in order of specificity:
// missing fields, PAN format, Luhn, month, year, CVV. The first failing
// check wins.
func validateCard(req AddCardRequest) error {
	if req.HolderName == "" {
		return invalidField("holder_name", "must not be empty")
	}
	if req.PAN == "" {
		return invalidField("pan", "must not be empty")
	}
	if req.CVV == "" {
		return invalidField("cvv", "must not be empty")
	}
	if !cardcheck.IsDigits(req.PAN) || !cardcheck.PANLengths[len(req.PAN)] {
		return invalidField("pan", "must be 13, 15 or 16 digits")
	}
	if !cardcheck.LuhnValid(req.PAN) {
		return invalidField("pan", "failed checksum")
	}
	if req.ExpiryMonth < 1 || req.ExpiryMonth > 12 {
		return invalidField("expiry_month", "must be between 1 and 12")
	}
	if _, err := cardcheck.NormalizeYear(req.ExpiryYear); err != nil {
		return invalidField("expiry_year", "must be a 2- or 4-digit year")
	}
	if !cardcheck.IsDigits(req.CVV) || (len(req.CVV) != 3 && len(req.CVV) != 4) {
		return invalidField("cvv", "must be 3 or 4 digits")
	}
	return nil
}

// AddCard validates and stores a new card for owner, returning the
// stored record. Nothing is persisted when any check fails.
func (s *VaultService) AddCard(ctx context.Context, owner string, req AddCardRequest) (*models.Card, error) {
	if owner == "" {
		return nil, invalidField("owner", "must not be empty")
	}
	if err := validateCard(req); err != nil {
		return nil, err
	}

	card := &models.Card{
		ID:          uuid.New(),
		Owner:       owner,
		HolderName:  req.HolderName,
		PAN:         req.PAN,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to store card: %w", err)
	}
	return card, nil
}

// ListCards returns owner's cards in insertion order. No cards is an
// empty slice, not an error.
func (s *VaultService) ListCards(ctx context.Context, owner string) ([]*models.Card, error) {
	cards, err := s.cardRepo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	if cards == nil {
		cards = []*models.Card{}
	}
	return cards, nil
}

// GetCard loads a card by id for owner. A card that exists under a
// different owner is indistinguishable from one that does not exist.
func (s *VaultService) GetCard(ctx context.Context, owner string, id uuid.UUID) (*models.Card, error) {
	card, err := s.cardRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card.Owner != owner {
		return nil, ErrCardNotFound
	}
	return card, nil
}

func (s *VaultService) DeleteCard(ctx context.Context, owner string, id uuid.UUID) error {
	if _, err := s.GetCard(ctx, owner, id); err != nil {
		return err
	}

	err := s.cardRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCardNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// CheckValidity re-runs the validator against the stored record as of
// the given date. The record itself is never mutated.
func (s *VaultService) CheckValidity(ctx context.Context, owner string, id uuid.UUID, asOf time.Time) (*ValidityReport, error) {
	card, err := s.GetCard(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	status, err := cardcheck.ExpiryStatus(card.ExpiryMonth, card.ExpiryYear, asOf)
	if err != nil {
		// Stored cards passed write-time validation; reaching this means
		// the record was tampered with outside the vault.
		return nil, fmt.Errorf("stored expiry is invalid: %w", err)
	}

	return &ValidityReport{
		LuhnOK:  cardcheck.LuhnValid(card.PAN),
		Expiry:  status,
		Network: cardcheck.DetectNetwork(card.PAN),
	}, nil
}

// Stats reports the per-account card counts shown on the developer
// overview. It never exposes credentials or PANs.
func (s *VaultService) Stats(ctx context.Context) ([]AccountStats, error) {
	usernames, err := s.accountRepo.ListUsernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	stats := make([]AccountStats, 0, len(usernames))
	for _, username := range usernames {
		count, err := s.cardRepo.CountByOwner(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to count cards: %w", err)
		}
		stats = append(stats, AccountStats{Username: username, CardCount: count})
	}
	return stats, nil
}
