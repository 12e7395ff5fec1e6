package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upal04/cardvault/internal/cardcheck"
	"github.com/upal04/cardvault/internal/models"
	"github.com/upal04/cardvault/internal/repositories"
)

func newTestVault(t *testing.T, owners ...string) (*VaultService, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	for _, owner := range owners {
		err := store.Accounts().Create(ctx, &models.Account{
			Username:     owner,
			PasswordHash: "irrelevant",
			CreatedAt:    time.Now(),
		})
		require.NoError(t, err)
	}
	return NewVaultService(store.Cards(), store.Accounts()), store
}

func validRequest() AddCardRequest {
	return AddCardRequest{
		HolderName:  "Alice Smith",
		PAN:         "4539578763621486",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		CVV:         "123",
	}
}

func TestVaultService_AddCard(t *testing.T) {
	vault, _ := newTestVault(t, "alice")
	ctx := context.Background()

	card, err := vault.AddCard(ctx, "alice", validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, "alice", card.Owner)
	assert.Equal(t, "Alice Smith", card.HolderName)
	assert.Equal(t, "4539578763621486", card.PAN)
	assert.Equal(t, 12, card.ExpiryMonth)
	assert.Equal(t, 2030, card.ExpiryYear)
	assert.Equal(t, "123", card.CVV)
	assert.False(t, card.CreatedAt.IsZero())

	cards, err := vault.ListCards(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, card.ID, cards[0].ID)
}

func TestVaultService_AddCard_ValidationOrder(t *testing.T) {
	vault, _ := newTestVault(t, "alice")
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*AddCardRequest)
		field  string
	}{
		{"missing holder", func(r *AddCardRequest) { r.HolderName = "" }, "holder_name"},
		{"missing pan", func(r *AddCardRequest) { r.PAN = "" }, "pan"},
		{"missing cvv", func(r *AddCardRequest) { r.CVV = "" }, "cvv"},
		{"pan with letters", func(r *AddCardRequest) { r.PAN = "45395787636214a6" }, "pan"},
		{"pan wrong length", func(r *AddCardRequest) { r.PAN = "45395787636214" }, "pan"},
		{"pan fails luhn", func(r *AddCardRequest) { r.PAN = "4539578763621487" }, "pan"},
		{"month zero", func(r *AddCardRequest) { r.ExpiryMonth = 0 }, "expiry_month"},
		{"month thirteen", func(r *AddCardRequest) { r.ExpiryMonth = 13 }, "expiry_month"},
		{"three-digit year", func(r *AddCardRequest) { r.ExpiryYear = 205 }, "expiry_year"},
		{"cvv too short", func(r *AddCardRequest) { r.CVV = "12" }, "cvv"},
		{"cvv too long", func(r *AddCardRequest) { r.CVV = "12345" }, "cvv"},
		{"cvv with letters", func(r *AddCardRequest) { r.CVV = "12a" }, "cvv"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := validRequest()
			c.mutate(&req)

			_, err := vault.AddCard(ctx, "alice", req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, c.field, vErr.Field)
		})
	}

	// When several checks fail at once, the earlier check wins: a bad
	// month is reported before the bad CVV.
	req := validRequest()
	req.ExpiryMonth = 13
	req.CVV = "1"
	_, err := vault.AddCard(ctx, "alice", req)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "expiry_month", vErr.Field)
}

func TestVaultService_AddCard_InvalidNotPersisted(t *testing.T) {
	vault, _ := newTestVault(t, "alice")
	ctx := context.Background()

	req := validRequest()
	req.PAN = "4539578763621487" // fails Luhn
	_, err := vault.AddCard(ctx, "alice", req)
	require.Error(t, err)

	cards, err := vault.ListCards(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestVaultService_AddCard_AcceptsAllPANLengths(t *testing.T) {
	vault, _ := newTestVault(t, "alice")
	ctx := context.Background()

	for _, pan := range []string{"4222222222222", "378282246310005", "4539578763621486"} {
		req := validRequest()
		req.PAN = pan
		req.CVV = "1234"
		_, err := vault.AddCard(ctx, "alice", req)
		assert.NoError(t, err, "pan %s should be accepted", pan)
	}
}

func TestVaultService_AddCard_TwoDigitYear(t *testing.T) {
	vault, _ := newTestVault(t, "alice")
	ctx := context.Background()

	req := validRequest()
	req.ExpiryYear = 30
	card, err := vault.AddCard(ctx, "alice", req)
	require.NoError(t, err)

	// Stored as entered; interpreted as 2030 at validity checks
	assert.Equal(t, 30, card.ExpiryYear)

	report, err := vault.CheckValidity(ctx, "alice", card.ID, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, cardcheck.StatusValid, report.Expiry)
}

func TestVaultService_ListCards_InsertionOrder(t *testing.T) {
	vault, _ := newTestVault(t, "alice")
	ctx := context.Background()

	pans := []string{"4539578763621486", "4111111111111111", "5555555555554444"}
	var ids []uuid.UUID
	for _, pan := range pans {
		req := validRequest()
		req.PAN = pan
		card, err := vault.AddCard(ctx, "alice", req)
		require.NoError(t, err)
		ids = append(ids, card.ID)
	}

	cards, err := vault.ListCards(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, cards, 3)
	for i, card := range cards {
		assert.Equal(t, ids[i], card.ID)
		assert.Equal(t, pans[i], card.PAN)
	}
}

func TestVaultService_ListCards_EmptyIsNotAnError(t *testing.T) {
	vault, _ := newTestVault(t, "alice")

	cards, err := vault.ListCards(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestVaultService_OwnershipScoping(t *testing.T) {
	vault, _ := newTestVault(t, "alice", "bob")
	ctx := context.Background()

	bobCard, err := vault.AddCard(ctx, "bob", validRequest())
	require.NoError(t, err)

	// Another owner's card looks exactly like a missing card
	_, err = vault.GetCard(ctx, "alice", bobCard.ID)
	assert.ErrorIs(t, err, ErrCardNotFound)

	err = vault.DeleteCard(ctx, "alice", bobCard.ID)
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = vault.CheckValidity(ctx, "alice", bobCard.ID, time.Now())
	assert.ErrorIs(t, err, ErrCardNotFound)

	// Bob's card is untouched
	got, err := vault.GetCard(ctx, "bob", bobCard.ID)
	require.NoError(t, err)
	assert.Equal(t, bobCard.ID, got.ID)
}

func TestVaultService_GetCard_Unknown(t *testing.T) {
	vault, _ := newTestVault(t, "alice")

	_, err := vault.GetCard(context.Background(), "alice", uuid.New())
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestVaultService_DeleteCard(t *testing.T) {
	vault, _ := newTestVault(t, "alice")
	ctx := context.Background()

	card, err := vault.AddCard(ctx, "alice", validRequest())
	require.NoError(t, err)

	require.NoError(t, vault.DeleteCard(ctx, "alice", card.ID))

	_, err = vault.GetCard(ctx, "alice", card.ID)
	assert.ErrorIs(t, err, ErrCardNotFound)

	err = vault.DeleteCard(ctx, "alice", card.ID)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestVaultService_CheckValidity(t *testing.T) {
	vault, _ := newTestVault(t, "alice")
	ctx := context.Background()

	expired := validRequest()
	expired.ExpiryMonth = 12
	expired.ExpiryYear = 2020
	expiredCard, err := vault.AddCard(ctx, "alice", expired)
	require.NoError(t, err)

	soon := validRequest()
	soon.PAN = "378282246310005"
	soon.CVV = "1234"
	soon.ExpiryMonth = 7
	soon.ExpiryYear = 2024
	soonCard, err := vault.AddCard(ctx, "alice", soon)
	require.NoError(t, err)

	asOf := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	report, err := vault.CheckValidity(ctx, "alice", expiredCard.ID, asOf)
	require.NoError(t, err)
	assert.True(t, report.LuhnOK)
	assert.Equal(t, cardcheck.StatusExpired, report.Expiry)
	assert.Equal(t, cardcheck.NetworkVisa, report.Network)

	report, err = vault.CheckValidity(ctx, "alice", soonCard.ID, asOf)
	require.NoError(t, err)
	assert.True(t, report.LuhnOK)
	assert.Equal(t, cardcheck.StatusExpiringSoon, report.Expiry)
	assert.Equal(t, cardcheck.NetworkAmex, report.Network)

	// Re-checking never mutates the record
	got, err := vault.GetCard(ctx, "alice", expiredCard.ID)
	require.NoError(t, err)
	assert.Equal(t, expiredCard.PAN, got.PAN)
	assert.Equal(t, expiredCard.ExpiryYear, got.ExpiryYear)
}

func TestVaultService_Stats(t *testing.T) {
	vault, _ := newTestVault(t, "alice", "bob")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := vault.AddCard(ctx, "alice", validRequest())
		require.NoError(t, err)
	}

	stats, err := vault.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	counts := make(map[string]int64)
	for _, s := range stats {
		counts[s.Username] = s.CardCount
	}
	assert.Equal(t, int64(2), counts["alice"])
	assert.Equal(t, int64(0), counts["bob"])
}
