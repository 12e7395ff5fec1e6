package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upal04/cardvault/internal/repositories"
)

const strongPassword = "Sup3r$trong!"

func newTestAuthService(strict bool) (*AuthService, *repositories.MemoryStore) {
	store := repositories.NewMemoryStore()
	auth := NewAuthService(store.Accounts(), store.Sessions(), "test-secret", time.Hour, strict)
	return auth, store
}

func TestAuthService_RegisterThenAuthenticate(t *testing.T) {
	auth, store := newTestAuthService(true)
	ctx := context.Background()

	err := auth.Register(ctx, "alice", strongPassword)
	require.NoError(t, err)

	// Stored account carries a hash, never the raw password
	account, err := store.Accounts().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, strongPassword, account.PasswordHash)
	assert.NotEmpty(t, account.PasswordHash)

	err = auth.Authenticate(ctx, "alice", strongPassword)
	assert.NoError(t, err)
}

func TestAuthService_UniformInvalidCredentials(t *testing.T) {
	auth, _ := newTestAuthService(true)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "alice", strongPassword))

	// Wrong password and unknown username must be indistinguishable
	wrongPass := auth.Authenticate(ctx, "alice", "Wr0ng$password")
	unknownUser := auth.Authenticate(ctx, "nobody", strongPassword)

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknownUser.Error())
}

func TestAuthService_DuplicateUsername(t *testing.T) {
	auth, _ := newTestAuthService(true)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "alice", strongPassword))

	err := auth.Register(ctx, "alice", "An0ther$trong1")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_WeakPasswordRejectedBeforePersistence(t *testing.T) {
	auth, store := newTestAuthService(true)
	ctx := context.Background()

	cases := []string{
		"short1!",        // too short
		"alllowercase1!", // no uppercase
		"ALLUPPERCASE1!", // no lowercase
		"NoDigitsHere!",  // no digit
		"NoSpecials123",  // no special character
	}
	for _, password := range cases {
		err := auth.Register(ctx, "bob", password)
		assert.ErrorIs(t, err, ErrWeakPassword, "password %q should be rejected", password)

		_, err = store.Accounts().GetByUsername(ctx, "bob")
		assert.ErrorIs(t, err, repositories.ErrNotFound, "account must not be persisted for %q", password)
	}
}

func TestAuthService_PolicyDisabled(t *testing.T) {
	auth, _ := newTestAuthService(false)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "carol", "weakpass"))
	assert.NoError(t, auth.Authenticate(ctx, "carol", "weakpass"))
}

func TestAuthService_EmptyFields(t *testing.T) {
	auth, _ := newTestAuthService(true)
	ctx := context.Background()

	var vErr *ValidationError
	err := auth.Register(ctx, "", strongPassword)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username", vErr.Field)

	err = auth.Register(ctx, "alice", "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "password", vErr.Field)
}

func TestAuthService_LoginAndSessionLifecycle(t *testing.T) {
	auth, _ := newTestAuthService(true)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "alice", strongPassword))

	resp, err := auth.Login(ctx, "alice", strongPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.Username)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	username, err := auth.ValidateSession(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	require.NoError(t, auth.Logout(ctx, resp.Token))

	// The token is still signed correctly, but its session is gone
	_, err = auth.ValidateSession(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	auth, _ := newTestAuthService(true)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "alice", strongPassword))

	_, err := auth.Login(ctx, "alice", "Wr0ng$password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_VerifyToken_BadToken(t *testing.T) {
	auth, _ := newTestAuthService(true)

	_, err := auth.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token signed by a different secret
	other := NewAuthService(nil, nil, "other-secret", time.Hour, true)
	token, err := other.generateToken("alice", "session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = auth.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_DeleteAccountCascades(t *testing.T) {
	auth, store := newTestAuthService(true)
	vault := NewVaultService(store.Cards(), store.Accounts())
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "alice", strongPassword))
	resp, err := auth.Login(ctx, "alice", strongPassword)
	require.NoError(t, err)

	_, err = vault.AddCard(ctx, "alice", AddCardRequest{
		HolderName:  "Alice Smith",
		PAN:         "4539578763621486",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		CVV:         "123",
	})
	require.NoError(t, err)

	require.NoError(t, auth.DeleteAccount(ctx, "alice"))

	// Account, cards and sessions are all gone
	_, err = store.Accounts().GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	count, err := store.Cards().CountByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, count, "no orphaned cards may remain")

	_, err = auth.ValidateSession(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_DeleteAccountNotFound(t *testing.T) {
	auth, _ := newTestAuthService(true)

	err := auth.DeleteAccount(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
