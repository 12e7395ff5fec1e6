package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/upal04/cardvault/internal/models"
	"github.com/upal04/cardvault/internal/repositories"
	"github.com/upal04/cardvault/internal/utils"
)

// AuthService owns account credentials: registration, authentication,
// session-backed tokens and account deletion. It never stores a raw
// password; bcrypt embeds a per-password random salt in the hash.
type AuthService struct {
	accountRepo     repositories.AccountRepository
	sessionRepo     repositories.SessionRepository
	jwtSecret       string
	jwtExpiry       time.Duration
	strictPasswords bool
}

type LoginResponse struct {
	Token     string
	ExpiresAt time.Time
	Username  string
}

type TokenClaims struct {
	Username  string
	SessionID string
}

func NewAuthService(
	accountRepo repositories.AccountRepository,
	sessionRepo repositories.SessionRepository,
	jwtSecret string,
	jwtExpiry time.Duration,
	strictPasswords bool,
) *AuthService {
	return &AuthService{
		accountRepo:     accountRepo,
		sessionRepo:     sessionRepo,
		jwtSecret:       jwtSecret,
		jwtExpiry:       jwtExpiry,
		strictPasswords: strictPasswords,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if username == "" {
		return invalidField("username", "must not be empty")
	}
	if password == "" {
		return invalidField("password", "must not be empty")
	}

	// Check if username is already taken
	existing, err := s.accountRepo.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		return ErrUsernameExists
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	// Strength policy runs before anything is persisted
	if s.strictPasswords {
		if err := utils.CheckStrength(password); err != nil {
			return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
		}
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: hashedPassword,
	}

	err = s.accountRepo.Create(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// Authenticate checks a username/password pair. An unknown username and
// a wrong password both come back as ErrInvalidCredentials so callers
// cannot enumerate usernames.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) error {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	if !utils.CheckPassword(account.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	return nil
}

// Login authenticates and, on success, creates a session and issues a
// bearer token tied to it.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	if err := s.Authenticate(ctx, username, password); err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	expiresAt := time.Now().Add(s.jwtExpiry)
	session := &models.Session{
		ID:        sessionID,
		Username:  username,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.generateToken(username, sessionID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  username,
	}, nil
}

func (s *AuthService) generateToken(username, sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"jti": sessionID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return nil, ErrInvalidToken
	}

	sessionID, ok := claims["jti"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		Username:  username,
		SessionID: sessionID,
	}, nil
}

// ValidateSession verifies the token and confirms its session has not
// been revoked or expired out of the session store.
func (s *AuthService) ValidateSession(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return "", err
	}

	_, err = s.sessionRepo.GetByID(ctx, claims.SessionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	return claims.Username, nil
}

func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return err
	}

	err = s.sessionRepo.Delete(ctx, claims.SessionID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteAccount removes the account, its cards (store cascade) and all
// of its sessions.
func (s *AuthService) DeleteAccount(ctx context.Context, username string) error {
	err := s.accountRepo.Delete(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	err = s.sessionRepo.DeleteAllForAccount(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return nil
}
