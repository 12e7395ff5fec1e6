package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/upal04/cardvault/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	ListUsernames(ctx context.Context) ([]string, error)
	// Delete removes the account and, through the store's cascade, every
	// card owned by it.
	Delete(ctx context.Context, username string) error
}

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Card, error)
	CountByOwner(ctx context.Context, owner string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForAccount(ctx context.Context, username string) error
}
