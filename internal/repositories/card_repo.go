package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/upal04/cardvault/internal/models"
)

type PostgresCardRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCardRepository(pool *pgxpool.Pool) *PostgresCardRepository {
	return &PostgresCardRepository{pool: pool}
}

func (r *PostgresCardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `INSERT INTO cards (id, username, holder_name, pan, expiry_month, expiry_year, cvv, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		card.ID,
		card.Owner,
		card.HolderName,
		card.PAN,
		card.ExpiryMonth,
		card.ExpiryYear,
		card.CVV,
		card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *PostgresCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	query := `SELECT id, username, holder_name, pan, expiry_month, expiry_year, cvv, created_at
	          FROM cards
	          WHERE id = $1`

	var card models.Card
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&card.ID,
		&card.Owner,
		&card.HolderName,
		&card.PAN,
		&card.ExpiryMonth,
		&card.ExpiryYear,
		&card.CVV,
		&card.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

func (r *PostgresCardRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Card, error) {
	query := `SELECT id, username, holder_name, pan, expiry_month, expiry_year, cvv, created_at
	          FROM cards
	          WHERE username = $1
	          ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		var card models.Card
		err := rows.Scan(
			&card.ID,
			&card.Owner,
			&card.HolderName,
			&card.PAN,
			&card.ExpiryMonth,
			&card.ExpiryYear,
			&card.CVV,
			&card.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (r *PostgresCardRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	query := `SELECT COUNT(*) FROM cards WHERE username = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, owner).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

func (r *PostgresCardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cards WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
