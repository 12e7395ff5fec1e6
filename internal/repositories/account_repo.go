package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/upal04/cardvault/internal/models"
)

var ErrNotFound = errors.New("not found")

type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (username, password_hash)
              VALUES ($1, $2)
              RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, account.Username, account.PasswordHash).
		Scan(&account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT username, password_hash, created_at FROM accounts WHERE username = $1`

	row := r.pool.QueryRow(ctx, query, username)

	var account models.Account
	err := row.Scan(&account.Username, &account.PasswordHash, &account.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *PostgresAccountRepository) ListUsernames(ctx context.Context) ([]string, error) {
	query := `SELECT username FROM accounts ORDER BY username ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		usernames = append(usernames, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return usernames, nil
}

// Delete removes the account row. The cards table declares
// ON DELETE CASCADE on its owner column, so the owned cards go away in
// the same statement.
func (r *PostgresAccountRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM accounts WHERE username = $1`
	result, err := r.pool.Exec(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
