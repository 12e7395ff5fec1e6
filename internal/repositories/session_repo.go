package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upal04/cardvault/internal/models"
)

const sessionPrefix = "session:"
const accountSessionsPrefix = "account:%s:sessions"

type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func (r *RedisSessionRepository) Create(ctx context.Context, session *models.Session) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Redis expires the session key on its own; the per-account set is
	// cleaned up lazily.
	ttl := time.Until(session.ExpiresAt)
	key := fmt.Sprintf("%s%s", sessionPrefix, session.ID)

	err = r.client.Set(ctx, key, jsonData, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	accountKey := fmt.Sprintf(accountSessionsPrefix, session.Username)
	err = r.client.SAdd(ctx, accountKey, session.ID).Err()
	if err != nil {
		return fmt.Errorf("failed to add session to account sessions: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	key := fmt.Sprintf("%s%s", sessionPrefix, id)

	jsonData, err := r.client.Get(ctx, key).Result()

	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	err = json.Unmarshal([]byte(jsonData), &session)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	key := fmt.Sprintf("%s%s", sessionPrefix, id)

	session, err := r.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	accountKey := fmt.Sprintf(accountSessionsPrefix, session.Username)
	err = r.client.SRem(ctx, accountKey, id).Err()
	if err != nil {
		return fmt.Errorf("failed to remove session from account sessions: %w", err)
	}

	err = r.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (r *RedisSessionRepository) DeleteAllForAccount(ctx context.Context, username string) error {
	accountKey := fmt.Sprintf(accountSessionsPrefix, username)
	sessionIDs, err := r.client.SMembers(ctx, accountKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get account sessions: %w", err)
	}

	var expiredIDs []interface{}
	for _, id := range sessionIDs {
		err := r.client.Del(ctx, fmt.Sprintf("%s%s", sessionPrefix, id)).Err()
		if err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		expiredIDs = append(expiredIDs, id)
	}

	if len(expiredIDs) > 0 {
		err = r.client.SRem(ctx, accountKey, expiredIDs...).Err()
		if err != nil {
			return fmt.Errorf("failed to remove account sessions: %w", err)
		}
	}
	return nil
}
