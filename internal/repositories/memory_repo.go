package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/upal04/cardvault/internal/models"
)

// MemoryStore is an in-memory implementation of the persistence
// interfaces. Accounts and cards share one store guarded by one lock so
// that deleting an account cascades to its cards the same way the SQL
// foreign key does. Intended for tests and local runs without Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]models.Account
	cards     map[uuid.UUID]models.Card
	cardOrder []uuid.UUID
	sessions  map[string]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]models.Account),
		cards:    make(map[uuid.UUID]models.Card),
		sessions: make(map[string]models.Session),
	}
}

func (s *MemoryStore) Accounts() AccountRepository { return &memoryAccountRepo{s} }
func (s *MemoryStore) Cards() CardRepository       { return &memoryCardRepo{s} }
func (s *MemoryStore) Sessions() SessionRepository { return &memorySessionRepo{s} }

type memoryAccountRepo struct {
	store *MemoryStore
}

func (r *memoryAccountRepo) Create(_ context.Context, account *models.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.accounts[account.Username]; exists {
		return fmt.Errorf("failed to create account: username %q already present", account.Username)
	}
	r.store.accounts[account.Username] = *account
	return nil
}

func (r *memoryAccountRepo) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (r *memoryAccountRepo) ListUsernames(_ context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	usernames := make([]string, 0, len(r.store.accounts))
	for username := range r.store.accounts {
		usernames = append(usernames, username)
	}
	return usernames, nil
}

func (r *memoryAccountRepo) Delete(_ context.Context, username string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[username]; !ok {
		return ErrNotFound
	}
	delete(r.store.accounts, username)

	// Cascade, mirroring ON DELETE CASCADE.
	kept := r.store.cardOrder[:0]
	for _, id := range r.store.cardOrder {
		if r.store.cards[id].Owner == username {
			delete(r.store.cards, id)
			continue
		}
		kept = append(kept, id)
	}
	r.store.cardOrder = kept
	return nil
}

type memoryCardRepo struct {
	store *MemoryStore
}

func (r *memoryCardRepo) Create(_ context.Context, card *models.Card) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Same constraint the SQL foreign key enforces.
	if _, ok := r.store.accounts[card.Owner]; !ok {
		return fmt.Errorf("failed to create card: owner %q does not exist", card.Owner)
	}
	if _, exists := r.store.cards[card.ID]; exists {
		return fmt.Errorf("failed to create card: id %s already present", card.ID)
	}
	r.store.cards[card.ID] = *card
	r.store.cardOrder = append(r.store.cardOrder, card.ID)
	return nil
}

func (r *memoryCardRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Card, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	card, ok := r.store.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &card, nil
}

func (r *memoryCardRepo) ListByOwner(_ context.Context, owner string) ([]*models.Card, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var cards []*models.Card
	for _, id := range r.store.cardOrder {
		if card, ok := r.store.cards[id]; ok && card.Owner == owner {
			c := card
			cards = append(cards, &c)
		}
	}
	return cards, nil
}

func (r *memoryCardRepo) CountByOwner(_ context.Context, owner string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, card := range r.store.cards {
		if card.Owner == owner {
			count++
		}
	}
	return count, nil
}

func (r *memoryCardRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.cards[id]; !ok {
		return ErrNotFound
	}
	delete(r.store.cards, id)
	for i, existing := range r.store.cardOrder {
		if existing == id {
			r.store.cardOrder = append(r.store.cardOrder[:i], r.store.cardOrder[i+1:]...)
			break
		}
	}
	return nil
}

type memorySessionRepo struct {
	store *MemoryStore
}

func (r *memorySessionRepo) Create(_ context.Context, session *models.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.sessions[session.ID] = *session
	return nil
}

func (r *memorySessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	session, ok := r.store.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (r *memorySessionRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.store.sessions, id)
	return nil
}

func (r *memorySessionRepo) DeleteAllForAccount(_ context.Context, username string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, session := range r.store.sessions {
		if session.Username == username {
			delete(r.store.sessions, id)
		}
	}
	return nil
}
