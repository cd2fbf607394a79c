package memory

import (
	"context"
	"sync"

	"github.com/iho/payengine/internal/domain"
)

// AccountStore is the in-memory account store. It keeps accounts in
// first-seen order so the snapshot output is deterministic for a given
// input. The mutex only guards against concurrent readers (monitoring);
// the engine is the sole writer.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[domain.ClientID]*domain.Account
	order    []domain.ClientID
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[domain.ClientID]*domain.Account),
	}
}

// GetOrCreate returns the account for client, creating it lazily on first
// reference.
func (s *AccountStore) GetOrCreate(_ context.Context, client domain.ClientID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.accounts[client]; ok {
		return acc, nil
	}

	acc := domain.NewAccount(client)
	s.accounts[client] = acc
	s.order = append(s.order, client)
	return acc, nil
}

// Put writes back a mutated account.
func (s *AccountStore) Put(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Client]; !ok {
		return domain.ErrAccountNotFound
	}
	s.accounts[account.Client] = account
	return nil
}

// List returns all accounts in first-seen order.
func (s *AccountStore) List(_ context.Context) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(s.order))
	for _, client := range s.order {
		accounts = append(accounts, s.accounts[client])
	}
	return accounts, nil
}
