package memory

import (
	"context"
	"sync"

	"github.com/iho/payengine/internal/domain"
)

// EntryStore is the in-memory ledger entry store, keyed by transaction id.
// Entries are created exactly once and never deleted, which is what makes
// replayed transaction ids detectable.
type EntryStore struct {
	mu      sync.RWMutex
	entries map[domain.TxID]*domain.Entry
}

// NewEntryStore creates an empty EntryStore.
func NewEntryStore() *EntryStore {
	return &EntryStore{
		entries: make(map[domain.TxID]*domain.Entry),
	}
}

// Get returns the entry for tx, or domain.ErrEntryNotFound.
func (s *EntryStore) Get(_ context.Context, tx domain.TxID) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[tx]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	return entry, nil
}

// Create records a new entry. The transaction id is consumed permanently;
// a second create for the same id fails with domain.ErrDuplicateEntry.
func (s *EntryStore) Create(_ context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.Tx]; ok {
		return domain.ErrDuplicateEntry
	}
	s.entries[entry.Tx] = entry
	return nil
}

// Put writes back a mutated entry.
func (s *EntryStore) Put(_ context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.Tx]; !ok {
		return domain.ErrEntryNotFound
	}
	s.entries[entry.Tx] = entry
	return nil
}
