package engine

import (
	"context"

	"github.com/iho/payengine/internal/domain"
)

// AccountStore defines access to per-client account state. The engine is
// the only writer for the duration of a run.
type AccountStore interface {
	// GetOrCreate returns the account for client, creating an empty one on
	// first reference.
	GetOrCreate(ctx context.Context, client domain.ClientID) (*domain.Account, error)
	// Put writes back a mutated account.
	Put(ctx context.Context, account *domain.Account) error
	// List returns all accounts in first-seen order.
	List(ctx context.Context) ([]*domain.Account, error)
}

// EntryStore defines access to the ledger entries recorded for accepted
// deposits and withdrawals.
type EntryStore interface {
	// Get returns the entry for tx, or domain.ErrEntryNotFound.
	Get(ctx context.Context, tx domain.TxID) (*domain.Entry, error)
	// Create records a new entry, or domain.ErrDuplicateEntry if the
	// transaction id was already consumed.
	Create(ctx context.Context, entry *domain.Entry) error
	// Put writes back a mutated entry.
	Put(ctx context.Context, entry *domain.Entry) error
}

// Source is a lazy, finite, non-restartable sequence of records. Next
// returns io.EOF once the sequence is exhausted; any other error is fatal
// to the run. Next may block while more input arrives.
type Source interface {
	Next(ctx context.Context) (domain.Record, error)
}
