package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/payengine/internal/domain"
	"github.com/iho/payengine/internal/infrastructure/metrics"
)

// Engine applies a stream of transaction records to the account and entry
// stores, one record at a time and strictly in arrival order. Records that
// fail a precondition are discarded without stopping the run; only source
// and store faults abort it.
type Engine struct {
	accounts AccountStore
	entries  EntryStore
	policy   Policy
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// New creates a new Engine. metrics may be nil to disable instrumentation.
func New(accounts AccountStore, entries EntryStore, policy Policy, logger zerolog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		accounts: accounts,
		entries:  entries,
		policy:   policy,
		logger:   logger,
		metrics:  m,
	}
}

// Process consumes src until io.EOF, applying every record that passes its
// preconditions. This loop is the single suspension point of a run: handler
// execution is synchronous, so no two records ever interleave mid-mutation.
func (e *Engine) Process(ctx context.Context, src Source) error {
	start := time.Now()

	for {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read next record: %w", err)
		}

		kind := domain.RecordKindName(rec)

		if err := e.apply(ctx, rec); err != nil {
			if !isDiscard(err) {
				return fmt.Errorf("failed to apply %s record for tx %s: %w", kind, rec.RecordTx(), err)
			}

			e.logger.Debug().
				Str("kind", kind).
				Str("client", rec.RecordClient().String()).
				Str("tx", rec.RecordTx().String()).
				Str("reason", err.Error()).
				Msg("record discarded")

			if e.metrics != nil {
				e.metrics.RecordsDiscarded.WithLabelValues(kind, discardReason(err)).Inc()
			}
			continue
		}

		if e.metrics != nil {
			e.metrics.RecordsProcessed.WithLabelValues(kind).Inc()
		}
	}

	if e.metrics != nil {
		e.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}

	return nil
}

// Snapshot returns the balance rows for every account in first-seen order.
func (e *Engine) Snapshot(ctx context.Context) ([]domain.Balance, error) {
	accounts, err := e.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	rows := make([]domain.Balance, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, domain.BalanceOf(acc))
	}

	if e.metrics != nil {
		e.metrics.AccountsTracked.Set(float64(len(rows)))
	}

	return rows, nil
}

// apply routes a record to exactly one handler. The switch is exhaustive
// over the sealed record set.
func (e *Engine) apply(ctx context.Context, rec domain.Record) error {
	switch r := rec.(type) {
	case domain.Deposit:
		return e.applyDeposit(ctx, r)
	case domain.Withdrawal:
		return e.applyWithdrawal(ctx, r)
	case domain.Dispute:
		return e.applyDispute(ctx, r)
	case domain.Resolve:
		return e.applyResolve(ctx, r)
	case domain.Chargeback:
		return e.applyChargeback(ctx, r)
	default:
		return fmt.Errorf("unhandled record type %T", rec)
	}
}

func (e *Engine) applyDeposit(ctx context.Context, d domain.Deposit) error {
	if err := e.checkReplay(ctx, d.Tx); err != nil {
		return err
	}

	acc, err := e.accounts.GetOrCreate(ctx, d.Client)
	if err != nil {
		return err
	}
	if e.policy.LockedBlocksTransfers && acc.Locked {
		return domain.ErrAccountLocked
	}

	acc.Deposit(d.Amount)
	if err := e.accounts.Put(ctx, acc); err != nil {
		return err
	}

	return e.entries.Create(ctx, domain.NewEntry(d.Tx, d.Client, d.Amount, domain.EntryKindDeposit))
}

func (e *Engine) applyWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	if err := e.checkReplay(ctx, w.Tx); err != nil {
		return err
	}

	acc, err := e.accounts.GetOrCreate(ctx, w.Client)
	if err != nil {
		return err
	}
	if e.policy.LockedBlocksTransfers && acc.Locked {
		return domain.ErrAccountLocked
	}

	// A failed withdrawal does not consume the transaction id: no entry is
	// recorded, so a later record may legally reuse it.
	if err := acc.Withdraw(w.Amount); err != nil {
		return err
	}
	if err := e.accounts.Put(ctx, acc); err != nil {
		return err
	}

	return e.entries.Create(ctx, domain.NewEntry(w.Tx, w.Client, w.Amount, domain.EntryKindWithdrawal))
}

func (e *Engine) applyDispute(ctx context.Context, d domain.Dispute) error {
	entry, err := e.referencedEntry(ctx, d.Tx, d.Client)
	if err != nil {
		return err
	}

	if entry.Kind == domain.EntryKindWithdrawal && !e.policy.DisputeWithdrawals {
		return domain.ErrKindNotDisputable
	}
	if entry.Status != domain.EntryStatusNormal {
		return domain.ErrNotDisputable
	}

	acc, err := e.accounts.GetOrCreate(ctx, d.Client)
	if err != nil {
		return err
	}
	if err := acc.Hold(entry.Amount); err != nil {
		return err
	}
	if err := e.accounts.Put(ctx, acc); err != nil {
		return err
	}

	if err := entry.MarkDisputed(); err != nil {
		return err
	}
	if err := e.entries.Put(ctx, entry); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.DisputesOpened.Inc()
	}
	return nil
}

func (e *Engine) applyResolve(ctx context.Context, r domain.Resolve) error {
	entry, err := e.referencedEntry(ctx, r.Tx, r.Client)
	if err != nil {
		return err
	}
	if entry.Status != domain.EntryStatusDisputed {
		return domain.ErrNotDisputed
	}

	acc, err := e.accounts.GetOrCreate(ctx, r.Client)
	if err != nil {
		return err
	}
	if err := acc.Release(entry.Amount); err != nil {
		return err
	}
	if err := e.accounts.Put(ctx, acc); err != nil {
		return err
	}

	if err := entry.MarkResolved(); err != nil {
		return err
	}
	if err := e.entries.Put(ctx, entry); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.DisputesResolved.Inc()
	}
	return nil
}

func (e *Engine) applyChargeback(ctx context.Context, c domain.Chargeback) error {
	entry, err := e.referencedEntry(ctx, c.Tx, c.Client)
	if err != nil {
		return err
	}
	if entry.Status != domain.EntryStatusDisputed {
		return domain.ErrNotDisputed
	}

	acc, err := e.accounts.GetOrCreate(ctx, c.Client)
	if err != nil {
		return err
	}
	if err := acc.Chargeback(entry.Amount); err != nil {
		return err
	}
	if err := e.accounts.Put(ctx, acc); err != nil {
		return err
	}

	if err := entry.MarkChargedBack(); err != nil {
		return err
	}
	if err := e.entries.Put(ctx, entry); err != nil {
		return err
	}

	if e.metrics != nil {
		e.metrics.Chargebacks.Inc()
	}
	return nil
}

// checkReplay rejects a deposit or withdrawal whose transaction id was
// already consumed by an accepted entry.
func (e *Engine) checkReplay(ctx context.Context, tx domain.TxID) error {
	_, err := e.entries.Get(ctx, tx)
	if err == nil {
		return domain.ErrDuplicateEntry
	}
	if errors.Is(err, domain.ErrEntryNotFound) {
		return nil
	}
	return err
}

// referencedEntry loads the entry a dispute-chain record points at and
// enforces that the record's client owns it.
func (e *Engine) referencedEntry(ctx context.Context, tx domain.TxID, client domain.ClientID) (*domain.Entry, error) {
	entry, err := e.entries.Get(ctx, tx)
	if err != nil {
		return nil, err
	}
	if entry.Owner != client {
		return nil, domain.ErrWrongOwner
	}
	return entry, nil
}

// discardable is the set of precondition failures that drop a single record
// without aborting the run.
var discardable = map[error]string{
	domain.ErrDuplicateEntry:    "duplicate_tx",
	domain.ErrEntryNotFound:     "unknown_tx",
	domain.ErrWrongOwner:        "wrong_owner",
	domain.ErrNotDisputable:     "not_disputable",
	domain.ErrNotDisputed:       "not_disputed",
	domain.ErrKindNotDisputable: "kind_not_disputable",
	domain.ErrInsufficientFunds: "insufficient_funds",
	domain.ErrInsufficientHeld:  "insufficient_held",
	domain.ErrAccountLocked:     "account_locked",
}

func isDiscard(err error) bool {
	for sentinel := range discardable {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func discardReason(err error) string {
	for sentinel, reason := range discardable {
		if errors.Is(err, sentinel) {
			return reason
		}
	}
	return "other"
}
