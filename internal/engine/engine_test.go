package engine_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/payengine/internal/adapter/memory"
	"github.com/iho/payengine/internal/domain"
	"github.com/iho/payengine/internal/engine"
	"github.com/iho/payengine/internal/engine/mocks"
)

// sliceSource feeds a fixed record slice to the engine.
type sliceSource struct {
	records []domain.Record
	pos     int
}

func (s *sliceSource) Next(_ context.Context) (domain.Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

type testLedger struct {
	engine   *engine.Engine
	accounts *memory.AccountStore
	entries  *memory.EntryStore
}

func newTestLedger(policy engine.Policy) *testLedger {
	accounts := memory.NewAccountStore()
	entries := memory.NewEntryStore()
	return &testLedger{
		engine:   engine.New(accounts, entries, policy, zerolog.Nop(), nil),
		accounts: accounts,
		entries:  entries,
	}
}

func (l *testLedger) run(t *testing.T, records ...domain.Record) []domain.Balance {
	t.Helper()
	if err := l.engine.Process(context.Background(), &sliceSource{records: records}); err != nil {
		t.Fatalf("unexpected processing error: %v", err)
	}
	snapshot, err := l.engine.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected snapshot error: %v", err)
	}
	return snapshot
}

func balanceFor(t *testing.T, snapshot []domain.Balance, client domain.ClientID) domain.Balance {
	t.Helper()
	for _, b := range snapshot {
		if b.Client == client {
			return b
		}
	}
	t.Fatalf("no balance row for client %s", client)
	return domain.Balance{}
}

func assertBalance(t *testing.T, b domain.Balance, available, held, total string, locked bool) {
	t.Helper()
	if got := b.Available.String(); got != available {
		t.Errorf("expected available %s, got %s", available, got)
	}
	if got := b.Held.String(); got != held {
		t.Errorf("expected held %s, got %s", held, got)
	}
	if got := b.Total.String(); got != total {
		t.Errorf("expected total %s, got %s", total, got)
	}
	if b.Locked != locked {
		t.Errorf("expected locked=%v, got %v", locked, b.Locked)
	}
}

func amt(t *testing.T, s string) domain.Amount {
	t.Helper()
	amount, err := domain.ParseAmount(s)
	if err != nil {
		t.Fatalf("failed to parse amount %q: %v", s, err)
	}
	return amount
}

var (
	client1 = domain.NewClientID(1)
	client2 = domain.NewClientID(2)
)

func TestEngine_DepositsAndWithdrawals(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10.5")},
		domain.Deposit{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "4.5")},
		domain.Deposit{Client: client2, Tx: domain.NewTxID(3), Amount: amt(t, "100")},
		domain.Withdrawal{Client: client1, Tx: domain.NewTxID(4), Amount: amt(t, "5")},
	)

	// total == sum(deposits) - sum(accepted withdrawals), held == 0
	assertBalance(t, balanceFor(t, snapshot, client1), "10.0000", "0.0000", "10.0000", false)
	assertBalance(t, balanceFor(t, snapshot, client2), "100.0000", "0.0000", "100.0000", false)
}

func TestEngine_SnapshotOrderIsFirstSeen(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Deposit{Client: client2, Tx: domain.NewTxID(1), Amount: amt(t, "1")},
		domain.Deposit{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "2")},
		domain.Deposit{Client: client2, Tx: domain.NewTxID(3), Amount: amt(t, "3")},
	)

	if len(snapshot) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snapshot))
	}
	if snapshot[0].Client != client2 || snapshot[1].Client != client1 {
		t.Errorf("expected first-seen order [2 1], got [%s %s]", snapshot[0].Client, snapshot[1].Client)
	}
}

func TestEngine_ReplayedDepositIsIgnored(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
		domain.Withdrawal{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
	)

	assertBalance(t, balanceFor(t, snapshot, client1), "10.0000", "0.0000", "10.0000", false)
}

func TestEngine_WithdrawalInsufficientFunds(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "5")},
		domain.Withdrawal{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "9")},
		// The failed withdrawal did not consume tx 2, so it is reusable.
		domain.Deposit{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "1")},
	)

	assertBalance(t, balanceFor(t, snapshot, client1), "6.0000", "0.0000", "6.0000", false)
}

func TestEngine_WithdrawalFromUnknownClientCreatesAccount(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Withdrawal{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "1")},
	)

	// Account is created lazily even though the withdrawal itself fails.
	assertBalance(t, balanceFor(t, snapshot, client1), "0.0000", "0.0000", "0.0000", false)
}

func TestEngine_DisputeResolveRoundTrip(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
		domain.Dispute{Client: client1, Tx: domain.NewTxID(1)},
		domain.Resolve{Client: client1, Tx: domain.NewTxID(1)},
	)

	assertBalance(t, balanceFor(t, snapshot, client1), "10.0000", "0.0000", "10.0000", false)

	entry, err := l.entries.Get(context.Background(), domain.NewTxID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.EntryStatusNormal {
		t.Errorf("expected status normal after resolve, got %s", entry.Status)
	}
}

func TestEngine_DisputeChargebackScenario(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10.0")},
		domain.Deposit{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "5.0")},
		domain.Withdrawal{Client: client1, Tx: domain.NewTxID(3), Amount: amt(t, "3.0")},
		domain.Dispute{Client: client1, Tx: domain.NewTxID(1)},
	)
	assertBalance(t, balanceFor(t, snapshot, client1), "2.0000", "10.0000", "12.0000", false)

	snapshot = l.run(t,
		domain.Chargeback{Client: client1, Tx: domain.NewTxID(1)},
	)
	assertBalance(t, balanceFor(t, snapshot, client1), "2.0000", "0.0000", "2.0000", true)

	// Everything referencing the charged-back tx is a no-op from here on.
	snapshot = l.run(t,
		domain.Dispute{Client: client1, Tx: domain.NewTxID(1)},
		domain.Resolve{Client: client1, Tx: domain.NewTxID(1)},
		domain.Chargeback{Client: client1, Tx: domain.NewTxID(1)},
	)
	assertBalance(t, balanceFor(t, snapshot, client1), "2.0000", "0.0000", "2.0000", true)
}

func TestEngine_CrossClientDisputeRejected(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
		domain.Dispute{Client: client2, Tx: domain.NewTxID(1)},
	)

	assertBalance(t, balanceFor(t, snapshot, client1), "10.0000", "0.0000", "10.0000", false)
	if len(snapshot) != 1 {
		t.Errorf("expected 1 account, got %d", len(snapshot))
	}
}

func TestEngine_UnknownDisputeReference(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	snapshot := l.run(t,
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
		domain.Dispute{Client: client1, Tx: domain.NewTxID(999)},
	)

	assertBalance(t, balanceFor(t, snapshot, client1), "10.0000", "0.0000", "10.0000", false)
}

func TestEngine_DisputeWithoutAvailableFunds(t *testing.T) {
	l := newTestLedger(engine.DefaultPolicy())

	// The deposited funds are gone; the dispute cannot hold them.
	snapshot := l.run(t,
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
		domain.Withdrawal{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "8")},
		domain.Dispute{Client: client1, Tx: domain.NewTxID(1)},
	)

	assertBalance(t, balanceFor(t, snapshot, client1), "2.0000", "0.0000", "2.0000", false)

	entry, err := l.entries.Get(context.Background(), domain.NewTxID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.EntryStatusNormal {
		t.Errorf("expected discarded dispute to leave status normal, got %s", entry.Status)
	}
}

func TestEngine_WithdrawalDisputePolicy(t *testing.T) {
	t.Run("allowed by default", func(t *testing.T) {
		l := newTestLedger(engine.DefaultPolicy())

		snapshot := l.run(t,
			domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
			domain.Withdrawal{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "4")},
			domain.Dispute{Client: client1, Tx: domain.NewTxID(2)},
		)

		assertBalance(t, balanceFor(t, snapshot, client1), "2.0000", "4.0000", "6.0000", false)
	})

	t.Run("disabled by policy", func(t *testing.T) {
		policy := engine.DefaultPolicy()
		policy.DisputeWithdrawals = false
		l := newTestLedger(policy)

		snapshot := l.run(t,
			domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
			domain.Withdrawal{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "4")},
			domain.Dispute{Client: client1, Tx: domain.NewTxID(2)},
		)

		assertBalance(t, balanceFor(t, snapshot, client1), "6.0000", "0.0000", "6.0000", false)
	})
}

func TestEngine_LockedAccountPolicy(t *testing.T) {
	chargebackFirst := []domain.Record{
		domain.Deposit{Client: client1, Tx: domain.NewTxID(1), Amount: amt(t, "10")},
		domain.Dispute{Client: client1, Tx: domain.NewTxID(1)},
		domain.Chargeback{Client: client1, Tx: domain.NewTxID(1)},
	}

	t.Run("locked account keeps accepting by default", func(t *testing.T) {
		l := newTestLedger(engine.DefaultPolicy())

		snapshot := l.run(t, append(chargebackFirst,
			domain.Deposit{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "5")},
		)...)

		assertBalance(t, balanceFor(t, snapshot, client1), "5.0000", "0.0000", "5.0000", true)
	})

	t.Run("locked account rejects when configured", func(t *testing.T) {
		policy := engine.DefaultPolicy()
		policy.LockedBlocksTransfers = true
		l := newTestLedger(policy)

		snapshot := l.run(t, append(chargebackFirst,
			domain.Deposit{Client: client1, Tx: domain.NewTxID(2), Amount: amt(t, "5")},
			domain.Withdrawal{Client: client1, Tx: domain.NewTxID(3), Amount: amt(t, "1")},
		)...)

		assertBalance(t, balanceFor(t, snapshot, client1), "0.0000", "0.0000", "0.0000", true)
	})
}

func TestEngine_SourceFaultAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srcErr := errors.New("disk gone")
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().Next(gomock.Any()).Return(nil, srcErr)

	l := newTestLedger(engine.DefaultPolicy())
	err := l.engine.Process(context.Background(), src)
	if !errors.Is(err, srcErr) {
		t.Errorf("expected source fault to propagate, got %v", err)
	}
}

func TestEngine_CrossClientDisputeTouchesNoAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := mocks.NewMockAccountStore(ctrl)
	entries := mocks.NewMockEntryStore(ctrl)

	tx := domain.NewTxID(1)
	entries.EXPECT().Get(gomock.Any(), tx).Return(
		domain.NewEntry(tx, client1, amt(t, "10"), domain.EntryKindDeposit), nil,
	)
	// No account store expectations: the wrong-owner check must short-circuit
	// before any account is read or written.

	eng := engine.New(accounts, entries, engine.DefaultPolicy(), zerolog.Nop(), nil)

	src := &sliceSource{records: []domain.Record{
		domain.Dispute{Client: client2, Tx: tx},
	}}
	if err := eng.Process(context.Background(), src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
