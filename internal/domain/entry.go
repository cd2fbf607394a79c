package domain

// EntryKind is the kind of fund-moving transaction an entry records.
type EntryKind string

const (
	EntryKindDeposit    EntryKind = "deposit"
	EntryKindWithdrawal EntryKind = "withdrawal"
)

// EntryStatus is the dispute state of a ledger entry.
//
// The machine is Normal -> Disputed -> Normal (resolve) and
// Disputed -> ChargedBack (terminal). Nothing leaves ChargedBack.
type EntryStatus string

const (
	EntryStatusNormal      EntryStatus = "normal"
	EntryStatusDisputed    EntryStatus = "disputed"
	EntryStatusChargedBack EntryStatus = "charged_back"
)

// Entry is the stored record of an accepted deposit or withdrawal, the only
// transaction kinds that can be referenced by later disputes. Entries are
// created exactly once per accepted transaction and never deleted.
type Entry struct {
	Tx     TxID
	Owner  ClientID
	Amount Amount
	Kind   EntryKind
	Status EntryStatus
}

// NewEntry records an accepted fund-moving transaction.
func NewEntry(tx TxID, owner ClientID, amount Amount, kind EntryKind) *Entry {
	return &Entry{
		Tx:     tx,
		Owner:  owner,
		Amount: amount,
		Kind:   kind,
		Status: EntryStatusNormal,
	}
}

// MarkDisputed transitions Normal -> Disputed. An entry that is already
// disputed or charged back cannot be disputed again.
func (e *Entry) MarkDisputed() error {
	if e.Status != EntryStatusNormal {
		return ErrNotDisputable
	}
	e.Status = EntryStatusDisputed
	return nil
}

// MarkResolved transitions Disputed -> Normal, clearing the dispute.
func (e *Entry) MarkResolved() error {
	if e.Status != EntryStatusDisputed {
		return ErrNotDisputed
	}
	e.Status = EntryStatusNormal
	return nil
}

// MarkChargedBack transitions Disputed -> ChargedBack. Terminal.
func (e *Entry) MarkChargedBack() error {
	if e.Status != EntryStatusDisputed {
		return ErrNotDisputed
	}
	e.Status = EntryStatusChargedBack
	return nil
}
