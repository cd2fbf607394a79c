package domain

// Record is the closed set of transaction records the engine consumes.
// The five concrete types below are the only implementations; the marker
// method keeps the set sealed so the engine's dispatch switch stays
// exhaustive when a kind is added.
type Record interface {
	// RecordClient is the client the record applies to.
	RecordClient() ClientID
	// RecordTx is the transaction id the record carries or references.
	RecordTx() TxID

	sealed()
}

// Deposit credits funds to a client account.
type Deposit struct {
	Client ClientID
	Tx     TxID
	Amount Amount
}

// Withdrawal debits funds from a client account.
type Withdrawal struct {
	Client ClientID
	Tx     TxID
	Amount Amount
}

// Dispute opens a claim against a prior deposit or withdrawal.
type Dispute struct {
	Client ClientID
	Tx     TxID
}

// Resolve clears an open dispute, releasing the held funds.
type Resolve struct {
	Client ClientID
	Tx     TxID
}

// Chargeback settles an open dispute against the client, removing the held
// funds and locking the account.
type Chargeback struct {
	Client ClientID
	Tx     TxID
}

func (d Deposit) RecordClient() ClientID    { return d.Client }
func (d Deposit) RecordTx() TxID            { return d.Tx }
func (w Withdrawal) RecordClient() ClientID { return w.Client }
func (w Withdrawal) RecordTx() TxID         { return w.Tx }
func (d Dispute) RecordClient() ClientID    { return d.Client }
func (d Dispute) RecordTx() TxID            { return d.Tx }
func (r Resolve) RecordClient() ClientID    { return r.Client }
func (r Resolve) RecordTx() TxID            { return r.Tx }
func (c Chargeback) RecordClient() ClientID { return c.Client }
func (c Chargeback) RecordTx() TxID         { return c.Tx }

func (Deposit) sealed()    {}
func (Withdrawal) sealed() {}
func (Dispute) sealed()    {}
func (Resolve) sealed()    {}
func (Chargeback) sealed() {}

// RecordKindName returns the wire name of a record, used for logs and
// metric labels.
func RecordKindName(r Record) string {
	switch r.(type) {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	case Dispute:
		return "dispute"
	case Resolve:
		return "resolve"
	case Chargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}
