package domain

// Account is the balance state for one client. Total is always derived as
// Available + Held and never stored. Locked is terminal: a chargeback sets
// it and nothing clears it.
type Account struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Locked    bool
}

// NewAccount creates an empty account for client.
func NewAccount(client ClientID) *Account {
	return &Account{
		Client:    client,
		Available: ZeroAmount,
		Held:      ZeroAmount,
	}
}

// Total returns Available + Held.
func (a *Account) Total() Amount {
	return a.Available.Add(a.Held)
}

// Deposit credits amount to the available balance.
func (a *Account) Deposit(amount Amount) {
	a.Available = a.Available.Add(amount)
}

// Withdraw debits amount from the available balance. Returns
// ErrInsufficientFunds without mutating anything if available < amount.
func (a *Account) Withdraw(amount Amount) error {
	if a.Available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	rest, err := a.Available.Sub(amount)
	if err != nil {
		return err
	}
	a.Available = rest
	return nil
}

// Hold moves amount from available to held for an opened dispute. A dispute
// cannot hold funds that are no longer present, so available < amount fails
// with ErrInsufficientFunds.
func (a *Account) Hold(amount Amount) error {
	if a.Available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	rest, err := a.Available.Sub(amount)
	if err != nil {
		return err
	}
	a.Available = rest
	a.Held = a.Held.Add(amount)
	return nil
}

// Release moves amount back from held to available for a resolved dispute.
func (a *Account) Release(amount Amount) error {
	rest, err := a.Held.Sub(amount)
	if err != nil {
		return ErrInsufficientHeld
	}
	a.Held = rest
	a.Available = a.Available.Add(amount)
	return nil
}

// Chargeback removes amount from held entirely and locks the account.
func (a *Account) Chargeback(amount Amount) error {
	rest, err := a.Held.Sub(amount)
	if err != nil {
		return ErrInsufficientHeld
	}
	a.Held = rest
	a.Locked = true
	return nil
}
