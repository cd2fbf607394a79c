package domain

// Balance is one exported snapshot row. Total is materialized here so the
// encoder never re-derives it.
type Balance struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

// BalanceOf builds the snapshot row for an account.
func BalanceOf(a *Account) Balance {
	return Balance{
		Client:    a.Client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}
