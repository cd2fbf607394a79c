package domain

import "errors"

var (
	// Amount errors
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountLocked     = errors.New("account is locked")
	ErrInsufficientFunds = errors.New("insufficient available funds")
	ErrInsufficientHeld  = errors.New("held funds smaller than disputed amount")

	// Entry errors
	ErrEntryNotFound     = errors.New("referenced transaction not found")
	ErrDuplicateEntry    = errors.New("transaction id already used")
	ErrWrongOwner        = errors.New("transaction belongs to a different client")
	ErrNotDisputable     = errors.New("entry is not in a disputable state")
	ErrNotDisputed       = errors.New("entry is not under dispute")
	ErrKindNotDisputable = errors.New("entry kind may not be disputed")
)
