package domain

import (
	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of fractional digits carried by an Amount.
const AmountPrecision = 4

// Amount is a non-negative decimal with a fixed precision of four
// fractional digits. It is the only money type the engine manipulates;
// negative values are unrepresentable by construction.
type Amount struct {
	d decimal.Decimal
}

// ZeroAmount is the zero value ready for use.
var ZeroAmount = Amount{d: decimal.Zero}

// NewAmount builds an Amount from a decimal, truncating to four fractional
// digits. Returns ErrNegativeAmount for negative input.
func NewAmount(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{d: d.Truncate(AmountPrecision)}, nil
}

// ParseAmount builds an Amount from its string form.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return NewAmount(d)
}

// Add returns a + b. Addition of non-negative amounts cannot go negative.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b, or ErrNegativeAmount if the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	res := a.d.Sub(b.d)
	if res.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{d: res}, nil
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

// Equal reports whether a and b represent the same value.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// String renders the amount with exactly four fractional digits.
func (a Amount) String() string {
	return a.d.StringFixed(AmountPrecision)
}
