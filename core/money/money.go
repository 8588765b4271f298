// Package money provides exact monetary arithmetic for the tax engine.
// All amounts are USD. NEVER use float64 for money calculations; rounding
// to whole cents happens only at subtotal/total boundaries.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with full precision.
type Money struct {
	amount decimal.Decimal
}

// New creates a Money from a decimal string
func New(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: d}, nil
}

// MustNew creates a Money from a decimal string, panicking on parse failure.
// Intended for constants and tests.
func MustNew(amount string) Money {
	m, err := New(amount)
	if err != nil {
		panic(fmt.Sprintf("money: invalid amount %q: %v", amount, err))
	}
	return m
}

// FromFloat creates Money from float64 (use sparingly)
func FromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount)}
}

// FromCents creates Money from an integral number of cents
func FromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -2)}
}

// FromDecimal creates Money from a decimal
func FromDecimal(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// Zero creates zero money
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Decimal returns the underlying decimal amount
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Add adds two monetary amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub subtracts monetary amounts
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Mul multiplies by a scalar
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// MulFloat multiplies by a float64 scalar
func (m Money) MulFloat(factor float64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromFloat(factor))}
}

// Div divides by a scalar
func (m Money) Div(divisor decimal.Decimal) Money {
	return Money{amount: m.amount.Div(divisor)}
}

// DivInt divides by an integer
func (m Money) DivInt(divisor int64) Money {
	return Money{amount: m.amount.Div(decimal.NewFromInt(divisor))}
}

// Neg negates the amount
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

// Abs returns the absolute amount
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs()}
}

// RoundCents rounds to whole cents (half away from zero).
// Call only at subtotal/total boundaries.
func (m Money) RoundCents() Money {
	return Money{amount: m.amount.Round(2)}
}

// Cents returns the amount as whole cents, rounding half away from zero
func (m Money) Cents() int64 {
	return m.amount.Round(2).Shift(2).IntPart()
}

// IsZero returns true if amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsPositive returns true if amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Cmp compares two monetary amounts
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// LessThan reports whether m < other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan reports whether m > other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Max returns the larger of two amounts
func Max(a, b Money) Money {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Min returns the smaller of two amounts
func Min(a, b Money) Money {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// String returns formatted money (2 decimal places)
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// StringRaw returns the raw decimal string (full precision)
func (m Money) StringRaw() string {
	return m.amount.String()
}

// Float64 returns float64 (only for display, never for calculation)
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return m.amount.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.amount.UnmarshalJSON(data)
}
