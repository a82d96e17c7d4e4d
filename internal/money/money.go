// Package money holds the decimal arithmetic shared by the ledger.
// All amounts are kept in a single currency with two fractional digits.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits of a stored amount.
const Places = 2

var (
	ErrNegative  = errors.New("amount is negative")
	ErrPrecision = errors.New("amount has more than two fractional digits")
)

var hundred = decimal.NewFromInt(100)

// Zero is the zero amount.
var Zero = decimal.Zero

// FromCents builds an amount from integer minor units.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Places)
}

// Cents returns the amount in minor units, rounding half away from zero.
func Cents(d decimal.Decimal) int64 {
	return Round(d).Shift(Places).IntPart()
}

// Parse reads a decimal string and checks it is a valid stored amount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if err := Check(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Round rounds half away from zero to Places digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Check reports whether d is non-negative and representable in minor units.
func Check(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegative
	}
	if !d.Equal(d.Truncate(Places)) {
		return ErrPrecision
	}
	return nil
}

// Percent returns base*pct/100 rounded to Places.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(pct).Div(hundred))
}

// Sum adds the given amounts; an empty list sums to zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative clamps d at zero. Used only for display values.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
