// Package money holds the decimal helpers used for every monetary value.
//
// Amounts travel through the API as decimals and are persisted as integer
// minor units (cents), so database aggregates are exact. All arithmetic goes
// through shopspring/decimal; float64 never touches a balance.
package money

import (
	"github.com/shopspring/decimal"
)

// Places is the authoritative precision of persisted amounts.
const Places = 2

// Tolerance is the absolute difference accepted when checking that shares
// add up to an expense total.
var Tolerance = decimal.New(1, -Places)

// Zero is the empty sum.
var Zero = decimal.Zero

// MaxAmount is the largest amount accepted for a single expense, share or
// settlement. Its cents, and the sum of many of them, fit in an int64.
var MaxAmount = decimal.New(1, 12)

// Round rounds d half away from zero to Places decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// InRange reports whether d, rounded to Places, is between zero and MaxAmount.
func InRange(d decimal.Decimal) bool {
	r := Round(d)
	return !r.IsNegative() && r.LessThanOrEqual(MaxAmount)
}

// ToCents converts d to integer minor units after rounding.
// d must be InRange; larger values do not fit in an int64.
func ToCents(d decimal.Decimal) int64 {
	return Round(d).Shift(Places).IntPart()
}

// FromCents converts integer minor units back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Places)
}

// Sum adds amounts. The sum of nothing is zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// WithinTolerance reports whether a and b differ by at most Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Format renders d with exactly Places decimals, e.g. "10.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
