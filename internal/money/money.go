// Package money is the single arithmetic boundary for every monetary value in the
// system. All amounts are shopspring decimals; no binary float ever takes part in a
// calculation. Floats coming from JSON or configuration must pass through FromFloat
// or Parse before they are used.
package money

import (
	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the display/ticket precision for currency amounts.
	MoneyPlaces int32 = 2
	// QuantityPlaces is the precision kept for fractional (weight-sold) quantities.
	QuantityPlaces int32 = 4
	// InternalPlaces is the precision used for intermediate residues compared
	// against the internal epsilon.
	InternalPlaces int32 = 4
)

// DefaultEpsilon is the internal tolerance used to decide the sign of near-zero
// residues. It must stay tighter than the display precision.
var DefaultEpsilon = decimal.New(1, -4)

var (
	Zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

func Add(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) }

func Sub(a, b decimal.Decimal) decimal.Decimal { return a.Sub(b) }

func Mul(a, b decimal.Decimal) decimal.Decimal { return a.Mul(b) }

// Div divides a by b. Division by zero yields zero: downstream formulas divide by the
// exchange rate and must degrade to zero when the rate is not set yet.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Round rounds half away from zero (half-up for the non-negative amounts money
// handles) at the given number of decimal places.
func Round(v decimal.Decimal, places int32) decimal.Decimal {
	return v.Round(places)
}

// RoundMoney rounds at MoneyPlaces.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyPlaces)
}

func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Cmp returns -1, 0 or +1.
func Cmp(a, b decimal.Decimal) int { return a.Cmp(b) }

// EqualWithin reports whether |a-b| <= eps.
func EqualWithin(a, b, eps decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(eps)
}

// IsPositive reports whether v is greater than eps.
func IsPositive(v, eps decimal.Decimal) bool {
	return v.GreaterThan(eps)
}

// Sum adds all values; an empty list sums to zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percent returns v × pct / 100 without rounding.
func Percent(v, pct decimal.Decimal) decimal.Decimal {
	return v.Mul(pct).Div(hundred)
}

// FromFloat converts a float at the ingestion boundary using its shortest decimal
// representation, so 0.1 becomes exactly 0.1.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Parse converts a textual amount. Empty strings parse as zero.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// ClampZero returns v, or zero when v is negative.
func ClampZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
