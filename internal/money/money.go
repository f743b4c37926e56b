// Package money provides the canonical rounding and summation rules for
// monetary values. Every other package rounds through here so that all call
// sites agree on cents and sign handling.
package money

import (
	"github.com/shopspring/decimal"
)

// centPlaces is the number of decimal places kept for a monetary value.
const centPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundToCents rounds x to two decimal places, half away from zero.
//
// Rounding operates on the exact decimal value, so binary floating-point
// drift never leaks into the result:
//
//	RoundToCents(19.005)  -> 19.01
//	RoundToCents(-19.005) -> -19.01
//	RoundToCents(19.0049) -> 19.00
func RoundToCents(x decimal.Decimal) decimal.Decimal {
	return x.Round(centPlaces)
}

// FromFloat converts a float64 to a cents-rounded decimal. The float is
// read through its shortest round-tripping representation first, so
// FromFloat(0.1+0.2) is exactly 0.30.
func FromFloat(f float64) decimal.Decimal {
	return RoundToCents(decimal.NewFromFloat(f))
}

// SumMonetaryValues adds the values exactly and rounds once at the end.
// An empty call returns zero.
func SumMonetaryValues(values ...decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return RoundToCents(decimal.Sum(values[0], values[1:]...))
}

// Percent returns part as a percentage of whole, rounded to cents.
// A non-positive whole yields zero instead of dividing by zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return RoundToCents(part.Mul(hundred).Div(whole))
}

// IsZero reports whether x is zero once rounded to cents.
func IsZero(x decimal.Decimal) bool {
	return RoundToCents(x).IsZero()
}
