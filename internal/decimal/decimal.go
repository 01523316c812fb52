// Package decimal wraps shopspring/decimal with the fixed-point rules used
// throughout a CFDI: monetary and quantity values carry at most six decimal
// places and are never routed through binary floats.
package decimal

import (
	"github.com/shopspring/decimal"
)

// Scale is the maximum number of fractional digits allowed by SAT's t_Importe type.
const Scale = 6

// Zero is decimal zero
var Zero = decimal.Zero

// One unit of the smallest representable amount (0.000001)
var Epsilon = decimal.New(1, -Scale)

// FromString parses exact decimal text
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error.
// Intended for constants and tests.
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// WithinScale reports whether d has at most Scale fractional digits
func WithinScale(d decimal.Decimal) bool {
	return d.Exponent() >= -Scale
}

// IsNonNegative returns true if d >= 0
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// IsPositive returns true if d >= 0.000001, the smallest positive amount
// expressible at six decimal places
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Epsilon)
}

// Sum sums a slice of decimals without rounding
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
