// Package money provides the monetary amount type used throughout the
// ledger. Amounts are exact decimals; JSON decoding is deliberately
// lenient so that missing or malformed numeric input coerces to zero
// instead of failing the request.
package money

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Tolerance is the maximum absolute difference accepted when comparing
// a transaction amount against the sum of its payments.
var Tolerance = decimal.NewFromFloat(0.01)

// Amount is an exact decimal monetary value.
type Amount struct {
	dec decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Amount { return Amount{} }

// FromFloat builds an Amount from a float64.
func FromFloat(f float64) Amount {
	return Amount{dec: decimal.NewFromFloat(f)}
}

// FromDecimal builds an Amount from a decimal value.
func FromDecimal(d decimal.Decimal) Amount { return Amount{dec: d} }

// Parse builds an Amount from a string, coercing anything that does not
// parse as a decimal number to zero.
func Parse(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}
	}
	return Amount{dec: d}
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.dec }

// Float64 returns the nearest float64 representation.
func (a Amount) Float64() float64 {
	f, _ := a.dec.Float64()
	return f
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return Amount{dec: a.dec.Add(b.dec)} }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return Amount{dec: a.dec.Sub(b.dec)} }

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool { return a.dec.IsPositive() }

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool { return a.dec.IsZero() }

// Equal reports whether two amounts are numerically equal.
func (a Amount) Equal(b Amount) bool { return a.dec.Equal(b.dec) }

// WithinTolerance reports whether |a - b| <= Tolerance.
func (a Amount) WithinTolerance(b Amount) bool {
	return a.dec.Sub(b.dec).Abs().Cmp(Tolerance) <= 0
}

// String returns the canonical decimal representation.
func (a Amount) String() string { return a.dec.String() }

// MarshalJSON encodes the amount as a plain JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.dec.String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string, or null.
// Anything that does not parse as a number becomes zero; this method
// never returns an error. Callers that need to reject bad input do so
// with their own validation, not at decode time.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		a.dec = decimal.Decimal{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		a.dec = decimal.Decimal{}
		return nil
	}
	a.dec = d
	return nil
}
