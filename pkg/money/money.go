// Package money provides the fixed-point amount used for every balance in the bank.
//
// Invariants:
//   - Amounts are always stored in the smallest currency unit (cents).
//   - Parsing never goes through float64; user input is read as a decimal string.
//   - Arithmetic that would overflow int64 fails instead of wrapping.
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrency is the informational currency code of new accounts.
	DefaultCurrency = "USD"
	// Decimals is the number of fractional digits of an Amount.
	Decimals = 2
)

// Amount is a signed monetary amount in cents.
type Amount int64

// Cents builds an Amount from a whole number of cents.
func Cents(c int64) Amount {
	return Amount(c)
}

// Units builds an Amount from whole currency units (dollars).
func Units(u int64) Amount {
	return Amount(u * 100)
}

// Parse reads a decimal string such as "12.34", "-100" or "1000.0".
// More than two fractional digits is an error rather than a rounding.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests; it panics on bad input.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal converts a decimal value to cents without rounding.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	scaled := d.Shift(Decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, Decimals)
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) ||
		scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, ErrOverflow
	}
	return Amount(scaled.IntPart()), nil
}

// Decimal returns the amount in currency units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Decimals)
}

// Add returns a+b, or ErrOverflow when the result does not fit in int64.
func (a Amount) Add(b Amount) (Amount, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub returns a-b, or ErrOverflow when the result does not fit in int64.
func (a Amount) Sub(b Amount) (Amount, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}

// IsNegative returns true if the amount is less than zero.
func (a Amount) IsNegative() bool {
	return a < 0
}

// String renders the amount with exactly two decimals, e.g. "-45.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(Decimals)
}

// Format renders the amount followed by a currency code.
func (a Amount) Format(currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return a.String() + " " + currency
}
