// Package money holds the currency helpers shared by the engine. Amounts are
// shopspring decimals constrained to two fractional digits; arithmetic that
// splits values (installments) is done in integer cents.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrTooPrecise    = errors.New("amount has more than 2 decimal places")
)

// MaxAmount is the largest magnitude accepted. It fits NUMERIC(14,2) and
// keeps Cents well inside int64.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// Parse reads a plain decimal string such as "1234.5" or "1234.56".
// Exponent notation, values with more than two significant fractional digits
// and values beyond MaxAmount are rejected.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %q exceeds %s", ErrInvalidAmount, s, MaxAmount.StringFixed(2))
	}
	if !HasCentPrecision(d) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrTooPrecise, s)
	}
	return d, nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// HasCentPrecision reports whether d is representable in whole cents.
func HasCentPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Cents converts d to integer minor units. d must have cent precision and be
// within MaxAmount.
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromCents builds an amount from integer minor units.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Sum adds amounts exactly.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Format renders d with exactly two fractional digits ("33.30").
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatBRL renders d the way the pt-BR locale shows reais: "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	return sign + "R$ " + b.String() + "," + frac
}
