// Package installment splits credit card purchases into monthly installments.
//
// All splitting happens in integer cents: every installment gets
// floor(total/count) and the whole remainder lands on the first one, so the
// installments always add back up to the declared total.
package installment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"carteira/internal/shared/money"
)

// MaxCount is the longest plan accepted, ten years of monthly installments.
const MaxCount = 120

// Domain errors
var (
	ErrInvalidCount             = errors.New("installment count must be between 1 and 120")
	ErrInvalidAmount            = errors.New("installment amount must be a non-negative value in cents")
	ErrIndexOutOfRange          = errors.New("installment index out of range")
	ErrInconsistentInstallments = errors.New("installments do not match the declared total")
)

// Entry is one planned installment.
type Entry struct {
	Month  Month
	Amount decimal.Decimal
	// Overridden marks an amount typed in by the user. Regenerate keeps it.
	Overridden bool
}

// Generate splits total into count monthly installments starting at first.
func Generate(total decimal.Decimal, count int, first Month) ([]Entry, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	if err := checkAmount(total); err != nil {
		return nil, err
	}

	amounts := split(money.Cents(total), count)
	entries := make([]Entry, count)
	for i, cents := range amounts {
		entries[i] = Entry{Month: first.Add(i), Amount: money.FromCents(cents)}
	}
	return entries, nil
}

// FromAmounts builds a plan from explicit per-installment values, all of them
// flagged as overridden.
func FromAmounts(amounts []decimal.Decimal, first Month) ([]Entry, error) {
	if err := checkCount(len(amounts)); err != nil {
		return nil, err
	}
	entries := make([]Entry, len(amounts))
	for i, a := range amounts {
		if err := checkAmount(a); err != nil {
			return nil, fmt.Errorf("installment %d: %w", i+1, err)
		}
		entries[i] = Entry{Month: first.Add(i), Amount: a, Overridden: true}
	}
	return entries, nil
}

// Validate checks that entries add up to declaredTotal exactly and that there
// are declaredCount of them.
func Validate(entries []Entry, declaredTotal decimal.Decimal, declaredCount int) error {
	if len(entries) != declaredCount {
		return fmt.Errorf("%w: got %d installments, expected %d", ErrInconsistentInstallments, len(entries), declaredCount)
	}
	sum := Sum(entries)
	if !sum.Equal(declaredTotal) {
		return fmt.Errorf("%w: installments sum to %s, total is %s",
			ErrInconsistentInstallments, money.Format(sum), money.Format(declaredTotal))
	}
	return nil
}

// Sum adds the entry amounts.
func Sum(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// split distributes cents over n parts, remainder on the first part.
func split(cents int64, n int) []int64 {
	base := cents / int64(n)
	remainder := cents - base*int64(n)

	parts := make([]int64, n)
	for i := range parts {
		parts[i] = base
	}
	parts[0] += remainder
	return parts
}

func checkCount(n int) error {
	if n < 1 || n > MaxCount {
		return fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	return nil
}

func checkAmount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(money.MaxAmount) || !money.HasCentPrecision(d) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, d.String())
	}
	return nil
}
