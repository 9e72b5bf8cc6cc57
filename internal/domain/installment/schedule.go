package installment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"carteira/internal/shared/money"
)

// Schedule is an installment plan being edited. Amounts flow one way: editing
// an installment changes the total, changing the total or the count
// regenerates the installments that were not edited by hand.
type Schedule struct {
	first   Month
	entries []Entry
}

// NewSchedule starts a plan from a freshly generated split.
func NewSchedule(total decimal.Decimal, count int, first Month) (*Schedule, error) {
	entries, err := Generate(total, count, first)
	if err != nil {
		return nil, err
	}
	return &Schedule{first: first, entries: entries}, nil
}

// ScheduleFrom wraps existing entries, e.g. installments loaded for an edit.
func ScheduleFrom(entries []Entry) *Schedule {
	s := &Schedule{entries: append([]Entry(nil), entries...)}
	if len(entries) > 0 {
		s.first = entries[0].Month
	}
	return s
}

// Regenerate rebuilds the plan for a new total, count or first month.
//
// Overridden entries keep their amount when their index still exists; every
// entry gets its month recomputed. The remaining amount is split over the
// other entries with the remainder on the first of them. When every entry is
// overridden nothing absorbs the difference and Validate reports it.
func (s *Schedule) Regenerate(total decimal.Decimal, count int, first Month) error {
	if err := checkCount(count); err != nil {
		return err
	}
	if err := checkAmount(total); err != nil {
		return err
	}

	next := make([]Entry, count)
	pinned := decimal.Zero
	free := 0
	for i := range next {
		next[i].Month = first.Add(i)
		if i < len(s.entries) && s.entries[i].Overridden {
			next[i].Amount = s.entries[i].Amount
			next[i].Overridden = true
			pinned = pinned.Add(s.entries[i].Amount)
			continue
		}
		free++
	}

	if free > 0 {
		remaining := total.Sub(pinned)
		if remaining.IsNegative() {
			return fmt.Errorf("%w: edited installments sum to %s, above the total %s",
				ErrInconsistentInstallments, money.Format(pinned), money.Format(total))
		}
		parts := split(money.Cents(remaining), free)
		p := 0
		for i := range next {
			if next[i].Overridden {
				continue
			}
			next[i].Amount = money.FromCents(parts[p])
			p++
		}
	}

	s.first = first
	s.entries = next
	return nil
}

// SetAmount overrides installment i (0-based) and returns the new total.
func (s *Schedule) SetAmount(i int, amount decimal.Decimal) (decimal.Decimal, error) {
	if i < 0 || i >= len(s.entries) {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	if err := checkAmount(amount); err != nil {
		return decimal.Zero, err
	}
	s.entries[i].Amount = amount
	s.entries[i].Overridden = true
	return s.Total(), nil
}

// ClearOverrides forgets manual edits and splits total evenly again.
func (s *Schedule) ClearOverrides(total decimal.Decimal) error {
	for i := range s.entries {
		s.entries[i].Overridden = false
	}
	return s.Regenerate(total, len(s.entries), s.first)
}

func (s *Schedule) Total() decimal.Decimal {
	return Sum(s.entries)
}

func (s *Schedule) Len() int {
	return len(s.entries)
}

func (s *Schedule) First() Month {
	return s.first
}

// Entries returns a copy of the plan.
func (s *Schedule) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}
