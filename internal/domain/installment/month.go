package installment

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")

// Month is a calendar month without a day. Installments are bucketed by the
// month they fall due in (their competence month).
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth accepts "2024-11" and the stored form "2024-11-01".
func ParseMonth(s string) (Month, error) {
	layout := "2006-01"
	if len(s) == len("2006-01-02") {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

// Add moves n months forward (or back when n < 0), rolling the year over.
func (m Month) Add(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	year := idx / 12
	mon := idx % 12
	if mon < 0 {
		mon += 12
		year--
	}
	return Month{Year: year, Month: time.Month(mon + 1)}
}

// FirstDay is the persisted competence date.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
