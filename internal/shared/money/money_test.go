package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "100", want: "100.00"},
		{in: " 33.4 ", want: "33.40"},
		{in: "0.01", want: "0.01"},
		{in: "1.500", want: "1.50"},
		{in: "1.505", wantErr: ErrTooPrecise},
		{in: "abc", wantErr: ErrInvalidAmount},
		{in: "", wantErr: ErrInvalidAmount},
		{in: "999999999999.99", want: "999999999999.99"},
		{in: "-999999999999.99", want: "-999999999999.99"},
		{in: "1000000000000", wantErr: ErrInvalidAmount},
		{in: "-1000000000000.00", wantErr: ErrInvalidAmount},
		{in: "1e20", wantErr: ErrInvalidAmount},
		{in: "1E2", wantErr: ErrInvalidAmount},
		{in: "99999999999999999999999", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(got))
		})
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "0.01", "33.34", "1000.00", "123456789.99"} {
		d := MustParse(s)
		assert.True(t, FromCents(Cents(d)).Equal(d), s)
	}
	assert.Equal(t, int64(10000), Cents(MustParse("100")))
	assert.Equal(t, int64(99999999999999), Cents(MaxAmount))
}

func TestSumIsExact(t *testing.T) {
	// 0.1 + 0.2 drifts in binary floating point.
	got := Sum(MustParse("0.10"), MustParse("0.20"))
	assert.True(t, got.Equal(MustParse("0.30")))
	assert.True(t, Sum().Equal(decimal.Zero))
}

func TestFormatBRL(t *testing.T) {
	tests := map[string]string{
		"0":          "R$ 0,00",
		"5.5":        "R$ 5,50",
		"999.99":     "R$ 999,99",
		"1000":       "R$ 1.000,00",
		"1234567.89": "R$ 1.234.567,89",
		"-50":        "-R$ 50,00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatBRL(MustParse(in)), in)
	}
}
