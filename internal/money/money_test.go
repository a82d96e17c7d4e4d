package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		value string
		err   error
	}{
		{name: "whole", value: "100", err: nil},
		{name: "cents", value: "0.01", err: nil},
		{name: "zero", value: "0", err: nil},
		{name: "negative", value: "-1.00", err: ErrNegative},
		{name: "sub cent", value: "10.005", err: ErrPrecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(decimal.RequireFromString(tt.value))
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("130.50")
	require.NoError(t, err)
	require.True(t, d.Equal(FromCents(13050)))

	_, err = Parse("abc")
	require.Error(t, err)

	_, err = Parse("1.999")
	require.ErrorIs(t, err, ErrPrecision)
}

func TestPercentRoundsPerCall(t *testing.T) {
	// 3 x 33.33 at 18% = 17.9982 -> 18.00
	base := decimal.RequireFromString("99.99")
	require.True(t, Percent(base, decimal.NewFromInt(18)).Equal(decimal.NewFromInt(18)))

	// 0.05 at 5% = 0.0025 -> 0.00
	require.True(t, Percent(FromCents(5), decimal.NewFromInt(5)).IsZero())
}

func TestSumMinCents(t *testing.T) {
	require.True(t, Sum().IsZero())
	require.True(t, Sum(FromCents(10), FromCents(20), FromCents(1)).Equal(FromCents(31)))
	require.True(t, Min(FromCents(5), FromCents(3)).Equal(FromCents(3)))
	require.Equal(t, int64(1234), Cents(decimal.RequireFromString("12.335")))
	require.True(t, NonNegative(FromCents(-1)).IsZero())
}
