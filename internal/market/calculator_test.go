package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculator_Quote(t *testing.T) {
	calc := NewCalculator(1.35, 1_000_000)

	tests := []struct {
		name        string
		rubles      float64
		luna        float64
		wantListing int64
		wantRate    int64
	}{
		{
			name:        "spec example luna 100",
			rubles:      500,
			luna:        100,
			wantListing: 135,
			wantRate:    200_000,
		},
		{
			name:        "zero rubles yields zero rate",
			rubles:      0,
			luna:        100,
			wantListing: 135,
			wantRate:    0,
		},
		{
			name:        "zero luna",
			rubles:      500,
			luna:        0,
			wantListing: 0,
			wantRate:    0,
		},
		{
			name:        "listing price rounds up",
			rubles:      1,
			luna:        10.5, // 10.5 * 1.35 = 14.175
			wantListing: 15,
			wantRate:    10_500_000,
		},
		{
			name:        "rate truncates toward zero",
			rubles:      3,
			luna:        1, // 1/3 * 1e6 = 333333.33..
			wantListing: 2, // ceil(1.35)
			wantRate:    333_333,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.Quote(tt.rubles, tt.luna)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantListing, quote.ListingPrice)
			assert.Equal(t, tt.wantRate, quote.ExchangeRate)
		})
	}
}

func TestCalculator_QuoteNegative(t *testing.T) {
	calc := NewCalculator(1.35, 1_000_000)

	_, err := calc.Quote(-1, 100)
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = calc.Quote(100, -1)
	assert.ErrorIs(t, err, ErrNegativeInput)
}

func TestCalculator_QuoteStrings(t *testing.T) {
	calc := NewCalculator(1.35, 1_000_000)

	quote, err := calc.QuoteStrings(" 500 ", "100")
	assert.NoError(t, err)
	assert.Equal(t, int64(135), quote.ListingPrice)
	assert.Equal(t, int64(200_000), quote.ExchangeRate)

	// Non-numeric input produces no partial result.
	_, err = calc.QuoteStrings("abc", "100")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = calc.QuoteStrings("500", "")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestNewCalculator_Defaults(t *testing.T) {
	calc := NewCalculator(0, 0)

	quote, err := calc.Quote(500, 100)
	assert.NoError(t, err)
	assert.Equal(t, int64(135), quote.ListingPrice)
	assert.Equal(t, int64(200_000), quote.ExchangeRate)
}
