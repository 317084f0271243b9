package crafting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculator_Deficit(t *testing.T) {
	calc := NewCalculator(120)

	tests := []struct {
		name           string
		quantity       int
		tier           int
		owned          Owned
		wantNeeded     int
		wantOwned      int
		wantMissing    int
		wantSufficient bool
		wantBreakdown  []TierCount
	}{
		{
			name:        "five top tier from nothing",
			quantity:    5,
			tier:        6,
			wantNeeded:  600,
			wantOwned:   0,
			wantMissing: 600,
			wantBreakdown: []TierCount{
				{Tier: 6, Count: 5},
				{Tier: 5, Count: 0},
				{Tier: 4, Count: 0},
				{Tier: 3, Count: 0},
			},
		},
		{
			name:        "partial inventory",
			quantity:    1,
			tier:        4,
			owned:       Owned{T3: 2},
			wantNeeded:  4,
			wantOwned:   2,
			wantMissing: 2,
			wantBreakdown: []TierCount{
				{Tier: 6, Count: 0},
				{Tier: 5, Count: 0},
				{Tier: 4, Count: 0},
				{Tier: 3, Count: 2},
			},
		},
		{
			name:        "mixed breakdown",
			quantity:    3,
			tier:        5, // needs 60
			owned:       Owned{T3: 1, T4: 2}, // owns 9
			wantNeeded:  60,
			wantOwned:   9,
			wantMissing: 51,
			wantBreakdown: []TierCount{
				{Tier: 6, Count: 0},
				{Tier: 5, Count: 2},
				{Tier: 4, Count: 2},
				{Tier: 3, Count: 3},
			},
		},
		{
			name:           "exactly sufficient",
			quantity:       1,
			tier:           5,
			owned:          Owned{T5: 1},
			wantNeeded:     20,
			wantOwned:      20,
			wantSufficient: true,
		},
		{
			name:           "surplus",
			quantity:       1,
			tier:           5,
			owned:          Owned{T6: 1},
			wantNeeded:     20,
			wantOwned:      120,
			wantSufficient: true,
		},
		{
			name:           "zero quantity is always sufficient",
			quantity:       0,
			tier:           6,
			wantSufficient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Deficit(tt.quantity, tt.tier, tt.owned)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantNeeded, res.TotalNeeded)
			assert.Equal(t, tt.wantOwned, res.OwnedUnits)
			assert.Equal(t, tt.wantMissing, res.Missing)
			assert.Equal(t, tt.wantSufficient, res.Sufficient)
			assert.Equal(t, tt.wantBreakdown, res.Breakdown)
		})
	}
}

func TestCalculator_DeficitInvalidTier(t *testing.T) {
	calc := NewCalculator(120)

	for _, tier := range []int{0, 1, 2, 7, -3} {
		_, err := calc.Deficit(1, tier, Owned{})
		assert.ErrorIs(t, err, ErrInvalidTier, "tier %d", tier)
	}
}

func TestCalculator_DeficitNegativeInput(t *testing.T) {
	calc := NewCalculator(120)

	_, err := calc.Deficit(-1, 6, Owned{})
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = calc.Deficit(1, 6, Owned{T4: -2})
	assert.ErrorIs(t, err, ErrNegativeInput)
}

func TestCalculator_ConfigurableTopTier(t *testing.T) {
	// The early versions valued T6 at 100 instead of 120.
	calc := NewCalculator(100)

	res, err := calc.Deficit(1, 6, Owned{})
	assert.NoError(t, err)
	assert.Equal(t, 100, res.TotalNeeded)
	assert.Equal(t, []TierCount{
		{Tier: 6, Count: 1},
		{Tier: 5, Count: 0},
		{Tier: 4, Count: 0},
		{Tier: 3, Count: 0},
	}, res.Breakdown)
}

func TestFormatBreakdown(t *testing.T) {
	calc := NewCalculator(120)

	res, err := calc.Deficit(1, 4, Owned{T3: 2})
	assert.NoError(t, err)
	assert.Equal(t, "0 x T6 + 0 x T5 + 0 x T4 + 2 x T3", FormatBreakdown(res.Breakdown))
}
