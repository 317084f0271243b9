// Package crafting implements the tier-to-tier resource deficit calculator.
package crafting

import (
	"errors"
	"fmt"
	"strings"
)

// Tier bounds for craftable targets.
const (
	MinTier = 3
	MaxTier = 6
)

// Base-unit values for the fixed tiers. The top tier is configurable
// because the source versions used both 100 and 120; 120 is canonical.
const (
	tier3Value = 1
	tier4Value = 4
	tier5Value = 20

	DefaultTopTierValue = 120
)

// Calculator errors.
var (
	// ErrInvalidTier indicates a target tier outside {3,4,5,6}.
	ErrInvalidTier = errors.New("invalid tier")

	// ErrNegativeInput indicates a negative quantity or owned count.
	ErrNegativeInput = errors.New("input must not be negative")
)

// Owned holds the player's current counts per tier. Blank UI fields map to 0.
type Owned struct {
	T3 int `json:"t3"`
	T4 int `json:"t4"`
	T5 int `json:"t5"`
	T6 int `json:"t6"`
}

// TierCount is one line of a greedy deficit breakdown.
type TierCount struct {
	Tier  int `json:"tier"`
	Count int `json:"count"`
}

// Result describes how far the owned resources fall short of the target.
type Result struct {
	TotalNeeded int  `json:"total_needed"`
	OwnedUnits  int  `json:"owned_units"`
	Missing     int  `json:"missing"`
	Sufficient  bool `json:"sufficient"`

	// Breakdown expresses Missing greedily in tier units, highest tier
	// first, zero counts included. Empty when sufficient.
	Breakdown []TierCount `json:"breakdown,omitempty"`
}

// Calculator converts crafting targets into base-tier resource deficits.
type Calculator struct {
	topTierValue int
}

// NewCalculator creates a calculator with the given T6 base-unit value.
// Non-positive values fall back to the default.
func NewCalculator(topTierValue int) *Calculator {
	if topTierValue <= 0 {
		topTierValue = DefaultTopTierValue
	}
	return &Calculator{topTierValue: topTierValue}
}

// TierValue returns the base-unit value of a tier, or ErrInvalidTier.
func (c *Calculator) TierValue(tier int) (int, error) {
	switch tier {
	case 3:
		return tier3Value, nil
	case 4:
		return tier4Value, nil
	case 5:
		return tier5Value, nil
	case 6:
		return c.topTierValue, nil
	default:
		return 0, ErrInvalidTier
	}
}

// Deficit computes the resource shortfall for crafting quantity items of the
// target tier against the owned counts.
func (c *Calculator) Deficit(quantity, tier int, owned Owned) (Result, error) {
	if quantity < 0 || owned.T3 < 0 || owned.T4 < 0 || owned.T5 < 0 || owned.T6 < 0 {
		return Result{}, ErrNegativeInput
	}

	value, err := c.TierValue(tier)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		TotalNeeded: quantity * value,
		OwnedUnits: owned.T3*tier3Value +
			owned.T4*tier4Value +
			owned.T5*tier5Value +
			owned.T6*c.topTierValue,
	}

	missing := res.TotalNeeded - res.OwnedUnits
	if missing <= 0 {
		res.Sufficient = true
		return res, nil
	}

	res.Missing = missing
	res.Breakdown = c.breakdown(missing)
	return res, nil
}

// breakdown expresses a base-unit deficit as tier counts, greedily from the
// highest tier down. Exact because T3 is worth a single base unit.
func (c *Calculator) breakdown(missing int) []TierCount {
	counts := make([]TierCount, 0, 4)
	remaining := missing
	for tier := MaxTier; tier >= MinTier; tier-- {
		value, _ := c.TierValue(tier)
		counts = append(counts, TierCount{Tier: tier, Count: remaining / value})
		remaining %= value
	}
	return counts
}

// FormatBreakdown renders a breakdown the way the UI shows it,
// e.g. "0 x T6 + 2 x T5 + 1 x T4 + 3 x T3".
func FormatBreakdown(counts []TierCount) string {
	parts := make([]string, 0, len(counts))
	for _, tc := range counts {
		parts = append(parts, fmt.Sprintf("%d x T%d", tc.Count, tc.Tier))
	}
	return strings.Join(parts, " + ")
}
