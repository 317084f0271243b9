// Package market implements the black-market pricing calculator.
//
// Canonical formulas (the source versions drifted between a flat markup and
// a net/gross tax inversion; the flat markup is pinned here):
//
//	listing_price = ceil(luna * markup)          markup defaults to 1.35
//	exchange_rate = floor(luna/rubles * scale)   scale defaults to 1,000,000
//	exchange_rate = 0                            when rubles <= 0
package market

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Calculator errors.
var (
	// ErrNotNumeric indicates free-text input that does not parse as a number.
	ErrNotNumeric = errors.New("input is not numeric")

	// ErrNegativeInput indicates a negative currency amount.
	ErrNegativeInput = errors.New("input must not be negative")
)

// Quote is the result of a pricing calculation.
type Quote struct {
	ListingPrice int64 `json:"listing_price"`
	ExchangeRate int64 `json:"exchange_rate"`
}

// Calculator computes listing prices and exchange rates.
type Calculator struct {
	markup    float64
	rateScale int64
}

// NewCalculator creates a calculator with the given markup multiplier and
// rate display scale. Non-positive arguments fall back to the defaults.
func NewCalculator(markup float64, rateScale int64) *Calculator {
	if markup <= 0 {
		markup = 1.35
	}
	if rateScale <= 0 {
		rateScale = 1_000_000
	}
	return &Calculator{markup: markup, rateScale: rateScale}
}

// Quote computes the listing price and exchange rate for a deal: rubles
// spent to receive luna.
func (c *Calculator) Quote(rubles, luna float64) (Quote, error) {
	if rubles < 0 || luna < 0 {
		return Quote{}, ErrNegativeInput
	}

	q := Quote{
		ListingPrice: int64(math.Ceil(luna * c.markup)),
	}
	if rubles > 0 {
		q.ExchangeRate = int64(math.Floor(luna / rubles * float64(c.rateScale)))
	}
	return q, nil
}

// QuoteStrings computes a quote from free-text input as entered in the UI.
// Parse failure yields ErrNotNumeric and no partial result.
func (c *Calculator) QuoteStrings(rubles, luna string) (Quote, error) {
	r, err := parseAmount(rubles)
	if err != nil {
		return Quote{}, err
	}
	l, err := parseAmount(luna)
	if err != nil {
		return Quote{}, err
	}
	return c.Quote(r, l)
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, ErrNotNumeric
	}
	return v, nil
}
