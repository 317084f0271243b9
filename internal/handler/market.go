package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"trade-toolkit-api/internal/market"
	"trade-toolkit-api/pkg/apierror"
	"trade-toolkit-api/pkg/response"
)

// MarketHandler handles black-market pricing requests.
type MarketHandler struct {
	calc *market.Calculator
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(calc *market.Calculator) *MarketHandler {
	return &MarketHandler{calc: calc}
}

// QuoteRequest carries the raw text fields as the UI collects them.
type QuoteRequest struct {
	Rubles string `json:"rubles"`
	Luna   string `json:"luna"`
}

// Quote handles POST /api/v1/market/quote
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	quote, err := h.calc.QuoteStrings(req.Rubles, req.Luna)
	switch {
	case errors.Is(err, market.ErrNotNumeric):
		response.Error(w, apierror.BadRequest("rubles and luna must be numeric"))
		return
	case errors.Is(err, market.ErrNegativeInput):
		response.Error(w, apierror.BadRequest("rubles and luna must not be negative"))
		return
	case err != nil:
		response.Error(w, err)
		return
	}

	response.OK(w, quote)
}
