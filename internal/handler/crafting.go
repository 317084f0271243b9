package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"trade-toolkit-api/internal/crafting"
	"trade-toolkit-api/pkg/apierror"
	"trade-toolkit-api/pkg/response"
)

// CraftingHandler handles tier crafting deficit requests.
type CraftingHandler struct {
	calc *crafting.Calculator
}

// NewCraftingHandler creates a new crafting handler.
func NewCraftingHandler(calc *crafting.Calculator) *CraftingHandler {
	return &CraftingHandler{calc: calc}
}

// DeficitRequest carries the raw text fields as the UI collects them.
// Blank owned counts default to zero.
type DeficitRequest struct {
	Quantity string `json:"quantity"`
	Tier     string `json:"tier"`
	Owned    struct {
		T3 string `json:"t3"`
		T4 string `json:"t4"`
		T5 string `json:"t5"`
		T6 string `json:"t6"`
	} `json:"owned"`
}

// DeficitResponse is the calculator result plus the display string the UI
// renders, e.g. "0 x T6 + 2 x T5 + 1 x T4 + 3 x T3".
type DeficitResponse struct {
	crafting.Result
	BreakdownText string `json:"breakdown_text,omitempty"`
}

// Deficit handles POST /api/v1/crafting/deficit
func (h *CraftingHandler) Deficit(w http.ResponseWriter, r *http.Request) {
	var req DeficitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	quantity, err := parseCount(req.Quantity)
	if err != nil {
		response.Error(w, apierror.BadRequest("quantity must be an integer"))
		return
	}
	tier, err := parseCount(req.Tier)
	if err != nil {
		response.Error(w, apierror.BadRequest("tier must be an integer"))
		return
	}

	var owned crafting.Owned
	for _, f := range []struct {
		name string
		raw  string
		dst  *int
	}{
		{"t3", req.Owned.T3, &owned.T3},
		{"t4", req.Owned.T4, &owned.T4},
		{"t5", req.Owned.T5, &owned.T5},
		{"t6", req.Owned.T6, &owned.T6},
	} {
		n, err := parseCount(f.raw)
		if err != nil {
			response.Error(w, apierror.BadRequest(f.name+" count must be an integer"))
			return
		}
		*f.dst = n
	}

	result, err := h.calc.Deficit(quantity, tier, owned)
	switch {
	case errors.Is(err, crafting.ErrInvalidTier):
		response.Error(w, apierror.BadRequest("invalid tier"))
		return
	case errors.Is(err, crafting.ErrNegativeInput):
		response.Error(w, apierror.BadRequest("counts must not be negative"))
		return
	case err != nil:
		response.Error(w, err)
		return
	}

	resp := DeficitResponse{Result: result}
	if !result.Sufficient {
		resp.BreakdownText = crafting.FormatBreakdown(result.Breakdown)
	}
	response.OK(w, resp)
}

// parseCount parses a free-text integer field; blank means zero.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
