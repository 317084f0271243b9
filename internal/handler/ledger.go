package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"trade-toolkit-api/internal/service"
	"trade-toolkit-api/pkg/apierror"
	"trade-toolkit-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// LedgerHandler handles ledger CRUD and trade HTTP requests.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// GetLedger handles GET /api/v1/ledger
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.OK(w, ledger)
}

// CreateAccountRequest is the body for account creation.
type CreateAccountRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// CreateAccount handles POST /api/v1/ledger/accounts
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Name == "" {
		response.Error(w, apierror.BadRequest("name is required"))
		return
	}

	if err := h.ledger.CreateAccount(r.Context(), req.Kind, req.Name); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.Created(w, map[string]string{"kind": req.Kind, "name": req.Name})
}

// DeleteAccount handles DELETE /api/v1/ledger/accounts/{kind}/{name}
func (h *LedgerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	name := chi.URLParam(r, "name")

	if err := h.ledger.DeleteAccount(r.Context(), kind, name); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.NoContent(w)
}

// GetAccount handles GET /api/v1/ledger/accounts/{name}
func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	acct, err := h.ledger.GetAccount(r.Context(), name)
	if err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.OK(w, acct)
}

// QuantityRequest is the body for item quantity updates.
type QuantityRequest struct {
	Qty int `json:"qty"`
}

// SetItem handles PUT /api/v1/ledger/accounts/{name}/items/{item}
func (h *LedgerHandler) SetItem(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	name := chi.URLParam(r, "name")
	item := chi.URLParam(r, "item")

	if err := h.ledger.SetItemQuantity(r.Context(), name, item, req.Qty); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.OK(w, map[string]interface{}{"item": item, "qty": req.Qty})
}

// AddItem handles POST /api/v1/ledger/accounts/{name}/items/{item}/add
func (h *LedgerHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	name := chi.URLParam(r, "name")
	item := chi.URLParam(r, "item")

	if err := h.ledger.AddItemQuantity(r.Context(), name, item, req.Qty); err != nil {
		response.Error(w, ledgerError(err))
		return
	}

	acct, err := h.ledger.GetAccount(r.Context(), name)
	if err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.OK(w, map[string]interface{}{"item": item, "qty": acct.Items[item]})
}

// RemoveItem handles DELETE /api/v1/ledger/accounts/{name}/items/{item}
func (h *LedgerHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	item := chi.URLParam(r, "item")

	if err := h.ledger.RemoveItem(r.Context(), name, item); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.NoContent(w)
}

// GetCards handles GET /api/v1/ledger/cards/{name}
func (h *LedgerHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	cards, err := h.ledger.GetCards(r.Context(), name)
	if err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.OK(w, cards)
}

// AddCardRequest is the body for appending a card record.
type AddCardRequest struct {
	Name string `json:"name"`
	Tier int    `json:"tier"`
	Qty  int    `json:"qty"`
}

// AddCard handles POST /api/v1/ledger/cards/{name}
func (h *LedgerHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Name == "" {
		response.Error(w, apierror.BadRequest("card name is required"))
		return
	}

	account := chi.URLParam(r, "name")
	if err := h.ledger.AddCard(r.Context(), account, req.Name, req.Tier, req.Qty); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.Created(w, req)
}

// RemoveCard handles DELETE /api/v1/ledger/cards/{name}/{index}
func (h *LedgerHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "name")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.Error(w, apierror.BadRequest("index must be an integer"))
		return
	}

	if err := h.ledger.RemoveCard(r.Context(), account, index); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.NoContent(w)
}

// GetTrades handles GET /api/v1/ledger/trades/{account}
func (h *LedgerHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")

	trades, err := h.ledger.GetTrades(r.Context(), account)
	if err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.OK(w, trades)
}

// StartTrade handles POST /api/v1/ledger/trades/{account}/{recipient}
func (h *LedgerHandler) StartTrade(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	recipient := chi.URLParam(r, "recipient")

	if err := h.ledger.StartTrade(r.Context(), account, recipient); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.Created(w, map[string]string{"account": account, "recipient": recipient})
}

// OfferItemRequest is the body for offering an item to a recipient.
type OfferItemRequest struct {
	Item string `json:"item"`
}

// OfferItem handles POST /api/v1/ledger/trades/{account}/{recipient}/offer
func (h *LedgerHandler) OfferItem(w http.ResponseWriter, r *http.Request) {
	var req OfferItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Item == "" {
		response.Error(w, apierror.BadRequest("item is required"))
		return
	}

	account := chi.URLParam(r, "account")
	recipient := chi.URLParam(r, "recipient")

	if err := h.ledger.OfferItem(r.Context(), account, recipient, req.Item); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.OK(w, map[string]string{"account": account, "recipient": recipient, "item": req.Item})
}

// CancelOffer handles DELETE /api/v1/ledger/trades/{account}/{recipient}/offers/{index}
func (h *LedgerHandler) CancelOffer(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	recipient := chi.URLParam(r, "recipient")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.Error(w, apierror.BadRequest("index must be an integer"))
		return
	}

	if err := h.ledger.CancelOffer(r.Context(), account, recipient, index); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.NoContent(w)
}

// CompleteTrade handles POST /api/v1/ledger/trades/{account}/{recipient}/complete
func (h *LedgerHandler) CompleteTrade(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	recipient := chi.URLParam(r, "recipient")

	if err := h.ledger.CompleteTrade(r.Context(), account, recipient); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.NoContent(w)
}

// ledgerError maps service errors onto API errors.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrTradeNotFound),
		errors.Is(err, service.ErrIndexOutOfRange):
		return apierror.NotFound(err.Error())
	case errors.Is(err, service.ErrInvalidKind),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrNegativeQuantity):
		return apierror.BadRequest(err.Error())
	case errors.Is(err, service.ErrInsufficientQuantity):
		return apierror.Unprocessable(err.Error())
	default:
		return apierror.InternalError("ledger operation failed")
	}
}
