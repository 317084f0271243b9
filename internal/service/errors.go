package service

import "errors"

// Ledger operation errors. The original tool swallowed every one of these
// into a silent no-op; they are explicit here so the caller decides how to
// present them.
var (
	ErrInvalidKind          = errors.New("invalid account kind")
	ErrAccountNotFound      = errors.New("account not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrTradeNotFound        = errors.New("no pending trade for recipient")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrNegativeQuantity     = errors.New("quantity must not be negative")
	ErrInvalidTier          = errors.New("card tier out of range")
	ErrInsufficientQuantity = errors.New("item quantity is zero")
)
