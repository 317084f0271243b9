package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Account kinds as used by ledger CRUD operations.
const (
	KindInventory = "inventory"
	KindCard      = "card"
)

// Ledger is the whole persisted document: every read loads it fully and
// every write rewrites it fully.
type Ledger struct {
	Accounts     map[string]*Account                 `json:"accounts"`
	Cards        map[string][]CardRecord             `json:"cards"`
	ActiveTrades map[string]map[string][]PendingItem `json:"active_trades"`
}

// Account is an inventory account: item name to quantity, quantities >= 0.
type Account struct {
	Items map[string]int `json:"items"`
}

// CardRecord is one entry in a card account. Card names are not unique
// within an account; records are addressed by position.
type CardRecord struct {
	Name string `json:"name"`
	Tier Tier   `json:"tier"`
	Qty  int    `json:"qty"`
}

// PendingItem is an item debited from inventory and set aside for a
// recipient, awaiting completion or cancellation.
type PendingItem struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Tier is a card tier. Legacy ledger files stored tiers as either a JSON
// number or a string ("4"), so decoding accepts both; encoding always
// produces a number.
type Tier int

// UnmarshalJSON accepts both numeric and string tier values.
func (t *Tier) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid tier value %s", string(data))
	}
	*t = Tier(n)
	return nil
}

// MarshalJSON always encodes the tier as a number.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(t))
}

// NewLedger returns an empty ledger with all containers allocated.
func NewLedger() *Ledger {
	return &Ledger{
		Accounts:     make(map[string]*Account),
		Cards:        make(map[string][]CardRecord),
		ActiveTrades: make(map[string]map[string][]PendingItem),
	}
}

// Normalize replaces nil containers with empty ones. Applied after decoding
// so a partially written or hand-edited file never leaves nil maps behind.
func (l *Ledger) Normalize() {
	if l.Accounts == nil {
		l.Accounts = make(map[string]*Account)
	}
	for name, acct := range l.Accounts {
		if acct == nil {
			l.Accounts[name] = &Account{Items: make(map[string]int)}
			continue
		}
		if acct.Items == nil {
			acct.Items = make(map[string]int)
		}
	}
	if l.Cards == nil {
		l.Cards = make(map[string][]CardRecord)
	}
	if l.ActiveTrades == nil {
		l.ActiveTrades = make(map[string]map[string][]PendingItem)
	}
}
