package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"trade-toolkit-api/internal/cache"
	"trade-toolkit-api/internal/middleware"
	"trade-toolkit-api/internal/model"
	"trade-toolkit-api/internal/repository"
)

const (
	// ledgerCacheKey is the cache key for the serialized document.
	ledgerCacheKey = "ledger:document"

	// pendingDateFormat is the date recorded on a pending trade item.
	pendingDateFormat = "2006-01-02"

	// Card tier bounds for AddCard validation.
	minCardTier = 1
	maxCardTier = 6
)

// LedgerService owns every mutation of the persisted ledger. Each operation
// is an atomic load -> mutate -> save of the whole document under a single
// mutex; reads are served through the cache.
type LedgerService struct {
	repo     repository.LedgerRepository
	cache    cache.Cache
	audit    repository.AuditRepository
	cacheTTL time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// NewLedgerService creates a ledger service. cache and audit may be nil;
// the service then reads straight from the repository and skips auditing.
// Returns nil if repo is nil (required dependency).
func NewLedgerService(
	repo repository.LedgerRepository,
	c cache.Cache,
	audit repository.AuditRepository,
	cacheTTL time.Duration,
) *LedgerService {
	if repo == nil {
		return nil
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &LedgerService{
		repo:     repo,
		cache:    c,
		audit:    audit,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Snapshot returns the current ledger document.
func (s *LedgerService) Snapshot(ctx context.Context) (*model.Ledger, error) {
	if s.cache == nil {
		return s.repo.Load(ctx)
	}

	data, err := s.cache.GetOrSet(ctx, ledgerCacheKey, s.cacheTTL, func() ([]byte, error) {
		ledger, err := s.repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(ledger)
	})
	if err != nil {
		// Cache trouble is not a reason to fail a read.
		return s.repo.Load(ctx)
	}

	var ledger model.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return s.repo.Load(ctx)
	}
	ledger.Normalize()
	return &ledger, nil
}

// GetAccount returns one inventory account.
func (s *LedgerService) GetAccount(ctx context.Context, name string) (*model.Account, error) {
	ledger, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	acct, ok := ledger.Accounts[name]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

// GetCards returns one card account's records.
func (s *LedgerService) GetCards(ctx context.Context, name string) ([]model.CardRecord, error) {
	ledger, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	cards, ok := ledger.Cards[name]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cards, nil
}

// GetTrades returns the pending trades for one inventory account, keyed by
// recipient. An account with no trades yields an empty map.
func (s *LedgerService) GetTrades(ctx context.Context, account string) (map[string][]model.PendingItem, error) {
	ledger, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := ledger.Accounts[account]; !ok {
		return nil, ErrAccountNotFound
	}
	trades := ledger.ActiveTrades[account]
	if trades == nil {
		trades = map[string][]model.PendingItem{}
	}
	return trades, nil
}

// CreateAccount inserts an empty container for the name. Creating a name
// that already exists is a no-op: the existing container is untouched.
func (s *LedgerService) CreateAccount(ctx context.Context, kind, name string) error {
	return s.mutate(ctx, "create_account", name, "kind="+kind, func(l *model.Ledger) error {
		switch kind {
		case model.KindInventory:
			if _, exists := l.Accounts[name]; !exists {
				l.Accounts[name] = &model.Account{Items: make(map[string]int)}
			}
		case model.KindCard:
			if _, exists := l.Cards[name]; !exists {
				l.Cards[name] = []model.CardRecord{}
			}
		default:
			return ErrInvalidKind
		}
		return nil
	})
}

// DeleteAccount removes the account and everything in it. Deleting an
// inventory account also drops its active trades; the earlier versions left
// those orphaned, which was a bug, not a contract.
func (s *LedgerService) DeleteAccount(ctx context.Context, kind, name string) error {
	return s.mutate(ctx, "delete_account", name, "kind="+kind, func(l *model.Ledger) error {
		switch kind {
		case model.KindInventory:
			if _, exists := l.Accounts[name]; !exists {
				return ErrAccountNotFound
			}
			delete(l.Accounts, name)
			delete(l.ActiveTrades, name)
		case model.KindCard:
			if _, exists := l.Cards[name]; !exists {
				return ErrAccountNotFound
			}
			delete(l.Cards, name)
		default:
			return ErrInvalidKind
		}
		return nil
	})
}

// SetItemQuantity replaces an item's quantity.
func (s *LedgerService) SetItemQuantity(ctx context.Context, account, item string, qty int) error {
	detail := fmt.Sprintf("item=%s qty=%d", item, qty)
	return s.mutate(ctx, "set_item_quantity", account, detail, func(l *model.Ledger) error {
		if qty < 0 {
			return ErrNegativeQuantity
		}
		acct, ok := l.Accounts[account]
		if !ok {
			return ErrAccountNotFound
		}
		acct.Items[item] = qty
		return nil
	})
}

// AddItemQuantity adjusts an item's quantity by delta. The item is created
// at the delta when absent; a result below zero is rejected.
func (s *LedgerService) AddItemQuantity(ctx context.Context, account, item string, delta int) error {
	detail := fmt.Sprintf("item=%s delta=%d", item, delta)
	return s.mutate(ctx, "add_item_quantity", account, detail, func(l *model.Ledger) error {
		acct, ok := l.Accounts[account]
		if !ok {
			return ErrAccountNotFound
		}
		next := acct.Items[item] + delta
		if next < 0 {
			return ErrNegativeQuantity
		}
		acct.Items[item] = next
		return nil
	})
}

// RemoveItem deletes an item's key entirely.
func (s *LedgerService) RemoveItem(ctx context.Context, account, item string) error {
	return s.mutate(ctx, "remove_item", account, "item="+item, func(l *model.Ledger) error {
		acct, ok := l.Accounts[account]
		if !ok {
			return ErrAccountNotFound
		}
		if _, ok := acct.Items[item]; !ok {
			return ErrItemNotFound
		}
		delete(acct.Items, item)
		return nil
	})
}

// AddCard appends a card record to a card account. Card names are not
// unique within an account.
func (s *LedgerService) AddCard(ctx context.Context, account, name string, tier, qty int) error {
	detail := fmt.Sprintf("card=%s tier=%d qty=%d", name, tier, qty)
	return s.mutate(ctx, "add_card", account, detail, func(l *model.Ledger) error {
		if tier < minCardTier || tier > maxCardTier {
			return ErrInvalidTier
		}
		if qty < 0 {
			return ErrNegativeQuantity
		}
		cards, ok := l.Cards[account]
		if !ok {
			return ErrAccountNotFound
		}
		l.Cards[account] = append(cards, model.CardRecord{
			Name: name,
			Tier: model.Tier(tier),
			Qty:  qty,
		})
		return nil
	})
}

// RemoveCard removes a card record by positional index.
func (s *LedgerService) RemoveCard(ctx context.Context, account string, index int) error {
	detail := fmt.Sprintf("index=%d", index)
	return s.mutate(ctx, "remove_card", account, detail, func(l *model.Ledger) error {
		cards, ok := l.Cards[account]
		if !ok {
			return ErrAccountNotFound
		}
		if index < 0 || index >= len(cards) {
			return ErrIndexOutOfRange
		}
		l.Cards[account] = append(cards[:index], cards[index+1:]...)
		return nil
	})
}

// StartTrade creates an empty pending-item list for the recipient if one
// does not exist. Idempotent.
func (s *LedgerService) StartTrade(ctx context.Context, account, recipient string) error {
	return s.mutate(ctx, "start_trade", account, "recipient="+recipient, func(l *model.Ledger) error {
		if _, ok := l.Accounts[account]; !ok {
			return ErrAccountNotFound
		}
		if l.ActiveTrades[account] == nil {
			l.ActiveTrades[account] = make(map[string][]model.PendingItem)
		}
		if l.ActiveTrades[account][recipient] == nil {
			l.ActiveTrades[account][recipient] = []model.PendingItem{}
		}
		return nil
	})
}

// OfferItem debits one unit of the item from the account's inventory and
// appends a dated pending record for the recipient. The recipient list is
// created if absent, as StartTrade would. The debit requires a quantity
// above zero; this guard is the only thing keeping the tracked total
// non-negative.
func (s *LedgerService) OfferItem(ctx context.Context, account, recipient, item string) error {
	detail := fmt.Sprintf("recipient=%s item=%s", recipient, item)
	return s.mutate(ctx, "offer_item", account, detail, func(l *model.Ledger) error {
		acct, ok := l.Accounts[account]
		if !ok {
			return ErrAccountNotFound
		}
		if acct.Items[item] <= 0 {
			return ErrInsufficientQuantity
		}
		acct.Items[item]--

		if l.ActiveTrades[account] == nil {
			l.ActiveTrades[account] = make(map[string][]model.PendingItem)
		}
		l.ActiveTrades[account][recipient] = append(l.ActiveTrades[account][recipient], model.PendingItem{
			Name: item,
			Date: s.now().Format(pendingDateFormat),
		})
		return nil
	})
}

// CancelOffer is the exact inverse of OfferItem: the pending record at the
// index is removed and the item quantity is credited back.
func (s *LedgerService) CancelOffer(ctx context.Context, account, recipient string, index int) error {
	detail := fmt.Sprintf("recipient=%s index=%d", recipient, index)
	return s.mutate(ctx, "cancel_offer", account, detail, func(l *model.Ledger) error {
		acct, ok := l.Accounts[account]
		if !ok {
			return ErrAccountNotFound
		}
		pending, ok := l.ActiveTrades[account][recipient]
		if !ok {
			return ErrTradeNotFound
		}
		if index < 0 || index >= len(pending) {
			return ErrIndexOutOfRange
		}

		item := pending[index].Name
		l.ActiveTrades[account][recipient] = append(pending[:index], pending[index+1:]...)
		acct.Items[item]++
		return nil
	})
}

// CompleteTrade discards the recipient's pending list. The debited items
// stay debited: they are considered delivered.
func (s *LedgerService) CompleteTrade(ctx context.Context, account, recipient string) error {
	return s.mutate(ctx, "complete_trade", account, "recipient="+recipient, func(l *model.Ledger) error {
		trades, ok := l.ActiveTrades[account]
		if !ok {
			return ErrTradeNotFound
		}
		if _, ok := trades[recipient]; !ok {
			return ErrTradeNotFound
		}
		delete(trades, recipient)
		if len(trades) == 0 {
			delete(l.ActiveTrades, account)
		}
		return nil
	})
}

// Reset wipes the whole document back to empty containers.
func (s *LedgerService) Reset(ctx context.Context) error {
	return s.mutate(ctx, "reset", "", "", func(l *model.Ledger) error {
		*l = *model.NewLedger()
		return nil
	})
}

// mutate runs one atomic load -> fn -> save cycle, then invalidates the
// cache and records an audit entry.
func (s *LedgerService) mutate(ctx context.Context, op, account, detail string, fn func(l *model.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(ledger); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, ledger); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, ledgerCacheKey); err != nil {
			log.Printf("[LedgerService] Cache invalidation failed: %v", err)
		}
	}
	s.recordAudit(ctx, op, account, detail)
	return nil
}

// recordAudit logs the mutation; audit failures never fail the operation.
func (s *LedgerService) recordAudit(ctx context.Context, op, account, detail string) {
	if s.audit == nil {
		return
	}
	entry := &model.AuditEntry{
		RequestID: middleware.GetRequestID(ctx),
		Op:        op,
		Account:   account,
		Detail:    detail,
		CreatedAt: s.now().UTC(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		log.Printf("[LedgerService] Audit insert failed for %s: %v", op, err)
	}
}
