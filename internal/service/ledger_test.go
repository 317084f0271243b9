package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trade-toolkit-api/internal/cache"
	"trade-toolkit-api/internal/model"
	"trade-toolkit-api/internal/repository"

	"github.com/stretchr/testify/assert"
)

func newTestLedgerService(t *testing.T) *LedgerService {
	t.Helper()

	repo, err := repository.NewFileLedgerRepository(filepath.Join(t.TempDir(), "ledger.json"))
	assert.NoError(t, err)

	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })

	svc := NewLedgerService(repo, c, nil, time.Minute)
	assert.NotNil(t, svc)
	return svc
}

func TestLedgerService_CreateAccountIdempotent(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))
	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 5))

	// Second create is a no-op; the existing container survives.
	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))

	acct, err := svc.GetAccount(ctx, "main")
	assert.NoError(t, err)
	assert.Equal(t, 5, acct.Items["scrap"])
}

func TestLedgerService_MutatesNullAccountFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")
	ctx := context.Background()

	doc := `{
    "accounts": {"main": null},
    "cards": {},
    "active_trades": {}
}`
	assert.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	repo, err := repository.NewFileLedgerRepository(path)
	assert.NoError(t, err)
	svc := NewLedgerService(repo, nil, nil, time.Minute)

	// The null container is repaired on load, so mutations just work.
	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 3))
	assert.NoError(t, svc.AddItemQuantity(ctx, "main", "scrap", 1))

	acct, err := svc.GetAccount(ctx, "main")
	assert.NoError(t, err)
	assert.Equal(t, 4, acct.Items["scrap"])
}

func TestLedgerService_CreateAccountInvalidKind(t *testing.T) {
	svc := newTestLedgerService(t)

	err := svc.CreateAccount(context.Background(), "wallet", "main")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestLedgerService_ItemQuantities(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))

	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 3))
	assert.NoError(t, svc.AddItemQuantity(ctx, "main", "scrap", 2))
	assert.NoError(t, svc.AddItemQuantity(ctx, "main", "wire", 1))

	acct, err := svc.GetAccount(ctx, "main")
	assert.NoError(t, err)
	assert.Equal(t, 5, acct.Items["scrap"])
	assert.Equal(t, 1, acct.Items["wire"])

	assert.ErrorIs(t, svc.SetItemQuantity(ctx, "main", "scrap", -1), ErrNegativeQuantity)
	assert.ErrorIs(t, svc.AddItemQuantity(ctx, "main", "scrap", -6), ErrNegativeQuantity)

	assert.NoError(t, svc.RemoveItem(ctx, "main", "wire"))
	acct, err = svc.GetAccount(ctx, "main")
	assert.NoError(t, err)
	_, exists := acct.Items["wire"]
	assert.False(t, exists, "removed item key should be gone entirely")

	assert.ErrorIs(t, svc.RemoveItem(ctx, "main", "wire"), ErrItemNotFound)
	assert.ErrorIs(t, svc.SetItemQuantity(ctx, "ghost", "scrap", 1), ErrAccountNotFound)
}

func TestLedgerService_Cards(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindCard, "binder"))

	assert.NoError(t, svc.AddCard(ctx, "binder", "wolf", 4, 2))
	assert.NoError(t, svc.AddCard(ctx, "binder", "wolf", 5, 1)) // duplicate names allowed

	assert.ErrorIs(t, svc.AddCard(ctx, "binder", "bear", 0, 1), ErrInvalidTier)
	assert.ErrorIs(t, svc.AddCard(ctx, "binder", "bear", 7, 1), ErrInvalidTier)
	assert.ErrorIs(t, svc.AddCard(ctx, "binder", "bear", 4, -1), ErrNegativeQuantity)
	assert.ErrorIs(t, svc.AddCard(ctx, "ghost", "bear", 4, 1), ErrAccountNotFound)

	cards, err := svc.GetCards(ctx, "binder")
	assert.NoError(t, err)
	assert.Len(t, cards, 2)

	assert.NoError(t, svc.RemoveCard(ctx, "binder", 0))
	cards, err = svc.GetCards(ctx, "binder")
	assert.NoError(t, err)
	assert.Len(t, cards, 1)
	assert.Equal(t, model.Tier(5), cards[0].Tier)

	assert.ErrorIs(t, svc.RemoveCard(ctx, "binder", 5), ErrIndexOutOfRange)
	assert.ErrorIs(t, svc.RemoveCard(ctx, "binder", -1), ErrIndexOutOfRange)
}

func TestLedgerService_OfferCancelRoundTrip(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))
	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 3))

	assert.NoError(t, svc.OfferItem(ctx, "main", "ivan", "scrap"))

	acct, err := svc.GetAccount(ctx, "main")
	assert.NoError(t, err)
	assert.Equal(t, 2, acct.Items["scrap"], "offer debits one unit")

	trades, err := svc.GetTrades(ctx, "main")
	assert.NoError(t, err)
	assert.Len(t, trades["ivan"], 1)
	assert.Equal(t, "scrap", trades["ivan"][0].Name)
	assert.NotEmpty(t, trades["ivan"][0].Date)

	// Cancelling is the exact inverse.
	assert.NoError(t, svc.CancelOffer(ctx, "main", "ivan", 0))

	acct, err = svc.GetAccount(ctx, "main")
	assert.NoError(t, err)
	assert.Equal(t, 3, acct.Items["scrap"], "cancel restores the debit exactly")

	trades, err = svc.GetTrades(ctx, "main")
	assert.NoError(t, err)
	assert.Empty(t, trades["ivan"])
}

func TestLedgerService_OfferRequiresStock(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))
	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 1))

	assert.NoError(t, svc.OfferItem(ctx, "main", "ivan", "scrap"))
	assert.ErrorIs(t, svc.OfferItem(ctx, "main", "ivan", "scrap"), ErrInsufficientQuantity)
	assert.ErrorIs(t, svc.OfferItem(ctx, "main", "ivan", "wire"), ErrInsufficientQuantity)

	// The failed offers changed nothing.
	trades, err := svc.GetTrades(ctx, "main")
	assert.NoError(t, err)
	assert.Len(t, trades["ivan"], 1)
}

func TestLedgerService_CompleteTradeNoRefund(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))
	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 2))
	assert.NoError(t, svc.OfferItem(ctx, "main", "ivan", "scrap"))
	assert.NoError(t, svc.OfferItem(ctx, "main", "ivan", "scrap"))

	assert.NoError(t, svc.CompleteTrade(ctx, "main", "ivan"))

	// Items stay debited: they were delivered.
	acct, err := svc.GetAccount(ctx, "main")
	assert.NoError(t, err)
	assert.Equal(t, 0, acct.Items["scrap"])

	trades, err := svc.GetTrades(ctx, "main")
	assert.NoError(t, err)
	assert.Empty(t, trades)

	assert.ErrorIs(t, svc.CompleteTrade(ctx, "main", "ivan"), ErrTradeNotFound)
}

func TestLedgerService_StartTradeIdempotent(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))
	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 1))
	assert.NoError(t, svc.StartTrade(ctx, "main", "ivan"))
	assert.NoError(t, svc.OfferItem(ctx, "main", "ivan", "scrap"))

	// Starting again keeps the pending list.
	assert.NoError(t, svc.StartTrade(ctx, "main", "ivan"))

	trades, err := svc.GetTrades(ctx, "main")
	assert.NoError(t, err)
	assert.Len(t, trades["ivan"], 1)
}

func TestLedgerService_DeleteAccountCascadesTrades(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))
	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 1))
	assert.NoError(t, svc.OfferItem(ctx, "main", "ivan", "scrap"))

	assert.NoError(t, svc.DeleteAccount(ctx, model.KindInventory, "main"))

	ledger, err := svc.Snapshot(ctx)
	assert.NoError(t, err)
	assert.NotContains(t, ledger.Accounts, "main")
	assert.NotContains(t, ledger.ActiveTrades, "main", "trades must not be orphaned")

	assert.ErrorIs(t, svc.DeleteAccount(ctx, model.KindInventory, "main"), ErrAccountNotFound)
}

func TestLedgerService_DeleteCardAccount(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindCard, "binder"))
	assert.NoError(t, svc.AddCard(ctx, "binder", "wolf", 4, 1))

	assert.NoError(t, svc.DeleteAccount(ctx, model.KindCard, "binder"))

	_, err := svc.GetCards(ctx, "binder")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLedgerService_Reset(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()

	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))
	assert.NoError(t, svc.CreateAccount(ctx, model.KindCard, "binder"))
	assert.NoError(t, svc.Reset(ctx))

	ledger, err := svc.Snapshot(ctx)
	assert.NoError(t, err)
	assert.Empty(t, ledger.Accounts)
	assert.Empty(t, ledger.Cards)
	assert.Empty(t, ledger.ActiveTrades)
}

func TestLedgerService_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")
	ctx := context.Background()

	repo, err := repository.NewFileLedgerRepository(path)
	assert.NoError(t, err)
	svc := NewLedgerService(repo, nil, nil, time.Minute)
	assert.NoError(t, svc.CreateAccount(ctx, model.KindInventory, "main"))
	assert.NoError(t, svc.SetItemQuantity(ctx, "main", "scrap", 9))

	// A fresh service over the same document sees the same state.
	repo2, err := repository.NewFileLedgerRepository(path)
	assert.NoError(t, err)
	svc2 := NewLedgerService(repo2, nil, nil, time.Minute)

	acct, err := svc2.GetAccount(ctx, "main")
	assert.NoError(t, err)
	assert.Equal(t, 9, acct.Items["scrap"])
}
