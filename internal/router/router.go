package router

import (
	"net/http"

	"trade-toolkit-api/internal/handler"
	"trade-toolkit-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the handlers and middleware the router wires together.
type Config struct {
	Handler         *handler.Handler
	MarketHandler   *handler.MarketHandler
	CraftingHandler *handler.CraftingHandler
	LedgerHandler   *handler.LedgerHandler
	AdminHandler    *handler.AdminHandler
	AuthHandler     *handler.AuthHandler
	AuthMiddleware  func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key", "X-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
				r.Get("/ready", cfg.Handler.Ready)
			}

			if cfg.AuthHandler != nil {
				r.Route("/auth", func(r chi.Router) {
					r.Post("/token", cfg.AuthHandler.GenerateToken)
					r.Post("/revoke", cfg.AuthHandler.RevokeToken)
				})
			}

			if cfg.MarketHandler != nil {
				r.Post("/market/quote", cfg.MarketHandler.Quote)
			}

			if cfg.CraftingHandler != nil {
				r.Post("/crafting/deficit", cfg.CraftingHandler.Deficit)
			}

			if cfg.LedgerHandler != nil {
				r.Route("/ledger", func(r chi.Router) {
					r.Get("/", cfg.LedgerHandler.GetLedger)

					r.Post("/accounts", cfg.LedgerHandler.CreateAccount)
					r.Delete("/accounts/{kind}/{name}", cfg.LedgerHandler.DeleteAccount)
					r.Get("/accounts/{name}", cfg.LedgerHandler.GetAccount)
					r.Put("/accounts/{name}/items/{item}", cfg.LedgerHandler.SetItem)
					r.Post("/accounts/{name}/items/{item}/add", cfg.LedgerHandler.AddItem)
					r.Delete("/accounts/{name}/items/{item}", cfg.LedgerHandler.RemoveItem)

					r.Get("/cards/{name}", cfg.LedgerHandler.GetCards)
					r.Post("/cards/{name}", cfg.LedgerHandler.AddCard)
					r.Delete("/cards/{name}/{index}", cfg.LedgerHandler.RemoveCard)

					r.Get("/trades/{account}", cfg.LedgerHandler.GetTrades)
					r.Post("/trades/{account}/{recipient}", cfg.LedgerHandler.StartTrade)
					r.Post("/trades/{account}/{recipient}/offer", cfg.LedgerHandler.OfferItem)
					r.Delete("/trades/{account}/{recipient}/offers/{index}", cfg.LedgerHandler.CancelOffer)
					r.Post("/trades/{account}/{recipient}/complete", cfg.LedgerHandler.CompleteTrade)
				})
			}

			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Get("/audit", cfg.AdminHandler.GetAudit)
					r.Post("/reset", cfg.AdminHandler.Reset)
				})
			}
		})
	})

	return r
}
