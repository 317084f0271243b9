package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-toolkit-api/internal/cache"
	"trade-toolkit-api/internal/config"
	"trade-toolkit-api/internal/crafting"
	"trade-toolkit-api/internal/handler"
	"trade-toolkit-api/internal/market"
	"trade-toolkit-api/internal/middleware"
	"trade-toolkit-api/internal/repository"
	"trade-toolkit-api/internal/router"
	"trade-toolkit-api/internal/service"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Trade Toolkit API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Ledger document store
	ledgerRepo, err := repository.NewFileLedgerRepository(cfg.Ledger.Path)
	if err != nil {
		log.Fatalf("Failed to initialize ledger store: %v", err)
	}
	defer ledgerRepo.Close()

	// Audit repository based on config
	var auditRepo repository.AuditRepository
	switch cfg.AuditDB.Type {
	case "mysql":
		mysqlRepo, err := repository.NewMySQLAuditRepository(cfg.AuditDB.MySQLDSN())
		if err != nil {
			log.Printf("Warning: MySQL audit log unavailable: %v", err)
		} else {
			auditRepo = mysqlRepo
			log.Println("MySQL audit repository initialized")
		}
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresAuditRepository(cfg.AuditDB.PostgresDSN())
		if err != nil {
			log.Printf("Warning: PostgreSQL audit log unavailable: %v", err)
		} else {
			auditRepo = pgRepo
			log.Println("PostgreSQL audit repository initialized")
		}
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteAuditRepository(cfg.AuditDB.Path)
		if err != nil {
			log.Printf("Warning: SQLite audit log unavailable: %v", err)
		} else {
			auditRepo = sqliteRepo
			log.Println("SQLite audit repository initialized")
		}
	}
	if auditRepo != nil {
		defer auditRepo.Close()
	}

	// Cache for the serialized ledger document
	var docCache cache.Cache
	var redisClient *redis.Client
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis cache unavailable, using memory: %v", err)
		} else {
			docCache = redisCache
		}
	}
	if docCache == nil {
		docCache = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}
	defer docCache.Close()

	// Redis client for session tokens (only when auth is configured)
	apiKeys := cfg.Auth.Keys()
	var tokenService *service.TokenService
	if len(apiKeys) > 0 {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis unavailable, session tokens disabled: %v", err)
			redisClient.Close()
			redisClient = nil
		} else {
			tokenService = service.NewTokenService(redisClient, cfg.Auth.TokenTTL)
			log.Println("Token service initialized")
		}
		cancel()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Services
	ledgerService := service.NewLedgerService(ledgerRepo, docCache, auditRepo, cfg.Cache.TTL)

	var retention *service.RetentionScheduler
	if auditRepo != nil {
		retention = service.NewRetentionScheduler(auditRepo, service.RetentionConfig{
			MaxAge:   cfg.AuditDB.Retention,
			Interval: cfg.AuditDB.CleanupInterval,
		})
		retention.Start()
		defer retention.Stop()
	}

	// Calculators
	marketCalc := market.NewCalculator(cfg.Market.ListingMarkup, cfg.Market.RateScale)
	craftingCalc := crafting.NewCalculator(cfg.Crafting.TopTierValue)

	// Handlers
	healthHandler := handler.New(cfg.App.Version)
	marketHandler := handler.NewMarketHandler(marketCalc)
	craftingHandler := handler.NewCraftingHandler(craftingCalc)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	adminHandler := handler.NewAdminHandler(ledgerService, auditRepo, cfg.Cache.Type, cfg.AuditDB.Type)

	var authHandler *handler.AuthHandler
	if tokenService != nil {
		authHandler = handler.NewAuthHandler(tokenService, apiKeys)
	}

	// Auth middleware with injected dependencies
	var tokenValidator middleware.TokenValidator
	if tokenService != nil {
		tokenValidator = tokenService
	}
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Tokens:  tokenValidator,
		APIKeys: apiKeys,
	})

	// Router
	r := router.New(router.Config{
		Handler:         healthHandler,
		MarketHandler:   marketHandler,
		CraftingHandler: craftingHandler,
		LedgerHandler:   ledgerHandler,
		AdminHandler:    adminHandler,
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
	})

	// HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
