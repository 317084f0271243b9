package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Ledger   LedgerConfig
	Market   MarketConfig
	Crafting CraftingConfig
	Cache    CacheConfig
	AuditDB  AuditDBConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"trade-toolkit-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// LedgerConfig holds ledger document settings.
type LedgerConfig struct {
	Path string `envconfig:"LEDGER_PATH" default:"./data/ledger.json"`
}

// MarketConfig holds black-market pricing constants.
//
// The source versions disagree on the fee model (flat 35% markup vs a
// net/gross tax inversion). ListingMarkup pins the canonical formula:
// listing_price = ceil(luna * markup).
type MarketConfig struct {
	ListingMarkup float64 `envconfig:"MARKET_LISTING_MARKUP" default:"1.35"`
	RateScale     int64   `envconfig:"MARKET_RATE_SCALE" default:"1000000"`
}

// CraftingConfig holds tier conversion constants.
//
// T3/T4/T5 values are fixed at 1/4/20; the top tier value drifted between
// 100 and 120 across source versions, so it is configurable with 120 canonical.
type CraftingConfig struct {
	TopTierValue int `envconfig:"CRAFTING_TOP_TIER_VALUE" default:"120"`
}

// CacheConfig holds cache settings for the ledger document.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// AuditDBConfig holds audit log database settings.
type AuditDBConfig struct {
	Type string `envconfig:"AUDIT_DB_TYPE" default:"sqlite"` // sqlite, mysql, or postgres
	Path string `envconfig:"AUDIT_DB_PATH" default:"./data/audit.db"`
	// MySQL / PostgreSQL settings
	Host     string `envconfig:"AUDIT_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"AUDIT_DB_PORT" default:"0"`
	Name     string `envconfig:"AUDIT_DB_NAME" default:"tradetoolkit"`
	User     string `envconfig:"AUDIT_DB_USER" default:""`
	Password string `envconfig:"AUDIT_DB_PASS" default:""`
	SSLMode  string `envconfig:"AUDIT_DB_SSLMODE" default:"disable"`
	// Retention settings
	Retention       time.Duration `envconfig:"AUDIT_RETENTION" default:"720h"`
	CleanupInterval time.Duration `envconfig:"AUDIT_CLEANUP_INTERVAL" default:"24h"`
}

// AuthConfig holds API authentication settings.
// With no keys configured the API runs open (local single-user utility).
type AuthConfig struct {
	APIKeys  []string      `envconfig:"API_KEYS" default:""`
	TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"1h"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MySQLDSN returns the MySQL data source name for the audit database.
func (a *AuditDBConfig) MySQLDSN() string {
	port := a.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		a.User, a.Password, a.Host, port, a.Name)
}

// PostgresDSN returns the PostgreSQL connection string for the audit database.
func (a *AuditDBConfig) PostgresDSN() string {
	port := a.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		a.User, a.Password, a.Host, port, a.Name, a.SSLMode)
}

// Keys returns the configured API keys with blanks removed.
func (a *AuthConfig) Keys() []string {
	keys := make([]string, 0, len(a.APIKeys))
	for _, k := range a.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
