package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/stockledger/internal/domain/valuation"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMongoDB = "mongodb"
	StoreMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Inventory InventoryConfig
	Reporting ReportingConfig
	Webhook   WebhookConfig
	Sheets    SheetsConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI           string
	DBName        string
	Timeout       time.Duration
	RetryWrites   bool
	EnsureIndexes bool
}

// RedisConfig points at the idempotency key store. An empty Addr keeps keys in memory.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// AuthConfig controls access token signing.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	Issuer     string
	BcryptCost int
}

// InventoryConfig carries the stock domain knobs.
type InventoryConfig struct {
	Locations         []string
	CriticalThreshold float64
	LowThreshold      float64
	DefaultPageSize   int
	MaxPageSize       int
}

// Thresholds returns the configured stock level bounds.
func (i InventoryConfig) Thresholds() valuation.Thresholds {
	return valuation.Thresholds{Critical: i.CriticalThreshold, Low: i.LowThreshold}
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	Enabled      bool
}

// WebhookConfig is the optional destination of the valuation digest.
type WebhookConfig struct {
	URL   string
	Token string
}

// SheetsConfig contains configuration required to export summaries to Google Sheets.
// Export is disabled unless both fields are set.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets exporter should be wired.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	var errs []error
	durationVar := func(key, fallback string) time.Duration {
		d, err := time.ParseDuration(getenvWithDefault(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}
	intVar := func(key string, fallback int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}
	floatVar := func(key string, fallback float64) float64 {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}
	boolVar := func(key string, fallback bool) bool {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getenvWithDefault("APP_PORT", "8080"),
			ShutdownTimeout: durationVar("SHUTDOWN_TIMEOUT", "10s"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", StoreMongoDB)),
		},
		MongoDB: MongoDBConfig{
			URI:           getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName:        getenvWithDefault("MONGODB_DB_NAME", "stockdb"),
			Timeout:       durationVar("MONGODB_TIMEOUT", "5s"),
			RetryWrites:   boolVar("MONGODB_RETRY_WRITES", false),
			EnsureIndexes: boolVar("MONGODB_ENSURE_INDEXES", true),
		},
		Redis: RedisConfig{
			Addr:           os.Getenv("REDIS_ADDR"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             intVar("REDIS_DB", 0),
			IdempotencyTTL: durationVar("IDEMPOTENCY_TTL", "24h"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   durationVar("JWT_TTL", "12h"),
			Issuer:     getenvWithDefault("JWT_ISSUER", "stockledger"),
			BcryptCost: intVar("BCRYPT_COST", 10),
		},
		Inventory: InventoryConfig{
			Locations:         splitList(os.Getenv("INVENTORY_LOCATIONS")),
			CriticalThreshold: floatVar("STOCK_CRITICAL_THRESHOLD", 10),
			LowThreshold:      floatVar("STOCK_LOW_THRESHOLD", 50),
			DefaultPageSize:   intVar("DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:       intVar("MAX_PAGE_SIZE", 100),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
			Enabled:      boolVar("DIGEST_ENABLED", true),
		},
		Webhook: WebhookConfig{
			URL:   os.Getenv("DIGEST_WEBHOOK_URL"),
			Token: os.Getenv("DIGEST_WEBHOOK_TOKEN"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: floatVar("RATE_LIMIT_RPS", 10),
			Burst:             intVar("RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case StoreMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongoDB, StoreMemory, c.Store.Driver)
	}

	if c.MongoDB.Timeout <= 0 {
		return errors.New("MONGODB_TIMEOUT must be positive")
	}

	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be provided and at least 16 characters long")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	if err := c.Inventory.Thresholds().Validate(); err != nil {
		return fmt.Errorf("STOCK_CRITICAL_THRESHOLD/STOCK_LOW_THRESHOLD: %w", err)
	}
	if c.Inventory.DefaultPageSize <= 0 || c.Inventory.MaxPageSize < c.Inventory.DefaultPageSize {
		return errors.New("MAX_PAGE_SIZE must be >= DEFAULT_PAGE_SIZE > 0")
	}

	if c.Reporting.Enabled {
		if c.Reporting.CronSchedule == "" {
			return errors.New("DIGEST_CRON_SCHEDULE must be provided")
		}
		if c.Reporting.Timezone == "" {
			return errors.New("TIMEZONE must be provided")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
