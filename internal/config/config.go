package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MaxBulkCreateLimit caps MAX_BULK_CREATE regardless of what the operator sets.
const MaxBulkCreateLimit = 100

// Config holds the application configuration
type Config struct {
	TelegramToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	AdminIDsRaw   string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs      []int64 `ignored:"true"`

	// Remnawave panel
	APIURL     string        `envconfig:"REMNAWAVE_API_URL" required:"true"`
	APIToken   string        `envconfig:"REMNAWAVE_API_TOKEN"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`

	// Bulk operations
	MaxBulkCreate   int           `envconfig:"MAX_BULK_CREATE" default:"20"`
	BulkCreateDelay time.Duration `envconfig:"BULK_CREATE_DELAY" default:"100ms"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"LOG_DIR" default:"logs"`

	// Cache
	CacheEnabled bool   `envconfig:"CACHE_ENABLED" default:"false"`
	CachePath    string `envconfig:"CACHE_PATH" default:"data/cache.bbolt"`

	// Bot mode configuration
	WebhookMode bool   `envconfig:"WEBHOOK_MODE"` // If true, use webhook mode; if false, use polling mode
	WebhookURL  string `envconfig:"WEBHOOK_URL"`  // URL for webhook (required if WebhookMode is true)
	Port        string `envconfig:"PORT" default:"8080"`

	UseMockPanel bool `envconfig:"USE_MOCK_PANEL"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	// .env is optional, system environment wins otherwise
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	ids, err := ParseAdminIDs(cfg.AdminIDsRaw)
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = ids

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("REMNAWAVE_API_URL is required")
	}

	if cfg.MaxBulkCreate < 1 || cfg.MaxBulkCreate > MaxBulkCreateLimit {
		return nil, fmt.Errorf("MAX_BULK_CREATE must be between 1 and %d, got %d", MaxBulkCreateLimit, cfg.MaxBulkCreate)
	}
	if cfg.BulkCreateDelay < 0 {
		return nil, fmt.Errorf("BULK_CREATE_DELAY must not be negative")
	}

	if cfg.WebhookMode && cfg.WebhookURL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
	}

	return cfg, nil
}

// ParseAdminIDs parses a comma-separated list of Telegram user IDs.
func ParseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, idStr := range strings.Split(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in ADMIN_IDS: %s", idStr)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS is required (comma-separated list of Telegram user IDs)")
	}
	return ids, nil
}
