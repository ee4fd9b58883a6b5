package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/helloivanco/fanrc/pkg/config"
)

// Storage drivers for the wishlist store.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"FANRC_HTTP_PORT" envDefault:"8080"`

	// Catalog source. CATALOG_URL wins over CATALOG_PATH when both are set.
	CatalogPath     string        `env:"CATALOG_PATH" envDefault:"data/products.json"`
	CatalogURL      string        `env:"CATALOG_URL"`
	CatalogRefresh  time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"5m"`
	CatalogWatch    bool          `env:"CATALOG_WATCH" envDefault:"true"`
	PageSize        int           `env:"PAGE_SIZE" envDefault:"16"`
	MessengerURL    string        `env:"MESSENGER_URL" envDefault:"https://m.me/fanrc"`
	SummaryGreeting string        `env:"SUMMARY_GREETING"`
	SummaryClosing  string        `env:"SUMMARY_CLOSING"`

	// Wishlist storage
	StorageDriver    string        `env:"STORAGE_DRIVER" envDefault:"redis"`
	WishlistTTL      time.Duration `env:"WISHLIST_TTL" envDefault:"720h"`
	WatchInterval    time.Duration `env:"WISHLIST_WATCH_INTERVAL" envDefault:"500ms"`
	SessionSecret    string        `env:"SESSION_SECRET"`
	SessionCookieTTL time.Duration `env:"SESSION_COOKIE_TTL" envDefault:"8760h"`
	SecureCookies    bool          `env:"SECURE_COOKIES" envDefault:"false"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Kafka. Empty brokers disable event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Debugging
	PprofEnabled bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	SlowCommandThreshold time.Duration `env:"REDIS_SLOW_COMMAND_THRESHOLD" envDefault:"100ms"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CatalogPath == "" && c.CatalogURL == "" {
		return errors.New("one of CATALOG_PATH or CATALOG_URL is required")
	}
	if c.CatalogURL != "" {
		if u, err := url.Parse(c.CatalogURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid CATALOG_URL: %q", c.CatalogURL)
		}
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if _, err := url.Parse(c.MessengerURL); err != nil || c.MessengerURL == "" {
		return fmt.Errorf("invalid MESSENGER_URL: %q", c.MessengerURL)
	}
	switch c.StorageDriver {
	case StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageRedis, StorageMemory, c.StorageDriver)
	}
	if c.WatchInterval <= 0 {
		return errors.New("WISHLIST_WATCH_INTERVAL must be positive")
	}
	if c.IsProduction() && len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 bytes in production")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	return nil
}
