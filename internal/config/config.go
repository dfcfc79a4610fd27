package config

import (
	"fmt"

	pkgconfig "github.com/diamondcartel/wishlist/pkg/config"
)

// Catalog backend selection values.
const (
	CatalogBackendHTTP     = "http"
	CatalogBackendPostgres = "postgres"
)

// Config holds all configuration for the wishlist service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"WISHLIST_HTTP_PORT" envDefault:"8007"`

	// Redis (wishlist document store)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Catalog backend: "http" talks to the product service API, "postgres"
	// reads the shared products table directly.
	CatalogBackend string `env:"CATALOG_BACKEND" envDefault:"http"`
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8001"`

	// Postgres (catalog backend "postgres" only)
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"shop"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"shop_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"shop"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Mail
	SendGridAPIKey string `env:"SENDGRID_API_KEY" envDefault:""`
	MailFromName   string `env:"MAIL_FROM_NAME" envDefault:"Diamond Cartel"`
	MailFromEmail  string `env:"MAIL_FROM_EMAIL" envDefault:"noreply@diamondcartel.example"`
	OwnerEmail     string `env:"OWNER_EMAIL" envDefault:""`

	// Storefront base URL for product links in quote emails.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5000"`

	// Pprof debug endpoints are restricted to these CIDRs.
	PprofCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wishlist config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.CatalogBackend {
	case CatalogBackendHTTP, CatalogBackendPostgres:
	default:
		return fmt.Errorf("invalid catalog backend: %q", c.CatalogBackend)
	}
	if c.OwnerEmail == "" {
		return fmt.Errorf("OWNER_EMAIL is required")
	}
	return nil
}
