package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// Config holds the environment driven configuration for the chat service.
type Config struct {
	// Service
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chat-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8190"`
	MetricsPort     int           `env:"METRICS_PORT" envDefault:"9190"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	EnableSwagger   bool          `env:"ENABLE_SWAGGER" envDefault:"true"`
	CORSOrigin      string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`

	// Logging and tracing
	LogLevel      string  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string  `env:"LOG_FORMAT" envDefault:"console"`
	LogPIILevel   string  `env:"LOG_PII_LEVEL" envDefault:"hashed"`
	LogPIISalt    string  `env:"LOG_PII_SALT"`
	EnableTracing bool    `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint  string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelMetrics   bool    `env:"OTEL_METRICS_ENABLED" envDefault:"false"`
	SamplingRate  float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0"`

	// Transcript store
	StoreDriver    string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string        `env:"DB_POSTGRESQL_WRITE_DSN"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"chefgpt.db"`
	MongoURI       string        `env:"MONGO_URI"`
	MongoDatabase  string        `env:"MONGO_DATABASE" envDefault:"chefgpt"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" envDefault:"true"`

	// Identity
	JWTSecret     string `env:"JWT_SECRET"`
	AuthJWKSURL   string `env:"AUTH_JWKS_URL"`
	AuthIssuer    string `env:"AUTH_ISSUER"`
	AuthAudience  string `env:"AUTH_AUDIENCE"`
	AuthCacheSize int    `env:"AUTH_CACHE_SIZE" envDefault:"1024"`

	// Model gateway
	GatewayProvider      string        `env:"GATEWAY_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey         string        `env:"GEMINI_API_KEY"`
	OpenAIBaseURL        string        `env:"OPENAI_BASE_URL"`
	OpenAIAPIKey         string        `env:"OPENAI_API_KEY"`
	GatewayTimeout       time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"60s"`
	AssistantProfileFile string        `env:"ASSISTANT_PROFILE_FILE"`

	// Session manager
	RedisURL       string        `env:"REDIS_URL"`
	LockTTL        time.Duration `env:"LOCK_TTL" envDefault:"15s"`
	ListLimit      int           `env:"CONVERSATION_LIST_LIMIT" envDefault:"50"`
	TitleMaxLength int           `env:"TITLE_MAX_LENGTH" envDefault:"50"`

	// Assistant is loaded from AssistantProfileFile or the embedded default.
	Assistant *AssistantProfile
}

// Load parses environment variables into Config and validates cross-field requirements.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.GatewayProvider = strings.ToLower(strings.TrimSpace(cfg.GatewayProvider))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	profile, err := LoadAssistantProfile(cfg.AssistantProfileFile)
	if err != nil {
		return nil, fmt.Errorf("load assistant profile: %w", err)
	}
	cfg.Assistant = profile
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DB_POSTGRESQL_WRITE_DSN is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.JWTSecret == "" && c.AuthJWKSURL == "" {
		return errors.New("either JWT_SECRET or AUTH_JWKS_URL must be provided")
	}
	if c.AuthJWKSURL != "" {
		if _, err := url.ParseRequestURI(c.AuthJWKSURL); err != nil {
			return fmt.Errorf("invalid AUTH_JWKS_URL: %w", err)
		}
	}

	switch c.GatewayProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required when GATEWAY_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIBaseURL != "" {
			if _, err := url.ParseRequestURI(c.OpenAIBaseURL); err != nil {
				return fmt.Errorf("invalid OPENAI_BASE_URL: %w", err)
			}
		}
	default:
		return fmt.Errorf("unsupported GATEWAY_PROVIDER %q", c.GatewayProvider)
	}

	if c.GatewayTimeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}
	if c.ListLimit <= 0 {
		return errors.New("CONVERSATION_LIST_LIMIT must be positive")
	}
	if c.TitleMaxLength < 4 {
		return errors.New("TITLE_MAX_LENGTH must be at least 4")
	}
	return nil
}

// GatewayAPIKey returns the key for the selected provider.
func (c *Config) GatewayAPIKey() string {
	if c.GatewayProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// GatewayBaseURL returns the endpoint override for the selected provider.
func (c *Config) GatewayBaseURL() string {
	if c.GatewayProvider == "openai" {
		return c.OpenAIBaseURL
	}
	return ""
}

func (c *Config) IsDev() bool {
	return c.Environment == "development" || c.Environment == "dev"
}
