package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth0
	Auth0Domain   string
	Auth0Audience string
	Auth0ClientID string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Expense creation rejects amounts above the user's current balance when enabled
	ExpenseBalanceCheck bool

	// Per-caller request budget for ordinary API calls
	RateLimitPerMinute int
	RateLimitBurst     int

	AlertCheck AlertCheckConfig
	AMQP       AMQPConfig

	// Sentry (optional)
	SentryDSN string
}

// AlertCheckConfig holds configuration for the budget/goal alert batch
type AlertCheckConfig struct {
	WorkerEnabled bool
	Interval      time.Duration
	Concurrency   int
	// Per-caller budget for on-demand checks via POST /alerts/check
	RateLimitPerMinute int
	RateLimitBurst     int
}

// AMQPConfig holds RabbitMQ configuration for alert notifications
type AMQPConfig struct {
	URL      string // Empty = notifications disabled
	Exchange string
	Queue    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		Auth0Domain:         getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:       getEnv("AUTH0_AUDIENCE", ""),
		Auth0ClientID:       getEnv("AUTH0_CLIENT_ID", ""),
		Port:                getEnv("PORT", "8080"),
		CORSOrigins:         strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:                 getEnv("ENV", "development"),
		ExpenseBalanceCheck: getEnvBool("EXPENSE_BALANCE_CHECK", false),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:      getEnvInt("RATE_LIMIT_BURST", 10),
		AlertCheck: AlertCheckConfig{
			WorkerEnabled: getEnvBool("ALERT_WORKER_ENABLED", true),
			Interval:      getEnvDuration("ALERT_CHECK_INTERVAL", 24*time.Hour),
			Concurrency:   getEnvInt("ALERT_CHECK_CONCURRENCY", 4),

			RateLimitPerMinute: getEnvInt("ALERT_CHECK_RATE_LIMIT_PER_MINUTE", 6),
			RateLimitBurst:     getEnvInt("ALERT_CHECK_RATE_LIMIT_BURST", 2),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "sentinel.alerts"),
			Queue:    getEnv("AMQP_QUEUE", "alert-notifications"),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadForBatch reads configuration for the alert check CLI, which needs no Auth0 settings
func LoadForBatch() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Env:         getEnv("ENV", "development"),
		AlertCheck: AlertCheckConfig{
			Concurrency: getEnvInt("ALERT_CHECK_CONCURRENCY", 4),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "sentinel.alerts"),
			Queue:    getEnv("AMQP_QUEUE", "alert-notifications"),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AlertCheck.Concurrency < 1 {
		return nil, fmt.Errorf("ALERT_CHECK_CONCURRENCY must be at least 1")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.AlertCheck.Interval <= 0 {
		return fmt.Errorf("ALERT_CHECK_INTERVAL must be positive")
	}
	if c.AlertCheck.Concurrency < 1 {
		return fmt.Errorf("ALERT_CHECK_CONCURRENCY must be at least 1")
	}
	if c.RateLimitPerMinute < 1 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be at least 1")
	}
	if c.AlertCheck.RateLimitPerMinute < 1 || c.AlertCheck.RateLimitBurst < 1 {
		return fmt.Errorf("ALERT_CHECK_RATE_LIMIT_PER_MINUTE and ALERT_CHECK_RATE_LIMIT_BURST must be at least 1")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
