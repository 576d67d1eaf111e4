package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/sentinel")
	t.Setenv("AUTH0_DOMAIN", "sentinel.eu.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.sentinel.app")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.ExpenseBalanceCheck)
	assert.True(t, cfg.AlertCheck.WorkerEnabled)
	assert.Equal(t, 24*time.Hour, cfg.AlertCheck.Interval)
	assert.Equal(t, 4, cfg.AlertCheck.Concurrency)
	assert.Equal(t, "", cfg.AMQP.URL)
	assert.Equal(t, "sentinel.alerts", cfg.AMQP.Exchange)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.Equal(t, 6, cfg.AlertCheck.RateLimitPerMinute)
	assert.Equal(t, 2, cfg.AlertCheck.RateLimitBurst)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EXPENSE_BALANCE_CHECK", "true")
	t.Setenv("ALERT_CHECK_INTERVAL", "6h")
	t.Setenv("ALERT_CHECK_CONCURRENCY", "8")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.ExpenseBalanceCheck)
	assert.Equal(t, 6*time.Hour, cfg.AlertCheck.Interval)
	assert.Equal(t, 8, cfg.AlertCheck.Concurrency)
	assert.Len(t, cfg.CORSOrigins, 2)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EXPENSE_BALANCE_CHECK", "maybe")
	t.Setenv("ALERT_CHECK_INTERVAL", "daily")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.ExpenseBalanceCheck)
	assert.Equal(t, 24*time.Hour, cfg.AlertCheck.Interval)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_ZeroConcurrencyRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALERT_CHECK_CONCURRENCY", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadForBatch_DoesNotRequireAuth0(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/sentinel")
	t.Setenv("AUTH0_DOMAIN", "")
	t.Setenv("AUTH0_AUDIENCE", "")

	cfg, err := LoadForBatch()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.AlertCheck.Concurrency)
}

func TestLoad_RejectsZeroAlertCheckRateLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALERT_CHECK_RATE_LIMIT_PER_MINUTE", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "ALERT_CHECK_RATE_LIMIT_PER_MINUTE")
}
