package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backstage/config"
	"backstage/entity"
)

func TestLoad_defaults(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("GATEWAY_ADDR", "http://localhost:8888")
	t.Setenv("COLLABORATOR_TOKEN", "secret")

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "secret", cfg.CollaboratorToken)
	assert.Equal(t, 5*time.Second, cfg.PaymentProcessorTimeout)
	assert.Empty(t, cfg.PaymentProcessorURL)
	assert.False(t, cfg.DiagnosticErrors)
	assert.False(t, cfg.Production())

	catalog, err := cfg.PricingCatalog()
	require.NoError(t, err)

	price, err := catalog.UnitPrice(entity.TicketTypeStandard)
	require.NoError(t, err)
	assert.Equal(t, "89.50 EUR", price.String())
}

func TestLoad_flags_override(t *testing.T) {
	cfg, err := config.Load([]string{
		"--postgres-url", "postgres://db",
		"--redis-addr", "redis:6379",
		"--gateway-addr", "http://gateway",
		"--collaborator-token", "secret",
		"--price-vip", "175",
		"--currency", "USD",
		"--diagnostic-errors",
	})
	require.NoError(t, err)
	assert.True(t, cfg.DiagnosticErrors)

	catalog, err := cfg.PricingCatalog()
	require.NoError(t, err)

	price, err := catalog.UnitPrice(entity.TicketTypeVIP)
	require.NoError(t, err)
	assert.Equal(t, "175.00 USD", price.String())
}

func TestPricingCatalog_invalid_price(t *testing.T) {
	cfg, err := config.Load([]string{
		"--postgres-url", "postgres://db",
		"--redis-addr", "redis:6379",
		"--gateway-addr", "http://gateway",
		"--collaborator-token", "secret",
		"--price-standard", "cheap",
	})
	require.NoError(t, err)

	_, err = cfg.PricingCatalog()
	assert.Error(t, err)
}

func TestLoad_missing_required(t *testing.T) {
	unsetEnv(t, "POSTGRES_URL", "REDIS_ADDR", "GATEWAY_ADDR", "COLLABORATOR_TOKEN")

	_, err := config.Load(nil)
	assert.Error(t, err)
}

func TestLoad_requires_collaborator_token(t *testing.T) {
	unsetEnv(t, "COLLABORATOR_TOKEN")

	_, err := config.Load([]string{
		"--postgres-url", "postgres://db",
		"--redis-addr", "redis:6379",
		"--gateway-addr", "http://gateway",
	})
	assert.Error(t, err)
}

// unsetEnv removes keys for the duration of the test. An empty but set variable counts as a
// value for go-flags.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
