package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "session")
	t.Setenv("CSRF_SECRET", "csrf")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "http://localhost:3001/api", cfg.DeliveryAPIURL)
	assert.Equal(t, 10*time.Second, cfg.DeliveryAPITimeout)
	assert.Equal(t, "America/Sao_Paulo", cfg.AppTimezone)
	assert.Equal(t, "0 18 * * *", cfg.ManifestArchiveCron)
	assert.Equal(t, 168*time.Hour, cfg.ManifestArchiveTTL)
	assert.Equal(t, "SGRM Transportes", cfg.CompanyName)
	assert.False(t, cfg.AuditEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DELIVERY_API_URL", "https://api.example.com/api")
	t.Setenv("PG_DSN", "postgres://localhost/scheduler")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.AuditEnabled())
	assert.Equal(t, "https://api.example.com/api", cfg.DeliveryAPIURL)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoadConfig_MissingSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "csrf")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_TIMEZONE")
}

func TestConfig_Location(t *testing.T) {
	cfg := &Config{AppTimezone: "UTC"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestNilConfigHelpers(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.AuditEnabled())
}

func TestLoadCLIConfig_NeedsNoSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	t.Setenv("COMPANY_NAME", "Transportes Teste")

	cfg, err := LoadCLIConfig()
	require.NoError(t, err)
	assert.Equal(t, "Transportes Teste", cfg.CompanyName)
	assert.Equal(t, 30*time.Second, cfg.GotenbergTimeout)
}
