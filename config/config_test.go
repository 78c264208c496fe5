package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production") // skip .env lookup
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.ServerPort)
	assert.True(t, cfg.ForceHTTPS)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_MAX_AGE_HOURS", "2")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.ServerPort)
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigTrustedProxies(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/33")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("TRUSTED_PROXIES", "proxy.internal")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRedisNeedsAddress(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", "")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("SESSION_STORE", "carrier-pigeon")
	_, err = LoadConfig()
	assert.Error(t, err)
}
