package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Queue.Concurrency)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseDelay)
	assert.InDelta(t, 0.2, cfg.Retry.Jitter, 1e-9)
	assert.Equal(t, 30*time.Minute, cfg.Cache.ResponseTTL)
	assert.Equal(t, time.Hour, cfg.Cache.CatalogTTL)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Providers.OpenRouter.BaseURL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("QUEUE_CONCURRENCY", "8")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Queue.Concurrency)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadConfig_APIKeyResolution(t *testing.T) {
	t.Setenv("PROVIDERS_OPENROUTER_API_KEY", "ENV:OPENROUTER_KEY")
	t.Setenv("OPENROUTER_KEY", "sk-or-test-12345")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk-or-test-12345", cfg.Providers.OpenRouter.APIKey)
}

func TestLoadConfig_RejectsInvalidRetry(t *testing.T) {
	t.Setenv("RETRY_JITTER", "1.5")

	_, err := LoadConfig()
	assert.Error(t, err)
}
