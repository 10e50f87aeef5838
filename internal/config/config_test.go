package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("PROVIDER_TIMEOUT", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultProviderTimeout, cfg.ProviderTimeout)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "8080")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PROVIDER_TIMEOUT", "10s")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("RATE_LIMIT_CAPACITY", "50")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 50, cfg.RateLimitCapacity)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.HasAnyProvider())
}

func TestFromEnvInvalidPort(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "not-a-number")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvInvalidDuration(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PROVIDER_TIMEOUT", "forty-five")

	_, err := FromEnv()
	assert.Error(t, err)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL", "")
	path := writeConfigFile(t, `{"port": 4000, "sessionTtl": "2h", "rateLimitCapacity": 25}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 25, cfg.RateLimitCapacity)
	assert.Equal(t, DefaultProviderTimeout, cfg.ProviderTimeout)
}

func TestEnvOverridesConfigFile(t *testing.T) {
	t.Setenv("PORT", "9090")
	path := writeConfigFile(t, `{"port": 4000}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	path := writeConfigFile(t, `{"port": `)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadConfigFileBadDuration(t *testing.T) {
	path := writeConfigFile(t, `{"providerTimeout": "soon"}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	cfg := &Config{Port: 70000, ProviderTimeout: time.Second, SessionTTL: time.Minute}
	assert.Error(t, cfg.Validate())
}

func TestHasAnyProvider(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasAnyProvider())

	cfg.CohereKey = "key"
	assert.True(t, cfg.HasAnyProvider())
}
