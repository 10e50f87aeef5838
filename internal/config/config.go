// Package config provides configuration for the optimizer service, read
// from the environment with an optional JSON file underlay.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort            = 3002
	DefaultProviderTimeout = 45 * time.Second
	DefaultSessionTTL      = 30 * time.Minute
)

// Config holds everything the service reads from the environment. Provider
// keys are all optional; a provider without a key is simply not registered.
type Config struct {
	Port int

	OpenAIKey    string
	AnthropicKey string
	GoogleAIKey  string
	CohereKey    string

	DatabaseURL string

	ProviderTimeout time.Duration
	SessionTTL      time.Duration

	RateLimitCapacity int
	RateLimitWindow   time.Duration
}

// fileConfig is the optional JSON config file shape. Pointer fields
// distinguish "absent" from zero values; durations are Go duration strings.
type fileConfig struct {
	Port              *int    `json:"port"`
	DatabaseURL       *string `json:"databaseUrl"`
	ProviderTimeout   *string `json:"providerTimeout"`
	SessionTTL        *string `json:"sessionTtl"`
	RateLimitCapacity *int    `json:"rateLimitCapacity"`
	RateLimitWindow   *string `json:"rateLimitWindow"`
}

// FromEnv reads the configuration from environment variables, applying
// defaults for anything unset. If CONFIG_FILE names a JSON file its values
// are applied between the defaults and the environment, so env always wins.
func FromEnv() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load builds the configuration from defaults, an optional JSON config file
// and the environment, in that order of precedence. An empty path skips the
// file layer.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:            DefaultPort,
		ProviderTimeout: DefaultProviderTimeout,
		SessionTTL:      DefaultSessionTTL,
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.GoogleAIKey = os.Getenv("GOOGLE_AI_API_KEY")
	cfg.CohereKey = os.Getenv("COHERE_API_KEY")
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT %q: %w", v, err)
		}
		cfg.ProviderTimeout = d
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		cfg.SessionTTL = d
	}

	if v := os.Getenv("RATE_LIMIT_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_CAPACITY %q: %w", v, err)
		}
		cfg.RateLimitCapacity = n
	}

	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW %q: %w", v, err)
		}
		cfg.RateLimitWindow = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile overlays values from a JSON config file onto the defaults.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.DatabaseURL != nil {
		c.DatabaseURL = *fc.DatabaseURL
	}
	if fc.ProviderTimeout != nil {
		d, err := time.ParseDuration(*fc.ProviderTimeout)
		if err != nil {
			return fmt.Errorf("invalid providerTimeout %q in %s: %w", *fc.ProviderTimeout, path, err)
		}
		c.ProviderTimeout = d
	}
	if fc.SessionTTL != nil {
		d, err := time.ParseDuration(*fc.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid sessionTtl %q in %s: %w", *fc.SessionTTL, path, err)
		}
		c.SessionTTL = d
	}
	if fc.RateLimitCapacity != nil {
		c.RateLimitCapacity = *fc.RateLimitCapacity
	}
	if fc.RateLimitWindow != nil {
		d, err := time.ParseDuration(*fc.RateLimitWindow)
		if err != nil {
			return fmt.Errorf("invalid rateLimitWindow %q in %s: %w", *fc.RateLimitWindow, path, err)
		}
		c.RateLimitWindow = d
	}
	return nil
}

// Validate checks numeric ranges. Missing provider keys are not an error;
// the service boots degraded and reports availability through health.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("config error: provider timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config error: session TTL must be positive")
	}
	if c.RateLimitCapacity < 0 {
		return fmt.Errorf("config error: rate limit capacity must be non-negative")
	}
	return nil
}

// HasAnyProvider reports whether at least one provider key is configured.
func (c *Config) HasAnyProvider() bool {
	return c.OpenAIKey != "" || c.AnthropicKey != "" || c.GoogleAIKey != "" || c.CohereKey != ""
}
