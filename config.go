package tembang

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// CacheConfig holds the caching knobs of a process configuration.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	MaxEntries int           `yaml:"max_entries" validate:"gt=0"`
	SearchTTL  time.Duration `yaml:"search_ttl" validate:"gte=0"`
	LookupTTL  time.Duration `yaml:"lookup_ttl" validate:"gte=0"`
	BrowseTTL  time.Duration `yaml:"browse_ttl" validate:"gte=0"`
}

// Config is the process-wide configuration consumed by WithConfig. It is
// loaded once at startup; the client owns all state derived from it.
type Config struct {
	UserAgent      string        `yaml:"user_agent" validate:"required"`
	BaseURL        string        `yaml:"base_url"`
	RateInterval   time.Duration `yaml:"rate_interval" validate:"gt=0"`
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxAttempts    int           `yaml:"max_attempts" validate:"gte=1"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" validate:"gt=0"`
	Cache          CacheConfig   `yaml:"cache"`
	RedisAddr      string        `yaml:"redis_addr"`
}

// DefaultConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultConfig() Config {
	return Config{
		UserAgent:      DefaultUserAgent,
		BaseURL:        DefaultBaseURL,
		RateInterval:   time.Second,
		Timeout:        DefaultTimeout,
		MaxAttempts:    DefaultMaxAttempts,
		RetryBaseDelay: DefaultBaseDelay,
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: DefaultCacheCapacity,
			SearchTTL:  5 * time.Minute,
			LookupTTL:  time.Hour,
			BrowseTTL:  10 * time.Minute,
		},
	}
}

// LoadConfig reads a YAML configuration file, layers TEMBANG_* environment
// overrides on top and validates the result. An empty path skips the file
// and uses defaults plus environment.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config file: %w", err)
		}
		defer func() { _ = file.Close() }()

		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("decode YAML config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnv layers environment overrides onto the configuration.
func (c *Config) applyEnv() {
	if v := os.Getenv("TEMBANG_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("TEMBANG_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("TEMBANG_RATE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateInterval = d
		}
	}
	if v := os.Getenv("TEMBANG_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("TEMBANG_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv("TEMBANG_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = b
		}
	}
	if v := os.Getenv("TEMBANG_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.MaxEntries = n
		}
	}
	if v := os.Getenv("TEMBANG_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
}
