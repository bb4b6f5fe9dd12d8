// Package config loads process configuration from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	Lookup  LookupConfig
	Service ServiceConfig
	Rate    RateConfig
}

// LookupConfig controls where dishes and users are resolved from. An empty
// URL means the entity is served from the local database.
type LookupConfig struct {
	DishServiceURL string
	UserServiceURL string
	Concurrency    int
	Timeout        time.Duration
	UserCacheTTL   time.Duration
}

// ServiceConfig holds the shared secret used between services. Token is sent
// on outgoing lookups; TokenHash is the bcrypt hash incoming /internal
// requests are checked against. An empty hash leaves /internal open.
type ServiceConfig struct {
	Token     string
	TokenHash string
}

type RateConfig struct {
	PerSecond float64
	Burst     int
}

func (c LookupConfig) RemoteDishes() bool { return c.DishServiceURL != "" }
func (c LookupConfig) RemoteUsers() bool  { return c.UserServiceURL != "" }

// Load reads configuration from the environment. Malformed values are an
// error rather than silently falling back to defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("NUTRIMENU_PORT", "8080"),
		DBPath:    getEnv("NUTRIMENU_DB_PATH", "nutrimenu.db"),
		LogLevel:  getEnv("NUTRIMENU_LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("NUTRIMENU_LOG_FORMAT", "text")),
		Lookup: LookupConfig{
			DishServiceURL: getEnv("NUTRIMENU_DISH_SERVICE_URL", ""),
			UserServiceURL: getEnv("NUTRIMENU_USER_SERVICE_URL", ""),
		},
		Service: ServiceConfig{
			Token:     getEnv("NUTRIMENU_SERVICE_TOKEN", ""),
			TokenHash: getEnv("NUTRIMENU_SERVICE_TOKEN_HASH", ""),
		},
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("NUTRIMENU_LOG_FORMAT: unknown format %q", cfg.LogFormat)
	}

	var err error
	if cfg.Lookup.Concurrency, err = getInt("NUTRIMENU_LOOKUP_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.Lookup.Concurrency < 1 {
		return nil, fmt.Errorf("NUTRIMENU_LOOKUP_CONCURRENCY: must be at least 1")
	}
	if cfg.Lookup.Timeout, err = getDuration("NUTRIMENU_LOOKUP_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Lookup.UserCacheTTL, err = getDuration("NUTRIMENU_USER_CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Rate.PerSecond, err = getFloat("NUTRIMENU_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.Rate.Burst, err = getInt("NUTRIMENU_RATE_BURST", 20); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
