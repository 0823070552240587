// Package config builds the runtime configuration from the environment,
// optionally pre-populated from a config.env file. The resulting Config is
// constructed once in main and passed by reference; nothing here is global.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BotToken       string
	ActivationCode string

	OMDBAPIKey  string
	OMDBBaseURL string

	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RandomFilmURL string

	ProviderTimeout     time.Duration
	ProviderMaxInFlight int64

	DiscoveryAttempts int
	DiscoveryBackoff  time.Duration
}

// Load reads configuration from the environment. envFile is loaded first
// when present; variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		BotToken:            strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		ActivationCode:      strings.TrimSpace(os.Getenv("ACTIVATION_CODE")),
		OMDBAPIKey:          strings.TrimSpace(os.Getenv("OMDB_API_KEY")),
		OMDBBaseURL:         strings.TrimSpace(os.Getenv("OMDB_URL")),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             envInt("REDIS_DB", 0),
		RandomFilmURL:       strings.TrimSpace(os.Getenv("RANDOMFILM_URL")),
		ProviderTimeout:     envDuration("PROVIDER_TIMEOUT", 10*time.Second),
		ProviderMaxInFlight: int64(envInt("PROVIDER_MAX_IN_FLIGHT", 4)),
		DiscoveryAttempts:   envInt("DISCOVERY_ATTEMPTS", 5),
		DiscoveryBackoff:    envDuration("DISCOVERY_BACKOFF", time.Second),
	}

	if cfg.OMDBBaseURL == "" {
		cfg.OMDBBaseURL = "http://www.omdbapi.com"
	}
	if cfg.RandomFilmURL == "" {
		cfg.RandomFilmURL = "https://randomfilm.ru/"
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.OMDBAPIKey == "" {
		return nil, fmt.Errorf("OMDB_API_KEY is required")
	}
	if cfg.ActivationCode == "" {
		return nil, fmt.Errorf("ACTIVATION_CODE is required")
	}

	return cfg, nil
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
