package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv          string `env:"APP_ENV" default:"development"`
	Port            string `env:"PORT" default:"8080"`
	DatabaseURL     string `env:"DATABASE_URL"`
	RedisURL        string `env:"REDIS_URL"`
	SessionSecret   string `env:"SESSION_SECRET"`
	TokenSigningKey string `env:"TOKEN_SIGNING_KEY"`
	LogLevel        string `env:"LOG_LEVEL" default:"info"`
	LogFormat       string `env:"LOG_FORMAT" default:"text"`

	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days
	APITokenTTL   time.Duration `env:"API_TOKEN_TTL" default:"720h"`   // 30 days

	SearchCacheTTL    time.Duration `env:"SEARCH_CACHE_TTL" default:"10m"`
	SearchResultLimit int           `env:"SEARCH_RESULT_LIMIT" default:"500"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":      cfg.DatabaseURL,
		"REDIS_URL":         cfg.RedisURL,
		"SESSION_SECRET":    cfg.SessionSecret,
		"TOKEN_SIGNING_KEY": cfg.TokenSigningKey,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}

	keyBytes, err := hex.DecodeString(cfg.TokenSigningKey)
	if err != nil {
		return fmt.Errorf("TOKEN_SIGNING_KEY must be valid hex: %w", err)
	}
	if len(keyBytes) != 32 {
		return fmt.Errorf("TOKEN_SIGNING_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
	}

	if cfg.SearchResultLimit < 1 {
		return errors.New("SEARCH_RESULT_LIMIT must be positive")
	}

	return nil
}

// SigningKey returns the decoded token signing key. Load guarantees the hex
// is valid, so decoding cannot fail afterwards.
func (c *Config) SigningKey() []byte {
	key, _ := hex.DecodeString(c.TokenSigningKey)
	return key
}
