// Package config provides environment-based configuration.
//
// Loads from .env file (godotenv), maps to Config struct via go-simpler/env
// struct tags, then validates required fields.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	// MaxConnections caps registry membership across both transports.
	MaxConnections int `env:"MAX_CONNECTIONS" default:"256"`

	// SSERetryHint is advertised to push-stream clients as the reconnect
	// delay (emitted in milliseconds on the retry field).
	SSERetryHint time.Duration `env:"SSE_RETRY_HINT" default:"10s"`

	// DemoTickInterval controls the counter demo stream cadence.
	DemoTickInterval time.Duration `env:"DEMO_TICK_INTERVAL" default:"1s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
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
	if cfg.StripeWebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if len(cfg.StripeWebhookSecret) < 10 || len(cfg.StripeWebhookSecret) > 100 {
		return errors.New("STRIPE_WEBHOOK_SECRET must be between 10 and 100 characters")
	}
	if cfg.MaxConnections < 0 {
		return errors.New("MAX_CONNECTIONS must not be negative")
	}
	if cfg.DemoTickInterval <= 0 {
		return errors.New("DEMO_TICK_INTERVAL must be positive")
	}
	return nil
}
