// Package config loads process configuration from the environment and
// the runtime-tunable Settings row, the same split AttaboyGO draws
// between infra.Config (env, fixed at boot) and its feature flags.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is parsed once at startup from the environment. Anything that
// operators need to change without a redeploy lives in Settings instead.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"pawarisk"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"pawarisk"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"pawarisk"`

	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"db/migrations"`

	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`

	HTTPPort int `env:"HTTP_PORT" envDefault:"8090"`

	BetPawaBaseURL   string `env:"BETPAWA_BASE_URL"`
	SportyBetBaseURL string `env:"SPORTYBET_BASE_URL"`
	Bet9jaBaseURL    string `env:"BET9JA_BASE_URL"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses environment variables into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects a Config that would make the coordinator unsafe to
// run — every base URL is load-bearing, unlike AttaboyGO's single
// JWT-secret check, because a missing one means a whole platform
// silently never scrapes.
func (c *Config) Validate() error {
	if c.BetPawaBaseURL == "" {
		return fmt.Errorf("BETPAWA_BASE_URL is required")
	}
	if c.SportyBetBaseURL == "" {
		return fmt.Errorf("SPORTYBET_BASE_URL is required")
	}
	if c.Bet9jaBaseURL == "" {
		return fmt.Errorf("BET9JA_BASE_URL is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// RedisAddr returns the host:port dial target for the stream mirror and
// the unmapped-market counter accelerator.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
