// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. Outside production a
local '.env' file is loaded first with 'joho/godotenv'; real environment
variables always win over the file.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (session store, API clients) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Store Backends

// Durable slot store backends accepted by STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the customer gateway.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Remote business API. Auth and appointment URLs default to sub-paths of APIBaseURL.
	APIBaseURL         string        `env:"API_BASE_URL"         envDefault:"http://localhost:5000/api"`
	AuthAPIURL         string        `env:"AUTH_API_URL"`
	AppointmentsAPIURL string        `env:"APPOINTMENTS_API_URL"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"      envDefault:"15s"`
	RefreshThreshold   time.Duration `env:"REFRESH_THRESHOLD"    envDefault:"30m"`

	// Durable session slots
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	StorePath    string `env:"STORE_PATH"    envDefault:"./data/session.json"`

	// Key-Value store (Redis), required when StoreBackend is "redis"
	RedisURL string `env:"REDIS_URL"`

	// Relational Database (PostgreSQL), required when StoreBackend is "postgres"
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Cross-Origin Resource Sharing, comma separated
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// A missing .env is the normal case in containers
	if os.Getenv("ENVIRONMENT") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDerivedDefaults fills the per-service URLs from the base URL.
func (c *Config) applyDerivedDefaults() {
	base := strings.TrimRight(c.APIBaseURL, "/")
	if c.AuthAPIURL == "" {
		c.AuthAPIURL = base + "/auth"
	}
	if c.AppointmentsAPIURL == "" {
		c.AppointmentsAPIURL = base + "/appointments"
	}
}

/*
Validate checks cross-field rules that struct tags cannot express.

Returns:
  - error: A joined error listing every violated rule, or nil
*/
func (c *Config) Validate() error {
	var errs []error

	for name, raw := range map[string]string{
		"API_BASE_URL":         c.APIBaseURL,
		"AUTH_API_URL":         c.AuthAPIURL,
		"APPOINTMENTS_API_URL": c.AppointmentsAPIURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("config: %s must be an absolute URL, got %q", name, raw))
		}
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("config: REQUEST_TIMEOUT must be positive"))
	}
	if c.RefreshThreshold < 0 {
		errs = append(errs, fmt.Errorf("config: REFRESH_THRESHOLD must not be negative"))
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StoreFile:
		if c.StorePath == "" {
			errs = append(errs, fmt.Errorf("config: STORE_PATH is required for the file backend"))
		}
	case StoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, fmt.Errorf("config: REDIS_URL is required for the redis backend"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("config: DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend))
	}

	return errors.Join(errs...)
}

// Origins returns the CORS allow-list as a slice.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
