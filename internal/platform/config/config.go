// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. Secrets are unset
from the process environment once read.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Healthlog API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL            string        `env:"REDIS_URL,required"`
	RedisPoolSize       int           `env:"REDIS_POOL_SIZE"       envDefault:"10"`
	RedisMaxRetries     int           `env:"REDIS_MAX_RETRIES"     envDefault:"2"`
	RedisCommandTimeout time.Duration `env:"REDIS_COMMAND_TIMEOUT" envDefault:"500ms"`

	// Token signing (HS256)
	JWTSecret       string        `env:"JWT_SECRET,required,unset"`
	JWTIssuer       string        `env:"JWT_ISSUER"        envDefault:"healthlog.app"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// Password hashing
	PasswordPepper         string `env:"PASSWORD_PEPPER,required,unset"`
	PasswordHashStrategy   string `env:"PASSWORD_HASH_STRATEGY"   envDefault:"pbkdf2-sha512"`
	PasswordHashIterations int    `env:"PASSWORD_HASH_ITERATIONS" envDefault:"210000"`

	// Token revocation
	RevocationBackend       string        `env:"REVOCATION_BACKEND"        envDefault:"memory"`
	RevocationSweepInterval time.Duration `env:"REVOCATION_SWEEP_INTERVAL" envDefault:"1m"`
	BadgerDir               string        `env:"BADGER_DIR"                envDefault:"./data/revocations"`

	// Outbound mail. An empty SMTPHost logs messages instead of sending them.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD,unset"`
	SMTPFrom     string `env:"SMTP_FROM"     envDefault:"no-reply@healthlog.app"`

	// PasswordResetURL is the front-end page that receives ?token=<reset token>.
	PasswordResetURL string `env:"PASSWORD_RESET_URL" envDefault:"https://healthlog.app/password-reset"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom behaves like [Load] but reads from the given map instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MinSecretLength mirrors the HS256 key size.
const MinSecretLength = 32

// Validate enforces rules that span several fields or cannot be expressed as tags.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength))
	}
	if strings.TrimSpace(c.PasswordPepper) == "" {
		errs = append(errs, errors.New("PASSWORD_PEPPER must not be blank"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL"))
	}

	switch c.PasswordHashStrategy {
	case "pbkdf2-sha512", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASH_STRATEGY %q is not supported", c.PasswordHashStrategy))
	}
	if c.PasswordHashStrategy == "pbkdf2-sha512" && c.PasswordHashIterations < 10_000 {
		errs = append(errs, errors.New("PASSWORD_HASH_ITERATIONS must be at least 10000"))
	}

	switch c.RevocationBackend {
	case "memory", "redis":
	case "badger":
		if c.BadgerDir == "" {
			errs = append(errs, errors.New("BADGER_DIR is required for the badger revocation backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("REVOCATION_BACKEND %q is not supported", c.RevocationBackend))
	}

	if c.RedisCommandTimeout <= 0 {
		errs = append(errs, errors.New("REDIS_COMMAND_TIMEOUT must be positive"))
	}

	if c.SMTPHost != "" && c.SMTPFrom == "" {
		errs = append(errs, errors.New("SMTP_FROM is required when SMTP_HOST is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the CORS origins configured on top of the production domain.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
