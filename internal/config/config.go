// Package config loads server configuration from the environment.
//
// Values come from process environment variables. In development a .env
// file in the working directory is loaded first (missing file is fine); real
// environment variables always win over .env entries.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Session store kinds accepted by SESSION_STORE.
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreMemory = "memory"
)

// minSecretLength matches the minimum the cookie signer accepts.
const minSecretLength = 16

// Config contains server configuration parameters.
type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	LogLevel  int    `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	StaticDir string `env:"STATIC_DIR" envDefault:"public"`

	Database Database `envPrefix:"DATABASE_"`
	Session  Session  `envPrefix:"SESSION_"`
	CORS     CORS     `envPrefix:"CORS_"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// Database contains database connection parameters.
type Database struct {
	Path string `env:"PATH" envDefault:"data/postboard.db"`
}

// Session contains session and cookie parameters.
type Session struct {
	Secret          string        `env:"SECRET" envDefault:"change-this-secret"`
	TTL             time.Duration `env:"TTL" envDefault:"24h"`
	Store           string        `env:"STORE" envDefault:"sqlite"`
	CookieName      string        `env:"COOKIE_NAME" envDefault:"sid"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// CORS lists browser origins allowed to call the API with credentials.
// Empty disables the CORS middleware entirely.
type CORS struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// NewConfig loads configuration from .env (if present) and the environment.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}
	if len(c.Session.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d characters", minSecretLength))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.Store != SessionStoreSQLite && c.Session.Store != SessionStoreMemory {
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q",
			SessionStoreSQLite, SessionStoreMemory, c.Session.Store))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME must not be empty"))
	}
	if c.Session.CleanupInterval <= 0 {
		errs = append(errs, errors.New("SESSION_CLEANUP_INTERVAL must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
