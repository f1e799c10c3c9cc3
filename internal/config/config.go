// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	redisstorage "github.com/mcoot/scoreboard/internal/storage/redis"
	"github.com/mcoot/scoreboard/internal/storage/sqlstore"
)

// InsecureDefaultJWTSecret is the signing secret used when JWT_SECRET is
// unset. Anyone who knows it can mint tokens; it is refused in production.
const InsecureDefaultJWTSecret = "InsecureDefaultJWTSecret"

// EnvProduction is the APP_ENV value that enables production checks
const EnvProduction = "production"

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQL    = "sql"
)

// Config contains server configuration parameters.
type Config struct {
	AppEnv      string     `env:"APP_ENV" envDefault:"development"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	StorageType string     `env:"STORAGE_TYPE" envDefault:"memory"`
	HTTP        HTTP       `envPrefix:"HTTP_"`
	Redis       Redis      `envPrefix:"REDIS_"`
	Database    Database   `envPrefix:"DATABASE_"`
	JWT         JWT        `envPrefix:"JWT_"`
	Seed        Seed       `envPrefix:"SEED_"`
}

// HTTP contains listener parameters.
type HTTP struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"3001"`
}

// Redis contains document store connection parameters.
type Redis struct {
	URL string `env:"URL" envDefault:"redis://localhost:6379/0"`
}

// Database contains relational store connection parameters.
type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DSN" envDefault:"file:scoreboard.db"`
}

// JWT contains token signing parameters.
type JWT struct {
	Secret string        `env:"SECRET" envDefault:"InsecureDefaultJWTSecret"`
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

// Seed describes an optional demo user created at startup.
type Seed struct {
	Username string `env:"USERNAME"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

// Enabled reports whether a seed user was configured
func (s Seed) Enabled() bool {
	return s.Username != ""
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// IsProduction reports whether production checks apply
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

// Validate checks option values. In production it also refuses to run
// with any insecure default the selected configuration depends on.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case StorageMemory, StorageRedis:
	case StorageSQL:
		if _, err := sqlstore.ParseDriver(c.Database.Driver); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_TYPE %q: must be %q, %q or %q",
			c.StorageType, StorageMemory, StorageRedis, StorageSQL))
	}

	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWT.TTL < 0 {
		errs = append(errs, errors.New("JWT_TTL must not be negative"))
	}
	if c.Seed.Enabled() && (c.Seed.Email == "" || c.Seed.Password == "") {
		errs = append(errs, errors.New("SEED_EMAIL and SEED_PASSWORD are required with SEED_USERNAME"))
	}

	if c.IsProduction() {
		for _, name := range c.InsecureDefaults() {
			errs = append(errs, fmt.Errorf("%s uses an insecure default and must be set explicitly in production", name))
		}
	}

	return errors.Join(errs...)
}

// InsecureDefaults lists the variables still at an insecure default that
// the selected configuration actually uses.
func (c *Config) InsecureDefaults() []string {
	var names []string
	if c.JWT.Secret == InsecureDefaultJWTSecret {
		names = append(names, "JWT_SECRET")
	}
	switch c.StorageType {
	case StorageRedis:
		if c.Redis.URL == redisstorage.DefaultURL {
			names = append(names, "REDIS_URL")
		}
	case StorageSQL:
		if c.Database.DSN == sqlstore.DefaultDSN {
			names = append(names, "DATABASE_DSN")
		}
	}
	return names
}

// RedisConfig converts to the redis backend configuration
func (c *Config) RedisConfig() redisstorage.Config {
	cfg := redisstorage.DefaultConfig()
	cfg.URL = c.Redis.URL
	return cfg
}

// DatabaseConfig converts to the relational backend configuration
func (c *Config) DatabaseConfig() sqlstore.Config {
	cfg := sqlstore.DefaultConfig()
	cfg.Driver = sqlstore.Driver(c.Database.Driver)
	cfg.DSN = c.Database.DSN
	return cfg
}
