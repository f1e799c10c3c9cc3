package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/scoreboard/internal/api"
	"github.com/mcoot/scoreboard/internal/config"
	"github.com/mcoot/scoreboard/internal/dependencies/clock"
	"github.com/mcoot/scoreboard/internal/dependencies/idgen"
	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/services/auth"
	"github.com/mcoot/scoreboard/internal/services/password"
	"github.com/mcoot/scoreboard/internal/services/scores"
	"github.com/mcoot/scoreboard/internal/services/token"
	"github.com/mcoot/scoreboard/internal/storage"
	"github.com/mcoot/scoreboard/internal/storage/memory"
	redisstorage "github.com/mcoot/scoreboard/internal/storage/redis"
	"github.com/mcoot/scoreboard/internal/storage/sqlstore"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Services
	Tokens        *token.Manager
	AuthService   *auth.Service
	ScoresService *scores.Service

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseConfig holds relational settings (required if StorageType is "sql")
	DatabaseConfig *sqlstore.Config
	// TokenConfig holds signing settings
	// If the secret is empty, the insecure default secret is used
	TokenConfig token.Config
	// PasswordCost is the bcrypt cost (optional, defaults to password.DefaultCost)
	PasswordCost int
}

// FromEnv builds a factory Config from loaded environment configuration
func FromEnv(cfg *config.Config, logger *slog.Logger) Config {
	redisCfg := cfg.RedisConfig()
	dbCfg := cfg.DatabaseConfig()
	return Config{
		Logger:         logger,
		StorageType:    cfg.StorageType,
		RedisConfig:    &redisCfg,
		DatabaseConfig: &dbCfg,
		TokenConfig: token.Config{
			Secret: cfg.JWT.Secret,
			TTL:    cfg.JWT.TTL,
		},
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case config.StorageSQL:
		if cfg.DatabaseConfig == nil {
			return nil, errors.New("DatabaseConfig required when StorageType is sql")
		}
		sqlStore, err := sqlstore.Open(ctx, *cfg.DatabaseConfig, logger)
		if err != nil {
			return nil, err
		}
		store = sqlStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sql'")
	}

	// Create external dependencies
	clk := clock.New()
	ids := idgen.New()

	tokenCfg := cfg.TokenConfig
	if tokenCfg.Secret == "" {
		tokenCfg.Secret = config.InsecureDefaultJWTSecret
	}
	if tokenCfg.Secret == config.InsecureDefaultJWTSecret {
		logger.Warn("using insecure default JWT secret; set JWT_SECRET")
	}

	tokens, err := token.New(tokenCfg, clk)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	cost := cfg.PasswordCost
	if cost == 0 {
		cost = password.DefaultCost
	}

	return newWithDependencies(store, storageType, clk, ids, tokens, password.New(cost), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, storageType string, clk clock.Clock, ids idgen.Generator, tokens *token.Manager, hasher *password.Hasher, logger *slog.Logger) *App {
	// Create services
	authService := auth.New(store, hasher, tokens, ids, clk, logger)
	scoresService := scores.New(store, ids, clk, logger)

	return &App{
		Storage:       store,
		StorageType:   storageType,
		Clock:         clk,
		IDs:           ids,
		Tokens:        tokens,
		AuthService:   authService,
		ScoresService: scoresService,
		Logger:        logger,
	}
}

// Router builds the HTTP API for the app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:        a.Logger,
		AuthService:   a.AuthService,
		ScoresService: a.ScoresService,
		TokenVerifier: a.Tokens,
		Users:         a.Storage,
		Storage:       a.Storage,
		StorageType:   a.StorageType,
	})
}

// SeedUser registers the configured demo account. An account that already
// exists is left untouched.
func (a *App) SeedUser(ctx context.Context, seed config.Seed) error {
	if !seed.Enabled() {
		return nil
	}

	_, err := a.AuthService.Register(ctx, seed.Username, seed.Email, seed.Password)
	if errors.Is(err, model.ErrDuplicateIdentity) {
		a.Logger.Info("seed user already exists", slog.String("username", seed.Username))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	a.Logger.Info("seed user created", slog.String("username", seed.Username))
	return nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
