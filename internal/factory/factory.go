package factory

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/gamesessions/internal/authz"
	"github.com/mcoot/gamesessions/internal/config"
	"github.com/mcoot/gamesessions/internal/dependencies/clock"
	"github.com/mcoot/gamesessions/internal/dependencies/random"
	"github.com/mcoot/gamesessions/internal/directory"
	"github.com/mcoot/gamesessions/internal/services/credentials"
	"github.com/mcoot/gamesessions/internal/services/session"
	"github.com/mcoot/gamesessions/internal/storage"
	"github.com/mcoot/gamesessions/internal/storage/memory"
	redisstorage "github.com/mcoot/gamesessions/internal/storage/redis"
	sqlitestorage "github.com/mcoot/gamesessions/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Hasher    credentials.Hasher
	Policy    authz.Policy
	Directory directory.Directory

	// Services
	SessionManager *session.Manager

	closer io.Closer
}

// Close releases the storage backend's connections
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// New creates a new application with all dependencies wired
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	policy, err := authz.Parse(cfg.AuthzPolicy)
	if err != nil {
		return nil, err
	}

	dir := directory.NewMemory()
	if cfg.UserDirectoryFile != "" {
		dir, err = directory.LoadFile(cfg.UserDirectoryFile)
		if err != nil {
			return nil, err
		}
	}

	app := newWithDependencies(store, clock.New(), random.New(), credentials.NewBcrypt(cfg.BcryptCost), policy, dir, logger)
	app.closer = closer
	return app, nil
}

// newStorage creates storage based on type
func newStorage(cfg config.Config) (storage.Storage, io.Closer, error) {
	switch cfg.StorageType {
	case "", config.StorageTypeMemory:
		return memory.New(), nil, nil
	case config.StorageTypeRedis:
		if cfg.RedisURL == "" {
			return nil, nil, fmt.Errorf("RedisURL required when StorageType is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		if cfg.RedisPoolSize > 0 {
			redisCfg.PoolSize = cfg.RedisPoolSize
		}
		redisCfg.SessionTTL = cfg.SessionTTL
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StorageTypeSQLite:
		store, err := sqlitestorage.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be memory, redis or sqlite", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	hasher credentials.Hasher,
	policy authz.Policy,
	dir directory.Directory,
	logger *slog.Logger,
) *App {
	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Hasher:         hasher,
		Policy:         policy,
		Directory:      dir,
		SessionManager: session.NewManager(store, hasher, policy, clk, rnd, logger),
	}
}
