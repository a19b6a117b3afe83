package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/multitetris/internal/dependencies/clock"
	"github.com/mcoot/multitetris/internal/dependencies/random"
	"github.com/mcoot/multitetris/internal/services/bot"
	"github.com/mcoot/multitetris/internal/services/room"
	"github.com/mcoot/multitetris/internal/storage"
	"github.com/mcoot/multitetris/internal/storage/memory"
	"github.com/mcoot/multitetris/internal/storage/postgres"
	redisstorage "github.com/mcoot/multitetris/internal/storage/redis"
	"github.com/mcoot/multitetris/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	History storage.HistoryStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Hub        *ws.Hub
	Rooms      *room.Manager
	WSHandler  *ws.Handler
	Bots       *bot.Service
	RoomConfig room.Config
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the history backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the postgres DSN (required if StorageType is "postgres")
	DatabaseURL string
	// RoomConfig holds registry settings (optional)
	// If zero value, defaults to room.DefaultConfig()
	RoomConfig room.Config
	// WSConfig holds websocket endpoint settings (optional)
	WSConfig ws.HandlerConfig
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	history, err := newHistoryStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	roomCfg := cfg.RoomConfig
	if roomCfg == (room.Config{}) {
		roomCfg = room.DefaultConfig()
	}

	return newWithDependencies(history, clk, rnd, roomCfg, cfg.WSConfig, logger), nil
}

// newHistoryStore creates the history backend selected by cfg.StorageType
func newHistoryStore(ctx context.Context, cfg Config, logger *slog.Logger) (storage.HistoryStore, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		store, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return store, nil
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	history storage.HistoryStore,
	clk clock.Clock,
	rnd random.Random,
	roomCfg room.Config,
	wsCfg ws.HandlerConfig,
	logger *slog.Logger,
) *App {
	hub := ws.NewHub(logger)
	rooms := room.NewManager(roomCfg, hub, history, clk, rnd, logger)
	wsHandler := ws.NewHandler(hub, rooms, rnd, wsCfg, logger)
	bots := bot.NewService(bot.DefaultStrategies(rnd), logger)

	return &App{
		History:    history,
		Clock:      clk,
		Random:     rnd,
		Hub:        hub,
		Rooms:      rooms,
		WSHandler:  wsHandler,
		Bots:       bots,
		RoomConfig: roomCfg,
	}
}

// Shutdown closes every connection, waits for room loops and pending
// history writes, then closes the history store
func (a *App) Shutdown(ctx context.Context) error {
	a.Hub.CloseAll()
	roomErr := a.Rooms.Shutdown(ctx)
	var closeErr error
	if a.History != nil {
		closeErr = a.History.Close()
	}
	return errors.Join(roomErr, closeErr)
}
