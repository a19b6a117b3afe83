package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/multitetris/internal/api"
	"github.com/mcoot/multitetris/internal/config"
	"github.com/mcoot/multitetris/internal/factory"
	"github.com/mcoot/multitetris/internal/services/room"
	redisstorage "github.com/mcoot/multitetris/internal/storage/redis"
	"github.com/mcoot/multitetris/internal/transport/ws"
)

// roomCleanupInterval is how often rooms with no connections are closed
const roomCleanupInterval = time.Minute

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	env := config.Load()

	// Build factory config from environment
	roomCfg := room.DefaultConfig()
	roomCfg.DefaultGravity = env.DefaultGravity
	roomCfg.TopN = env.TopN

	cfg := factory.Config{
		Logger:      logger,
		StorageType: env.StorageType,
		DatabaseURL: env.DatabaseURL,
		RoomConfig:  roomCfg,
		WSConfig:    ws.HandlerConfig{OriginPatterns: env.OriginPatterns},
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = env.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	if cfg.StorageType == factory.StorageTypePostgres && cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL required when STORAGE_TYPE=postgres")
		os.Exit(1)
	}

	// Create application factory
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := factory.New(startupCtx, cfg)
	cancelStartup()
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("history store ready", slog.String("storage_type", env.StorageType))

	// Create router for the API and the websocket endpoint
	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Rooms:      app.Rooms,
		History:    app.History,
		RoomConfig: app.RoomConfig,
		WSHandler:  app.WSHandler,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = env.Host
	serverConfig.Port = env.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Close idle rooms periodically
	go func() {
		ticker := time.NewTicker(roomCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := app.Rooms.CleanupEmptyRooms(ctx); n > 0 {
					logger.Info("closed empty rooms", slog.Int("count", n))
				}
			}
		}
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// Drain rooms and pending history writes
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancelDrain()
	if err := app.Shutdown(drainCtx); err != nil {
		logger.Error("application shutdown error", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
