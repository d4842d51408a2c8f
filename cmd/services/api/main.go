package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forecastlab/forecastlab/internal/config"
	"github.com/forecastlab/forecastlab/internal/forecast"
	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/router"
	"github.com/forecastlab/forecastlab/internal/store"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("API service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Select upload store backend
	var uploads store.UploadStore
	switch cfg.Store.UploadBackend {
	case "redis":
		logger.Info("Connecting to Redis upload store", "url", cfg.Store.RedisURL)
		redisStore, err := store.NewRedisUploadStore(context.Background(), cfg.Store.RedisURL, cfg.Store.UploadTTL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		uploads = redisStore
	default:
		uploads = store.NewMemoryUploadStore(cfg.Store.UploadTTL)
	}
	defer func() { _ = uploads.Close() }()

	// Saved configurations persist to a JSON file
	configs := store.NewConfigStore(cfg.Store.ConfigStorePath)
	logger.Info("Config store loaded", "path", cfg.Store.ConfigStorePath, "configs", len(configs.List()))

	// Forecast engine
	engine := forecast.NewEngine(logger, forecast.Capabilities{Tuning: cfg.Forecast.TuningEnabled})
	if cfg.Forecast.TuningEnabled {
		logger.Info("Hyperparameter tuning enabled")
	}

	// Initialize router
	app := router.New(logger, engine, uploads, configs, *cfg)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with 10 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
