// Package router wires the Fiber application, middlewares and API routes.
package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/forecastlab/forecastlab/internal/config"
	"github.com/forecastlab/forecastlab/internal/forecast"
	"github.com/forecastlab/forecastlab/internal/handlers"
	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/middleware"
	"github.com/forecastlab/forecastlab/internal/store"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, engine *forecast.Engine,
	uploads store.UploadStore, configs *store.ConfigStore, cfg config.Config,
) *handlers.Handler {
	// Create handler instance
	h := handlers.New(logger, engine, uploads, configs, cfg.Forecast)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check
	app.Get("/health", h.Health)

	// Data Routes
	app.Post("/upload", h.Upload)
	app.Get("/datasets", h.ListDatasets)
	app.Get("/datasets/:dataset_id", h.GetDataset)

	// Forecast Routes
	app.Post("/forecast", h.Forecast)
	app.Post("/forecast/batch", h.ForecastBatch)
	app.Post("/backtest", h.Backtest)

	// Saved Configuration Routes
	app.Get("/configs", h.ListConfigs)
	app.Get("/configs/:config_id", h.GetConfig)
	app.Post("/configs", h.SaveConfig)
	app.Delete("/configs/:config_id", h.DeleteConfig)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, engine *forecast.Engine,
	uploads store.UploadStore, configs *store.ConfigStore, cfg config.Config,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ForecastLab API",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, engine, uploads, configs, cfg)

	return app
}
