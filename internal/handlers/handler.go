// Package handlers contains the HTTP handlers of the forecasting API.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/forecastlab/forecastlab/internal/config"
	"github.com/forecastlab/forecastlab/internal/forecast"
	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/models"
	"github.com/forecastlab/forecastlab/internal/services"
	"github.com/forecastlab/forecastlab/internal/store"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger *logging.Logger
	// Services
	dataService     *services.DataService
	forecastService *services.ForecastService
	configService   *services.ConfigService
}

// New creates a new handler instance
func New(logger *logging.Logger, engine *forecast.Engine,
	uploads store.UploadStore, configs *store.ConfigStore,
	forecastCfg config.ForecastConfig,
) *Handler {
	dataService := services.NewDataService(logger, uploads, forecastCfg.MaxUploadBytes)
	forecastService := services.NewForecastService(logger, engine, forecastCfg.MaxHorizon, forecastCfg.MaxWindows)
	configService := services.NewConfigService(logger, configs)

	return &Handler{
		logger:          logger,
		dataService:     dataService,
		forecastService: forecastService,
		configService:   configService,
	}
}

// serviceError renders a service layer error with the matching HTTP status
func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	if svcErr, ok := err.(*services.ServiceError); ok {
		status := fiber.StatusInternalServerError
		switch svcErr.Code {
		case services.CodeValidation:
			status = fiber.StatusBadRequest
		case services.CodeNotFound:
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			},
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
		},
	})
}

func invalidJSON(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_JSON",
			Message: "Failed to parse JSON body",
			Details: map[string]interface{}{"error": err.Error()},
		},
	})
}
