package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/forecastlab/forecastlab/internal/models"
)

// Forecast runs a single configuration against an uploaded, bundled or
// inline series.
// POST /forecast
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var body models.ForecastRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}

	tbl, err := h.dataService.Resolve(c.Context(), body.DataSource)
	if err != nil {
		return h.serviceError(c, err)
	}

	resp, err := h.forecastService.Forecast(tbl, body.Config)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// ForecastBatch runs several configurations on the same series and returns
// results with a leaderboard.
// POST /forecast/batch
func (h *Handler) ForecastBatch(c *fiber.Ctx) error {
	var body models.BatchForecastRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}

	tbl, err := h.dataService.Resolve(c.Context(), body.DataSource)
	if err != nil {
		return h.serviceError(c, err)
	}

	resp, err := h.forecastService.ForecastBatch(tbl, &body)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// Backtest runs rolling-window backtests across one or more configurations.
// POST /backtest
func (h *Handler) Backtest(c *fiber.Ctx) error {
	var body models.BacktestRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}

	tbl, err := h.dataService.Resolve(c.Context(), body.DataSource)
	if err != nil {
		return h.serviceError(c, err)
	}

	resp, err := h.forecastService.Backtest(tbl, &body)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}
