package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/forecastlab/forecastlab/internal/models"
)

// ListConfigs returns all saved configurations.
// GET /configs
func (h *Handler) ListConfigs(c *fiber.Ctx) error {
	return c.JSON(h.configService.List())
}

// GetConfig returns one saved configuration.
// GET /configs/:config_id
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	saved, err := h.configService.Get(c.Params("config_id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(saved)
}

// SaveConfig persists a configuration for reuse.
// POST /configs
func (h *Handler) SaveConfig(c *fiber.Ctx) error {
	var body models.SavedConfigRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}

	saved, err := h.configService.Save(&body)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// DeleteConfig removes a saved configuration.
// DELETE /configs/:config_id
func (h *Handler) DeleteConfig(c *fiber.Ctx) error {
	if err := h.configService.Delete(c.Params("config_id")); err != nil {
		return h.serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
