package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// ListDatasets returns the bundled datasets with previews and recommended
// settings.
// GET /datasets
func (h *Handler) ListDatasets(c *fiber.Ctx) error {
	return c.JSON(h.dataService.ListDatasets())
}

// GetDataset returns the full records of one bundled dataset.
// GET /datasets/:dataset_id
func (h *Handler) GetDataset(c *fiber.Ctx) error {
	resp, err := h.dataService.GetDataset(c.Params("dataset_id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}
