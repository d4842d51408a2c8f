package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/forecastlab/forecastlab/internal/models"
)

// Upload handles CSV uploads with optional column mapping
// POST /upload (multipart form: file, ds_col, y_col)
func (h *Handler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "A CSV file is required in the 'file' form field.",
			},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", "filename", fileHeader.Filename, "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to process upload.",
			},
		})
	}
	defer file.Close()

	resp, err := h.dataService.Upload(c.Context(), file, fileHeader.Size, c.FormValue("ds_col"), c.FormValue("y_col"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
