package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nathanntongai/plantmaint-backend/internal/models"
	"github.com/nathanntongai/plantmaint-backend/internal/storage"
)

// BreakdownHandler handles breakdown-related requests
type BreakdownHandler struct {
	store storage.Store
}

// NewBreakdownHandler creates a new breakdown handler
func NewBreakdownHandler(store storage.Store) *BreakdownHandler {
	return &BreakdownHandler{store: store}
}

// ListBreakdowns returns the company's breakdowns, newest first
func (h *BreakdownHandler) ListBreakdowns(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	breakdowns, err := h.store.GetBreakdownsByCompany(companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve breakdowns",
		})
	}

	return c.JSON(fiber.Map{
		"breakdowns": breakdowns,
		"count":      len(breakdowns),
	})
}

// GetBreakdown retrieves one breakdown by ID
func (h *BreakdownHandler) GetBreakdown(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid breakdown ID",
		})
	}

	breakdown, err := h.store.GetBreakdown(companyID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Breakdown not found",
		})
	}

	return c.JSON(breakdown)
}

// UpdateBreakdownStatus moves a breakdown through its lifecycle
func (h *BreakdownHandler) UpdateBreakdownStatus(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid breakdown ID",
		})
	}

	var req models.BreakdownStatusUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}

	if err := h.store.UpdateBreakdownStatus(companyID, id, req.Status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Breakdown not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update breakdown status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Breakdown status updated successfully",
	})
}
