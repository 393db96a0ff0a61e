package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nathanntongai/plantmaint-backend/internal/models"
	"github.com/nathanntongai/plantmaint-backend/internal/storage"
)

// MaintenanceHandler handles preventive-maintenance tasks
type MaintenanceHandler struct {
	store storage.Store
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(store storage.Store) *MaintenanceHandler {
	return &MaintenanceHandler{store: store}
}

// ListTasks returns the company's maintenance tasks ordered by due date
func (h *MaintenanceHandler) ListTasks(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	tasks, err := h.store.GetMaintenanceTasksByCompany(companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve maintenance tasks",
		})
	}

	return c.JSON(fiber.Map{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// CreateTask schedules a new maintenance task
func (h *MaintenanceHandler) CreateTask(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	var req models.MaintenanceTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The machine must belong to the same company
	if _, err := h.store.GetMachine(companyID, req.MachineID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Machine not found",
		})
	}

	task, err := h.store.CreateMaintenanceTask(&models.MaintenanceTask{
		CompanyID:     companyID,
		MachineID:     req.MachineID,
		Title:         req.Title,
		Description:   req.Description,
		FrequencyDays: req.FrequencyDays,
		NextDueAt:     req.NextDueAt,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create maintenance task",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Maintenance task created successfully",
		"task":    task,
	})
}

// CompleteTask marks a task done and rolls its due date forward
func (h *MaintenanceHandler) CompleteTask(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task ID",
		})
	}

	task, err := h.store.GetMaintenanceTask(companyID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Maintenance task not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve maintenance task",
		})
	}

	task.MarkCompleted(time.Now())

	if err := h.store.UpdateMaintenanceTask(task); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update maintenance task",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Maintenance task completed",
		"task":    task,
	})
}
