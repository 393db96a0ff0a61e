package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nathanntongai/plantmaint-backend/internal/models"
	"github.com/nathanntongai/plantmaint-backend/internal/storage"
)

// MachineHandler handles machine CRUD for the dashboard
type MachineHandler struct {
	store storage.Store
}

// NewMachineHandler creates a new machine handler
func NewMachineHandler(store storage.Store) *MachineHandler {
	return &MachineHandler{store: store}
}

// ListMachines returns the company's machines ordered by name
func (h *MachineHandler) ListMachines(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	machines, err := h.store.GetMachinesByCompany(companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve machines",
		})
	}

	return c.JSON(fiber.Map{
		"machines": machines,
		"count":    len(machines),
	})
}

// GetMachine retrieves one machine by ID
func (h *MachineHandler) GetMachine(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid machine ID",
		})
	}

	machine, err := h.store.GetMachine(companyID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Machine not found",
		})
	}

	return c.JSON(machine)
}

// CreateMachine registers a new machine for the company
func (h *MachineHandler) CreateMachine(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	var req models.MachineRequest
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

	machine, err := h.store.CreateMachine(&models.Machine{
		CompanyID:    companyID,
		Name:         req.Name,
		Location:     req.Location,
		SerialNumber: req.SerialNumber,
		Status:       req.Status,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create machine",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Machine created successfully",
		"machine": machine,
	})
}

// UpdateMachine updates a machine's details
func (h *MachineHandler) UpdateMachine(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid machine ID",
		})
	}

	var req models.MachineRequest
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

	machine, err := h.store.GetMachine(companyID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Machine not found",
		})
	}

	machine.Name = req.Name
	machine.Location = req.Location
	machine.SerialNumber = req.SerialNumber
	if req.Status != "" {
		machine.Status = req.Status
	}

	if err := h.store.UpdateMachine(machine); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update machine",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Machine updated successfully",
		"machine": machine,
	})
}

// DeleteMachine removes a machine
func (h *MachineHandler) DeleteMachine(c *fiber.Ctx) error {
	companyID := c.Locals("companyID").(uint)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid machine ID",
		})
	}

	if err := h.store.DeleteMachine(companyID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Machine not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete machine",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Machine deleted successfully",
	})
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
