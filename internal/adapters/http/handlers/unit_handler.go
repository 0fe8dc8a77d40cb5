package handlers

import (
	"errors"

	"bioponto/internal/core/domain"
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UnitHandler handles workplace endpoints
type UnitHandler struct {
	unitService *services.UnitService
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(unitService *services.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// ListUnits lists all units
// @Summary List units
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /units [get]
func (h *UnitHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.unitService.ListUnits(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list units")
	}

	return response.Success(c, "Units retrieved successfully", fiber.Map{
		"units": units,
	})
}

// GetUnit gets a unit by ID
// @Summary Get unit
// @Tags Units
// @Produce json
// @Security BearerAuth
// @Param id path int true "Unit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /units/{id} [get]
func (h *UnitHandler) GetUnit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	unit, err := h.unitService.GetUnit(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUnitNotFound) {
			return response.NotFound(c, "Unit not found")
		}
		return response.InternalServerError(c, "Failed to get unit")
	}

	return response.Success(c, "Unit retrieved successfully", fiber.Map{
		"unit": unit,
	})
}

// CreateUnit creates a unit (Admin only)
// @Summary Create unit
// @Tags Units
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUnitInput true "Unit data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /units [post]
func (h *UnitHandler) CreateUnit(c *fiber.Ctx) error {
	var req services.CreateUnitInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	unit, err := h.unitService.CreateUnit(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Name is required")
		case errors.Is(err, services.ErrUnitNameExists):
			return response.Conflict(c, "Unit name already exists")
		default:
			return response.InternalServerError(c, "Failed to create unit")
		}
	}

	return response.Created(c, "Unit created successfully", fiber.Map{
		"unit": unit,
	})
}
