package handlers

import (
	"errors"

	"bioponto/internal/core/domain"
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// VacationHandler handles vacation period endpoints
type VacationHandler struct {
	vacationService *services.VacationService
}

// NewVacationHandler creates a new vacation handler
func NewVacationHandler(vacationService *services.VacationService) *VacationHandler {
	return &VacationHandler{vacationService: vacationService}
}

// CreateVacation registers a vacation period; both dates are inclusive
// @Summary Register vacation
// @Tags Vacations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateVacationInput true "Vacation period"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /vacations [post]
func (h *VacationHandler) CreateVacation(c *fiber.Ctx) error {
	var req services.CreateVacationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	createdBy, _ := c.Locals("userID").(uint)

	period, err := h.vacationService.CreateVacation(c.Context(), &req, createdBy)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Dates must be YYYY-MM-DD with start_date not after end_date")
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, services.ErrVacationOverlap):
			return response.Conflict(c, "Vacation overlaps an existing period")
		default:
			return response.InternalServerError(c, "Failed to register vacation")
		}
	}

	return response.Created(c, "Vacation registered successfully", fiber.Map{
		"vacation": period,
	})
}

// ListByEmployee lists an employee's vacation periods
// @Summary List vacations of an employee
// @Tags Vacations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Response
// @Router /employees/{id}/vacations [get]
func (h *VacationHandler) ListByEmployee(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid employee ID")
	}

	periods, err := h.vacationService.ListByEmployee(c.Context(), id)
	if err != nil {
		return response.InternalServerError(c, "Failed to list vacations")
	}

	return response.Success(c, "Vacations retrieved successfully", fiber.Map{
		"vacations": periods,
	})
}

// DeleteVacation removes a vacation period
// @Summary Delete vacation
// @Tags Vacations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vacation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /vacations/{id} [delete]
func (h *VacationHandler) DeleteVacation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid vacation ID")
	}

	if err := h.vacationService.DeleteVacation(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrVacationNotFound) {
			return response.NotFound(c, "Vacation not found")
		}
		return response.InternalServerError(c, "Failed to delete vacation")
	}

	return response.Success(c, "Vacation deleted successfully", nil)
}
