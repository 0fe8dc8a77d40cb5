package handlers

import (
	"errors"

	"bioponto/internal/core/domain"
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/pagination"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PunchRecordHandler serves the timesheet queries
type PunchRecordHandler struct {
	recordService *services.PunchRecordService
}

// NewPunchRecordHandler creates a new punch record handler
func NewPunchRecordHandler(recordService *services.PunchRecordService) *PunchRecordHandler {
	return &PunchRecordHandler{recordService: recordService}
}

// ListByEmployee lists one employee's punches of a month
// @Summary Employee punches of a month
// @Tags Punches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /employees/{id}/punches [get]
func (h *PunchRecordHandler) ListByEmployee(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid employee ID")
	}
	year, month, ok := monthQuery(c)
	if !ok {
		return response.BadRequest(c, "year and month are required")
	}

	result, err := h.recordService.ListByEmployee(c.Context(), id, year, month, pagination.GetParams(c))
	if err != nil {
		return monthError(c, err)
	}

	return response.Success(c, "Punches retrieved successfully", result)
}

// UnitSheet builds the month sheet of a unit
// @Summary Unit month sheet
// @Description Punches of a unit grouped by employee with worked hours
// @Tags Punches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Unit ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /units/{id}/punches [get]
func (h *PunchRecordHandler) UnitSheet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid unit ID")
	}
	year, month, ok := monthQuery(c)
	if !ok {
		return response.BadRequest(c, "year and month are required")
	}

	sheet, err := h.recordService.UnitSheet(c.Context(), id, year, month)
	if err != nil {
		return monthError(c, err)
	}

	return response.Success(c, "Unit sheet retrieved successfully", sheet)
}

func monthError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return response.BadRequest(c, "Invalid year or month")
	}
	return response.InternalServerError(c, "Failed to list punches")
}
