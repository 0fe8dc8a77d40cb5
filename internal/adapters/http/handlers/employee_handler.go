package handlers

import (
	"errors"
	"strconv"

	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/pagination"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EmployeeHandler handles employee registration and biometric enrollment
type EmployeeHandler struct {
	employeeService *services.EmployeeService
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(employeeService *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// ListEmployees lists employees ordered by name
// @Summary List employees
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param unit_id query int false "Filter by unit"
// @Param search query string false "Name, CPF or matricula"
// @Success 200 {object} response.Response
// @Router /employees [get]
func (h *EmployeeHandler) ListEmployees(c *fiber.Ctx) error {
	filter := repositories.EmployeeFilter{Search: c.Query("search")}
	if raw := c.Query("unit_id"); raw != "" {
		unitID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid unit_id")
		}
		u := uint(unitID)
		filter.UnitID = &u
	}

	result, err := h.employeeService.ListEmployees(c.Context(), pagination.GetParams(c), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to list employees")
	}

	return response.Success(c, "Employees retrieved successfully", result)
}

// GetEmployee gets an employee by ID
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid employee ID")
	}

	emp, err := h.employeeService.GetEmployee(c.Context(), id)
	if err != nil {
		return employeeError(c, err, "Failed to get employee")
	}

	return response.Success(c, "Employee retrieved successfully", fiber.Map{
		"employee": emp,
	})
}

// CreateEmployee registers an employee. With capture_biometric the employee
// must be at the reader while the request runs.
// @Summary Register employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateEmployeeInput true "Employee data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c *fiber.Ctx) error {
	var req services.CreateEmployeeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	emp, err := h.employeeService.CreateEmployee(c.UserContext(), &req)
	if err != nil {
		return employeeError(c, err, "Failed to register employee")
	}

	return response.Created(c, "Employee registered successfully", fiber.Map{
		"employee": emp,
	})
}

// UpdateEmployee applies a partial update
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Param body body services.UpdateEmployeeInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid employee ID")
	}

	var req services.UpdateEmployeeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	emp, err := h.employeeService.UpdateEmployee(c.Context(), id, &req)
	if err != nil {
		return employeeError(c, err, "Failed to update employee")
	}

	return response.Success(c, "Employee updated successfully", fiber.Map{
		"employee": emp,
	})
}

// UpdateBiometric re-enrolls the employee's fingerprint from the reader
// @Summary Re-enroll fingerprint
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /employees/{id}/biometric [put]
func (h *EmployeeHandler) UpdateBiometric(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid employee ID")
	}

	emp, err := h.employeeService.UpdateBiometric(c.UserContext(), id)
	if err != nil {
		return employeeError(c, err, "Failed to update biometric")
	}

	return response.Success(c, "Biometric updated successfully", fiber.Map{
		"employee": emp,
	})
}

func employeeError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return response.NotFound(c, "Employee not found")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Name, 11 digit CPF, matricula and unit are required")
	case errors.Is(err, services.ErrInvalidShiftType):
		return response.BadRequest(c, "Invalid shift type. Must be 8h, 12h, 24h or 24x72")
	case errors.Is(err, services.ErrUnitNotFound):
		return response.BadRequest(c, "Unit not found")
	case errors.Is(err, services.ErrCPFAlreadyExists):
		return response.Conflict(c, "CPF already registered")
	case errors.Is(err, services.ErrMatriculaExists):
		return response.Conflict(c, "Matricula already registered")
	case errors.Is(err, services.ErrEmployeeEmailExists):
		return response.Conflict(c, "Email already registered")
	case errors.Is(err, services.ErrTemplateInUse):
		return response.Fail(c, fiber.StatusConflict, "TEMPLATE_IN_USE", "Fingerprint already enrolled for another employee", nil)
	case errors.Is(err, domain.ErrDeviceUnavailable):
		return response.Fail(c, fiber.StatusServiceUnavailable, "DEVICE_UNAVAILABLE", "Fingerprint reader unavailable, try again", nil)
	case errors.Is(err, domain.ErrCaptureFailed):
		return response.Fail(c, fiber.StatusServiceUnavailable, "CAPTURE_FAILED", "Could not read the fingerprint, try again", nil)
	default:
		return response.InternalServerError(c, fallback)
	}
}
