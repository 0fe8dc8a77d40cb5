package handlers

import (
	"context"
	"errors"

	"bioponto/internal/core/domain"
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PunchSubmitter is the part of services.PunchService used by the kiosk
type PunchSubmitter interface {
	SubmitPunch(ctx context.Context, req services.PunchRequest) (*domain.PunchOutcome, error)
	Identify(ctx context.Context) (*domain.Employee, error)
}

// KioskHandler handles the time clock terminal endpoints
type KioskHandler struct {
	punchService PunchSubmitter
}

// NewKioskHandler creates a new kiosk handler
func NewKioskHandler(punchService PunchSubmitter) *KioskHandler {
	return &KioskHandler{punchService: punchService}
}

// PunchRequest represents a punch request body. Date and time are optional
// and default to the server clock.
type PunchRequest struct {
	UnitID uint   `json:"unit_id"`
	Date   string `json:"date,omitempty"` // 2006-01-02
	Time   string `json:"time,omitempty"` // 15:04:05
}

// PunchResponse is the kiosk view of an accepted punch
type PunchResponse struct {
	Kind         string  `json:"kind"`
	EmployeeID   uint    `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	RecordID     uint    `json:"record_id"`
	UnitID       uint    `json:"unit_id"`
	Date         string  `json:"date"`
	EntryTime    string  `json:"entry_time"`
	ExitTime     *string `json:"exit_time"`
	Message      string  `json:"message"`
}

func toPunchResponse(o *domain.PunchOutcome) *PunchResponse {
	resp := &PunchResponse{
		Kind:         string(o.Kind),
		EmployeeID:   o.Employee.ID,
		EmployeeName: o.Employee.Name,
		RecordID:     o.Record.ID,
		UnitID:       o.Record.UnitID,
		Date:         o.ReportedDate.Format(domain.DateLayout),
		EntryTime:    o.Record.EntryAt.Format(domain.TimeLayout),
		Message:      o.Message,
	}
	if o.Record.ExitAt != nil {
		exit := o.Record.ExitAt.Format(domain.TimeLayout)
		resp.ExitTime = &exit
	}
	return resp
}

// Punch identifies the finger on the reader and records an entry or exit
// @Summary Register a punch
// @Description Capture a fingerprint at the terminal and record an entry or exit
// @Tags Kiosk
// @Accept json
// @Produce json
// @Security KioskKey
// @Param body body PunchRequest true "Terminal unit"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /kiosk/punch [post]
func (h *KioskHandler) Punch(c *fiber.Ctx) error {
	var req PunchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UnitID == 0 {
		return response.Fail(c, fiber.StatusBadRequest, "INVALID_INPUT", "Terminal unit_id is required", nil)
	}

	outcome, err := h.punchService.SubmitPunch(c.UserContext(), services.PunchRequest{
		TerminalUnitID: req.UnitID,
		Date:           req.Date,
		Time:           req.Time,
	})
	if err != nil {
		return punchError(c, err, outcome)
	}

	return response.Success(c, outcome.Message, toPunchResponse(outcome))
}

// Identify only identifies the finger on the reader
// @Summary Identify employee
// @Description Capture a fingerprint and return the matching employee without punching
// @Tags Kiosk
// @Produce json
// @Security KioskKey
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /kiosk/identify [post]
func (h *KioskHandler) Identify(c *fiber.Ctx) error {
	emp, err := h.punchService.Identify(c.UserContext())
	if err != nil {
		return punchError(c, err, nil)
	}

	return response.Success(c, "Employee identified", fiber.Map{
		"employee_id": emp.ID,
		"name":        emp.Name,
		"unit_id":     emp.UnitID,
		"shift_type":  emp.ShiftType,
	})
}

// punchError maps the punch pipeline errors to status codes. A downstream
// failure still carries the committed outcome.
func punchError(c *fiber.Ctx, err error, outcome *domain.PunchOutcome) error {
	if rej, ok := domain.AsRejection(err); ok {
		switch rej.Reason {
		case domain.ReasonUnitMismatch:
			return response.Fail(c, fiber.StatusForbidden, string(rej.Reason), rej.Message, fiber.Map{
				"employee_unit": rej.EmployeeUnit,
				"terminal_unit": rej.TerminalUnit,
			})
		case domain.ReasonDebounce:
			return response.Fail(c, fiber.StatusBadRequest, string(rej.Reason), rej.Message, fiber.Map{
				"remaining_minutes": rej.RemainingMinutes,
			})
		case domain.ReasonInconsistentState:
			return response.Fail(c, fiber.StatusInternalServerError, string(rej.Reason), rej.Message, nil)
		default:
			return response.Fail(c, fiber.StatusBadRequest, string(rej.Reason), rej.Message, nil)
		}
	}

	switch {
	case errors.Is(err, domain.ErrDownstreamRegistrationFailed):
		var data *PunchResponse
		if outcome != nil {
			data = toPunchResponse(outcome)
		}
		return response.Fail(c, fiber.StatusBadGateway, "REGISTRATION_FAILED",
			"Punch saved locally but the payroll system did not accept it", data)
	case errors.Is(err, domain.ErrDeviceUnavailable):
		return response.Fail(c, fiber.StatusServiceUnavailable, "DEVICE_UNAVAILABLE", "Fingerprint reader unavailable, try again", nil)
	case errors.Is(err, domain.ErrCaptureFailed):
		return response.Fail(c, fiber.StatusServiceUnavailable, "CAPTURE_FAILED", "Could not read the fingerprint, try again", nil)
	case errors.Is(err, domain.ErrNotRecognized):
		return response.Fail(c, fiber.StatusUnauthorized, "NOT_RECOGNIZED", "Fingerprint not recognized", nil)
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return response.Fail(c, fiber.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found", nil)
	case errors.Is(err, domain.ErrInvalidInput):
		return response.Fail(c, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid date or time", nil)
	case errors.Is(err, domain.ErrPendingPunchExists):
		return response.Fail(c, fiber.StatusConflict, "PENDING_EXISTS", "An entry is already open, punch again to register the exit", nil)
	case errors.Is(err, domain.ErrPunchAlreadyClosed):
		return response.Fail(c, fiber.StatusConflict, "ALREADY_CLOSED", "This punch was already closed, punch again", nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return response.Fail(c, fiber.StatusServiceUnavailable, "TIMEOUT", "Reader timed out, try again", nil)
	default:
		return response.InternalServerError(c, "Failed to register punch")
	}
}
