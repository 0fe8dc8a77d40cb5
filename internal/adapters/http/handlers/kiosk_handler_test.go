package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bioponto/internal/core/domain"
	"bioponto/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPunches struct {
	outcome *domain.PunchOutcome
	emp     *domain.Employee
	err     error
	got     services.PunchRequest
}

func (s *stubPunches) SubmitPunch(_ context.Context, req services.PunchRequest) (*domain.PunchOutcome, error) {
	s.got = req
	return s.outcome, s.err
}

func (s *stubPunches) Identify(context.Context) (*domain.Employee, error) {
	return s.emp, s.err
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func kioskApp(stub *stubPunches) *fiber.App {
	app := fiber.New()
	h := NewKioskHandler(stub)
	app.Post("/kiosk/punch", h.Punch)
	app.Post("/kiosk/identify", h.Identify)
	return app
}

func doJSON(t *testing.T, app *fiber.App, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func entryOutcome() *domain.PunchOutcome {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return &domain.PunchOutcome{
		Kind:         domain.PunchEntry,
		Employee:     domain.Employee{ID: 1, Name: "Ana"},
		Record:       domain.PunchRecord{ID: 7, EmployeeID: 1, UnitID: 10, Date: day, EntryAt: entry},
		ReportedDate: day,
		At:           entry,
		Message:      "Entry registered for Ana",
	}
}

func TestKioskPunchSuccess(t *testing.T) {
	stub := &stubPunches{outcome: entryOutcome()}

	status, env := doJSON(t, kioskApp(stub), "/kiosk/punch", `{"unit_id":10,"time":"09:00:00"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, services.PunchRequest{TerminalUnitID: 10, Time: "09:00:00"}, stub.got)

	var data PunchResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "entry", data.Kind)
	assert.Equal(t, "2025-03-10", data.Date)
	assert.Equal(t, "09:00:00", data.EntryTime)
	assert.Nil(t, data.ExitTime)
}

func TestKioskPunchRequiresUnit(t *testing.T) {
	stub := &stubPunches{}

	status, env := doJSON(t, kioskApp(stub), "/kiosk/punch", `{}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", env.Code)
}

func TestKioskPunchErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"device unavailable", fmt.Errorf("open: %w", domain.ErrDeviceUnavailable), http.StatusServiceUnavailable, "DEVICE_UNAVAILABLE"},
		{"capture failed", domain.ErrCaptureFailed, http.StatusServiceUnavailable, "CAPTURE_FAILED"},
		{"not recognized", domain.ErrNotRecognized, http.StatusUnauthorized, "NOT_RECOGNIZED"},
		{"on vacation", domain.NewOnVacation(), http.StatusBadRequest, "ON_VACATION"},
		{"completed today", domain.NewCompletedToday("2025-03-10"), http.StatusBadRequest, "COMPLETED_TODAY"},
		{"inconsistent", domain.NewInconsistentState("two open punches"), http.StatusInternalServerError, "INCONSISTENT_STATE"},
		{"pending exists", domain.ErrPendingPunchExists, http.StatusConflict, "PENDING_EXISTS"},
		{"already closed", domain.ErrPunchAlreadyClosed, http.StatusConflict, "ALREADY_CLOSED"},
		{"bad instant", domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doJSON(t, kioskApp(&stubPunches{err: tt.err}), "/kiosk/punch", `{"unit_id":10}`)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestKioskPunchRejectionDetails(t *testing.T) {
	status, env := doJSON(t, kioskApp(&stubPunches{err: domain.NewUnitMismatch("UBS Centro", "Hospital Municipal")}), "/kiosk/punch", `{"unit_id":20}`)

	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(env.Data), `"employee_unit":"UBS Centro"`)
	assert.Contains(t, string(env.Data), `"terminal_unit":"Hospital Municipal"`)

	status, env = doJSON(t, kioskApp(&stubPunches{err: domain.NewDebounce(3)}), "/kiosk/punch", `{"unit_id":10}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DEBOUNCE", env.Code)
	assert.Contains(t, string(env.Data), `"remaining_minutes":3`)
}

func TestKioskPunchDownstreamFailureCarriesOutcome(t *testing.T) {
	stub := &stubPunches{
		outcome: entryOutcome(),
		err:     fmt.Errorf("%w: %w", domain.ErrDownstreamRegistrationFailed, errors.New("status=500")),
	}

	status, env := doJSON(t, kioskApp(stub), "/kiosk/punch", `{"unit_id":10}`)

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "REGISTRATION_FAILED", env.Code)
	var data PunchResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, uint(7), data.RecordID)
}

func TestKioskIdentify(t *testing.T) {
	stub := &stubPunches{emp: &domain.Employee{ID: 1, Name: "Ana", UnitID: 10, ShiftType: domain.Shift12h}}

	status, env := doJSON(t, kioskApp(stub), "/kiosk/identify", ``)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"name":"Ana"`)

	status, env = doJSON(t, kioskApp(&stubPunches{err: domain.ErrNotRecognized}), "/kiosk/identify", ``)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "NOT_RECOGNIZED", env.Code)
}
