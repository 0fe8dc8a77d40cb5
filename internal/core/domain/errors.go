package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Device errors
var (
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrCaptureFailed     = errors.New("fingerprint capture failed")
)

// Punch errors
var (
	ErrNotRecognized                = errors.New("fingerprint not recognized")
	ErrEmployeeNotFound             = errors.New("employee not found")
	ErrPunchRejected                = errors.New("punch rejected")
	ErrPendingPunchExists           = errors.New("employee already has a pending punch")
	ErrPunchAlreadyClosed           = errors.New("punch record already closed")
	ErrDownstreamRegistrationFailed = errors.New("downstream punch registration failed")
)

// RejectionReason is the machine readable cause of a rejected punch.
type RejectionReason string

const (
	ReasonOnVacation        RejectionReason = "ON_VACATION"
	ReasonUnitMismatch      RejectionReason = "UNIT_MISMATCH"
	ReasonDebounce          RejectionReason = "DEBOUNCE"
	ReasonCompletedToday    RejectionReason = "COMPLETED_TODAY"
	ReasonInconsistentState RejectionReason = "INCONSISTENT_STATE"
)

// RejectionError is returned when a business rule prevents a punch from being
// recorded. Nothing has been written when it is returned.
type RejectionError struct {
	Reason  RejectionReason
	Message string

	// UnitMismatch
	EmployeeUnit string
	TerminalUnit string

	// Debounce
	RemainingMinutes int
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Unwrap lets callers match any rejection with errors.Is(err, ErrPunchRejected).
func (e *RejectionError) Unwrap() error {
	return ErrPunchRejected
}

// NewOnVacation builds the vacation rejection.
func NewOnVacation() *RejectionError {
	return &RejectionError{
		Reason:  ReasonOnVacation,
		Message: "employee is on vacation and cannot punch",
	}
}

// NewUnitMismatch builds the unit rejection with the display names (or raw ids).
func NewUnitMismatch(employeeUnit, terminalUnit string) *RejectionError {
	return &RejectionError{
		Reason:       ReasonUnitMismatch,
		Message:      fmt.Sprintf("employee belongs to unit %s, not to unit %s", employeeUnit, terminalUnit),
		EmployeeUnit: employeeUnit,
		TerminalUnit: terminalUnit,
	}
}

// NewDebounce builds the minimum interval rejection.
func NewDebounce(remaining int) *RejectionError {
	return &RejectionError{
		Reason:           ReasonDebounce,
		Message:          fmt.Sprintf("must wait %d more minute(s) after the entry to register the exit", remaining),
		RemainingMinutes: remaining,
	}
}

// NewCompletedToday builds the rejection for a day whose cycle is already closed.
func NewCompletedToday(day string) *RejectionError {
	return &RejectionError{
		Reason:  ReasonCompletedToday,
		Message: fmt.Sprintf("already completed today (%s)", day),
	}
}

// NewInconsistentState builds the rejection for an unclassifiable history.
func NewInconsistentState(detail string) *RejectionError {
	return &RejectionError{
		Reason:  ReasonInconsistentState,
		Message: "unrecognized punch state: " + detail,
	}
}

// AsRejection extracts a *RejectionError from err.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
