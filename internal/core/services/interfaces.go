package services

import (
	"context"
	"time"

	"bioponto/internal/core/domain"
)

// Note: AuthService implementation is in auth_service.go
// Note: Registrar and Notifier live in outbound.go so mockgen can target them alone

// CaptureDevice is the vendor fingerprint reader. It must only be used inside
// a DeviceGuard session.
type CaptureDevice interface {
	Open(ctx context.Context) error
	Capture(ctx context.Context, purpose domain.CapturePurpose) (domain.Template, error)
	CompareOneToOne(ctx context.Context, a, b domain.Template) (bool, error)
	Close() error
}

// TemplateSource returns every enrolled template, ascending by employee id,
// skipping employees without one.
type TemplateSource interface {
	ListTemplates(ctx context.Context) ([]domain.Candidate, error)
}

// EmployeeReader loads employees for the punch pipeline.
type EmployeeReader interface {
	GetEmployee(ctx context.Context, id uint) (*domain.Employee, error)
}

// VacationChecker answers whether a vacation period covers a day.
type VacationChecker interface {
	IsOnVacation(ctx context.Context, employeeID uint, day time.Time) (bool, error)
}

// UnitDirectory resolves unit display names.
type UnitDirectory interface {
	UnitName(ctx context.Context, id uint) (string, error)
}

// PunchHistory reads punch records whose calendar date is within [from, to],
// most recent entry first.
type PunchHistory interface {
	FindInWindow(ctx context.Context, employeeID uint, from, to time.Time) ([]domain.PunchRecord, error)
}

// PunchStore persists punches.
//
// CreateEntry must re-check, under a storage lock on the employee, that no
// pending record exists with date >= windowStart and return
// domain.ErrPendingPunchExists otherwise. CloseExit must only update a record
// whose exit is still empty and return domain.ErrPunchAlreadyClosed otherwise.
type PunchStore interface {
	PunchHistory
	CreateEntry(ctx context.Context, rec *domain.PunchRecord, windowStart time.Time) error
	CloseExit(ctx context.Context, recordID uint, exitAt time.Time) error
}

// Clock returns the current local time
type Clock func() time.Time
