package services

//go:generate mockgen -source=outbound.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"bioponto/internal/core/domain"
)

// Registrar forwards a committed punch to the payroll system.
type Registrar interface {
	Register(ctx context.Context, reg domain.PunchRegistration) error
}

// Notifier delivers a best-effort message.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
