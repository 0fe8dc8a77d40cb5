// Package registration forwards committed punches to the payroll system.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"bioponto/internal/config"
	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/httpx"
)

// ErrNotConfigured is returned when no payroll endpoint is set
var ErrNotConfigured = errors.New("registration endpoint not configured")

// Client posts PunchRegistration payloads; any 2xx is success
type Client struct {
	http  *http.Client
	url   string
	retry httpx.RetryConfig
}

// NewClient creates a registration client from config
func NewClient(cfg config.RegistrationConfig) *Client {
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		url:  cfg.URL,
		retry: httpx.RetryConfig{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   300 * time.Millisecond,
			MaxDelay:    3 * time.Second,
		},
	}
}

// IdempotencyHeader carries PunchRegistration.IdempotencyKey so the payroll
// system can drop a retried POST whose first attempt already landed.
const IdempotencyHeader = "Idempotency-Key"

// Register forwards one punch. Transient failures are retried with backoff;
// every attempt carries the same idempotency key.
func (c *Client) Register(ctx context.Context, reg domain.PunchRegistration) error {
	if c.url == "" {
		return ErrNotConfigured
	}

	header := http.Header{}
	header.Set(IdempotencyHeader, reg.IdempotencyKey())
	if _, err := httpx.PostJSONWithHeaders(ctx, c.http, c.url, reg, header, c.retry); err != nil {
		return fmt.Errorf("register punch of employee %d: %w", reg.EmployeeID, err)
	}

	log.Printf("📤 Punch registered downstream: employee=%d date=%s", reg.EmployeeID, reg.Date)
	return nil
}

// LogRegistrar only logs; used when no payroll endpoint is configured
type LogRegistrar struct{}

func (LogRegistrar) Register(_ context.Context, reg domain.PunchRegistration) error {
	log.Printf("📤 [no payroll endpoint] punch of employee %d on %s kept locally only", reg.EmployeeID, reg.Date)
	return nil
}
