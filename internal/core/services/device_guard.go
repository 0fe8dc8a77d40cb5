package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/metrics"

	"golang.org/x/sync/semaphore"
)

// DeviceGuard owns the single capture device. Every open/capture/compare/close
// sequence runs under one weighted semaphore of size 1 so two requests never
// interleave on the reader.
type DeviceGuard struct {
	device         CaptureDevice
	sem            *semaphore.Weighted
	captureTimeout time.Duration
	metrics        *metrics.Metrics
}

// NewDeviceGuard creates a new device guard
func NewDeviceGuard(device CaptureDevice, captureTimeout time.Duration, m *metrics.Metrics) *DeviceGuard {
	return &DeviceGuard{
		device:         device,
		sem:            semaphore.NewWeighted(1),
		captureTimeout: captureTimeout,
		metrics:        m,
	}
}

// DeviceSession is the handle given to work running inside the guard.
// It is only valid until the Run callback returns.
type DeviceSession struct {
	ctx   context.Context
	guard *DeviceGuard
}

// Run acquires the device, opens it, runs fn and closes it again. Waiting
// honours ctx; a cancelled wait returns ErrDeviceUnavailable.
func (g *DeviceGuard) Run(ctx context.Context, fn func(s *DeviceSession) error) error {
	waitStart := time.Now()
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: waiting for device: %w", domain.ErrDeviceUnavailable, err)
	}
	defer g.sem.Release(1)
	g.metrics.ObserveDeviceWait(waitStart)

	if err := g.device.Open(ctx); err != nil {
		if errors.Is(err, domain.ErrDeviceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrDeviceUnavailable, err)
	}
	defer func() {
		if err := g.device.Close(); err != nil {
			log.Printf("⚠️ Failed to close capture device: %v", err)
		}
	}()

	return fn(&DeviceSession{ctx: ctx, guard: g})
}

// Busy reports whether another caller currently holds the device.
func (g *DeviceGuard) Busy() bool {
	if !g.sem.TryAcquire(1) {
		return true
	}
	g.sem.Release(1)
	return false
}

// Capture reads one fingerprint, bounded by the configured capture timeout.
func (s *DeviceSession) Capture(purpose domain.CapturePurpose) (domain.Template, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.guard.captureTimeout)
	defer cancel()

	tmpl, err := s.guard.device.Capture(ctx, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceUnavailable) || errors.Is(err, domain.ErrCaptureFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrCaptureFailed, err)
	}
	if len(tmpl) == 0 {
		return nil, fmt.Errorf("%w: empty sample", domain.ErrCaptureFailed)
	}
	return tmpl, nil
}

// Compare runs the vendor one-to-one comparison.
func (s *DeviceSession) Compare(a, b domain.Template) (bool, error) {
	return s.guard.device.CompareOneToOne(s.ctx, a, b)
}

// Context returns the context the session was started with.
func (s *DeviceSession) Context() context.Context {
	return s.ctx
}
