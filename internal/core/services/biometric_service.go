package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/metrics"
)

// BiometricService runs identification and enrollment captures through the device guard.
type BiometricService struct {
	guard     *DeviceGuard
	templates TemplateSource
	engine    *MatchEngine
	metrics   *metrics.Metrics
}

// NewBiometricService creates a new biometric service
func NewBiometricService(guard *DeviceGuard, templates TemplateSource, engine *MatchEngine, m *metrics.Metrics) *BiometricService {
	return &BiometricService{
		guard:     guard,
		templates: templates,
		engine:    engine,
		metrics:   m,
	}
}

// IdentifyEmployee captures a sample and scans a fresh template snapshot.
// The device is held from snapshot load until the scan ends.
func (s *BiometricService) IdentifyEmployee(ctx context.Context) (uint, error) {
	var result MatchResult

	err := s.guard.Run(ctx, func(session *DeviceSession) error {
		candidates, err := s.templates.ListTemplates(ctx)
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}

		sample, err := session.Capture(domain.PurposeVerify)
		if err != nil {
			return err
		}

		result, err = s.engine.Identify(ctx, session, sample, candidates)
		return err
	})

	switch {
	case err == nil:
		s.metrics.ObserveIdentify("matched", result.Scanned)
		log.Printf("✅ Fingerprint matched employee %d (%d templates compared)", result.EmployeeID, result.Scanned)
		return result.EmployeeID, nil
	case errors.Is(err, domain.ErrNotRecognized):
		s.metrics.ObserveIdentify("not_recognized", result.Scanned)
	case errors.Is(err, domain.ErrDeviceUnavailable):
		s.metrics.ObserveIdentify("device_unavailable", 0)
	case errors.Is(err, domain.ErrCaptureFailed):
		s.metrics.ObserveIdentify("capture_failed", 0)
	default:
		s.metrics.ObserveIdentify("error", result.Scanned)
	}
	return 0, err
}

// ErrTemplateInUse is returned when an enrollment capture matches another employee.
var ErrTemplateInUse = errors.New("fingerprint already enrolled for another employee")

// CaptureEnrollment captures an enrollment template and returns it in storage
// form. The capture is scanned against every stored template except the one of
// exclude (0 for a new employee) and rejected with ErrTemplateInUse on a match.
func (s *BiometricService) CaptureEnrollment(ctx context.Context, exclude uint) (string, error) {
	var encoded string
	err := s.guard.Run(ctx, func(session *DeviceSession) error {
		candidates, err := s.templates.ListTemplates(ctx)
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}

		tmpl, err := session.Capture(domain.PurposeEnroll)
		if err != nil {
			return err
		}

		others := make([]domain.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if c.EmployeeID != exclude {
				others = append(others, c)
			}
		}
		match, err := s.engine.Identify(ctx, session, tmpl, others)
		switch {
		case err == nil:
			return fmt.Errorf("%w (employee %d)", ErrTemplateInUse, match.EmployeeID)
		case !errors.Is(err, domain.ErrNotRecognized):
			return err
		}

		encoded = domain.EncodeTemplate(tmpl)
		return nil
	})
	if err != nil {
		log.Printf("❌ Enrollment capture failed: %v", err)
		return "", err
	}
	return encoded, nil
}

// DeviceBusy reports whether a capture is in progress.
func (s *BiometricService) DeviceBusy() bool {
	return s.guard.Busy()
}
