package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/keylock"
	"bioponto/internal/pkg/metrics"

	"github.com/google/uuid"
)

const notifyTimeout = 30 * time.Second

// PunchRequest is what a kiosk sends. Date ("2006-01-02") and Time
// ("15:04:05") are optional and default to the clock.
type PunchRequest struct {
	TerminalUnitID uint
	Date           string
	Time           string
}

// PunchService orchestrates identification, resolution, persistence and the
// outbound registration and notification of a punch.
type PunchService struct {
	biometrics *BiometricService
	employees  EmployeeReader
	resolver   *PunchStateResolver
	punches    PunchStore
	registrar  Registrar
	notifier   Notifier
	metrics    *metrics.Metrics
	clock      Clock

	locks    *keylock.KeyedMutex
	inflight sync.WaitGroup
}

// NewPunchService creates a new punch service
func NewPunchService(
	biometrics *BiometricService,
	employees EmployeeReader,
	resolver *PunchStateResolver,
	punches PunchStore,
	registrar Registrar,
	notifier Notifier,
	m *metrics.Metrics,
	clock Clock,
) *PunchService {
	if clock == nil {
		clock = time.Now
	}
	return &PunchService{
		biometrics: biometrics,
		employees:  employees,
		resolver:   resolver,
		punches:    punches,
		registrar:  registrar,
		notifier:   notifier,
		metrics:    m,
		clock:      clock,
		locks:      keylock.New(),
	}
}

// SubmitPunch identifies the employee at the reader and records an entry or an
// exit. When the payroll system rejects a committed punch the outcome is
// returned together with an error wrapping domain.ErrDownstreamRegistrationFailed.
func (s *PunchService) SubmitPunch(ctx context.Context, req PunchRequest) (*domain.PunchOutcome, error) {
	started := time.Now()
	attempt := uuid.New().String()

	now, err := s.punchInstant(req)
	if err != nil {
		s.metrics.ObservePunch("invalid_input", started)
		return nil, err
	}

	// 1. Identify (device held only for this step)
	employeeID, err := s.biometrics.IdentifyEmployee(ctx)
	if err != nil {
		log.Printf("❌ [%s] Punch at unit %d: identification failed: %v", attempt, req.TerminalUnitID, err)
		s.metrics.ObservePunch(identifyResult(err), started)
		return nil, err
	}

	// 2. Load employee
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrEmployeeNotFound
		}
		s.metrics.ObservePunch("employee_not_found", started)
		return nil, err
	}

	// 3. Resolve and persist, one punch per employee at a time
	outcome, err := s.recordPunch(ctx, *emp, req.TerminalUnitID, now)
	if err != nil {
		if rej, ok := domain.AsRejection(err); ok {
			log.Printf("⚠️ [%s] Punch rejected for %s (ID: %d): %s", attempt, emp.Name, emp.ID, rej.Message)
			s.metrics.ObservePunch(strings.ToLower(string(rej.Reason)), started)
		} else {
			log.Printf("❌ [%s] Punch failed for %s (ID: %d): %v", attempt, emp.Name, emp.ID, err)
			s.metrics.ObservePunch("error", started)
		}
		return nil, err
	}

	log.Printf("✅ [%s] %s registered for %s (ID: %d) | Unit: %d | At: %s",
		attempt, outcome.Kind, emp.Name, emp.ID, req.TerminalUnitID, now.Format("2006-01-02 15:04:05"))

	// 4. Forward to payroll; the local record stays committed on failure
	var forwardErr error
	if err := s.registrar.Register(ctx, registrationFor(outcome)); err != nil {
		log.Printf("❌ [%s] Payroll registration failed for record %d: %v", attempt, outcome.Record.ID, err)
		s.metrics.IncrementRegistrationFailure()
		forwardErr = fmt.Errorf("%w: %w", domain.ErrDownstreamRegistrationFailed, err)
	}

	// 5. Receipt, never blocks the kiosk
	s.notifyAsync(attempt, outcome)

	s.metrics.ObservePunch(string(outcome.Kind), started)
	return outcome, forwardErr
}

// Identify runs an identification only and returns the matched employee.
func (s *PunchService) Identify(ctx context.Context) (*domain.Employee, error) {
	employeeID, err := s.biometrics.IdentifyEmployee(ctx)
	if err != nil {
		return nil, err
	}
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return emp, nil
}

// Wait blocks until all background notifications have finished.
func (s *PunchService) Wait() {
	s.inflight.Wait()
}

func (s *PunchService) recordPunch(ctx context.Context, emp domain.Employee, terminalUnitID uint, now time.Time) (*domain.PunchOutcome, error) {
	unlock := s.locks.Lock(emp.ID)
	defer unlock()

	decision, err := s.resolver.Resolve(ctx, emp, terminalUnitID, now)
	if err != nil {
		return nil, err
	}

	switch decision.State {
	case StateNoOpenPunch:
		rec := &domain.PunchRecord{
			EmployeeID: emp.ID,
			UnitID:     terminalUnitID,
			Date:       domain.DateOf(now),
			EntryAt:    now,
		}
		if err := s.punches.CreateEntry(ctx, rec, decision.WindowStart); err != nil {
			return nil, err
		}
		return &domain.PunchOutcome{
			Kind:         domain.PunchEntry,
			Employee:     emp,
			Record:       *rec,
			ReportedDate: rec.Date,
			At:           now,
			Message:      fmt.Sprintf("Entry registered for %s at %s", emp.Name, now.Format(domain.TimeLayout)),
		}, nil

	case StatePendingExit:
		rec := *decision.Open
		if err := s.punches.CloseExit(ctx, rec.ID, now); err != nil {
			return nil, err
		}
		exitAt := now
		rec.ExitAt = &exitAt
		return &domain.PunchOutcome{
			Kind:         domain.PunchExit,
			Employee:     emp,
			Record:       rec,
			ReportedDate: domain.DateOf(rec.Date),
			At:           now,
			Message:      fmt.Sprintf("Exit registered for %s at %s", emp.Name, now.Format(domain.TimeLayout)),
		}, nil
	}

	return nil, domain.NewInconsistentState("unknown decision " + string(decision.State))
}

// punchInstant combines the optional kiosk date and time with the clock.
func (s *PunchService) punchInstant(req PunchRequest) (time.Time, error) {
	now := s.clock()
	if req.Date == "" && req.Time == "" {
		return now, nil
	}

	loc := now.Location()
	day := domain.DateOf(now)
	if req.Date != "" {
		d, err := time.ParseInLocation(domain.DateLayout, req.Date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		day = d
	}

	h, m, sec := now.Clock()
	if req.Time != "" {
		t, err := time.Parse(domain.TimeLayout, req.Time)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: time must be HH:MM:SS", domain.ErrInvalidInput)
		}
		h, m, sec = t.Clock()
	}

	// wall clock fields, so DST days keep the face value
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, sec, 0, loc), nil
}

func (s *PunchService) notifyAsync(attempt string, outcome *domain.PunchOutcome) {
	if outcome.Employee.Email == "" {
		return
	}
	n := receiptFor(outcome)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, n); err != nil {
			s.metrics.IncrementNotificationFailure()
			log.Printf("⚠️ [%s] Receipt to %s not delivered: %v", attempt, n.Recipient, err)
			return
		}
		log.Printf("📧 [%s] Receipt sent to %s", attempt, n.Recipient)
	}()
}

func registrationFor(o *domain.PunchOutcome) domain.PunchRegistration {
	reg := domain.PunchRegistration{
		RecordID:    o.Record.ID,
		EmployeeID:  o.Employee.ID,
		UnitID:      o.Record.UnitID,
		Date:        o.ReportedDate.Format(domain.DateLayout),
		EntryTime:   o.Record.EntryAt.Format(domain.TimeLayout),
		BiometricID: o.Employee.BiometricID,
	}
	if o.Record.ExitAt != nil {
		exit := o.Record.ExitAt.Format(domain.TimeLayout)
		reg.ExitTime = &exit
	}
	return reg
}

func receiptFor(o *domain.PunchOutcome) domain.Notification {
	subject := "Entry Registered - Time Clock"
	what := "Entry registered successfully."
	if o.Kind == domain.PunchExit {
		subject = "Exit Registered - Time Clock"
		what = "Exit registered successfully."
	}

	body := fmt.Sprintf("Dear %s,\n\n"+
		"This e-mail confirms your time clock record:\n\n"+
		"%s\n\n"+
		"Employee: %s\n"+
		"Date/Time: %s\n",
		o.Employee.Name, what, o.Employee.Name, o.At.Format("02/01/2006 15:04:05"))

	return domain.Notification{
		Subject:   subject,
		Recipient: o.Employee.Email,
		Body:      body,
	}
}

func identifyResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotRecognized):
		return "not_recognized"
	case errors.Is(err, domain.ErrDeviceUnavailable):
		return "device_unavailable"
	case errors.Is(err, domain.ErrCaptureFailed):
		return "capture_failed"
	}
	return "error"
}
