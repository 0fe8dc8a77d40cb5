package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"

	"github.com/robfig/cron/v3"
)

const cronJobTimeout = 2 * time.Minute

// CronService runs the nightly maintenance jobs
type CronService struct {
	cron             *cron.Cron
	punchRepo        repositories.PunchRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	notifier         Notifier
	recipient        string
	sweepSpec        string
	clock            Clock
}

// NewCronService creates a new cron service. Schedules are read in loc.
func NewCronService(
	sweepSpec string,
	recipient string,
	loc *time.Location,
	punchRepo repositories.PunchRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	notifier Notifier,
	clock Clock,
) *CronService {
	return &CronService{
		cron:             cron.New(cron.WithLocation(loc)),
		punchRepo:        punchRepo,
		refreshTokenRepo: refreshTokenRepo,
		notifier:         notifier,
		recipient:        recipient,
		sweepSpec:        sweepSpec,
		clock:            clock,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.sweepSpec, func() { s.runJob("stale punch sweep", s.sweepJob) }); err != nil {
		return fmt.Errorf("invalid stale sweep schedule %q: %w", s.sweepSpec, err)
	}
	if _, err := s.cron.AddFunc("@hourly", func() { s.runJob("refresh token cleanup", s.tokenCleanupJob) }); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("⏰ Cron started (stale sweep: %s)", s.sweepSpec)
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("⏰ Cron stopped")
}

func (s *CronService) runJob(name string, job func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cronJobTimeout)
	defer cancel()

	if err := job(ctx); err != nil {
		log.Printf("❌ Cron job %s failed: %v", name, err)
	}
}

func (s *CronService) sweepJob(ctx context.Context) error {
	_, err := s.SweepStalePunches(ctx)
	return err
}

func (s *CronService) tokenCleanupJob(ctx context.Context) error {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx, s.clock())
	if err == nil && n > 0 {
		log.Printf("🧹 Removed %d expired refresh tokens", n)
	}
	return err
}

// StalePunch is an entry whose exit window has already passed
type StalePunch struct {
	RecordID     uint
	EmployeeID   uint
	EmployeeName string
	UnitID       uint
	Date         string
	Entry        string
}

// SweepStalePunches finds open entries that can no longer be closed by a punch
// (dated before their shift's lookback window) and alerts the configured
// recipient. The records are left untouched for an operator to fix.
func (s *CronService) SweepStalePunches(ctx context.Context) ([]StalePunch, error) {
	today := domain.DateOf(s.clock())

	records, err := s.punchRepo.ListPendingBefore(ctx, today)
	if err != nil {
		return nil, err
	}

	var stale []StalePunch
	for _, rec := range records {
		policy := domain.PolicyFor(domain.ShiftType(rec.Employee.ShiftType))
		windowStart := today.AddDate(0, 0, -policy.LookbackDays).Format(domain.DateLayout)
		if rec.Date.Format(domain.DateLayout) >= windowStart {
			continue
		}
		stale = append(stale, StalePunch{
			RecordID:     rec.ID,
			EmployeeID:   rec.EmployeeID,
			EmployeeName: rec.Employee.Name,
			UnitID:       rec.UnitID,
			Date:         rec.Date.Format(domain.DateLayout),
			Entry:        rec.EntryAt.Format(domain.TimeLayout),
		})
	}

	if len(stale) == 0 {
		return nil, nil
	}
	log.Printf("⚠️ %d open punches past their window", len(stale))

	if s.recipient == "" {
		return stale, nil
	}
	if err := s.notifier.Notify(ctx, staleReport(s.recipient, today, stale)); err != nil {
		return stale, fmt.Errorf("send stale punch report: %w", err)
	}
	return stale, nil
}

func staleReport(recipient string, today time.Time, stale []StalePunch) domain.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Open punches without exit as of %s:\n\n", today.Format(domain.DateLayout))
	for _, p := range stale {
		fmt.Fprintf(&b, "- %s (employee %d, unit %d): entry %s %s, record %d\n",
			p.EmployeeName, p.EmployeeID, p.UnitID, p.Date, p.Entry, p.RecordID)
	}
	return domain.Notification{
		Subject:   fmt.Sprintf("Open punches: %d without exit", len(stale)),
		Recipient: recipient,
		Body:      b.String(),
	}
}
