package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bioponto/internal/core/domain"

	"github.com/stretchr/testify/suite"
)

type PunchResolverSuite struct {
	suite.Suite
	vacations *fakeVacations
	history   *memPunches
	units     *fakeUnits
	resolver  *PunchStateResolver
	emp       domain.Employee
}

func TestPunchResolverSuite(t *testing.T) {
	suite.Run(t, new(PunchResolverSuite))
}

func (s *PunchResolverSuite) SetupTest() {
	s.vacations = &fakeVacations{}
	s.history = &memPunches{}
	s.units = &fakeUnits{names: map[uint]string{10: "UBS Centro", 20: "Hospital Municipal"}}
	s.resolver = NewPunchStateResolver(s.vacations, s.history, s.units)
	s.emp = domain.Employee{ID: 1, Name: "Ana", UnitID: 10, ShiftType: domain.Shift8h}
}

func (s *PunchResolverSuite) requireRejection(err error, reason domain.RejectionReason) *domain.RejectionError {
	s.Require().Error(err)
	s.True(errors.Is(err, domain.ErrPunchRejected))
	rej, ok := domain.AsRejection(err)
	s.Require().True(ok)
	s.Equal(reason, rej.Reason)
	return rej
}

func (s *PunchResolverSuite) TestNoHistoryIsEntry() {
	d, err := s.resolver.Resolve(context.Background(), s.emp, 10, at("2025-03-10", "09:00:00"))

	s.Require().NoError(err)
	s.Equal(StateNoOpenPunch, d.State)
	s.WithinDuration(at("2025-03-10", "00:00:00"), d.WindowStart, 0)
}

func (s *PunchResolverSuite) TestDebounceBoundary() {
	s.history.add(domain.PunchRecord{EmployeeID: 1, UnitID: 10, Date: at("2025-03-10", "00:00:00"), EntryAt: at("2025-03-10", "09:00:00")})

	_, err := s.resolver.Resolve(context.Background(), s.emp, 10, at("2025-03-10", "09:04:59"))
	rej := s.requireRejection(err, domain.ReasonDebounce)
	s.Equal(1, rej.RemainingMinutes)

	_, err = s.resolver.Resolve(context.Background(), s.emp, 10, at("2025-03-10", "09:02:00"))
	rej = s.requireRejection(err, domain.ReasonDebounce)
	s.Equal(3, rej.RemainingMinutes)

	d, err := s.resolver.Resolve(context.Background(), s.emp, 10, at("2025-03-10", "09:05:00"))
	s.Require().NoError(err)
	s.Equal(StatePendingExit, d.State)
	s.Require().NotNil(d.Open)
	s.Equal(at("2025-03-10", "09:00:00"), d.Open.EntryAt)
}

func (s *PunchResolverSuite) TestOvernightShiftLooksBackOneDay() {
	s.history.add(domain.PunchRecord{EmployeeID: 1, UnitID: 10, Date: at("2025-03-09", "00:00:00"), EntryAt: at("2025-03-09", "19:00:00")})
	now := at("2025-03-10", "07:10:00")

	s.emp.ShiftType = domain.Shift24h
	d, err := s.resolver.Resolve(context.Background(), s.emp, 10, now)
	s.Require().NoError(err)
	s.Equal(StatePendingExit, d.State)
	s.WithinDuration(at("2025-03-09", "00:00:00"), s.history.lastFrom, 0)
	s.WithinDuration(at("2025-03-09", "00:00:00"), d.Open.Date, 0)

	s.emp.ShiftType = domain.Shift24x72
	d, err = s.resolver.Resolve(context.Background(), s.emp, 10, now)
	s.Require().NoError(err)
	s.Equal(StatePendingExit, d.State)

	s.emp.ShiftType = domain.Shift12h
	d, err = s.resolver.Resolve(context.Background(), s.emp, 10, now)
	s.Require().NoError(err)
	s.Equal(StateNoOpenPunch, d.State)
	s.WithinDuration(at("2025-03-10", "00:00:00"), s.history.lastFrom, 0)
}

func (s *PunchResolverSuite) TestVacationComesFirst() {
	s.vacations.periods = []domain.VacationPeriod{{
		EmployeeID: 1,
		Start:      at("2025-03-01", "00:00:00"),
		End:        at("2025-03-15", "00:00:00"),
	}}

	// wrong unit as well; vacation still wins
	_, err := s.resolver.Resolve(context.Background(), s.emp, 20, at("2025-03-10", "09:00:00"))

	s.requireRejection(err, domain.ReasonOnVacation)
	s.Equal(0, s.history.windowCalls)
}

func (s *PunchResolverSuite) TestUnitMismatchUsesNames() {
	_, err := s.resolver.Resolve(context.Background(), s.emp, 20, at("2025-03-10", "09:00:00"))

	rej := s.requireRejection(err, domain.ReasonUnitMismatch)
	s.Equal("UBS Centro", rej.EmployeeUnit)
	s.Equal("Hospital Municipal", rej.TerminalUnit)
	s.Equal(1, s.vacations.calls)
	s.Equal(0, s.history.windowCalls)
}

func (s *PunchResolverSuite) TestUnitMismatchFallsBackToIDs() {
	_, err := s.resolver.Resolve(context.Background(), s.emp, 99, at("2025-03-10", "09:00:00"))

	rej := s.requireRejection(err, domain.ReasonUnitMismatch)
	s.Equal("UBS Centro", rej.EmployeeUnit)
	s.Equal("99", rej.TerminalUnit)
}

func (s *PunchResolverSuite) TestCompletedTodayIsRejected() {
	s.history.add(domain.PunchRecord{
		EmployeeID: 1, UnitID: 10, Date: at("2025-03-10", "00:00:00"),
		EntryAt: at("2025-03-10", "08:00:00"), ExitAt: ptr(at("2025-03-10", "12:00:00")),
	})

	_, err := s.resolver.Resolve(context.Background(), s.emp, 10, at("2025-03-10", "13:00:00"))

	rej := s.requireRejection(err, domain.ReasonCompletedToday)
	s.Contains(rej.Message, "2025-03-10")
}

func (s *PunchResolverSuite) TestCompletedYesterdayAllowsEntry() {
	s.emp.ShiftType = domain.Shift24h
	s.history.add(domain.PunchRecord{
		EmployeeID: 1, UnitID: 10, Date: at("2025-03-09", "00:00:00"),
		EntryAt: at("2025-03-09", "07:00:00"), ExitAt: ptr(at("2025-03-10", "07:00:00")),
	})

	d, err := s.resolver.Resolve(context.Background(), s.emp, 10, at("2025-03-10", "07:30:00"))

	s.Require().NoError(err)
	s.Equal(StateNoOpenPunch, d.State)
}

func (s *PunchResolverSuite) TestStorageErrorPropagates() {
	boom := errors.New("db down")
	r := NewPunchStateResolver(vacationErr{boom}, s.history, s.units)

	_, err := r.Resolve(context.Background(), s.emp, 10, at("2025-03-10", "09:00:00"))

	s.ErrorIs(err, boom)
	_, isRejection := domain.AsRejection(err)
	s.False(isRejection)
}

type vacationErr struct{ err error }

func (v vacationErr) IsOnVacation(context.Context, uint, time.Time) (bool, error) {
	return false, v.err
}

func TestClassifyInconsistentStates(t *testing.T) {
	day := at("2025-03-10", "00:00:00")
	now := at("2025-03-10", "12:00:00")

	tests := []struct {
		name    string
		records []domain.PunchRecord
	}{
		{
			name: "two open punches",
			records: []domain.PunchRecord{
				{ID: 1, Date: day, EntryAt: at("2025-03-10", "08:00:00")},
				{ID: 2, Date: day, EntryAt: at("2025-03-10", "09:00:00")},
			},
		},
		{
			name: "open punch in the future",
			records: []domain.PunchRecord{
				{ID: 1, Date: day, EntryAt: at("2025-03-10", "13:00:00")},
			},
		},
		{
			name: "exit before entry",
			records: []domain.PunchRecord{
				{ID: 1, Date: day, EntryAt: at("2025-03-10", "09:00:00"), ExitAt: ptr(at("2025-03-10", "08:00:00"))},
			},
		},
		{
			name: "open punch behind a completed one",
			records: []domain.PunchRecord{
				{ID: 2, Date: day, EntryAt: at("2025-03-10", "10:00:00"), ExitAt: ptr(at("2025-03-10", "11:00:00"))},
				{ID: 1, Date: day, EntryAt: at("2025-03-10", "08:00:00")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.records, now)
			rej, ok := domain.AsRejection(err)
			if !ok {
				t.Fatalf("expected rejection, got %v", err)
			}
			if rej.Reason != domain.ReasonInconsistentState {
				t.Fatalf("expected %s, got %s", domain.ReasonInconsistentState, rej.Reason)
			}
		})
	}
}
