package services

import (
	"context"
	"log"
	"math"
	"strconv"
	"time"

	"bioponto/internal/core/domain"
)

// MinPunchInterval is the shortest accepted gap between an entry and its exit.
const MinPunchInterval = 5 * time.Minute

// PunchState is what the next punch of an employee would do.
type PunchState string

const (
	StateNoOpenPunch PunchState = "NO_OPEN_PUNCH"
	StatePendingExit PunchState = "PENDING_EXIT"
)

// Decision is an accepted resolution. A completed day is reported as a
// CompletedToday rejection, not as a state.
type Decision struct {
	State       PunchState
	Policy      domain.ShiftPolicy
	WindowStart time.Time
	Open        *domain.PunchRecord // set for StatePendingExit
}

// PunchStateResolver decides whether a punch is an entry, an exit or rejected.
// It never writes.
type PunchStateResolver struct {
	vacations VacationChecker
	history   PunchHistory
	units     UnitDirectory
}

// NewPunchStateResolver creates a new resolver
func NewPunchStateResolver(vacations VacationChecker, history PunchHistory, units UnitDirectory) *PunchStateResolver {
	return &PunchStateResolver{
		vacations: vacations,
		history:   history,
		units:     units,
	}
}

// Resolve applies the rules in order: vacation, unit membership, then the
// punch history of the shift's lookback window. Rejections are returned as
// *domain.RejectionError.
func (r *PunchStateResolver) Resolve(ctx context.Context, emp domain.Employee, terminalUnitID uint, now time.Time) (Decision, error) {
	today := domain.DateOf(now)

	// 1. Vacation
	onVacation, err := r.vacations.IsOnVacation(ctx, emp.ID, today)
	if err != nil {
		return Decision{}, err
	}
	if onVacation {
		return Decision{}, domain.NewOnVacation()
	}

	// 2. Unit membership
	if emp.UnitID != terminalUnitID {
		return Decision{}, domain.NewUnitMismatch(r.unitName(ctx, emp.UnitID), r.unitName(ctx, terminalUnitID))
	}

	// 3. History within the lookback window
	policy := domain.PolicyFor(emp.ShiftType)
	windowStart := today.AddDate(0, 0, -policy.LookbackDays)

	records, err := r.history.FindInWindow(ctx, emp.ID, windowStart, today)
	if err != nil {
		return Decision{}, err
	}

	decision, err := Classify(records, now)
	if err != nil {
		return Decision{}, err
	}
	decision.Policy = policy
	decision.WindowStart = windowStart
	return decision, nil
}

// Classify maps the window's records to a decision:
//
//	no records, or latest completed on an earlier day -> StateNoOpenPunch
//	latest pending, at least MinPunchInterval old      -> StatePendingExit
//	latest pending, younger than MinPunchInterval      -> Debounce rejection
//	latest completed today                            -> CompletedToday rejection
//	anything else                                     -> InconsistentState rejection
func Classify(records []domain.PunchRecord, now time.Time) (Decision, error) {
	if len(records) == 0 {
		return Decision{State: StateNoOpenPunch}, nil
	}

	latest := 0
	pending := 0
	for i, rec := range records {
		if rec.IsPending() {
			pending++
		} else if rec.ExitAt.Before(rec.EntryAt) {
			return Decision{}, domain.NewInconsistentState("record " + strconv.FormatUint(uint64(rec.ID), 10) + " exits before it enters")
		}
		if rec.EntryAt.After(records[latest].EntryAt) {
			latest = i
		}
	}
	if pending > 1 {
		return Decision{}, domain.NewInconsistentState(strconv.Itoa(pending) + " open punches in window")
	}

	rec := records[latest]
	if rec.IsPending() {
		if rec.EntryAt.After(now) {
			return Decision{}, domain.NewInconsistentState("open punch starts in the future")
		}
		elapsed := now.Sub(rec.EntryAt)
		if elapsed < MinPunchInterval {
			remaining := int(math.Ceil((MinPunchInterval - elapsed).Minutes()))
			return Decision{}, domain.NewDebounce(remaining)
		}
		open := rec
		return Decision{State: StatePendingExit, Open: &open}, nil
	}

	if pending == 1 {
		return Decision{}, domain.NewInconsistentState("open punch older than the latest completed one")
	}

	// compare calendar days as text so a record's storage location does not matter
	today := now.Format(domain.DateLayout)
	recDay := rec.Date.Format(domain.DateLayout)
	switch {
	case recDay == today:
		return Decision{}, domain.NewCompletedToday(today)
	case recDay < today:
		return Decision{State: StateNoOpenPunch}, nil
	default:
		return Decision{}, domain.NewInconsistentState("completed punch dated in the future")
	}
}

func (r *PunchStateResolver) unitName(ctx context.Context, id uint) string {
	name, err := r.units.UnitName(ctx, id)
	if err != nil || name == "" {
		if err != nil {
			log.Printf("⚠️ Could not resolve name of unit %d: %v", id, err)
		}
		return strconv.FormatUint(uint64(id), 10)
	}
	return name
}
