package services

import (
	"context"
	"sort"

	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"
)

// DashboardService builds the back-office attendance overview
type DashboardService struct {
	employeeRepo repositories.EmployeeRepository
	unitRepo     repositories.UnitRepository
	punchRepo    repositories.PunchRepository
	vacationRepo repositories.VacationRepository
	clock        Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	employeeRepo repositories.EmployeeRepository,
	unitRepo repositories.UnitRepository,
	punchRepo repositories.PunchRepository,
	vacationRepo repositories.VacationRepository,
	clock Clock,
) *DashboardService {
	return &DashboardService{
		employeeRepo: employeeRepo,
		unitRepo:     unitRepo,
		punchRepo:    punchRepo,
		vacationRepo: vacationRepo,
		clock:        clock,
	}
}

// ============================================================
// Attendance Dashboard
// ============================================================

// AttendanceCounts are the day's figures for a group of employees
type AttendanceCounts struct {
	Employees  int64 `json:"employees"`
	Present    int   `json:"present"`     // punched in today
	Working    int   `json:"working"`     // entry today, no exit yet
	Completed  int   `json:"completed"`   // entry and exit today
	OnVacation int   `json:"on_vacation"` // covered by a vacation today
	Absent     int64 `json:"absent"`
}

// UnitAttendance is one unit's line in the dashboard
type UnitAttendance struct {
	UnitID   uint   `json:"unit_id"`
	UnitName string `json:"unit_name"`
	AttendanceCounts
}

// AttendanceDashboardData represents the attendance dashboard
type AttendanceDashboardData struct {
	Date  string           `json:"date"`
	Total AttendanceCounts `json:"total"`
	Units []UnitAttendance `json:"units"`
}

// GetAttendanceDashboard summarises today's punches per unit
func (s *DashboardService) GetAttendanceDashboard(ctx context.Context) (*AttendanceDashboardData, error) {
	today := domain.DateOf(s.clock())

	units, err := s.unitRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	headcount, err := s.employeeRepo.CountByUnit(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.punchRepo.ListByDate(ctx, today)
	if err != nil {
		return nil, err
	}
	vacations, err := s.vacationRepo.ListCovering(ctx, today)
	if err != nil {
		return nil, err
	}

	byUnit := make(map[uint]*UnitAttendance, len(units))
	line := func(unitID uint) *UnitAttendance {
		if u, ok := byUnit[unitID]; ok {
			return u
		}
		u := &UnitAttendance{UnitID: unitID}
		byUnit[unitID] = u
		return u
	}

	for _, unit := range units {
		line(unit.ID).UnitName = unit.Name
	}
	for unitID, n := range headcount {
		line(unitID).Employees = n
	}

	// one employee can own several cycles on the same day
	seen := make(map[uint]bool)
	for _, rec := range records {
		u := line(rec.UnitID)
		if !seen[rec.EmployeeID] {
			seen[rec.EmployeeID] = true
			u.Present++
		}
		if rec.ExitAt == nil {
			u.Working++
		} else {
			u.Completed++
		}
	}

	onVacation := make(map[uint]bool)
	for _, v := range vacations {
		if onVacation[v.EmployeeID] {
			continue
		}
		onVacation[v.EmployeeID] = true
		line(v.Employee.UnitID).OnVacation++
	}

	data := &AttendanceDashboardData{
		Date:  today.Format(domain.DateLayout),
		Units: make([]UnitAttendance, 0, len(byUnit)),
	}
	for _, u := range byUnit {
		u.Absent = max(u.Employees-int64(u.Present)-int64(u.OnVacation), 0)

		data.Total.Employees += u.Employees
		data.Total.Present += u.Present
		data.Total.Working += u.Working
		data.Total.Completed += u.Completed
		data.Total.OnVacation += u.OnVacation
		data.Total.Absent += u.Absent
		data.Units = append(data.Units, *u)
	}
	sort.Slice(data.Units, func(i, j int) bool { return data.Units[i].UnitName < data.Units[j].UnitName })

	return data, nil
}
