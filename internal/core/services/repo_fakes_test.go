package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repositories for the back-office services. Not found is reported
// as gorm.ErrRecordNotFound, as the gorm repositories do.

type memUnits struct {
	units map[uint]*models.Unit
}

func newMemUnits(units ...models.Unit) *memUnits {
	m := &memUnits{units: map[uint]*models.Unit{}}
	for i := range units {
		u := units[i]
		m.units[u.ID] = &u
	}
	return m
}

func (m *memUnits) Create(_ context.Context, unit *models.Unit) error {
	unit.ID = uint(len(m.units) + 1)
	m.units[unit.ID] = unit
	return nil
}

func (m *memUnits) GetByID(_ context.Context, id uint) (*models.Unit, error) {
	u, ok := m.units[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *memUnits) List(context.Context) ([]*models.Unit, error) {
	var out []*models.Unit
	for _, u := range m.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memUnits) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, u := range m.units {
		if u.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUnits) UnitName(_ context.Context, id uint) (string, error) {
	u, ok := m.units[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return u.Name, nil
}

type memEmployees struct {
	rows   map[uint]*models.Employee
	nextID uint
}

func newMemEmployees(rows ...models.Employee) *memEmployees {
	m := &memEmployees{rows: map[uint]*models.Employee{}}
	for i := range rows {
		r := rows[i]
		m.rows[r.ID] = &r
		if r.ID > m.nextID {
			m.nextID = r.ID
		}
	}
	return m
}

func (m *memEmployees) Create(_ context.Context, emp *models.Employee) error {
	m.nextID++
	emp.ID = m.nextID
	cp := *emp
	m.rows[emp.ID] = &cp
	return nil
}

func (m *memEmployees) GetByID(_ context.Context, id uint) (*models.Employee, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memEmployees) Update(_ context.Context, emp *models.Employee) error {
	cp := *emp
	m.rows[emp.ID] = &cp
	return nil
}

func (m *memEmployees) UpdateBiometric(_ context.Context, id uint, encoded string) error {
	r, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.BiometricID = &encoded
	return nil
}

func (m *memEmployees) List(_ context.Context, filter repositories.EmployeeFilter, offset, limit int) ([]*models.Employee, int64, error) {
	var out []*models.Employee
	for _, r := range m.rows {
		if filter.UnitID != nil && r.UnitID != *filter.UnitID {
			continue
		}
		if filter.Search != "" && !strings.Contains(r.Name, filter.Search) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := min(offset+limit, len(out))
	return out[offset:end], total, nil
}

func (m *memEmployees) exists(match func(*models.Employee) bool) (bool, error) {
	for _, r := range m.rows {
		if match(r) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memEmployees) ExistsByCPF(_ context.Context, cpf string) (bool, error) {
	return m.exists(func(r *models.Employee) bool { return r.CPF == cpf })
}

func (m *memEmployees) ExistsByMatricula(_ context.Context, matricula string) (bool, error) {
	return m.exists(func(r *models.Employee) bool { return r.Matricula == matricula })
}

func (m *memEmployees) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return m.exists(func(r *models.Employee) bool { return r.Email != nil && *r.Email == email })
}

func (m *memEmployees) CountByUnit(context.Context) (map[uint]int64, error) {
	counts := map[uint]int64{}
	for _, r := range m.rows {
		counts[r.UnitID]++
	}
	return counts, nil
}

func (m *memEmployees) GetEmployee(_ context.Context, id uint) (*domain.Employee, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.ToDomain(), nil
}

func (m *memEmployees) ListTemplates(context.Context) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, r := range m.rows {
		if r.BiometricID != nil && *r.BiometricID != "" {
			out = append(out, domain.Candidate{EmployeeID: r.ID, Encoded: *r.BiometricID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

type memVacations struct {
	rows []*models.VacationPeriod
}

func (m *memVacations) Create(_ context.Context, p *models.VacationPeriod) error {
	p.ID = uint(len(m.rows) + 1)
	m.rows = append(m.rows, p)
	return nil
}

func (m *memVacations) GetByID(_ context.Context, id uint) (*models.VacationPeriod, error) {
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memVacations) Delete(_ context.Context, id uint) error {
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memVacations) ListByEmployee(_ context.Context, employeeID uint) ([]*models.VacationPeriod, error) {
	var out []*models.VacationPeriod
	for _, r := range m.rows {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memVacations) HasOverlap(_ context.Context, employeeID uint, start, end time.Time) (bool, error) {
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && !r.StartDate.After(end) && !r.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memVacations) ListCovering(_ context.Context, day time.Time) ([]*models.VacationPeriod, error) {
	var out []*models.VacationPeriod
	for _, r := range m.rows {
		if (domain.VacationPeriod{Start: r.StartDate, End: r.EndDate}).Covers(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memVacations) IsOnVacation(ctx context.Context, employeeID uint, day time.Time) (bool, error) {
	rows, _ := m.ListCovering(ctx, day)
	for _, r := range rows {
		if r.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

// memPunchRows is a PunchRepository over model rows for the query services.
type memPunchRows struct {
	memPunches
	rows []*models.PunchRecord
}

func (m *memPunchRows) ListByEmployeeMonth(_ context.Context, employeeID uint, year, month, offset, limit int) ([]*models.PunchRecord, int64, error) {
	var out []*models.PunchRecord
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && r.Date.Year() == year && int(r.Date.Month()) == month {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memPunchRows) ListByUnitMonth(_ context.Context, unitID uint, year, month int) ([]*models.PunchRecord, error) {
	var out []*models.PunchRecord
	for _, r := range m.rows {
		if r.UnitID == unitID && r.Date.Year() == year && int(r.Date.Month()) == month {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memPunchRows) ListByDate(_ context.Context, day time.Time) ([]*models.PunchRecord, error) {
	var out []*models.PunchRecord
	for _, r := range m.rows {
		if domain.SameDay(r.Date, day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memPunchRows) ListPendingBefore(_ context.Context, day time.Time) ([]*models.PunchRecord, error) {
	var out []*models.PunchRecord
	for _, r := range m.rows {
		if r.ExitAt == nil && r.Date.Format(domain.DateLayout) < day.Format(domain.DateLayout) {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ repositories.PunchRepository = (*memPunchRows)(nil)
var _ repositories.EmployeeRepository = (*memEmployees)(nil)
var _ repositories.UnitRepository = (*memUnits)(nil)
var _ repositories.VacationRepository = (*memVacations)(nil)

func strPtr(s string) *string { return &s }
