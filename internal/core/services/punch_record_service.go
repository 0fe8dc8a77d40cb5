package services

import (
	"context"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/pagination"
)

// PunchRecordService answers the back-office timesheet queries
type PunchRecordService struct {
	punchRepo repositories.PunchRepository
}

// NewPunchRecordService creates a new punch record service
func NewPunchRecordService(punchRepo repositories.PunchRepository) *PunchRecordService {
	return &PunchRecordService{punchRepo: punchRepo}
}

// UnitMonthSheet groups a unit's month by employee
type UnitMonthSheet struct {
	UnitID    uint                  `json:"unit_id"`
	Year      int                   `json:"year"`
	Month     int                   `json:"month"`
	Employees []EmployeeMonthRecord `json:"employees"`
}

// EmployeeMonthRecord is one employee's lines in a unit sheet
type EmployeeMonthRecord struct {
	EmployeeID   uint                          `json:"employee_id"`
	EmployeeName string                        `json:"employee_name"`
	WorkedHours  float64                       `json:"worked_hours"`
	OpenPunches  int                           `json:"open_punches"`
	Records      []*models.PunchRecordResponse `json:"records"`
}

// ListByEmployee lists one employee's punches of a month, newest first
func (s *PunchRecordService) ListByEmployee(ctx context.Context, employeeID uint, year, month int, params *pagination.Params) (*pagination.Response, error) {
	if !validMonth(year, month) {
		return nil, domain.ErrInvalidInput
	}

	records, total, err := s.punchRepo.ListByEmployeeMonth(ctx, employeeID, year, month, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]*models.PunchRecordResponse, len(records))
	for i, rec := range records {
		items[i] = rec.ToResponse()
	}
	return pagination.NewResponse(items, params, total), nil
}

// UnitSheet builds the month sheet of a unit with worked hours per employee
func (s *PunchRecordService) UnitSheet(ctx context.Context, unitID uint, year, month int) (*UnitMonthSheet, error) {
	if !validMonth(year, month) {
		return nil, domain.ErrInvalidInput
	}

	records, err := s.punchRepo.ListByUnitMonth(ctx, unitID, year, month)
	if err != nil {
		return nil, err
	}

	sheet := &UnitMonthSheet{UnitID: unitID, Year: year, Month: month, Employees: []EmployeeMonthRecord{}}
	index := make(map[uint]int)
	for _, rec := range records {
		i, ok := index[rec.EmployeeID]
		if !ok {
			sheet.Employees = append(sheet.Employees, EmployeeMonthRecord{
				EmployeeID:   rec.EmployeeID,
				EmployeeName: rec.Employee.Name,
			})
			i = len(sheet.Employees) - 1
			index[rec.EmployeeID] = i
		}

		line := rec.ToResponse()
		row := &sheet.Employees[i]
		row.Records = append(row.Records, line)
		if line.WorkedHours != nil {
			row.WorkedHours += *line.WorkedHours
		} else {
			row.OpenPunches++
		}
	}
	return sheet, nil
}

func validMonth(year, month int) bool {
	return year >= 2000 && year <= 2100 && month >= 1 && month <= 12
}
