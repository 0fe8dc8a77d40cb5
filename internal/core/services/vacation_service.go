package services

import (
	"context"
	"errors"
	"log"
	"time"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"

	"gorm.io/gorm"
)

// Vacation errors
var (
	ErrVacationOverlap  = errors.New("vacation overlaps an existing period")
	ErrVacationNotFound = errors.New("vacation not found")
)

// VacationService registers the periods that block punches
type VacationService struct {
	vacationRepo repositories.VacationRepository
	employeeRepo repositories.EmployeeRepository
	loc          *time.Location
}

// NewVacationService creates a new vacation service
func NewVacationService(
	vacationRepo repositories.VacationRepository,
	employeeRepo repositories.EmployeeRepository,
	loc *time.Location,
) *VacationService {
	return &VacationService{
		vacationRepo: vacationRepo,
		employeeRepo: employeeRepo,
		loc:          loc,
	}
}

// CreateVacationInput represents create vacation input; dates are 2006-01-02, both inclusive
type CreateVacationInput struct {
	EmployeeID uint   `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Note       string `json:"note"`
}

// CreateVacation stores a period after checking dates and overlap
func (s *VacationService) CreateVacation(ctx context.Context, input *CreateVacationInput, createdBy uint) (*models.VacationPeriod, error) {
	start, err := time.ParseInLocation(domain.DateLayout, input.StartDate, s.loc)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	end, err := time.ParseInLocation(domain.DateLayout, input.EndDate, s.loc)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.employeeRepo.GetByID(ctx, input.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}

	overlap, err := s.vacationRepo.HasOverlap(ctx, input.EmployeeID, start, end)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrVacationOverlap
	}

	period := &models.VacationPeriod{
		EmployeeID: input.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		Note:       input.Note,
		CreatedBy:  &createdBy,
	}
	if err := s.vacationRepo.Create(ctx, period); err != nil {
		return nil, err
	}

	log.Printf("🏖️ Vacation registered: employee %d from %s to %s", period.EmployeeID, input.StartDate, input.EndDate)
	return period, nil
}

// ListByEmployee lists an employee's periods
func (s *VacationService) ListByEmployee(ctx context.Context, employeeID uint) ([]*models.VacationPeriod, error) {
	return s.vacationRepo.ListByEmployee(ctx, employeeID)
}

// DeleteVacation removes a period
func (s *VacationService) DeleteVacation(ctx context.Context, id uint) error {
	if _, err := s.vacationRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVacationNotFound
		}
		return err
	}
	return s.vacationRepo.Delete(ctx, id)
}
