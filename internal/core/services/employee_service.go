package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Employee service errors
var (
	ErrInvalidShiftType    = errors.New("invalid shift type")
	ErrCPFAlreadyExists    = errors.New("cpf already registered")
	ErrMatriculaExists     = errors.New("matricula already registered")
	ErrEmployeeEmailExists = errors.New("employee email already registered")
	ErrUnitNotFound        = errors.New("unit not found")
)

var digitsOnly = regexp.MustCompile(`\D`)

// EmployeeService registers employees and manages their fingerprints
type EmployeeService struct {
	employeeRepo repositories.EmployeeRepository
	unitRepo     repositories.UnitRepository
	biometrics   *BiometricService
	loc          *time.Location
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(
	employeeRepo repositories.EmployeeRepository,
	unitRepo repositories.UnitRepository,
	biometrics *BiometricService,
	loc *time.Location,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		unitRepo:     unitRepo,
		biometrics:   biometrics,
		loc:          loc,
	}
}

// CreateEmployeeInput represents employee registration input.
// With CaptureBiometric the employee must be at the reader while the request runs.
type CreateEmployeeInput struct {
	Name             string `json:"name"`
	CPF              string `json:"cpf"`
	Matricula        string `json:"matricula"`
	Role             string `json:"role"`
	UnitID           uint   `json:"unit_id"`
	ShiftType        string `json:"shift_type"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	AdmissionDate    string `json:"admission_date"` // 2006-01-02
	CaptureBiometric bool   `json:"capture_biometric"`
}

// UpdateEmployeeInput represents a partial employee update
type UpdateEmployeeInput struct {
	Name      *string `json:"name"`
	Role      *string `json:"role"`
	UnitID    *uint   `json:"unit_id"`
	ShiftType *string `json:"shift_type"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
}

// CreateEmployee validates, optionally enrolls the fingerprint, and stores the employee
func (s *EmployeeService) CreateEmployee(ctx context.Context, input *CreateEmployeeInput) (*models.EmployeeResponse, error) {
	// 1. Validate fields
	name := strings.TrimSpace(input.Name)
	cpf := digitsOnly.ReplaceAllString(input.CPF, "")
	matricula := strings.TrimSpace(input.Matricula)
	if name == "" || len(cpf) != 11 || matricula == "" || input.UnitID == 0 {
		return nil, domain.ErrInvalidInput
	}

	shift := domain.DefaultShiftType
	if input.ShiftType != "" {
		parsed, ok := domain.ParseShiftType(input.ShiftType)
		if !ok {
			return nil, ErrInvalidShiftType
		}
		shift = parsed
	}

	var admission *time.Time
	if input.AdmissionDate != "" {
		d, err := time.ParseInLocation(domain.DateLayout, input.AdmissionDate, s.loc)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		admission = &d
	}

	// 2. Unit must exist
	if err := s.ensureUnit(ctx, input.UnitID); err != nil {
		return nil, err
	}

	// 3. Uniqueness
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.ensureUnique(ctx, cpf, matricula, email); err != nil {
		return nil, err
	}

	emp := &models.Employee{
		Name:          name,
		CPF:           cpf,
		Matricula:     matricula,
		Role:          strings.TrimSpace(input.Role),
		UnitID:        input.UnitID,
		ShiftType:     string(shift),
		Phone:         strings.TrimSpace(input.Phone),
		AdmissionDate: admission,
	}
	if email != "" {
		emp.Email = &email
	}

	// 4. Fingerprint, checked against every enrolled employee
	if input.CaptureBiometric {
		encoded, err := s.biometrics.CaptureEnrollment(ctx, 0)
		if err != nil {
			return nil, err
		}
		emp.BiometricID = &encoded
	}

	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	log.Printf("✅ Employee registered: %s (ID: %d, unit %d, shift %s, biometric %t)",
		emp.Name, emp.ID, emp.UnitID, emp.ShiftType, emp.BiometricID != nil)
	return s.GetEmployee(ctx, emp.ID)
}

// UpdateEmployee applies a partial update
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id uint, input *UpdateEmployeeInput) (*models.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		emp.Name = name
	}
	if input.Role != nil {
		emp.Role = strings.TrimSpace(*input.Role)
	}
	if input.Phone != nil {
		emp.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.ShiftType != nil {
		shift, ok := domain.ParseShiftType(*input.ShiftType)
		if !ok {
			return nil, ErrInvalidShiftType
		}
		emp.ShiftType = string(shift)
	}
	if input.UnitID != nil && *input.UnitID != emp.UnitID {
		if err := s.ensureUnit(ctx, *input.UnitID); err != nil {
			return nil, err
		}
		emp.UnitID = *input.UnitID
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		current := ""
		if emp.Email != nil {
			current = *emp.Email
		}
		if email != current {
			if email != "" {
				exists, err := s.employeeRepo.ExistsByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
				if exists {
					return nil, ErrEmployeeEmailExists
				}
				emp.Email = &email
			} else {
				emp.Email = nil
			}
		}
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return nil, err
	}
	return s.GetEmployee(ctx, id)
}

// UpdateBiometric re-enrolls an employee's fingerprint. The new capture must
// not match any other employee.
func (s *EmployeeService) UpdateBiometric(ctx context.Context, id uint) (*models.EmployeeResponse, error) {
	if _, err := s.getEmployee(ctx, id); err != nil {
		return nil, err
	}

	encoded, err := s.biometrics.CaptureEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.employeeRepo.UpdateBiometric(ctx, id, encoded); err != nil {
		return nil, err
	}

	log.Printf("✅ Biometric updated for employee %d", id)
	return s.GetEmployee(ctx, id)
}

// GetEmployee gets an employee with its unit name
func (s *EmployeeService) GetEmployee(ctx context.Context, id uint) (*models.EmployeeResponse, error) {
	emp, err := s.getEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	return emp.ToResponse(), nil
}

// ListEmployees lists employees ordered by name
func (s *EmployeeService) ListEmployees(ctx context.Context, params *pagination.Params, filter repositories.EmployeeFilter) (*pagination.Response, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	employees, total, err := s.employeeRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]*models.EmployeeResponse, len(employees))
	for i, emp := range employees {
		items[i] = emp.ToResponse()
	}
	return pagination.NewResponse(items, params, total), nil
}

func (s *EmployeeService) getEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return emp, nil
}

func (s *EmployeeService) ensureUnit(ctx context.Context, unitID uint) error {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return err
	}
	return nil
}

func (s *EmployeeService) ensureUnique(ctx context.Context, cpf, matricula, email string) error {
	exists, err := s.employeeRepo.ExistsByCPF(ctx, cpf)
	if err != nil {
		return err
	}
	if exists {
		return ErrCPFAlreadyExists
	}

	exists, err = s.employeeRepo.ExistsByMatricula(ctx, matricula)
	if err != nil {
		return err
	}
	if exists {
		return ErrMatriculaExists
	}

	if email == "" {
		return nil
	}
	exists, err = s.employeeRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmployeeEmailExists
	}
	return nil
}
