package repositories

import (
	"context"
	"errors"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/core/domain"

	"gorm.io/gorm"
)

// employeeRepository implements EmployeeRepository interface
type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Create creates a new employee
func (r *employeeRepository) Create(ctx context.Context, emp *models.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

// GetByID gets an employee by ID with its unit
func (r *employeeRepository) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	var emp models.Employee
	err := r.db.WithContext(ctx).Preload("Unit").First(&emp, id).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// Update updates an employee
func (r *employeeRepository) Update(ctx context.Context, emp *models.Employee) error {
	return r.db.WithContext(ctx).Omit("Unit").Save(emp).Error
}

// UpdateBiometric replaces the stored template text
func (r *employeeRepository) UpdateBiometric(ctx context.Context, id uint, encoded string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Update("biometric_id", encoded)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List lists employees ordered by name with pagination
func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]*models.Employee, int64, error) {
	var employees []*models.Employee
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Employee{})
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.Search != "" {
		like := filter.Search + "%"
		query = query.Where("name LIKE ? OR cpf LIKE ? OR matricula LIKE ?", "%"+filter.Search+"%", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Unit").
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&employees).Error
	if err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// ExistsByCPF checks if cpf exists
func (r *employeeRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Employee{}).Where("cpf = ?", cpf).Count(&count).Error
	return count > 0, err
}

// ExistsByMatricula checks if matricula exists
func (r *employeeRepository) ExistsByMatricula(ctx context.Context, matricula string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Employee{}).Where("matricula = ?", matricula).Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks if email exists
func (r *employeeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Employee{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// CountByUnit returns the headcount of every unit that has employees
func (r *employeeRepository) CountByUnit(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		UnitID uint
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Select("unit_id, COUNT(*) as total").
		Group("unit_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.UnitID] = row.Total
	}
	return counts, nil
}

// GetEmployee loads an employee for the punch pipeline
func (r *employeeRepository) GetEmployee(ctx context.Context, id uint) (*domain.Employee, error) {
	var emp models.Employee
	err := r.db.WithContext(ctx).First(&emp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return emp.ToDomain(), nil
}

// ListTemplates returns the enrolled templates ascending by employee id
func (r *employeeRepository) ListTemplates(ctx context.Context) ([]domain.Candidate, error) {
	var rows []struct {
		ID          uint
		BiometricID string
	}
	err := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Select("id, biometric_id").
		Where("biometric_id IS NOT NULL AND biometric_id <> ''").
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = domain.Candidate{EmployeeID: row.ID, Encoded: row.BiometricID}
	}
	return candidates, nil
}
