package repositories

import (
	"context"
	"time"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/core/domain"

	"gorm.io/gorm"
)

type vacationRepository struct {
	db *gorm.DB
}

// NewVacationRepository creates a new vacation repository
func NewVacationRepository(db *gorm.DB) VacationRepository {
	return &vacationRepository{db: db}
}

func (r *vacationRepository) Create(ctx context.Context, period *models.VacationPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *vacationRepository) GetByID(ctx context.Context, id uint) (*models.VacationPeriod, error) {
	var period models.VacationPeriod
	if err := r.db.WithContext(ctx).First(&period, id).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *vacationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.VacationPeriod{}, id).Error
}

// ListByEmployee lists an employee's periods, latest first
func (r *vacationRepository) ListByEmployee(ctx context.Context, employeeID uint) ([]*models.VacationPeriod, error) {
	var periods []*models.VacationPeriod
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&periods).Error
	return periods, err
}

// HasOverlap checks whether [start, end] intersects an existing period
func (r *vacationRepository) HasOverlap(ctx context.Context, employeeID uint, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VacationPeriod{}).
		Where("employee_id = ?", employeeID).
		Where("start_date <= ? AND end_date >= ?", end.Format(domain.DateLayout), start.Format(domain.DateLayout)).
		Count(&count).Error
	return count > 0, err
}

// ListCovering lists every period that covers day, with its employee
func (r *vacationRepository) ListCovering(ctx context.Context, day time.Time) ([]*models.VacationPeriod, error) {
	var periods []*models.VacationPeriod
	d := day.Format(domain.DateLayout)
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("start_date <= ? AND end_date >= ?", d, d).
		Find(&periods).Error
	return periods, err
}

// IsOnVacation reports whether a period covers day (both ends inclusive)
func (r *vacationRepository) IsOnVacation(ctx context.Context, employeeID uint, day time.Time) (bool, error) {
	var count int64
	d := day.Format(domain.DateLayout)
	err := r.db.WithContext(ctx).
		Model(&models.VacationPeriod{}).
		Where("employee_id = ? AND start_date <= ? AND end_date >= ?", employeeID, d, d).
		Count(&count).Error
	return count > 0, err
}
