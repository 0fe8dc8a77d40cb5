package repositories

import (
	"context"
	"errors"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/core/domain"

	"gorm.io/gorm"
)

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository creates a new unit repository
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *unitRepository) GetByID(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// List returns every unit ordered by name
func (r *unitRepository) List(ctx context.Context) ([]*models.Unit, error) {
	var units []*models.Unit
	err := r.db.WithContext(ctx).Order("name ASC").Find(&units).Error
	return units, err
}

func (r *unitRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Unit{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// UnitName returns the display name, domain.ErrNotFound when the unit is unknown
func (r *unitRepository) UnitName(ctx context.Context, id uint) (string, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).Select("id", "name").First(&unit, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return unit.Name, nil
}
