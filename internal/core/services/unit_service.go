package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/core/domain"

	"gorm.io/gorm"
)

// ErrUnitNameExists is returned when a unit name is taken
var ErrUnitNameExists = errors.New("unit name already exists")

// UnitService manages workplaces
type UnitService struct {
	unitRepo repositories.UnitRepository
}

// NewUnitService creates a new unit service
func NewUnitService(unitRepo repositories.UnitRepository) *UnitService {
	return &UnitService{unitRepo: unitRepo}
}

// CreateUnitInput represents create unit input
type CreateUnitInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (s *UnitService) CreateUnit(ctx context.Context, input *CreateUnitInput) (*models.Unit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.unitRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUnitNameExists
	}

	unit := &models.Unit{Name: name, Address: strings.TrimSpace(input.Address)}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}

	log.Printf("✅ Unit created: %s (ID: %d)", unit.Name, unit.ID)
	return unit, nil
}

func (s *UnitService) GetUnit(ctx context.Context, id uint) (*models.Unit, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return unit, nil
}

func (s *UnitService) ListUnits(ctx context.Context) ([]*models.Unit, error) {
	return s.unitRepo.List(ctx)
}
