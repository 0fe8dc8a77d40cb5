package repositories

import (
	"context"
	"time"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/core/domain"
)

// UserRepository defines operator repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int, search string) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
}

// RefreshTokenRepository stores operator refresh sessions
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindActive(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldID uint, next *models.RefreshToken) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// UnitRepository defines unit repository interface.
// It also serves the punch pipeline as a services.UnitDirectory.
type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, id uint) (*models.Unit, error)
	List(ctx context.Context) ([]*models.Unit, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	UnitName(ctx context.Context, id uint) (string, error)
}

// EmployeeFilter narrows employee listings
type EmployeeFilter struct {
	UnitID *uint
	Search string // name, cpf or matricula prefix
}

// EmployeeRepository defines employee repository interface.
// It also serves the punch pipeline as services.EmployeeReader and
// services.TemplateSource.
type EmployeeRepository interface {
	Create(ctx context.Context, emp *models.Employee) error
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	Update(ctx context.Context, emp *models.Employee) error
	UpdateBiometric(ctx context.Context, id uint, encoded string) error
	List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]*models.Employee, int64, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	ExistsByMatricula(ctx context.Context, matricula string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByUnit(ctx context.Context) (map[uint]int64, error)

	GetEmployee(ctx context.Context, id uint) (*domain.Employee, error)
	ListTemplates(ctx context.Context) ([]domain.Candidate, error)
}

// PunchRepository defines punch record repository interface.
// It also serves the punch pipeline as a services.PunchStore.
type PunchRepository interface {
	FindInWindow(ctx context.Context, employeeID uint, from, to time.Time) ([]domain.PunchRecord, error)
	CreateEntry(ctx context.Context, rec *domain.PunchRecord, windowStart time.Time) error
	CloseExit(ctx context.Context, recordID uint, exitAt time.Time) error

	ListByEmployeeMonth(ctx context.Context, employeeID uint, year, month, offset, limit int) ([]*models.PunchRecord, int64, error)
	ListByUnitMonth(ctx context.Context, unitID uint, year, month int) ([]*models.PunchRecord, error)
	ListByDate(ctx context.Context, day time.Time) ([]*models.PunchRecord, error)
	ListPendingBefore(ctx context.Context, day time.Time) ([]*models.PunchRecord, error)
}

// VacationRepository defines vacation repository interface.
// It also serves the punch pipeline as a services.VacationChecker.
type VacationRepository interface {
	Create(ctx context.Context, period *models.VacationPeriod) error
	GetByID(ctx context.Context, id uint) (*models.VacationPeriod, error)
	Delete(ctx context.Context, id uint) error
	ListByEmployee(ctx context.Context, employeeID uint) ([]*models.VacationPeriod, error)
	HasOverlap(ctx context.Context, employeeID uint, start, end time.Time) (bool, error)
	ListCovering(ctx context.Context, day time.Time) ([]*models.VacationPeriod, error)
	IsOnVacation(ctx context.Context, employeeID uint, day time.Time) (bool, error)
}
