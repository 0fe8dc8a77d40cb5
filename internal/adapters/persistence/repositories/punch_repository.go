package repositories

import (
	"context"
	"errors"
	"time"

	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// punchRepository implements PunchRepository interface
type punchRepository struct {
	db *gorm.DB
}

// NewPunchRepository creates a new punch record repository
func NewPunchRepository(db *gorm.DB) PunchRepository {
	return &punchRepository{db: db}
}

// FindInWindow returns the records dated within [from, to], latest entry first
func (r *punchRepository) FindInWindow(ctx context.Context, employeeID uint, from, to time.Time) ([]domain.PunchRecord, error) {
	var rows []models.PunchRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("date BETWEEN ? AND ?", from.Format(domain.DateLayout), to.Format(domain.DateLayout)).
		Order("entry_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.PunchRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// CreateEntry inserts an open record. The employee row is locked for the
// duration of the transaction and the window is re-checked for an open record,
// so two terminals cannot open two entries for the same person.
func (r *punchRepository) CreateEntry(ctx context.Context, rec *domain.PunchRecord, windowStart time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp models.Employee
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&emp, rec.EmployeeID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrEmployeeNotFound
			}
			return err
		}

		var pending int64
		err = tx.Model(&models.PunchRecord{}).
			Where("employee_id = ? AND exit_at IS NULL", rec.EmployeeID).
			Where("date >= ?", windowStart.Format(domain.DateLayout)).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return domain.ErrPendingPunchExists
		}

		row := models.PunchRecord{
			EmployeeID: rec.EmployeeID,
			UnitID:     rec.UnitID,
			Date:       rec.Date,
			EntryAt:    rec.EntryAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		rec.ID = row.ID
		rec.CreatedAt = row.CreatedAt
		return nil
	})
}

// CloseExit sets the exit of a record that is still open
func (r *punchRepository) CloseExit(ctx context.Context, recordID uint, exitAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.PunchRecord{}).
		Where("id = ? AND exit_at IS NULL", recordID).
		Update("exit_at", exitAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPunchAlreadyClosed
	}
	return nil
}

// ListByEmployeeMonth lists one employee's records of a month, newest first
func (r *punchRepository) ListByEmployeeMonth(ctx context.Context, employeeID uint, year, month, offset, limit int) ([]*models.PunchRecord, int64, error) {
	var records []*models.PunchRecord
	var total int64

	from, to := monthRange(year, month)
	query := r.db.WithContext(ctx).
		Model(&models.PunchRecord{}).
		Where("employee_id = ?", employeeID).
		Where("date >= ? AND date < ?", from, to)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Employee").
		Order("date DESC, entry_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListByUnitMonth lists a unit's records of a month grouped by employee
func (r *punchRepository) ListByUnitMonth(ctx context.Context, unitID uint, year, month int) ([]*models.PunchRecord, error) {
	var records []*models.PunchRecord
	from, to := monthRange(year, month)
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("unit_id = ?", unitID).
		Where("date >= ? AND date < ?", from, to).
		Order("employee_id ASC, date ASC, entry_at ASC").
		Find(&records).Error
	return records, err
}

// ListByDate lists the records opened on a calendar day
func (r *punchRepository) ListByDate(ctx context.Context, day time.Time) ([]*models.PunchRecord, error) {
	var records []*models.PunchRecord
	err := r.db.WithContext(ctx).
		Where("date = ?", day.Format(domain.DateLayout)).
		Find(&records).Error
	return records, err
}

// ListPendingBefore lists open records dated before day, with their employee
func (r *punchRepository) ListPendingBefore(ctx context.Context, day time.Time) ([]*models.PunchRecord, error) {
	var records []*models.PunchRecord
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("exit_at IS NULL AND date < ?", day.Format(domain.DateLayout)).
		Order("date ASC").
		Find(&records).Error
	return records, err
}

// monthRange returns [first day of month, first day of next month) as dates
func monthRange(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.Format(domain.DateLayout), first.AddDate(0, 1, 0).Format(domain.DateLayout)
}
