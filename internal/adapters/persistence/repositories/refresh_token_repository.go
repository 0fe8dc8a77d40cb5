package repositories

import (
	"context"
	"time"

	"bioponto/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindActive returns the unrevoked token with the given hash. Expiry is left
// to the caller.
func (r *refreshTokenRepository) FindActive(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Rotate revokes oldID and stores next in one transaction. Two refreshes
// racing on the same token: the loser gets gorm.ErrRecordNotFound.
func (r *refreshTokenRepository) Rotate(ctx context.Context, oldID uint, next *models.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := revokeWhere(tx, time.Now(), "id = ?", oldID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(next).Error
	})
}

func (r *refreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	return revokeWhere(r.db.WithContext(ctx), time.Now(), "token_hash = ?", tokenHash).Error
}

// RevokeAllByUserID ends every session of an operator
func (r *refreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return revokeWhere(r.db.WithContext(ctx), time.Now(), "user_id = ?", userID).Error
}

// DeleteExpired removes tokens that expired before the given instant
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func revokeWhere(db *gorm.DB, at time.Time, query string, arg interface{}) *gorm.DB {
	return db.Model(&models.RefreshToken{}).
		Where(query, arg).
		Where("revoked_at IS NULL").
		Update("revoked_at", at)
}
