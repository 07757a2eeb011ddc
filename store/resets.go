package store

import (
	"context"

	"promo-restaurant-api/models"

	"gorm.io/gorm"
)

type ResetStore struct {
	db *gorm.DB
}

func (s *ResetStore) Create(ctx context.Context, r *models.PasswordReset) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *ResetStore) FindByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	var r models.PasswordReset
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *ResetStore) DeleteForUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PasswordReset{}).Error
}

// MarkUsed flips used from false to true and reports whether this call did it.
// A false result means another caller consumed the token first.
func (s *ResetStore) MarkUsed(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.PasswordReset{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	return res.RowsAffected > 0, res.Error
}

func (s *ResetStore) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.PasswordReset{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
