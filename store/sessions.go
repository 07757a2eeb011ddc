package store

import (
	"context"
	"time"

	"promo-restaurant-api/models"

	"gorm.io/gorm"
)

type SessionStore struct {
	db *gorm.DB
}

func (s *SessionStore) Create(ctx context.Context, sess *models.Session) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *SessionStore) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	var sess models.Session
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&sess).Error; err != nil {
		return nil, notFound(err)
	}
	return &sess, nil
}

// Delete removes the session and reports whether this call removed it.
// Concurrent callers racing on the same row see exactly one true.
func (s *SessionStore) Delete(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{})
	return res.RowsAffected > 0, res.Error
}

func (s *SessionStore) DeleteByToken(ctx context.Context, token string) (bool, error) {
	res := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	return res.RowsAffected > 0, res.Error
}

func (s *SessionStore) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// DeleteExpired drops sessions whose refresh token can no longer verify.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (s *SessionStore) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
