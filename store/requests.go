package store

import (
	"context"
	"time"

	"promo-restaurant-api/models"

	"gorm.io/gorm"
)

type RequestStore struct {
	db *gorm.DB
}

func (s *RequestStore) Create(ctx context.Context, r *models.RestaurantRequest) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *RequestStore) FindByID(ctx context.Context, id uint) (*models.RestaurantRequest, error) {
	var r models.RestaurantRequest
	if err := s.db.WithContext(ctx).Preload("User").First(&r, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *RequestStore) HasPending(ctx context.Context, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.RestaurantRequest{}).
		Where("user_id = ? AND status = ?", userID, models.RequestPending).
		Count(&n).Error
	return n > 0, err
}

// Latest returns the most recent request filed by userID.
func (s *RequestStore) Latest(ctx context.Context, userID uint) (*models.RestaurantRequest, error) {
	var r models.RestaurantRequest
	err := s.db.WithContext(ctx).Preload("User").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		First(&r).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// List returns requests newest first, optionally filtered by status.
func (s *RequestStore) List(ctx context.Context, status models.RequestStatus) ([]models.RestaurantRequest, error) {
	var requests []models.RestaurantRequest
	q := s.db.WithContext(ctx).Preload("User").Order("created_at desc, id desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return requests, q.Find(&requests).Error
}

// Resolve moves a pending request to a terminal status. It reports false,
// without error, when the request was no longer pending.
func (s *RequestStore) Resolve(ctx context.Context, id uint, to models.RequestStatus, notes *string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.RestaurantRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Updates(map[string]interface{}{
			"status":      to,
			"resolved_at": at,
			"notes":       notes,
		})
	return res.RowsAffected > 0, res.Error
}
