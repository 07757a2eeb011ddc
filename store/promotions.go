package store

import (
	"context"
	"time"

	"promo-restaurant-api/models"

	"gorm.io/gorm"
)

type PromotionStore struct {
	db *gorm.DB
}

// ListActive returns visible promotions whose window contains now.
func (s *PromotionStore) ListActive(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := s.db.WithContext(ctx).
		Preload("Restaurant").
		Where("status = ? AND end_date >= ?", models.PromotionActive, now).
		Order("start_date").
		Find(&promos).Error
	return promos, err
}

func (s *PromotionStore) ListByRestaurant(ctx context.Context, restaurantID uint) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Order("start_date").Find(&promos).Error
	return promos, err
}

func (s *PromotionStore) FindByID(ctx context.Context, id uint) (*models.Promotion, error) {
	var p models.Promotion
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PromotionStore) Create(ctx context.Context, p *models.Promotion) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *PromotionStore) Save(ctx context.Context, p *models.Promotion) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *PromotionStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Promotion{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// OwnerOf resolves a promotion id through its restaurant to the owning user id.
func (s *PromotionStore) OwnerOf(ctx context.Context, id uint) (uint, error) {
	var row struct{ OwnerID uint }
	res := s.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Select("restaurants.owner_id AS owner_id").
		Joins("JOIN restaurants ON restaurants.id = promotions.restaurant_id").
		Where("promotions.id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return row.OwnerID, nil
}
