package store

import (
	"context"

	"promo-restaurant-api/models"

	"gorm.io/gorm"
)

type RestaurantStore struct {
	db *gorm.DB
}

func (s *RestaurantStore) List(ctx context.Context, city, search string) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	q := s.db.WithContext(ctx).Order("name")
	if city != "" {
		q = q.Where("city LIKE ?", "%"+city+"%")
	}
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	return restaurants, q.Find(&restaurants).Error
}

func (s *RestaurantStore) FindByID(ctx context.Context, id uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *RestaurantStore) ExistsForOwner(ctx context.Context, ownerID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Restaurant{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n > 0, err
}

func (s *RestaurantStore) CountForOwner(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Restaurant{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}

func (s *RestaurantStore) Create(ctx context.Context, r *models.Restaurant) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// Update applies only the given columns.
func (s *RestaurantStore) Update(ctx context.Context, r *models.Restaurant, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(r).Updates(fields).Error
}

// Delete removes a restaurant together with its promotions.
func (s *RestaurantStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.Promotion{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Restaurant{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// OwnerOf resolves a restaurant id to the id of the user who owns it.
func (s *RestaurantStore) OwnerOf(ctx context.Context, id uint) (uint, error) {
	r, err := s.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	// an ownerless row cannot be authorized against anyone
	if r.OwnerID == 0 {
		return 0, ErrNotFound
	}
	return r.OwnerID, nil
}
