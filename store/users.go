package store

import (
	"context"
	"strings"

	"promo-restaurant-api/models"

	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return duplicate(s.db.WithContext(ctx).Create(u).Error)
}

// Save persists every column of u.
func (s *UserStore) Save(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Save(u).Error
}

// UpdatePassword rewrites only the password column.
func (s *UserStore) UpdatePassword(ctx context.Context, id uint, password string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", password).Error
}

func (s *UserStore) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	q := s.db.WithContext(ctx).Order("created_at desc")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	return users, q.Find(&users).Error
}
