// Package store is the gorm-backed persistence layer. Every repository is
// bound to a *gorm.DB which is either the pool or an open transaction, so the
// same code runs inside and outside a unit of work.
package store

import (
	"context"
	"errors"
	"fmt"

	"promo-restaurant-api/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write hits a unique index. It needs
	// the connection opened with gorm.Config.TranslateError.
	ErrDuplicate = errors.New("duplicate record")
)

type Store struct {
	db *gorm.DB

	Users       *UserStore
	Sessions    *SessionStore
	Resets      *ResetStore
	Restaurants *RestaurantStore
	Promotions  *PromotionStore
	Requests    *RequestStore
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       &UserStore{db: db},
		Sessions:    &SessionStore{db: db},
		Resets:      &ResetStore{db: db},
		Restaurants: &RestaurantStore{db: db},
		Promotions:  &PromotionStore{db: db},
		Requests:    &RequestStore{db: db},
	}
}

// Transaction runs fn as a single unit of work. fn receives a Store whose
// repositories all share the transaction; any error or panic rolls it back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) (err error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(New(tx)); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates every table the API owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordReset{},
		&models.Restaurant{},
		&models.Promotion{},
		&models.RestaurantRequest{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
