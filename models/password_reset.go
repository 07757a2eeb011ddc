package models

import (
	"errors"
	"time"
)

var (
	ErrPasswordResetExpired = errors.New("password reset token expired")
	ErrPasswordResetUsed    = errors.New("password reset token already used")
)

const PasswordResetTTL = 30 * time.Minute

type PasswordReset struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null"`
}

func (r PasswordReset) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Validate reports why the token can no longer authorize a reset, if it can't.
func (r PasswordReset) Validate(now time.Time) error {
	if r.Used {
		return ErrPasswordResetUsed
	}
	if r.IsExpired(now) {
		return ErrPasswordResetExpired
	}
	return nil
}
