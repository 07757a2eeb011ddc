package models

import "time"

// Session is the server-side record of an issued, not yet revoked refresh token.
type Session struct {
	ID        uint      `json:"idSesion" gorm:"primaryKey"`
	UserID    uint      `json:"idUsuario" gorm:"not null;index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Token     string    `json:"-" gorm:"size:512;uniqueIndex;not null"`
	CreatedAt time.Time `json:"fechaInicio"`
	ExpiresAt time.Time `json:"fechaExpira" gorm:"not null;index"`
}
