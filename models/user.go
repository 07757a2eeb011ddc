package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer   UserRole = "cliente"
	RoleRestaurant UserRole = "restaurante"
	RoleAdmin      UserRole = "admin"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurant, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is stored as a tinyint: 1 active, 0 disabled
type UserStatus int

const (
	StatusDisabled UserStatus = 0
	StatusActive   UserStatus = 1
)

type User struct {
	ID    uint   `json:"idUsuario" gorm:"primaryKey"`
	Name  string `json:"nombre" gorm:"size:100;not null"`
	Email string `json:"email" gorm:"size:100;uniqueIndex;not null"`
	// Password holds a bcrypt hash, or plaintext for rows created before hashing
	// was introduced. Login migrates the latter on first successful use.
	Password  string     `json:"-" gorm:"size:255;not null"`
	Role      UserRole   `json:"rol" gorm:"size:20;not null"`
	Status    UserStatus `json:"estado" gorm:"not null"`
	CreatedAt time.Time  `json:"fechaRegistro"`
	UpdatedAt time.Time  `json:"-"`
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
