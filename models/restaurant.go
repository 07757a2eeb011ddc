package models

import "time"

type Restaurant struct {
	ID          uint      `json:"idRestaurante" gorm:"primaryKey"`
	OwnerID     uint      `json:"idUsuario" gorm:"not null;index"`
	Owner       *User     `json:"usuario,omitempty" gorm:"foreignKey:OwnerID"`
	Name        string    `json:"nombreComercial" gorm:"size:150;not null"`
	Address     string    `json:"direccion" gorm:"size:255"`
	Phone       string    `json:"telefono" gorm:"size:20"`
	City        string    `json:"ciudad" gorm:"size:100"`
	Description string    `json:"descripcion" gorm:"type:text"`
	CreatedAt   time.Time `json:"fechaRegistro"`
	UpdatedAt   time.Time `json:"-"`
}

// PromotionStatus mirrors UserStatus: 1 visible, 0 hidden
type PromotionStatus int

const (
	PromotionHidden PromotionStatus = 0
	PromotionActive PromotionStatus = 1
)

type Promotion struct {
	ID           uint            `json:"idPromocion" gorm:"primaryKey"`
	RestaurantID uint            `json:"idRestaurante" gorm:"not null;index"`
	Restaurant   *Restaurant     `json:"restaurante,omitempty" gorm:"foreignKey:RestaurantID"`
	Title        string          `json:"titulo" gorm:"size:150;not null"`
	Description  string          `json:"descripcion" gorm:"type:text;not null"`
	Price        float64         `json:"precio" gorm:"not null"`
	StartDate    time.Time       `json:"fechaInicio" gorm:"not null"`
	EndDate      time.Time       `json:"fechaFin" gorm:"not null"`
	Status       PromotionStatus `json:"estado" gorm:"not null"`
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
}
