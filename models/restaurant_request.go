package models

import "time"

// RequestStatus represents the lifecycle of a restaurant-ownership request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pendiente"
	RequestApproved RequestStatus = "aprobado"
	RequestRejected RequestStatus = "rechazado"
)

// RestaurantRequest is a user's petition to be promoted to restaurant owner.
type RestaurantRequest struct {
	ID           uint          `json:"idSolicitud" gorm:"primaryKey"`
	UserID       uint          `json:"-" gorm:"not null;index"`
	User         *User         `json:"usuario,omitempty" gorm:"foreignKey:UserID"`
	BusinessName string        `json:"nombreComercial" gorm:"size:150;not null"`
	TaxID        *string       `json:"nit" gorm:"size:50"`
	Phone        *string       `json:"telefono" gorm:"size:20"`
	Address      *string       `json:"direccion" gorm:"size:255"`
	City         *string       `json:"ciudad" gorm:"size:100"`
	Description  *string       `json:"descripcion" gorm:"type:text"`
	Status       RequestStatus `json:"estado" gorm:"size:20;not null;index"`
	CreatedAt    time.Time     `json:"fechaSolicitud"`
	UpdatedAt    time.Time     `json:"fechaActualizacion"`
	ResolvedAt   *time.Time    `json:"fechaResolucion"`
	Notes        *string       `json:"observaciones" gorm:"type:text"`
}
