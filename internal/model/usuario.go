package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario is an operator of the registers. Rol is one of cajero, supervisor
// or administrador.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null;check:rol IN ('cajero','supervisor','administrador')"`
	// PuntoDeVenta pins a cashier to one register; nil lets the request choose.
	PuntoDeVenta  *int
	Activo        bool `gorm:"not null;default:true"`
	UltimoLoginAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
