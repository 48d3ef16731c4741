package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	GastoTipoGasto   = "gasto"
	GastoTipoReversa = "reversa"
)

// Gasto is a cash withdrawal from the drawer. The amount is never edited: a
// reversal marks the original Revertido and inserts a paired reversa row.
type Gasto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PuntoDeVenta int             `gorm:"not null;index"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null;default:'gasto'"`
	Monto        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Moneda       string          `gorm:"type:varchar(20);not null"`
	Metodo       string          `gorm:"type:varchar(20);not null"`
	Motivo       string          `gorm:"not null"`
	TasaCambio   decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	// SaldoResultante is the drawer balance right after this row was applied.
	SaldoResultante decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ReversaDeID     *uuid.UUID      `gorm:"type:uuid;index"`
	Revertido       bool            `gorm:"not null;default:false"`
	CreatedAt       time.Time
}
