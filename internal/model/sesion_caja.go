package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// SesionCaja represents the lifecycle of a cash register session.
// At most one session per PuntoDeVenta is abierta at a time; closed sessions are kept.
type SesionCaja struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PuntoDeVenta  int        `gorm:"not null;index"`
	UsuarioID     uuid.UUID  `gorm:"type:uuid;not null"`
	Estado        string     `gorm:"type:varchar(20);not null;default:'abierta'"`
	Observaciones *string
	CierreID      *uuid.UUID `gorm:"type:uuid"`
	OpenedAt      time.Time
	ClosedAt      *time.Time

	Saldos []SaldoCaja `gorm:"foreignKey:SesionCajaID"`
}

// SaldoCaja is the running balance of one (moneda, metodo) drawer inside a session.
type SaldoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_saldo_clave"`
	Moneda       string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_saldo_clave"`
	Metodo       string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_saldo_clave"`
	Inicial      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Actual       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

// TableName keeps the plural in Spanish (saldo_cajas → saldos_caja).
func (SaldoCaja) TableName() string { return "saldos_caja" }

// Clave returns the "moneda:metodo" key used in reports.
func (s SaldoCaja) Clave() string { return ClaveSaldo(s.Moneda, s.Metodo) }

func ClaveSaldo(moneda, metodo string) string { return moneda + ":" + metodo }

// MovimientoCaja is an immutable event in the cash register ledger.
// Tipo: "venta" | "vuelto" | "anulacion" | "gasto" | "reversa_gasto" | "abono"
// Movements are NEVER modified or deleted; cancellations create inverse entries.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	Moneda       string          `gorm:"type:varchar(20);not null"`
	Metodo       string          `gorm:"type:varchar(20);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Descripcion  string          `gorm:"not null"`
	// ReferenciaID links to the originating Venta, Gasto or abono
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}
