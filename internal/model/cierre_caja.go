package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clasificaciones de desvio del arqueo.
const (
	DesvioNormal      = "normal"
	DesvioAdvertencia = "advertencia"
	DesvioCritico     = "critico"
)

// CierreCaja is the Z report persisted when a session closes.
type CierreCaja struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PuntoDeVenta int       `gorm:"not null;index"`
	UsuarioID    uuid.UUID `gorm:"type:uuid;not null"`

	CantidadVentas   int             `gorm:"not null"`
	CantidadAnuladas int             `gorm:"not null"`
	TotalVentas      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalIGTF        decimal.Decimal `gorm:"type:decimal(14,2);not null;column:total_igtf"`
	TotalCredito     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CantidadGastos   int             `gorm:"not null"`

	// Worst per-drawer discrepancy, present only when a count was declared.
	DesvioPct           *decimal.Decimal `gorm:"type:decimal(7,2)"`
	ClasificacionDesvio *string          `gorm:"type:varchar(20)"`
	Observaciones       *string

	VentaIDs []uuid.UUID   `gorm:"serializer:json"`
	Saldos   []CierreSaldo `gorm:"foreignKey:CierreID"`

	OpenedAt time.Time
	ClosedAt time.Time
	// ReportePath is the generated PDF, filled by the report worker.
	ReportePath *string
	CreatedAt   time.Time
}

// TableName keeps the plural in Spanish (cierre_cajas → cierres_caja).
func (CierreCaja) TableName() string { return "cierres_caja" }

// CierreSaldo is one (moneda, metodo) line of the Z report.
type CierreSaldo struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CierreID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Moneda     string           `gorm:"type:varchar(20);not null"`
	Metodo     string           `gorm:"type:varchar(20);not null"`
	Inicial    decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Ventas     decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Gastos     decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Abonos     decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Esperado   decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Declarado  *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Diferencia *decimal.Decimal `gorm:"type:decimal(14,2)"`
}

// TableName keeps the plural in Spanish.
func (CierreSaldo) TableName() string { return "cierre_saldos" }

func (s CierreSaldo) Clave() string { return ClaveSaldo(s.Moneda, s.Metodo) }
