package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de entrada de auditoria.
const (
	AuditVenta        = "venta"
	AuditAnulacion    = "anulacion"
	AuditGasto        = "gasto"
	AuditReversaGasto = "reversa_gasto"
	AuditAbono        = "abono"
	AuditApertura     = "apertura"
	AuditCierre       = "cierre"
)

const (
	AuditActivo    = "activo"
	AuditRevertido = "revertido"
)

// Auditoria is the append-only log of every committed operation. Only Estado may
// change, and only from activo to revertido.
type Auditoria struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PuntoDeVenta    int              `gorm:"not null;index"`
	Tipo            string           `gorm:"type:varchar(20);not null;index"`
	ReferenciaID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Monto           decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	Moneda          string           `gorm:"type:varchar(20)"`
	Metodo          string           `gorm:"type:varchar(20)"`
	TasaCambio      decimal.Decimal  `gorm:"type:decimal(14,4);not null;default:0"`
	SaldoResultante *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Detalle         map[string]any   `gorm:"serializer:json"`
	Estado          string           `gorm:"type:varchar(20);not null;default:'activo'"`
	UsuarioID       uuid.UUID        `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
}

func (Auditoria) TableName() string { return "auditoria" }
