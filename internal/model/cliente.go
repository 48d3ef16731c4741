package model

import (
	"time"

	"blendcaja/internal/finanzas"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente carries the customer's ledger. Deuda and SaldoFavor are never both
// positive; they are only written inside a sale, abono or void transaction.
type Cliente struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre     string          `gorm:"not null"`
	Documento  *string         `gorm:"uniqueIndex"`
	Deuda      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SaldoFavor decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Cliente) Cuenta() finanzas.CuentaCliente {
	return finanzas.CuentaCliente{Deuda: c.Deuda, SaldoFavor: c.SaldoFavor}
}

func (c *Cliente) SetCuenta(cuenta finanzas.CuentaCliente) {
	c.Deuda = cuenta.Deuda
	c.SaldoFavor = cuenta.SaldoFavor
}
