package model

import (
	"time"

	"blendcaja/internal/finanzas"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the catalog row the core reads and decrements. Catalog CRUD lives
// elsewhere; only price, stock and the sale-unit hierarchy matter here.
// Stock is kept in base units and may be fractional for weight-sold goods.
type Producto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras string          `gorm:"uniqueIndex;not null"`
	Nombre       string          `gorm:"index;not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock        decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	// Unit hierarchy: a paquete holds FactorPaquete units, a bulto holds FactorBulto
	// paquetes (or FactorBulto units when packs are not in use).
	PaqueteActivo   bool            `gorm:"not null;default:false"`
	FactorPaquete   decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1"`
	BultoActivo     bool            `gorm:"not null;default:false"`
	FactorBulto     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1"`
	Exento          bool            `gorm:"not null;default:false"`
	PorPeso         bool            `gorm:"not null;default:false"`
	SinControlStock bool            `gorm:"not null;default:false"`
	Activo          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Factor returns how many base units one sale unit represents. ok is false when
// the product does not sell in that unit: an inactive pack or bulk level, or a
// non-positive factor.
func (p *Producto) Factor(unidad string) (factor decimal.Decimal, ok bool) {
	switch unidad {
	case finanzas.UnidadSimple:
		return decimal.NewFromInt(1), true
	case finanzas.UnidadPaquete:
		if p.PaqueteActivo && p.FactorPaquete.IsPositive() {
			return p.FactorPaquete, true
		}
	case finanzas.UnidadBulto:
		if !p.BultoActivo || !p.FactorBulto.IsPositive() {
			return decimal.Zero, false
		}
		if p.PaqueteActivo && p.FactorPaquete.IsPositive() {
			return p.FactorPaquete.Mul(p.FactorBulto), true
		}
		return p.FactorBulto, true
	}
	return decimal.Zero, false
}
