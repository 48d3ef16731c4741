package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VersionEsquemaVenta tags every persisted sale so readers can tell record layouts apart.
const VersionEsquemaVenta = "venta.v2"

// Estados de venta. Sales are never deleted: a void flips Estado to anulada.
const (
	VentaCompletada = "completada"
	VentaAnulada    = "anulada"
)

// Venta is the committed, immutable record of a sale. Only the void fields and
// CierreID change after commit.
type Venta struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket int        `gorm:"uniqueIndex;not null"`
	PuntoDeVenta int        `gorm:"not null;index"`
	SesionCajaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null"`
	ClienteID    *uuid.UUID `gorm:"type:uuid;index"`

	SubtotalBase    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalImpuesto   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalExento     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalSecundaria decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MontoIGTF       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:monto_igtf"`
	TotalConIGTF    decimal.Decimal `gorm:"type:decimal(12,2);not null;column:total_con_igtf"`
	// TasaCambio is the rate snapshot the sale was computed with.
	TasaCambio decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`

	// Ledger effects, stored so a void can undo exactly what was applied.
	EsCredito       bool            `gorm:"not null;default:false"`
	DeudaPendiente  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	WalletConsumido decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AplicadoADeuda  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:aplicado_a_deuda"`
	AplicadoAWallet decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:aplicado_a_wallet"`

	ConflictoStock  bool      `gorm:"not null;default:false"`
	Estado          string    `gorm:"type:varchar(20);not null;default:'completada';index"`
	MotivoAnulacion *string
	AnuladaPor      *uuid.UUID `gorm:"type:uuid"`
	AnuladaAt       *time.Time
	// CierreID is set when the sale is included in a shift close report.
	CierreID       *uuid.UUID `gorm:"type:uuid;index"`
	VersionEsquema string     `gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items   []VentaItem   `gorm:"foreignKey:VentaID"`
	Pagos   []VentaPago   `gorm:"foreignKey:VentaID"`
	Vueltos []VentaVuelto `gorm:"foreignKey:VentaID"`
	Usuario *Usuario      `gorm:"foreignKey:UsuarioID"`
}

// VentaItem is a frozen copy of the cart line at commit time.
type VentaItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID      uuid.UUID       `gorm:"type:uuid;not null"`
	Nombre          string          `gorm:"not null"`
	Cantidad        decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Unidad          string          `gorm:"type:varchar(20);not null"`
	Factor          decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	// StockDescontado is Cantidad × Factor in base units; zero when stock is not tracked.
	StockDescontado decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	PrecioUnitario  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Exento          bool            `gorm:"not null;default:false"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Impuesto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrincipal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalSecundaria decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// VentaPago is one tendered payment, stored verbatim plus its primary-currency value.
type VentaPago struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Moneda         string          `gorm:"type:varchar(20);not null"`
	Metodo         string          `gorm:"type:varchar(20);not null"`
	Monto          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MontoPrincipal decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	AplicaIGTF     bool            `gorm:"not null;default:false;column:aplica_igtf"`
	Tasa           decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	Referencia     *string
}

// VentaVuelto is a change line handed back in cash. Change credited to the wallet is
// recorded on the sale as AplicadoADeuda/AplicadoAWallet instead.
type VentaVuelto struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Moneda  string          `gorm:"type:varchar(20);not null"`
	Monto   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}
