// Package finanzas holds the pure financial calculations of a sale: cart totals,
// payment reconciliation with the IGTF transaction tax, change distribution and the
// customer debt/credit ledger. Nothing here touches storage; every function can be
// called on each keystroke.
package finanzas

import (
	"blendcaja/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unidad of sale and its multiplier over the base stock unit.
const (
	UnidadSimple  = "unidad"
	UnidadPaquete = "paquete"
	UnidadBulto   = "bulto"
)

// ItemCarrito is one line of the in-flight cart.
type ItemCarrito struct {
	ProductoID     uuid.UUID
	Nombre         string
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal
	Unidad         string
	// Factor converts one Cantidad into base stock units (unidad=1, paquete=N, bulto=N×M).
	Factor          decimal.Decimal
	Exento          bool
	PorPeso         bool
	SinControlStock bool
	StockDisponible decimal.Decimal
}

// StockRequerido is Cantidad × Factor, the base units the line takes from stock.
func (i ItemCarrito) StockRequerido() decimal.Decimal {
	f := i.Factor
	if f.IsZero() {
		f = decimal.NewFromInt(1)
	}
	return money.Round(i.Cantidad.Mul(f), money.QuantityPlaces)
}

// ItemCalculado is a cart line with its own rounded totals.
type ItemCalculado struct {
	ItemCarrito
	Subtotal        decimal.Decimal
	Impuesto        decimal.Decimal
	TotalPrincipal  decimal.Decimal
	TotalSecundaria decimal.Decimal
}

// TotalesCarrito is always a pure function of the current cart and rates.
type TotalesCarrito struct {
	SubtotalBase    decimal.Decimal
	TotalImpuesto   decimal.Decimal
	TotalExento     decimal.Decimal
	TotalPrincipal  decimal.Decimal
	TotalSecundaria decimal.Decimal
	Items           []ItemCalculado
}

// CalcularCarrito computes per-line totals and the cart totals. The grand totals are
// the sums of the already rounded line totals, so a printed ticket always adds up.
// tasaImpuesto is a percentage; tasaCambio converts primary into secondary currency.
func CalcularCarrito(items []ItemCarrito, tasaImpuesto, tasaCambio decimal.Decimal) TotalesCarrito {
	t := TotalesCarrito{
		SubtotalBase:    decimal.Zero,
		TotalImpuesto:   decimal.Zero,
		TotalExento:     decimal.Zero,
		TotalPrincipal:  decimal.Zero,
		TotalSecundaria: decimal.Zero,
		Items:           make([]ItemCalculado, 0, len(items)),
	}

	for _, it := range items {
		it.Cantidad = money.Round(it.Cantidad, money.QuantityPlaces)
		subtotal := money.RoundMoney(money.Mul(it.PrecioUnitario, it.Cantidad))

		impuesto := decimal.Zero
		if it.Exento {
			t.TotalExento = money.Add(t.TotalExento, subtotal)
		} else {
			impuesto = money.RoundMoney(money.Percent(subtotal, tasaImpuesto))
		}

		totalPrincipal := money.RoundMoney(money.Add(subtotal, impuesto))
		totalSecundaria := money.RoundMoney(money.Mul(totalPrincipal, tasaCambio))

		t.SubtotalBase = money.Add(t.SubtotalBase, subtotal)
		t.TotalImpuesto = money.Add(t.TotalImpuesto, impuesto)
		t.TotalPrincipal = money.Add(t.TotalPrincipal, totalPrincipal)
		t.TotalSecundaria = money.Add(t.TotalSecundaria, totalSecundaria)

		t.Items = append(t.Items, ItemCalculado{
			ItemCarrito:     it,
			Subtotal:        subtotal,
			Impuesto:        impuesto,
			TotalPrincipal:  totalPrincipal,
			TotalSecundaria: totalSecundaria,
		})
	}
	return t
}
