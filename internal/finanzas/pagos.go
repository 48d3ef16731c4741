package finanzas

import (
	"blendcaja/internal/money"

	"github.com/shopspring/decimal"
)

// Monedas in which a payment can be tendered.
const (
	MonedaPrincipal  = "principal"
	MonedaSecundaria = "secundaria"
	MonedaExtranjera = "extranjera"
)

// Metodos de pago. MetodoSaldoFavor consumes the customer's wallet and never moves
// physical cash.
const (
	MetodoEfectivo   = "efectivo"
	MetodoTarjeta    = "tarjeta"
	MetodoDigital    = "digital"
	MetodoSaldoFavor = "saldo_favor"
)

// Pago is one tendered payment.
type Pago struct {
	Monto      decimal.Decimal
	Moneda     string
	Metodo     string
	AplicaIGTF bool
	Referencia string
	// Tasa converts one unit of a MonedaExtranjera payment into primary currency.
	// Ignored for the other currencies.
	Tasa decimal.Decimal
}

// EnPrincipal normalizes the amount to primary currency. Secondary-currency amounts
// are divided by the exchange rate (zero when the rate is unset).
func (p Pago) EnPrincipal(tasaCambio decimal.Decimal) decimal.Decimal {
	switch p.Moneda {
	case MonedaSecundaria:
		return money.Div(p.Monto, tasaCambio)
	case MonedaExtranjera:
		return money.Mul(p.Monto, p.Tasa)
	default:
		return p.Monto
	}
}

// EsInterno reports whether the payment is settled inside the system (wallet) and
// therefore does not change the drawer's balances.
func (p Pago) EsInterno() bool {
	return p.Metodo == MetodoSaldoFavor
}

// ConfigIGTF configures the transaction tax charged on taxable payment mediums.
type ConfigIGTF struct {
	Habilitado bool
	// TasaPct is a percentage, e.g. 3 for 3%.
	TasaPct decimal.Decimal
	// Epsilon decides the sign of near-zero residues. Zero means money.DefaultEpsilon.
	Epsilon decimal.Decimal
}

func (c ConfigIGTF) epsilon() decimal.Decimal {
	if c.Epsilon.IsPositive() {
		return c.Epsilon
	}
	return money.DefaultEpsilon
}

// EstadoPago is the reconciliation of a total against the tendered payments.
// At most one of Restante and Vuelto is positive.
type EstadoPago struct {
	MontoIGTF             decimal.Decimal
	TotalConIGTF          decimal.Decimal
	PagadoPrincipal       decimal.Decimal
	PagadoSecundaria      decimal.Decimal
	PagadoGlobalPrincipal decimal.Decimal
	PagadoSaldoFavor      decimal.Decimal
	Restante              decimal.Decimal
	Vuelto                decimal.Decimal
}

// CalcularEstadoPago reconciles total (primary currency) against pagos.
//
// The IGTF base is the part of the taxable payments actually needed to cover what
// the non-taxable payments left uncovered: max(0, min(total-noGravado, gravado)).
// Money paid in excess, which becomes change, is never taxed.
func CalcularEstadoPago(total decimal.Decimal, pagos []Pago, cfg ConfigIGTF, tasaCambio decimal.Decimal) EstadoPago {
	eps := cfg.epsilon()
	e := EstadoPago{
		MontoIGTF:             decimal.Zero,
		PagadoPrincipal:       decimal.Zero,
		PagadoSecundaria:      decimal.Zero,
		PagadoGlobalPrincipal: decimal.Zero,
		PagadoSaldoFavor:      decimal.Zero,
		Restante:              decimal.Zero,
		Vuelto:                decimal.Zero,
	}

	gravado := decimal.Zero
	noGravado := decimal.Zero
	for _, p := range pagos {
		enPrincipal := p.EnPrincipal(tasaCambio)
		switch p.Moneda {
		case MonedaSecundaria:
			e.PagadoSecundaria = money.Add(e.PagadoSecundaria, p.Monto)
		case MonedaPrincipal, "":
			e.PagadoPrincipal = money.Add(e.PagadoPrincipal, p.Monto)
		}
		if p.EsInterno() {
			e.PagadoSaldoFavor = money.Add(e.PagadoSaldoFavor, enPrincipal)
		}
		e.PagadoGlobalPrincipal = money.Add(e.PagadoGlobalPrincipal, enPrincipal)
		if p.AplicaIGTF {
			gravado = money.Add(gravado, enPrincipal)
		} else {
			noGravado = money.Add(noGravado, enPrincipal)
		}
	}

	if cfg.Habilitado && cfg.TasaPct.IsPositive() {
		base := money.ClampZero(money.Min(money.Sub(total, noGravado), gravado))
		e.MontoIGTF = money.RoundMoney(money.Percent(base, cfg.TasaPct))
	}
	e.TotalConIGTF = money.Add(total, e.MontoIGTF)

	restante := money.Round(money.Sub(e.TotalConIGTF, e.PagadoGlobalPrincipal), money.InternalPlaces)
	switch {
	case restante.GreaterThan(eps):
		e.Restante = money.RoundMoney(restante)
	case restante.LessThan(eps.Neg()):
		e.Vuelto = money.RoundMoney(restante.Neg())
	}
	return e
}
