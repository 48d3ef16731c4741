package finanzas

import (
	"blendcaja/internal/money"

	"github.com/shopspring/decimal"
)

// CuentaCliente is a customer's balance. After any transition at most one of the
// two fields is positive.
type CuentaCliente struct {
	Deuda      decimal.Decimal
	SaldoFavor decimal.Decimal
}

// Neto is SaldoFavor - Deuda.
func (c CuentaCliente) Neto() decimal.Decimal {
	return money.Sub(c.SaldoFavor, c.Deuda)
}

// MovimientoCliente is what a sale, abono or void asks of the ledger.
type MovimientoCliente struct {
	NuevaDeuda      decimal.Decimal
	VueltoAWallet   decimal.Decimal
	WalletConsumido decimal.Decimal
}

// Aplicacion records how a movement was actually applied, which is exactly what a
// later void needs to undo it.
type Aplicacion struct {
	NuevaDeuda      decimal.Decimal
	WalletConsumido decimal.Decimal
	AplicadoADeuda  decimal.Decimal
	AplicadoAWallet decimal.Decimal
}

// AplicarMovimientoCliente applies m to c in a fixed order:
//  1. wallet consumption comes off the credit, clamped at zero
//  2. new debt is added
//  3. change sent to the wallet pays existing debt first; only the rest is credit
//  4. the result is normalized on the net balance
func AplicarMovimientoCliente(c CuentaCliente, m MovimientoCliente) (CuentaCliente, Aplicacion) {
	deuda := money.ClampZero(c.Deuda)
	credito := money.ClampZero(c.SaldoFavor)

	consumido := money.Min(credito, money.ClampZero(m.WalletConsumido))
	credito = money.Sub(credito, consumido)

	nueva := money.ClampZero(m.NuevaDeuda)
	deuda = money.Add(deuda, nueva)

	vuelto := money.ClampZero(m.VueltoAWallet)
	aDeuda := money.Min(deuda, vuelto)
	deuda = money.Sub(deuda, aDeuda)
	aWallet := money.Sub(vuelto, aDeuda)
	credito = money.Add(credito, aWallet)

	return normalizar(deuda, credito), Aplicacion{
		NuevaDeuda:      nueva,
		WalletConsumido: consumido,
		AplicadoADeuda:  aDeuda,
		AplicadoAWallet: aWallet,
	}
}

// RevertirMovimientoCliente undoes a previously applied movement: the absorbed debt
// returns to debt, the wallet credit is withdrawn, the new debt is cancelled and the
// consumed wallet is given back. The balance is renormalized afterwards.
func RevertirMovimientoCliente(c CuentaCliente, a Aplicacion) CuentaCliente {
	neto := c.Neto().
		Sub(a.AplicadoADeuda).
		Sub(a.AplicadoAWallet).
		Add(a.NuevaDeuda).
		Add(a.WalletConsumido)
	return desdeNeto(neto)
}

func normalizar(deuda, credito decimal.Decimal) CuentaCliente {
	return desdeNeto(money.Sub(credito, deuda))
}

func desdeNeto(neto decimal.Decimal) CuentaCliente {
	if neto.IsNegative() {
		return CuentaCliente{Deuda: neto.Abs(), SaldoFavor: decimal.Zero}
	}
	return CuentaCliente{Deuda: decimal.Zero, SaldoFavor: neto}
}
