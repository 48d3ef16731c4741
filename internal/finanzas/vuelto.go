package finanzas

import (
	"blendcaja/internal/apierror"
	"blendcaja/internal/money"

	"github.com/shopspring/decimal"
)

// DistribucionVuelto says how the change due is handed back. EfectivoSecundaria is
// expressed in secondary currency; the other two amounts in primary currency.
type DistribucionVuelto struct {
	EfectivoPrincipal  decimal.Decimal
	EfectivoSecundaria decimal.Decimal
	AWallet            decimal.Decimal
}

// TotalEnPrincipal converts the whole distribution to primary currency.
func (d DistribucionVuelto) TotalEnPrincipal(tasaCambio decimal.Decimal) decimal.Decimal {
	return money.Sum(d.EfectivoPrincipal, money.Div(d.EfectivoSecundaria, tasaCambio), d.AWallet)
}

// DistribuirVuelto validates a manual change distribution. Whatever the cashier does
// not hand back physically must be credited to the customer's wallet explicitly
// (acreditarResto); otherwise the distribution is rejected. A distribution larger
// than the change due is always rejected.
func DistribuirVuelto(vuelto, efectivoPrincipal, efectivoSecundaria decimal.Decimal, acreditarResto bool, tasaCambio, eps decimal.Decimal) (DistribucionVuelto, error) {
	if !eps.IsPositive() {
		eps = money.DefaultEpsilon
	}
	if efectivoPrincipal.IsNegative() || efectivoSecundaria.IsNegative() {
		return DistribucionVuelto{}, apierror.Guarda("vuelto_negativo", "los montos de vuelto no pueden ser negativos")
	}
	if efectivoSecundaria.IsPositive() && !tasaCambio.IsPositive() {
		return DistribucionVuelto{}, apierror.Guarda("tasa_cambio_invalida", "el vuelto en moneda secundaria requiere una tasa de cambio positiva")
	}

	entregado := money.Add(efectivoPrincipal, money.Div(efectivoSecundaria, tasaCambio))
	resto := money.Round(money.Sub(vuelto, entregado), money.InternalPlaces)

	d := DistribucionVuelto{
		EfectivoPrincipal:  efectivoPrincipal,
		EfectivoSecundaria: efectivoSecundaria,
		AWallet:            decimal.Zero,
	}

	switch {
	case resto.LessThan(eps.Neg()):
		return DistribucionVuelto{}, apierror.Guarda(apierror.ErrVueltoExcedido.Code,
			"la distribucion excede el vuelto en %s", resto.Neg().StringFixed(2))
	case resto.GreaterThan(eps):
		if !acreditarResto {
			return DistribucionVuelto{}, apierror.Guarda(apierror.ErrVueltoPendiente.Code,
				"vuelto no distribuido: faltan %s", resto.StringFixed(2))
		}
		d.AWallet = money.RoundMoney(resto)
	}
	return d, nil
}
