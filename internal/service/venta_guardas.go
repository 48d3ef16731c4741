package service

import (
	"blendcaja/internal/apierror"
	"blendcaja/internal/config"
	"blendcaja/internal/dto"
	"blendcaja/internal/finanzas"
	"blendcaja/internal/model"
	"blendcaja/internal/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// contextoVenta is the state a sale is checked against. It is loaded and computed
// before the first mutation; guards only read it, except for the stock-conflict flag.
type contextoVenta struct {
	req           *dto.RegistrarVentaRequest
	params        config.Parametros
	sesion        *model.SesionCaja // nil when the register is closed
	cliente       *model.Cliente
	ventasTotales int64
	calc          *calculoVenta

	conflictoStock bool
}

// guarda is one named pre-commit predicate.
type guarda struct {
	nombre string
	check  func(c *contextoVenta) error
}

// guardasVenta run in this order; the first failure aborts the sale untouched.
var guardasVenta = []guarda{
	{"sesion_abierta", guardaSesionAbierta},
	{"carrito_no_vacio", guardaCarritoNoVacio},
	{"cuota_demo", guardaCuotaDemo},
	{"total_valido", guardaTotalValido},
	{"pagos_no_negativos", guardaPagosNoNegativos},
	{"tasa_cambio_valida", guardaTasaCambio},
	{"stock_suficiente", guardaStockSuficiente},
	{"credito_con_cliente", guardaCreditoConCliente},
	{"pago_suficiente", guardaPagoSuficiente},
	{"saldo_favor_disponible", guardaSaldoFavorDisponible},
	{"vuelto_resuelto", guardaVueltoResuelto},
}

func ejecutarGuardas(guardas []guarda, c *contextoVenta) error {
	for _, g := range guardas {
		if err := g.check(c); err != nil {
			log.Debug().Str("guarda", g.nombre).Err(err).Msg("venta rechazada")
			return err
		}
	}
	return nil
}

func guardaSesionAbierta(c *contextoVenta) error {
	if c.sesion == nil {
		return errCajaCerrada(c.req.PuntoDeVenta)
	}
	return nil
}

func guardaCarritoNoVacio(c *contextoVenta) error {
	if len(c.calc.items) == 0 {
		return apierror.Guarda("carrito_vacio", "el carrito no tiene items")
	}
	return nil
}

func guardaCuotaDemo(c *contextoVenta) error {
	limite := c.params.LimiteVentasDemo
	if limite > 0 && c.ventasTotales >= limite {
		return apierror.Cuota(apierror.ErrLimiteDemo.Code, "se alcanzo el limite de %d ventas de la version demo", limite)
	}
	return nil
}

func guardaTotalValido(c *contextoVenta) error {
	for _, it := range c.calc.items {
		if !it.Cantidad.IsPositive() {
			return apierror.Guarda("total_invalido", "cantidad invalida para %s: %s", it.Nombre, it.Cantidad)
		}
		if it.PrecioUnitario.IsNegative() {
			return apierror.Guarda("total_invalido", "precio negativo para %s", it.Nombre)
		}
	}
	if c.calc.totales.TotalPrincipal.IsNegative() {
		return apierror.Guarda("total_invalido", "el total de la venta es negativo")
	}
	return nil
}

func guardaPagosNoNegativos(c *contextoVenta) error {
	for _, p := range c.calc.pagos {
		if p.Monto.IsNegative() {
			return apierror.Guarda("pago_negativo", "el pago %s/%s es negativo", p.Moneda, p.Metodo)
		}
		if p.Moneda == finanzas.MonedaExtranjera && !p.Tasa.IsPositive() {
			return apierror.Guarda("tasa_extranjera_invalida", "el pago en moneda extranjera requiere una tasa positiva")
		}
	}
	return nil
}

// guardaTasaCambio rejects secondary-currency money when no exchange rate is set.
// Safe division would value it at zero: a payment would be kept without change
// owed and any amount of secondary cash would balance a change distribution.
func guardaTasaCambio(c *contextoVenta) error {
	if c.params.TasaCambio.IsPositive() {
		return nil
	}
	for _, p := range c.calc.pagos {
		if p.Moneda == finanzas.MonedaSecundaria && p.Monto.IsPositive() {
			return apierror.Guarda("tasa_cambio_invalida", "el pago en moneda secundaria requiere una tasa de cambio positiva")
		}
	}
	if v := c.req.Vuelto; v != nil && v.EfectivoSecundaria.IsPositive() {
		return apierror.Guarda("tasa_cambio_invalida", "el vuelto en moneda secundaria requiere una tasa de cambio positiva")
	}
	return nil
}

// guardaStockSuficiente sums the base units each product needs across all lines.
// Weight-sold and untracked products are not checked.
func guardaStockSuficiente(c *contextoVenta) error {
	requerido := make(map[uuid.UUID]decimal.Decimal)
	var orden []uuid.UUID
	nombres := make(map[uuid.UUID]string)
	disponible := make(map[uuid.UUID]decimal.Decimal)
	for _, it := range c.calc.items {
		if it.SinControlStock || it.PorPeso {
			continue
		}
		if _, ok := requerido[it.ProductoID]; !ok {
			orden = append(orden, it.ProductoID)
			requerido[it.ProductoID] = decimal.Zero
		}
		requerido[it.ProductoID] = money.Add(requerido[it.ProductoID], it.StockRequerido())
		nombres[it.ProductoID] = it.Nombre
		disponible[it.ProductoID] = it.StockDisponible
	}
	for _, id := range orden {
		faltante := money.Sub(requerido[id], disponible[id])
		if !faltante.IsPositive() {
			continue
		}
		if c.params.PermitirStockNegativo {
			c.conflictoStock = true
			log.Warn().
				Str("producto", nombres[id]).
				Str("faltante", faltante.String()).
				Msg("venta con stock insuficiente permitida por configuracion")
			continue
		}
		return apierror.Recurso(apierror.ErrStockInsuficiente.Code,
			"stock insuficiente para %s: faltan %s", nombres[id], faltante.String())
	}
	return nil
}

func guardaCreditoConCliente(c *contextoVenta) error {
	if !c.req.EsCredito {
		return nil
	}
	if c.cliente == nil {
		return apierror.Guarda("credito_sin_cliente", "la venta a credito requiere un cliente")
	}
	if !c.calc.estado.Restante.IsPositive() {
		return apierror.Guarda("credito_sin_deuda", "la venta a credito no deja saldo pendiente")
	}
	return nil
}

func guardaPagoSuficiente(c *contextoVenta) error {
	if c.req.EsCredito {
		return nil
	}
	if c.calc.estado.Restante.IsPositive() {
		return apierror.Guarda("pago_insuficiente", "faltan %s para completar el pago", c.calc.estado.Restante.StringFixed(2))
	}
	return nil
}

func guardaSaldoFavorDisponible(c *contextoVenta) error {
	consumo := c.calc.estado.PagadoSaldoFavor
	if !consumo.IsPositive() {
		return nil
	}
	if c.cliente == nil {
		return apierror.Guarda("saldo_favor_sin_cliente", "el pago con saldo a favor requiere un cliente")
	}
	if c.cliente.SaldoFavor.LessThan(consumo) {
		return apierror.Guarda("saldo_favor_insuficiente", "saldo a favor insuficiente: disponible %s, requerido %s",
			c.cliente.SaldoFavor.StringFixed(2), consumo.StringFixed(2))
	}
	return nil
}

func guardaVueltoResuelto(c *contextoVenta) error {
	if c.calc.errVuelto != nil {
		return c.calc.errVuelto
	}
	if c.calc.vuelto.AWallet.IsPositive() && c.cliente == nil {
		return apierror.Guarda("vuelto_wallet_sin_cliente", "acreditar vuelto al saldo a favor requiere un cliente")
	}
	return nil
}
