package finanzas_test

import (
	"math/rand"
	"testing"

	"blendcaja/internal/apierror"
	"blendcaja/internal/finanzas"
	"blendcaja/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "want %s got %s", want, got.String())
}

// ── Carrito ──────────────────────────────────────────────────────────────────

func TestCalcularCarrito_Vacio(t *testing.T) {
	tot := finanzas.CalcularCarrito(nil, d("16"), d("36.5"))
	assert.True(t, tot.SubtotalBase.IsZero())
	assert.True(t, tot.TotalImpuesto.IsZero())
	assert.True(t, tot.TotalExento.IsZero())
	assert.True(t, tot.TotalPrincipal.IsZero())
	assert.True(t, tot.TotalSecundaria.IsZero())
	assert.Empty(t, tot.Items)
}

func TestCalcularCarrito_ImpuestoYExento(t *testing.T) {
	items := []finanzas.ItemCarrito{
		{Nombre: "Aceite 1L", Cantidad: d("1"), PrecioUnitario: d("10.00")},
		{Nombre: "Pan", Cantidad: d("2"), PrecioUnitario: d("2.50"), Exento: true},
	}
	tot := finanzas.CalcularCarrito(items, d("16"), d("36.5"))

	assertDec(t, "15.00", tot.SubtotalBase)
	assertDec(t, "1.60", tot.TotalImpuesto)
	assertDec(t, "5.00", tot.TotalExento)
	assertDec(t, "16.60", tot.TotalPrincipal)
	assertDec(t, "605.90", tot.TotalSecundaria)

	require.Len(t, tot.Items, 2)
	assertDec(t, "11.60", tot.Items[0].TotalPrincipal)
	assertDec(t, "423.40", tot.Items[0].TotalSecundaria)
	assertDec(t, "0", tot.Items[1].Impuesto)
}

func TestCalcularCarrito_CantidadFraccionaria(t *testing.T) {
	items := []finanzas.ItemCarrito{
		{Nombre: "Queso kg", Cantidad: d("0.755"), PrecioUnitario: d("3.99"), PorPeso: true},
	}
	tot := finanzas.CalcularCarrito(items, d("16"), d("0"))

	assertDec(t, "3.01", tot.Items[0].Subtotal)
	assertDec(t, "0.48", tot.Items[0].Impuesto)
	assertDec(t, "3.49", tot.TotalPrincipal)
	assert.True(t, tot.TotalSecundaria.IsZero())
}

func TestCalcularCarrito_TicketTruth(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 200; n++ {
		var items []finanzas.ItemCarrito
		for i := 0; i < 1+rng.Intn(12); i++ {
			items = append(items, finanzas.ItemCarrito{
				Cantidad:       decimal.New(int64(1+rng.Intn(5000)), -3),
				PrecioUnitario: decimal.New(int64(1+rng.Intn(99999)), -3),
				Exento:         rng.Intn(4) == 0,
			})
		}
		tot := finanzas.CalcularCarrito(items, d("16"), d("36.53"))

		sumaP, sumaS := decimal.Zero, decimal.Zero
		for _, it := range tot.Items {
			sumaP = sumaP.Add(it.TotalPrincipal)
			sumaS = sumaS.Add(it.TotalSecundaria)
		}
		require.True(t, sumaP.Equal(tot.TotalPrincipal), "carrito %d", n)
		require.True(t, sumaS.Equal(tot.TotalSecundaria), "carrito %d", n)
	}
}

func TestItemCarrito_StockRequerido(t *testing.T) {
	bulto := finanzas.ItemCarrito{Cantidad: d("2"), Factor: d("24"), Unidad: finanzas.UnidadBulto}
	assertDec(t, "48", bulto.StockRequerido())

	sinFactor := finanzas.ItemCarrito{Cantidad: d("3")}
	assertDec(t, "3", sinFactor.StockRequerido())
}

// ── Pagos ────────────────────────────────────────────────────────────────────

var sinIGTF = finanzas.ConfigIGTF{}

func TestEstadoPago_PagoExacto(t *testing.T) {
	e := finanzas.CalcularEstadoPago(d("100"), []finanzas.Pago{
		{Monto: d("100"), Moneda: finanzas.MonedaPrincipal, Metodo: finanzas.MetodoEfectivo},
	}, sinIGTF, d("36.5"))
	assert.True(t, e.Restante.IsZero())
	assert.True(t, e.Vuelto.IsZero())
}

func TestEstadoPago_Sobrepago(t *testing.T) {
	e := finanzas.CalcularEstadoPago(d("50"), []finanzas.Pago{
		{Monto: d("100"), Moneda: finanzas.MonedaPrincipal, Metodo: finanzas.MetodoEfectivo},
	}, sinIGTF, d("36.5"))
	assertDec(t, "50", e.Vuelto)
	assert.True(t, e.Restante.IsZero())
}

func TestEstadoPago_MonedaMixta(t *testing.T) {
	e := finanzas.CalcularEstadoPago(d("100"), []finanzas.Pago{
		{Monto: d("50"), Moneda: finanzas.MonedaPrincipal, Metodo: finanzas.MetodoEfectivo},
		{Monto: d("1825"), Moneda: finanzas.MonedaSecundaria, Metodo: finanzas.MetodoDigital},
	}, sinIGTF, d("36.5"))
	assert.True(t, e.Restante.IsZero())
	assert.True(t, e.Vuelto.IsZero())
	assertDec(t, "50", e.PagadoPrincipal)
	assertDec(t, "1825", e.PagadoSecundaria)
	assertDec(t, "100", e.PagadoGlobalPrincipal)
}

func TestEstadoPago_IGTFSobrePagoGravado(t *testing.T) {
	cfg := finanzas.ConfigIGTF{Habilitado: true, TasaPct: d("3")}
	e := finanzas.CalcularEstadoPago(d("100"), []finanzas.Pago{
		{Monto: d("100"), Moneda: finanzas.MonedaPrincipal, Metodo: finanzas.MetodoEfectivo, AplicaIGTF: true},
	}, cfg, d("36.5"))

	assert.True(t, e.MontoIGTF.IsPositive())
	assert.True(t, e.TotalConIGTF.GreaterThan(d("100")))
	assertDec(t, "3", e.MontoIGTF)
	assertDec(t, "3", e.Restante)
}

func TestEstadoPago_IGTFSoloSobreLoNecesario(t *testing.T) {
	cfg := finanzas.ConfigIGTF{Habilitado: true, TasaPct: d("3")}
	e := finanzas.CalcularEstadoPago(d("100"), []finanzas.Pago{
		{Monto: d("60"), Moneda: finanzas.MonedaPrincipal, Metodo: finanzas.MetodoTarjeta},
		{Monto: d("50"), Moneda: finanzas.MonedaPrincipal, Metodo: finanzas.MetodoEfectivo, AplicaIGTF: true},
	}, cfg, d("36.5"))

	// base = min(100-60, 50) = 40
	assertDec(t, "1.20", e.MontoIGTF)
	assertDec(t, "101.20", e.TotalConIGTF)
	assertDec(t, "8.80", e.Vuelto)
}

func TestEstadoPago_IGTFDeshabilitado(t *testing.T) {
	cfg := finanzas.ConfigIGTF{Habilitado: false, TasaPct: d("3")}
	e := finanzas.CalcularEstadoPago(d("100"), []finanzas.Pago{
		{Monto: d("100"), Moneda: finanzas.MonedaPrincipal, AplicaIGTF: true},
	}, cfg, d("36.5"))
	assert.True(t, e.MontoIGTF.IsZero())
	assert.True(t, e.Restante.IsZero())
}

func TestEstadoPago_ResiduoBajoEpsilon(t *testing.T) {
	e := finanzas.CalcularEstadoPago(d("10"), []finanzas.Pago{
		{Monto: d("9.99995"), Moneda: finanzas.MonedaPrincipal},
	}, sinIGTF, d("1"))
	assert.True(t, e.Restante.IsZero())
	assert.True(t, e.Vuelto.IsZero())
}

func TestEstadoPago_ExtranjeraYSaldoFavor(t *testing.T) {
	e := finanzas.CalcularEstadoPago(d("30"), []finanzas.Pago{
		{Monto: d("20"), Moneda: finanzas.MonedaExtranjera, Tasa: d("1.1"), Metodo: finanzas.MetodoEfectivo},
		{Monto: d("8"), Moneda: finanzas.MonedaPrincipal, Metodo: finanzas.MetodoSaldoFavor},
	}, sinIGTF, d("36.5"))
	assertDec(t, "30", e.PagadoGlobalPrincipal)
	assertDec(t, "8", e.PagadoSaldoFavor)
	assert.True(t, e.Restante.IsZero())
}

func TestEstadoPago_TasaCeroNoRompe(t *testing.T) {
	e := finanzas.CalcularEstadoPago(d("10"), []finanzas.Pago{
		{Monto: d("365"), Moneda: finanzas.MonedaSecundaria},
	}, sinIGTF, decimal.Zero)
	assertDec(t, "10", e.Restante)
}

func TestEstadoPago_Exclusividad(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := finanzas.ConfigIGTF{Habilitado: true, TasaPct: d("3")}
	for n := 0; n < 500; n++ {
		total := decimal.New(int64(rng.Intn(100000)), -2)
		var pagos []finanzas.Pago
		for i := 0; i < rng.Intn(4); i++ {
			moneda := finanzas.MonedaPrincipal
			if rng.Intn(2) == 0 {
				moneda = finanzas.MonedaSecundaria
			}
			pagos = append(pagos, finanzas.Pago{
				Monto:      decimal.New(int64(rng.Intn(200000)), -2),
				Moneda:     moneda,
				AplicaIGTF: rng.Intn(3) == 0,
			})
		}
		e := finanzas.CalcularEstadoPago(total, pagos, cfg, d("36.5"))
		require.False(t, e.Restante.IsPositive() && e.Vuelto.IsPositive(), "caso %d", n)
		require.False(t, e.Restante.IsNegative() || e.Vuelto.IsNegative(), "caso %d", n)
	}
}

// ── Vuelto ───────────────────────────────────────────────────────────────────

func TestDistribuirVuelto_Completo(t *testing.T) {
	dist, err := finanzas.DistribuirVuelto(d("50"), d("30"), d("730"), false, d("36.5"), money.DefaultEpsilon)
	require.NoError(t, err)
	assert.True(t, dist.AWallet.IsZero())
}

func TestDistribuirVuelto_SinDistribuir(t *testing.T) {
	_, err := finanzas.DistribuirVuelto(d("50"), d("20"), d("730"), false, d("36.5"), money.DefaultEpsilon)
	assert.ErrorIs(t, err, apierror.ErrVueltoPendiente)
	assert.Equal(t, apierror.KindGuarda, apierror.KindOf(err))
}

func TestDistribuirVuelto_RestoAWallet(t *testing.T) {
	dist, err := finanzas.DistribuirVuelto(d("50"), d("20"), d("730"), true, d("36.5"), money.DefaultEpsilon)
	require.NoError(t, err)
	assertDec(t, "10", dist.AWallet)
}

func TestDistribuirVuelto_Excedido(t *testing.T) {
	_, err := finanzas.DistribuirVuelto(d("50"), d("60"), decimal.Zero, true, d("36.5"), money.DefaultEpsilon)
	assert.ErrorIs(t, err, apierror.ErrVueltoExcedido)
}

func TestDistribuirVuelto_Negativo(t *testing.T) {
	_, err := finanzas.DistribuirVuelto(d("10"), d("-1"), decimal.Zero, true, d("36.5"), money.DefaultEpsilon)
	assert.Equal(t, apierror.KindGuarda, apierror.KindOf(err))
}

func TestDistribuirVuelto_SecundariaSinTasa(t *testing.T) {
	for _, tasa := range []decimal.Decimal{decimal.Zero, d("-1")} {
		_, err := finanzas.DistribuirVuelto(d("50"), d("50"), d("4000"), false, tasa, money.DefaultEpsilon)
		var e *apierror.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "tasa_cambio_invalida", e.Code)
	}

	// without secondary cash the rate is irrelevant
	dist, err := finanzas.DistribuirVuelto(d("50"), d("50"), decimal.Zero, false, decimal.Zero, money.DefaultEpsilon)
	require.NoError(t, err)
	assert.True(t, dist.EfectivoPrincipal.Equal(d("50")))
}

func TestDistribuirVuelto_Conservacion(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tasa := d("36.5")
	for n := 0; n < 300; n++ {
		vuelto := decimal.New(int64(rng.Intn(10000)), -2)
		principal := decimal.New(int64(rng.Intn(int(vuelto.Mul(d("100")).IntPart())+1)), -2)
		faltante := vuelto.Sub(principal)
		secundaria := money.RoundMoney(faltante.Mul(tasa).Mul(decimal.New(int64(rng.Intn(101)), -2)))

		dist, err := finanzas.DistribuirVuelto(vuelto, principal, secundaria, true, tasa, money.DefaultEpsilon)
		if err != nil {
			// rounding the secondary amount up may exceed the change by a fraction
			require.ErrorIs(t, err, apierror.ErrVueltoExcedido)
			continue
		}
		require.True(t, money.EqualWithin(dist.TotalEnPrincipal(tasa), vuelto, d("0.01")), "caso %d", n)
	}
}

// ── Cliente ──────────────────────────────────────────────────────────────────

func cuenta(deuda, saldo string) finanzas.CuentaCliente {
	return finanzas.CuentaCliente{Deuda: d(deuda), SaldoFavor: d(saldo)}
}

func TestCliente_DeudaPrimero(t *testing.T) {
	c, apl := finanzas.AplicarMovimientoCliente(cuenta("30", "0"), finanzas.MovimientoCliente{VueltoAWallet: d("50")})
	assertDec(t, "0", c.Deuda)
	assertDec(t, "20", c.SaldoFavor)
	assertDec(t, "30", apl.AplicadoADeuda)
	assertDec(t, "20", apl.AplicadoAWallet)
}

func TestCliente_VentaACredito(t *testing.T) {
	c, _ := finanzas.AplicarMovimientoCliente(cuenta("0", "0"), finanzas.MovimientoCliente{NuevaDeuda: d("40")})
	assertDec(t, "40", c.Deuda)
	assertDec(t, "0", c.SaldoFavor)
}

func TestCliente_ConsumoWalletSeRecorta(t *testing.T) {
	c, apl := finanzas.AplicarMovimientoCliente(cuenta("0", "5"), finanzas.MovimientoCliente{WalletConsumido: d("10")})
	assertDec(t, "0", c.SaldoFavor)
	assertDec(t, "5", apl.WalletConsumido)
}

func TestCliente_OrdenFijo(t *testing.T) {
	c, _ := finanzas.AplicarMovimientoCliente(cuenta("0", "10"), finanzas.MovimientoCliente{
		WalletConsumido: d("10"),
		NuevaDeuda:      d("20"),
		VueltoAWallet:   d("5"),
	})
	assertDec(t, "15", c.Deuda)
	assertDec(t, "0", c.SaldoFavor)
}

func TestCliente_CreditoPrevioCompensaDeuda(t *testing.T) {
	c, _ := finanzas.AplicarMovimientoCliente(cuenta("0", "10"), finanzas.MovimientoCliente{NuevaDeuda: d("30")})
	assertDec(t, "20", c.Deuda)
	assertDec(t, "0", c.SaldoFavor)
}

func TestCliente_NoCoexistenYReversible(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for n := 0; n < 500; n++ {
		var inicial finanzas.CuentaCliente
		if rng.Intn(2) == 0 {
			inicial = finanzas.CuentaCliente{Deuda: decimal.New(int64(rng.Intn(10000)), -2), SaldoFavor: decimal.Zero}
		} else {
			inicial = finanzas.CuentaCliente{Deuda: decimal.Zero, SaldoFavor: decimal.New(int64(rng.Intn(10000)), -2)}
		}
		mov := finanzas.MovimientoCliente{
			NuevaDeuda:      decimal.New(int64(rng.Intn(5000)), -2),
			VueltoAWallet:   decimal.New(int64(rng.Intn(5000)), -2),
			WalletConsumido: decimal.New(int64(rng.Intn(5000)), -2),
		}
		c, apl := finanzas.AplicarMovimientoCliente(inicial, mov)
		require.False(t, c.Deuda.IsPositive() && c.SaldoFavor.IsPositive(), "caso %d", n)

		r := finanzas.RevertirMovimientoCliente(c, apl)
		require.True(t, r.Deuda.Equal(inicial.Deuda), "caso %d deuda", n)
		require.True(t, r.SaldoFavor.Equal(inicial.SaldoFavor), "caso %d saldo", n)
	}
}
