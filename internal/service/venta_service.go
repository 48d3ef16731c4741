package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blendcaja/internal/apierror"
	"blendcaja/internal/config"
	"blendcaja/internal/dto"
	"blendcaja/internal/finanzas"
	"blendcaja/internal/model"
	"blendcaja/internal/money"
	"blendcaja/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	// Calcular previews totals, payment status and change without touching state.
	Calcular(ctx context.Context, req dto.CalcularVentaRequest, params config.Parametros) (*dto.CalculoVentaResponse, error)
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest, params config.Parametros) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, usuarioID, id uuid.UUID, motivo string) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	stockRepo    repository.MovimientoStockRepository
	cajaRepo     repository.CajaRepository
	clienteRepo  repository.ClienteRepository
	auditRepo    repository.AuditoriaRepository
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	stockRepo repository.MovimientoStockRepository,
	cajaRepo repository.CajaRepository,
	clienteRepo repository.ClienteRepository,
	auditRepo repository.AuditoriaRepository,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		stockRepo:    stockRepo,
		cajaRepo:     cajaRepo,
		clienteRepo:  clienteRepo,
		auditRepo:    auditRepo,
	}
}

// calculoVenta is the financial picture of a cart and its payments.
type calculoVenta struct {
	items   []finanzas.ItemCarrito
	totales finanzas.TotalesCarrito
	pagos   []finanzas.Pago
	estado  finanzas.EstadoPago
	vuelto  finanzas.DistribucionVuelto
	// errVuelto is the change allocation failure, reported by the vuelto_resuelto guard.
	errVuelto error
}

func productoIDs(items []dto.ItemVentaRequest) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(items))
	vistos := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		id, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, apierror.Validacion("producto_id_invalido", "producto_id invalido: %s", it.ProductoID)
		}
		if !vistos[id] {
			vistos[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// calcularVenta resolves the cart against the product rows and runs the cart,
// payment and change calculations. The sale-unit price is PrecioVenta × factor.
func calcularVenta(productos []model.Producto, req dto.CalcularVentaRequest, params config.Parametros) (*calculoVenta, error) {
	porID := make(map[uuid.UUID]*model.Producto, len(productos))
	for i := range productos {
		porID[productos[i].ID] = &productos[i]
	}

	calc := &calculoVenta{}
	for _, it := range req.Items {
		id, _ := uuid.Parse(it.ProductoID)
		p, ok := porID[id]
		if !ok {
			return nil, apierror.Validacion("producto_no_encontrado", "producto %s no encontrado", it.ProductoID)
		}
		if !p.Activo {
			return nil, apierror.Validacion("producto_inactivo", "producto %s esta inactivo y no puede venderse", p.Nombre)
		}
		unidad := it.Unidad
		if unidad == "" {
			unidad = finanzas.UnidadSimple
		}
		factor, ok := p.Factor(unidad)
		if !ok {
			return nil, apierror.Validacion("unidad_no_disponible", "%s no se vende por %s", p.Nombre, unidad)
		}
		calc.items = append(calc.items, finanzas.ItemCarrito{
			ProductoID:      p.ID,
			Nombre:          p.Nombre,
			Cantidad:        money.Round(it.Cantidad, money.QuantityPlaces),
			PrecioUnitario:  money.RoundMoney(money.Mul(p.PrecioVenta, factor)),
			Unidad:          unidad,
			Factor:          factor,
			Exento:          p.Exento,
			PorPeso:         p.PorPeso,
			SinControlStock: p.SinControlStock,
			StockDisponible: p.Stock,
		})
	}
	calc.totales = finanzas.CalcularCarrito(calc.items, params.TasaImpuesto, params.TasaCambio)

	for _, pr := range req.Pagos {
		ref := ""
		if pr.Referencia != nil {
			ref = *pr.Referencia
		}
		calc.pagos = append(calc.pagos, finanzas.Pago{
			Monto:      pr.Monto,
			Moneda:     pr.Moneda,
			Metodo:     pr.Metodo,
			AplicaIGTF: pr.AplicaIGTF,
			Referencia: ref,
			Tasa:       pr.Tasa,
		})
	}
	calc.estado = finanzas.CalcularEstadoPago(calc.totales.TotalPrincipal, calc.pagos, params.IGTF, params.TasaCambio)

	switch {
	case req.Vuelto != nil:
		calc.vuelto, calc.errVuelto = finanzas.DistribuirVuelto(calc.estado.Vuelto,
			req.Vuelto.EfectivoPrincipal, req.Vuelto.EfectivoSecundaria, req.Vuelto.AcreditarResto,
			params.TasaCambio, params.Epsilon)
	default:
		calc.vuelto = finanzas.DistribucionVuelto{
			EfectivoPrincipal:  calc.estado.Vuelto,
			EfectivoSecundaria: decimal.Zero,
			AWallet:            decimal.Zero,
		}
	}
	return calc, nil
}

// ── Calcular ──────────────────────────────────────────────────────────────────

func (s *ventaService) Calcular(ctx context.Context, req dto.CalcularVentaRequest, params config.Parametros) (*dto.CalculoVentaResponse, error) {
	params = params.ConTasa(req.TasaCambio)
	ids, err := productoIDs(req.Items)
	if err != nil {
		return nil, err
	}
	var productos []model.Producto
	if len(ids) > 0 {
		productos, err = s.productoRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("buscando productos: %w", err)
		}
	}
	calc, err := calcularVenta(productos, req, params)
	if err != nil {
		return nil, err
	}
	if err := guardaTasaCambio(&contextoVenta{req: &dto.RegistrarVentaRequest{CalcularVentaRequest: req}, params: params, calc: calc}); err != nil {
		return nil, err
	}

	resp := &dto.CalculoVentaResponse{
		Items:           make([]dto.ItemVentaResponse, 0, len(calc.totales.Items)),
		SubtotalBase:    calc.totales.SubtotalBase,
		TotalImpuesto:   calc.totales.TotalImpuesto,
		TotalExento:     calc.totales.TotalExento,
		Total:           calc.totales.TotalPrincipal,
		TotalSecundaria: calc.totales.TotalSecundaria,
		MontoIGTF:       calc.estado.MontoIGTF,
		TotalConIGTF:    calc.estado.TotalConIGTF,
		PagadoGlobal:    money.RoundMoney(calc.estado.PagadoGlobalPrincipal),
		Restante:        calc.estado.Restante,
		Vuelto:          calc.estado.Vuelto,
	}
	for _, it := range calc.totales.Items {
		resp.Items = append(resp.Items, dto.ItemVentaResponse{
			ProductoID:     it.ProductoID.String(),
			Producto:       it.Nombre,
			Cantidad:       it.Cantidad,
			Unidad:         it.Unidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
			Impuesto:       it.Impuesto,
			Total:          it.TotalPrincipal,
		})
	}
	if calc.errVuelto != nil {
		msg := calc.errVuelto.Error()
		var apiErr *apierror.Error
		if errors.As(calc.errVuelto, &apiErr) {
			msg = apiErr.Detail
		}
		resp.ErrorDistribucion = &msg
	} else {
		resp.Distribucion = &dto.VueltoResponse{
			EfectivoPrincipal:  calc.vuelto.EfectivoPrincipal,
			EfectivoSecundaria: calc.vuelto.EfectivoSecundaria,
			AWallet:            calc.vuelto.AWallet,
		}
	}
	return resp, nil
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// validate → compute financials → ordered guards → one transaction:
//   1. lock the register's open session (serializes sales per register)
//   2. nextval ticket
//   3. descontar stock (+ movimiento de stock)
//   4. saldos de caja per (moneda, metodo), except wallet payments; change handed back
//   5. customer ledger transition
//   6. auditoria + venta with frozen items/pagos/vueltos

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest, params config.Parametros) (*dto.VentaResponse, error) {
	if err := validarPuntoDeVenta(req.PuntoDeVenta); err != nil {
		return nil, err
	}
	clienteID, err := parseUUIDOpcional("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	ids, err := productoIDs(req.Items)
	if err != nil {
		return nil, err
	}
	params = params.ConTasa(req.TasaCambio)

	var venta model.Venta
	var calc *calculoVenta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		vc := &contextoVenta{req: &req, params: params}

		// a closed register is reported before any product or customer lookup
		sesion, err := bloquearSesion(tx, s.cajaRepo, req.PuntoDeVenta)
		if err != nil {
			return err
		}
		vc.sesion = sesion

		var productos []model.Producto
		if len(ids) > 0 {
			productos, err = s.productoRepo.FindByIDsForUpdateTx(tx, ids)
			if err != nil {
				return fmt.Errorf("bloqueando productos: %w", err)
			}
		}
		calc, err = calcularVenta(productos, req.CalcularVentaRequest, params)
		if err != nil {
			return err
		}
		vc.calc = calc

		if clienteID != nil {
			vc.cliente, err = bloquearCliente(tx, s.clienteRepo, *clienteID)
			if err != nil {
				return err
			}
		}
		if params.LimiteVentasDemo > 0 {
			vc.ventasTotales, err = s.repo.CountTx(tx)
			if err != nil {
				return fmt.Errorf("contando ventas: %w", err)
			}
		}

		if err := ejecutarGuardas(guardasVenta, vc); err != nil {
			return err
		}

		// ── mutations: nothing above this line changed state ──
		ticket, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return fmt.Errorf("obteniendo numero de ticket: %w", err)
		}
		ventaID := uuid.New()
		desc := fmt.Sprintf("Venta #%d", ticket)

		venta = model.Venta{
			ID:              ventaID,
			NumeroTicket:    ticket,
			PuntoDeVenta:    req.PuntoDeVenta,
			SesionCajaID:    sesion.ID,
			UsuarioID:       usuarioID,
			ClienteID:       clienteID,
			SubtotalBase:    calc.totales.SubtotalBase,
			TotalImpuesto:   calc.totales.TotalImpuesto,
			TotalExento:     calc.totales.TotalExento,
			Total:           calc.totales.TotalPrincipal,
			TotalSecundaria: calc.totales.TotalSecundaria,
			MontoIGTF:       calc.estado.MontoIGTF,
			TotalConIGTF:    calc.estado.TotalConIGTF,
			TasaCambio:      params.TasaCambio,
			EsCredito:       req.EsCredito,
			DeudaPendiente:  decimal.Zero,
			WalletConsumido: decimal.Zero,
			AplicadoADeuda:  decimal.Zero,
			AplicadoAWallet: decimal.Zero,
			ConflictoStock:  vc.conflictoStock,
			Estado:          model.VentaCompletada,
			VersionEsquema:  model.VersionEsquemaVenta,
		}

		if err := s.descontarStock(tx, &venta, calc.totales.Items, productos, desc); err != nil {
			return err
		}

		for _, p := range calc.pagos {
			venta.Pagos = append(venta.Pagos, ventaPago(ventaID, p, params.TasaCambio))
			if p.EsInterno() {
				continue
			}
			if _, err := ajustarSaldo(tx, s.cajaRepo, sesion, movimientoCaja{
				tipo: "venta", moneda: p.Moneda, metodo: p.Metodo, monto: p.Monto,
				referencia: ventaID, descripcion: desc,
			}); err != nil {
				return err
			}
		}
		for _, v := range vueltosEnEfectivo(ventaID, calc.vuelto) {
			venta.Vueltos = append(venta.Vueltos, v)
			if _, err := ajustarSaldo(tx, s.cajaRepo, sesion, movimientoCaja{
				tipo: "vuelto", moneda: v.Moneda, metodo: finanzas.MetodoEfectivo, monto: v.Monto.Neg(),
				referencia: ventaID, descripcion: "Vuelto " + desc,
			}); err != nil {
				return err
			}
		}

		if vc.cliente != nil {
			mov := finanzas.MovimientoCliente{
				NuevaDeuda:      decimal.Zero,
				VueltoAWallet:   calc.vuelto.AWallet,
				WalletConsumido: calc.estado.PagadoSaldoFavor,
			}
			if req.EsCredito {
				mov.NuevaDeuda = calc.estado.Restante
			}
			cuenta, apl := finanzas.AplicarMovimientoCliente(vc.cliente.Cuenta(), mov)
			vc.cliente.SetCuenta(cuenta)
			if err := s.clienteRepo.UpdateCuentaTx(tx, vc.cliente); err != nil {
				return fmt.Errorf("actualizando cuenta del cliente: %w", err)
			}
			venta.DeudaPendiente = apl.NuevaDeuda
			venta.WalletConsumido = apl.WalletConsumido
			venta.AplicadoADeuda = apl.AplicadoADeuda
			venta.AplicadoAWallet = apl.AplicadoAWallet
		}

		if err := auditar(tx, s.auditRepo, &model.Auditoria{
			PuntoDeVenta: req.PuntoDeVenta,
			Tipo:         model.AuditVenta,
			ReferenciaID: ventaID,
			Monto:        calc.estado.TotalConIGTF,
			Moneda:       finanzas.MonedaPrincipal,
			TasaCambio:   params.TasaCambio,
			Detalle: map[string]any{
				"numero_ticket":   ticket,
				"items":           len(venta.Items),
				"es_credito":      req.EsCredito,
				"conflicto_stock": vc.conflictoStock,
			},
			UsuarioID: usuarioID,
		}); err != nil {
			return err
		}

		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return fmt.Errorf("guardando venta: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("ticket", venta.NumeroTicket).
		Int("punto_de_venta", venta.PuntoDeVenta).
		Str("total", venta.TotalConIGTF.StringFixed(2)).
		Bool("credito", venta.EsCredito).
		Msg("venta registrada")

	resp := ventaToResponse(&venta)
	resp.Vuelto = dto.VueltoResponse{
		EfectivoPrincipal:  calc.vuelto.EfectivoPrincipal,
		EfectivoSecundaria: calc.vuelto.EfectivoSecundaria,
		AWallet:            calc.vuelto.AWallet,
	}
	return resp, nil
}

// descontarStock freezes the items into the sale and decrements tracked stock,
// recording one movement per line.
func (s *ventaService) descontarStock(tx *gorm.DB, venta *model.Venta, items []finanzas.ItemCalculado, productos []model.Producto, desc string) error {
	stock := make(map[uuid.UUID]decimal.Decimal, len(productos))
	for _, p := range productos {
		stock[p.ID] = p.Stock
	}
	ventaRef := venta.ID
	for _, it := range items {
		item := model.VentaItem{
			ID:              uuid.New(),
			VentaID:         venta.ID,
			ProductoID:      it.ProductoID,
			Nombre:          it.Nombre,
			Cantidad:        it.Cantidad,
			Unidad:          it.Unidad,
			Factor:          it.Factor,
			StockDescontado: decimal.Zero,
			PrecioUnitario:  it.PrecioUnitario,
			Exento:          it.Exento,
			Subtotal:        it.Subtotal,
			Impuesto:        it.Impuesto,
			TotalPrincipal:  it.TotalPrincipal,
			TotalSecundaria: it.TotalSecundaria,
		}
		if !it.SinControlStock {
			requerido := it.StockRequerido()
			item.StockDescontado = requerido
			antes := stock[it.ProductoID]
			despues := money.Sub(antes, requerido)
			stock[it.ProductoID] = despues
			if err := s.productoRepo.UpdateStockTx(tx, it.ProductoID, requerido.Neg()); err != nil {
				return fmt.Errorf("error descontando stock de %s: %w", it.Nombre, err)
			}
			if err := s.stockRepo.CreateTx(tx, &model.MovimientoStock{
				ID:            uuid.New(),
				ProductoID:    it.ProductoID,
				Tipo:          "venta",
				Cantidad:      requerido.Neg(),
				StockAnterior: antes,
				StockNuevo:    despues,
				Motivo:        desc,
				ReferenciaID:  &ventaRef,
			}); err != nil {
				return fmt.Errorf("registrando movimiento de stock: %w", err)
			}
		}
		venta.Items = append(venta.Items, item)
	}
	return nil
}

func ventaPago(ventaID uuid.UUID, p finanzas.Pago, tasaCambio decimal.Decimal) model.VentaPago {
	vp := model.VentaPago{
		ID:             uuid.New(),
		VentaID:        ventaID,
		Moneda:         p.Moneda,
		Metodo:         p.Metodo,
		Monto:          p.Monto,
		MontoPrincipal: money.Round(p.EnPrincipal(tasaCambio), money.InternalPlaces),
		AplicaIGTF:     p.AplicaIGTF,
		Tasa:           p.Tasa,
	}
	if p.Referencia != "" {
		ref := p.Referencia
		vp.Referencia = &ref
	}
	return vp
}

func vueltosEnEfectivo(ventaID uuid.UUID, d finanzas.DistribucionVuelto) []model.VentaVuelto {
	var out []model.VentaVuelto
	if d.EfectivoPrincipal.IsPositive() {
		out = append(out, model.VentaVuelto{ID: uuid.New(), VentaID: ventaID, Moneda: finanzas.MonedaPrincipal, Monto: d.EfectivoPrincipal})
	}
	if d.EfectivoSecundaria.IsPositive() {
		out = append(out, model.VentaVuelto{ID: uuid.New(), VentaID: ventaID, Moneda: finanzas.MonedaSecundaria, Monto: d.EfectivoSecundaria})
	}
	return out
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Undoes a sale in inverse order inside one transaction: cash, stock, ledger, then
// the sale is flagged anulada. The refund leaves the register's currently open
// session, which may differ from the one the sale was made in.

func (s *ventaService) AnularVenta(ctx context.Context, usuarioID, id uuid.UUID, motivo string) (*dto.VentaResponse, error) {
	var venta *model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.repo.FindByIDForUpdateTx(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && venta == nil) {
			return apierror.Estado(apierror.ErrVentaNoEncontrada.Code, "venta %s no encontrada", id)
		}
		if err != nil {
			return fmt.Errorf("buscando venta: %w", err)
		}
		if venta.Estado == model.VentaAnulada {
			return apierror.Estado(apierror.ErrVentaAnulada.Code, "la venta #%d ya esta anulada", venta.NumeroTicket)
		}
		sesion, err := bloquearSesion(tx, s.cajaRepo, venta.PuntoDeVenta)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("Anulacion venta #%d: %s", venta.NumeroTicket, motivo)

		// Cash: change comes back into the drawer, payments go out.
		for _, v := range venta.Vueltos {
			if _, err := ajustarSaldo(tx, s.cajaRepo, sesion, movimientoCaja{
				tipo: "anulacion", moneda: v.Moneda, metodo: finanzas.MetodoEfectivo, monto: v.Monto,
				referencia: venta.ID, descripcion: desc,
			}); err != nil {
				return err
			}
		}
		for _, p := range venta.Pagos {
			if p.Metodo == finanzas.MetodoSaldoFavor {
				continue
			}
			if _, err := ajustarSaldo(tx, s.cajaRepo, sesion, movimientoCaja{
				tipo: "anulacion", moneda: p.Moneda, metodo: p.Metodo, monto: p.Monto.Neg(),
				referencia: venta.ID, descripcion: desc,
			}); err != nil {
				return err
			}
		}

		if err := s.restaurarStock(tx, venta, desc); err != nil {
			return err
		}

		if venta.ClienteID != nil {
			cliente, err := bloquearCliente(tx, s.clienteRepo, *venta.ClienteID)
			if err != nil {
				return err
			}
			cliente.SetCuenta(finanzas.RevertirMovimientoCliente(cliente.Cuenta(), finanzas.Aplicacion{
				NuevaDeuda:      venta.DeudaPendiente,
				WalletConsumido: venta.WalletConsumido,
				AplicadoADeuda:  venta.AplicadoADeuda,
				AplicadoAWallet: venta.AplicadoAWallet,
			}))
			if err := s.clienteRepo.UpdateCuentaTx(tx, cliente); err != nil {
				return fmt.Errorf("revirtiendo cuenta del cliente: %w", err)
			}
		}

		now := time.Now()
		venta.Estado = model.VentaAnulada
		venta.MotivoAnulacion = &motivo
		venta.AnuladaPor = &usuarioID
		venta.AnuladaAt = &now
		if err := s.repo.UpdateAnulacionTx(tx, venta); err != nil {
			return fmt.Errorf("anulando venta: %w", err)
		}

		if err := s.auditRepo.MarcarRevertidoTx(tx, model.AuditVenta, venta.ID); err != nil {
			return fmt.Errorf("marcando auditoria de la venta: %w", err)
		}
		return auditar(tx, s.auditRepo, &model.Auditoria{
			PuntoDeVenta: venta.PuntoDeVenta,
			Tipo:         model.AuditAnulacion,
			ReferenciaID: venta.ID,
			Monto:        venta.TotalConIGTF.Neg(),
			Moneda:       finanzas.MonedaPrincipal,
			TasaCambio:   venta.TasaCambio,
			Detalle: map[string]any{
				"numero_ticket": venta.NumeroTicket,
				"motivo":        motivo,
				"sesion_caja":   sesion.ID.String(),
			},
			UsuarioID: usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("ticket", venta.NumeroTicket).
		Int("punto_de_venta", venta.PuntoDeVenta).
		Str("motivo", motivo).
		Msg("venta anulada")
	return ventaToResponse(venta), nil
}

func (s *ventaService) restaurarStock(tx *gorm.DB, venta *model.Venta, desc string) error {
	var ids []uuid.UUID
	vistos := make(map[uuid.UUID]bool)
	for _, it := range venta.Items {
		if it.StockDescontado.IsPositive() && !vistos[it.ProductoID] {
			vistos[it.ProductoID] = true
			ids = append(ids, it.ProductoID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	productos, err := s.productoRepo.FindByIDsForUpdateTx(tx, ids)
	if err != nil {
		return fmt.Errorf("bloqueando productos: %w", err)
	}
	stock := make(map[uuid.UUID]decimal.Decimal, len(productos))
	for _, p := range productos {
		stock[p.ID] = p.Stock
	}

	ventaRef := venta.ID
	for _, it := range venta.Items {
		if !it.StockDescontado.IsPositive() {
			continue
		}
		antes := stock[it.ProductoID]
		despues := money.Add(antes, it.StockDescontado)
		stock[it.ProductoID] = despues
		if err := s.productoRepo.UpdateStockTx(tx, it.ProductoID, it.StockDescontado); err != nil {
			return fmt.Errorf("restaurando stock de %s: %w", it.Nombre, err)
		}
		if err := s.stockRepo.CreateTx(tx, &model.MovimientoStock{
			ID:            uuid.New(),
			ProductoID:    it.ProductoID,
			Tipo:          "restore_anulacion",
			Cantidad:      it.StockDescontado,
			StockAnterior: antes,
			StockNuevo:    despues,
			Motivo:        desc,
			ReferenciaID:  &ventaRef,
		}); err != nil {
			return fmt.Errorf("registrando movimiento de stock: %w", err)
		}
	}
	return nil
}

// ListVentas returns a paginated list of sales, filtered by register, date and estado.
// Default filter: today's completed sales.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = model.VentaCompletada
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaListItem, 0, len(ventas))
	for _, v := range ventas {
		items = append(items, ventaToListItem(&v))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func itemsToResponse(items []model.VentaItem) []dto.ItemVentaResponse {
	out := make([]dto.ItemVentaResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ItemVentaResponse{
			ProductoID:     it.ProductoID.String(),
			Producto:       it.Nombre,
			Cantidad:       it.Cantidad,
			Unidad:         it.Unidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
			Impuesto:       it.Impuesto,
			Total:          it.TotalPrincipal,
		})
	}
	return out
}

func pagosToResponse(pagos []model.VentaPago) []dto.PagoResponse {
	out := make([]dto.PagoResponse, 0, len(pagos))
	for _, p := range pagos {
		out = append(out, dto.PagoResponse{
			Moneda:         p.Moneda,
			Metodo:         p.Metodo,
			Monto:          p.Monto,
			MontoPrincipal: p.MontoPrincipal,
			AplicaIGTF:     p.AplicaIGTF,
		})
	}
	return out
}

func ventaToListItem(v *model.Venta) dto.VentaListItem {
	cajeroNombre := ""
	if v.Usuario != nil {
		cajeroNombre = v.Usuario.Nombre
	}
	return dto.VentaListItem{
		ID:           v.ID.String(),
		NumeroTicket: v.NumeroTicket,
		PuntoDeVenta: v.PuntoDeVenta,
		SesionCajaID: v.SesionCajaID.String(),
		UsuarioID:    v.UsuarioID.String(),
		CajeroNombre: cajeroNombre,
		Total:        v.Total,
		TotalConIGTF: v.TotalConIGTF,
		EsCredito:    v.EsCredito,
		Estado:       v.Estado,
		Items:        itemsToResponse(v.Items),
		Pagos:        pagosToResponse(v.Pagos),
		CreatedAt:    formatTime(v.CreatedAt),
	}
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:              v.ID.String(),
		NumeroTicket:    v.NumeroTicket,
		PuntoDeVenta:    v.PuntoDeVenta,
		Items:           itemsToResponse(v.Items),
		Pagos:           pagosToResponse(v.Pagos),
		SubtotalBase:    v.SubtotalBase,
		TotalImpuesto:   v.TotalImpuesto,
		TotalExento:     v.TotalExento,
		Total:           v.Total,
		TotalSecundaria: v.TotalSecundaria,
		MontoIGTF:       v.MontoIGTF,
		TotalConIGTF:    v.TotalConIGTF,
		TasaCambio:      v.TasaCambio,
		EsCredito:       v.EsCredito,
		DeudaPendiente:  v.DeudaPendiente,
		ConflictoStock:  v.ConflictoStock,
		Estado:          v.Estado,
		VersionEsquema:  v.VersionEsquema,
		CreatedAt:       formatTime(v.CreatedAt),
		Vuelto: dto.VueltoResponse{
			EfectivoPrincipal:  decimal.Zero,
			EfectivoSecundaria: decimal.Zero,
			AWallet:            v.AplicadoADeuda.Add(v.AplicadoAWallet),
		},
	}
	for _, vv := range v.Vueltos {
		switch vv.Moneda {
		case finanzas.MonedaPrincipal:
			resp.Vuelto.EfectivoPrincipal = resp.Vuelto.EfectivoPrincipal.Add(vv.Monto)
		case finanzas.MonedaSecundaria:
			resp.Vuelto.EfectivoSecundaria = resp.Vuelto.EfectivoSecundaria.Add(vv.Monto)
		}
	}
	if v.ClienteID != nil {
		id := v.ClienteID.String()
		resp.ClienteID = &id
	}
	return resp
}
