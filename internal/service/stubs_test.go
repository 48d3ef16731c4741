package service_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"blendcaja/internal/config"
	"blendcaja/internal/dto"
	"blendcaja/internal/finanzas"
	"blendcaja/internal/model"
	"blendcaja/internal/repository"
	"blendcaja/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories. DB() returns nil so services run fn(nil) instead of a
// real transaction.

type stubVentaRepo struct {
	ventas    map[uuid.UUID]*model.Venta
	ticketSeq int
	// historicas simulates sales committed before the test started (demo quota).
	historicas int64
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	cp := *v
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVentaRepo) UpdateAnulacionTx(_ *gorm.DB, v *model.Venta) error {
	stored, ok := r.ventas[v.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Estado = v.Estado
	stored.MotivoAnulacion = v.MotivoAnulacion
	stored.AnuladaPor = v.AnuladaPor
	stored.AnuladaAt = v.AnuladaAt
	return nil
}

func (r *stubVentaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *stubVentaRepo) CountTx(_ *gorm.DB) (int64, error) {
	return r.historicas + int64(len(r.ventas)), nil
}

func (r *stubVentaRepo) ListPendientesCierreTx(_ *gorm.DB, puntoDeVenta int) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.PuntoDeVenta == puntoDeVenta && v.CierreID == nil {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroTicket < out[j].NumeroTicket })
	return out, nil
}

func (r *stubVentaRepo) MarcarCierreTx(_ *gorm.DB, ids []uuid.UUID, cierreID uuid.UUID) error {
	for _, id := range ids {
		if v, ok := r.ventas[id]; ok {
			cid := cierreID
			v.CierreID = &cid
		}
	}
	return nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) add(nombre string, precio, stock string) *model.Producto {
	p := &model.Producto{
		ID:            uuid.New(),
		CodigoBarras:  nombre,
		Nombre:        nombre,
		PrecioVenta:   decimal.RequireFromString(precio),
		Stock:         decimal.RequireFromString(stock),
		FactorPaquete: decimal.NewFromInt(1),
		FactorBulto:   decimal.NewFromInt(1),
		Activo:        true,
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var out []model.Producto
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) FindByIDsForUpdateTx(_ *gorm.DB, ids []uuid.UUID) ([]model.Producto, error) {
	return r.FindByIDs(context.Background(), ids)
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = p.Stock.Add(delta)
	return nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubStockRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubStockRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubStockRepo) ListByReferencia(_ context.Context, ref uuid.UUID) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ReferenciaID != nil && *m.ReferenciaID == ref {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.MovimientoStockRepository = (*stubStockRepo)(nil)

// stubCajaRepo keeps sessions by id and hands out copies, so only what the
// service explicitly saves is persisted.
type stubCajaRepo struct {
	sesiones    map[uuid.UUID]*model.SesionCaja
	movimientos []model.MovimientoCaja
	errCrear    error
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *stubCajaRepo) abierta(puntoDeVenta int) *model.SesionCaja {
	for _, s := range r.sesiones {
		if s.PuntoDeVenta == puntoDeVenta && s.Estado == model.SesionAbierta {
			return s
		}
	}
	return nil
}

func (r *stubCajaRepo) copia(s *model.SesionCaja) *model.SesionCaja {
	cp := *s
	cp.Saldos = append([]model.SaldoCaja(nil), s.Saldos...)
	return &cp
}

// saldo returns the persisted Actual balance of a drawer of the open session.
func (r *stubCajaRepo) saldo(puntoDeVenta int, moneda, metodo string) decimal.Decimal {
	s := r.abierta(puntoDeVenta)
	if s == nil {
		return decimal.Zero
	}
	for _, sc := range s.Saldos {
		if sc.Moneda == moneda && sc.Metodo == metodo {
			return sc.Actual
		}
	}
	return decimal.Zero
}

func (r *stubCajaRepo) CreateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	if r.errCrear != nil {
		return r.errCrear
	}
	r.sesiones[s.ID] = r.copia(s)
	return nil
}

func (r *stubCajaRepo) FindSesionAbierta(_ context.Context, puntoDeVenta int) (*model.SesionCaja, error) {
	s := r.abierta(puntoDeVenta)
	if s == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.copia(s), nil
}

func (r *stubCajaRepo) LockSesionAbiertaTx(_ *gorm.DB, puntoDeVenta int) (*model.SesionCaja, error) {
	return r.FindSesionAbierta(context.Background(), puntoDeVenta)
}

func (r *stubCajaRepo) UpdateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	stored, ok := r.sesiones[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Estado = s.Estado
	stored.Observaciones = s.Observaciones
	stored.CierreID = s.CierreID
	stored.ClosedAt = s.ClosedAt
	return nil
}

func (r *stubCajaRepo) SaveSaldoTx(_ *gorm.DB, saldo *model.SaldoCaja) error {
	stored, ok := r.sesiones[saldo.SesionCajaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range stored.Saldos {
		if stored.Saldos[i].ID == saldo.ID {
			stored.Saldos[i] = *saldo
			return nil
		}
	}
	stored.Saldos = append(stored.Saldos, *saldo)
	return nil
}

func (r *stubCajaRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubCajaRepo) ListMovimientosTx(_ *gorm.DB, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionCajaID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) DB() *gorm.DB { return nil }

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) add(deuda, saldoFavor string) *model.Cliente {
	c := &model.Cliente{
		ID:         uuid.New(),
		Nombre:     "Cliente de prueba",
		Deuda:      decimal.RequireFromString(deuda),
		SaldoFavor: decimal.RequireFromString(saldoFavor),
	}
	r.clientes[c.ID] = c
	return c
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClienteRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubClienteRepo) UpdateCuentaTx(_ *gorm.DB, c *model.Cliente) error {
	stored, ok := r.clientes[c.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Deuda = c.Deuda
	stored.SaldoFavor = c.SaldoFavor
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

type stubAuditRepo struct {
	entradas []model.Auditoria
}

func (r *stubAuditRepo) AppendTx(_ *gorm.DB, a *model.Auditoria) error {
	r.entradas = append(r.entradas, *a)
	return nil
}

func (r *stubAuditRepo) MarcarRevertidoTx(_ *gorm.DB, tipo string, referenciaID uuid.UUID) error {
	for i := range r.entradas {
		if r.entradas[i].Tipo == tipo && r.entradas[i].ReferenciaID == referenciaID {
			r.entradas[i].Estado = model.AuditRevertido
		}
	}
	return nil
}

func (r *stubAuditRepo) ListByReferencia(_ context.Context, referenciaID uuid.UUID) ([]model.Auditoria, error) {
	var out []model.Auditoria
	for _, a := range r.entradas {
		if a.ReferenciaID == referenciaID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAuditRepo) porTipo(tipo string) []model.Auditoria {
	var out []model.Auditoria
	for _, a := range r.entradas {
		if a.Tipo == tipo {
			out = append(out, a)
		}
	}
	return out
}

var _ repository.AuditoriaRepository = (*stubAuditRepo)(nil)

type stubGastoRepo struct {
	gastos map[uuid.UUID]*model.Gasto
}

func newStubGastoRepo() *stubGastoRepo {
	return &stubGastoRepo{gastos: make(map[uuid.UUID]*model.Gasto)}
}

func (r *stubGastoRepo) CreateTx(_ *gorm.DB, g *model.Gasto) error {
	cp := *g
	r.gastos[g.ID] = &cp
	return nil
}

func (r *stubGastoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Gasto, error) {
	g, ok := r.gastos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *stubGastoRepo) MarcarRevertidoTx(_ *gorm.DB, id uuid.UUID) error {
	g, ok := r.gastos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.Revertido = true
	return nil
}

func (r *stubGastoRepo) ListBySesionTx(_ *gorm.DB, sesionCajaID uuid.UUID) ([]model.Gasto, error) {
	var out []model.Gasto
	for _, g := range r.gastos {
		if g.SesionCajaID == sesionCajaID {
			out = append(out, *g)
		}
	}
	return out, nil
}

var _ repository.GastoRepository = (*stubGastoRepo)(nil)

type stubCierreRepo struct {
	cierres map[uuid.UUID]*model.CierreCaja
}

func newStubCierreRepo() *stubCierreRepo {
	return &stubCierreRepo{cierres: make(map[uuid.UUID]*model.CierreCaja)}
}

func (r *stubCierreRepo) CreateTx(_ *gorm.DB, c *model.CierreCaja) error {
	cp := *c
	r.cierres[c.ID] = &cp
	return nil
}

func (r *stubCierreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	c, ok := r.cierres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCierreRepo) UpdateReportePath(_ context.Context, id uuid.UUID, path string) error {
	c, ok := r.cierres[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ReportePath = &path
	return nil
}

func (r *stubCierreRepo) ListSinReporte(_ context.Context, antesDe time.Time, limit int) ([]model.CierreCaja, error) {
	var out []model.CierreCaja
	for _, c := range r.cierres {
		if c.ReportePath == nil && c.ClosedAt.Before(antesDe) && len(out) < limit {
			out = append(out, *c)
		}
	}
	return out, nil
}

var _ repository.CierreRepository = (*stubCierreRepo)(nil)

type stubCola struct {
	encolados []uuid.UUID
	err       error
}

func (c *stubCola) EnqueueReporteCierre(_ context.Context, id uuid.UUID) error {
	if c.err != nil {
		return c.err
	}
	c.encolados = append(c.encolados, id)
	return nil
}

var _ service.ColaReportes = (*stubCola)(nil)

var errStub = errors.New("stub failure")

// ── Fixture ───────────────────────────────────────────────────────────────────

// entorno wires every service over one shared set of in-memory repositories.
type entorno struct {
	ventas    *stubVentaRepo
	productos *stubProductoRepo
	stock     *stubStockRepo
	caja      *stubCajaRepo
	clientes  *stubClienteRepo
	audit     *stubAuditRepo
	gastos    *stubGastoRepo
	cierres   *stubCierreRepo
	cola      *stubCola

	ventaSvc   service.VentaService
	cajaSvc    service.CajaService
	gastoSvc   service.GastoService
	clienteSvc service.ClienteService

	usuario uuid.UUID
	params  config.Parametros
}

const pdv = 1

func nuevoEntorno() *entorno {
	e := &entorno{
		ventas:    newStubVentaRepo(),
		productos: newStubProductoRepo(),
		stock:     &stubStockRepo{},
		caja:      newStubCajaRepo(),
		clientes:  newStubClienteRepo(),
		audit:     &stubAuditRepo{},
		gastos:    newStubGastoRepo(),
		cierres:   newStubCierreRepo(),
		cola:      &stubCola{},
		usuario:   uuid.New(),
		params: config.Parametros{
			TasaImpuesto: decimal.Zero,
			TasaCambio:   decimal.RequireFromString("36.5"),
			IGTF:         finanzas.ConfigIGTF{Habilitado: false, TasaPct: decimal.NewFromInt(3)},
			Epsilon:      decimal.RequireFromString("0.0001"),
		},
	}
	e.ventaSvc = service.NewVentaService(e.ventas, e.productos, e.stock, e.caja, e.clientes, e.audit)
	e.cajaSvc = service.NewCajaService(e.caja, e.ventas, e.gastos, e.cierres, e.audit, e.cola)
	e.gastoSvc = service.NewGastoService(e.gastos, e.caja, e.audit)
	e.clienteSvc = service.NewClienteService(e.clientes, e.caja, e.audit)
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (e *entorno) abrir(t *testing.T, saldos ...dto.SaldoRequest) *dto.SesionResponse {
	t.Helper()
	resp, err := e.cajaSvc.Abrir(context.Background(), e.usuario, dto.AbrirCajaRequest{PuntoDeVenta: pdv, Saldos: saldos})
	require.NoError(t, err)
	return resp
}

func efectivo(moneda, monto string) dto.SaldoRequest {
	return dto.SaldoRequest{Moneda: moneda, Metodo: finanzas.MetodoEfectivo, Monto: dec(monto)}
}

func item(p *model.Producto, cantidad string) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{ProductoID: p.ID.String(), Cantidad: dec(cantidad)}
}

func pago(moneda, metodo, monto string) dto.PagoRequest {
	return dto.PagoRequest{Moneda: moneda, Metodo: metodo, Monto: dec(monto)}
}

func venta(items []dto.ItemVentaRequest, pagos ...dto.PagoRequest) dto.RegistrarVentaRequest {
	return dto.RegistrarVentaRequest{
		CalcularVentaRequest: dto.CalcularVentaRequest{Items: items, Pagos: pagos},
		PuntoDeVenta:         pdv,
	}
}
