package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"blendcaja/internal/apierror"
	"blendcaja/internal/dto"
	"blendcaja/internal/model"
	"blendcaja/internal/money"
	"blendcaja/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionResponse, error)
	Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreResponse, error)
	// Activa returns the open session of a register with its running balances.
	Activa(ctx context.Context, puntoDeVenta int) (*dto.SesionResponse, error)
}

// ColaReportes receives closed shifts whose Z report must be rendered after commit.
type ColaReportes interface {
	EnqueueReporteCierre(ctx context.Context, cierreID uuid.UUID) error
}

type cajaService struct {
	repo       repository.CajaRepository
	ventaRepo  repository.VentaRepository
	gastoRepo  repository.GastoRepository
	cierreRepo repository.CierreRepository
	auditRepo  repository.AuditoriaRepository
	cola       ColaReportes
}

func NewCajaService(
	repo repository.CajaRepository,
	ventaRepo repository.VentaRepository,
	gastoRepo repository.GastoRepository,
	cierreRepo repository.CierreRepository,
	auditRepo repository.AuditoriaRepository,
	cola ColaReportes,
) CajaService {
	return &cajaService{
		repo:       repo,
		ventaRepo:  ventaRepo,
		gastoRepo:  gastoRepo,
		cierreRepo: cierreRepo,
		auditRepo:  auditRepo,
		cola:       cola,
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionResponse, error) {
	if err := validarPuntoDeVenta(req.PuntoDeVenta); err != nil {
		return nil, err
	}
	for _, sr := range req.Saldos {
		if sr.Monto.IsNegative() {
			return nil, apierror.Guarda("saldo_inicial_negativo", "el saldo inicial %s no puede ser negativo",
				model.ClaveSaldo(sr.Moneda, sr.Metodo))
		}
	}

	var sesion *model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Guard: no duplicate open session per punto_de_venta
		existing, err := s.repo.LockSesionAbiertaTx(tx, req.PuntoDeVenta)
		if err == nil && existing != nil {
			return apierror.Estado(apierror.ErrCajaYaAbierta.Code, "ya existe una caja abierta en el punto de venta %d", req.PuntoDeVenta)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("buscando sesion abierta: %w", err)
		}

		sesion = &model.SesionCaja{
			ID:           uuid.New(),
			PuntoDeVenta: req.PuntoDeVenta,
			UsuarioID:    usuarioID,
			Estado:       model.SesionAbierta,
			OpenedAt:     time.Now(),
		}
		for _, sr := range req.Saldos {
			saldo := buscarSaldo(sesion, sr.Moneda, sr.Metodo)
			saldo.Inicial = money.Add(saldo.Inicial, sr.Monto)
			saldo.Actual = saldo.Inicial
		}
		if err := s.repo.CreateSesionTx(tx, sesion); err != nil {
			// a concurrent Abrir won the partial unique index on open sessions
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Estado(apierror.ErrCajaYaAbierta.Code, "ya existe una caja abierta en el punto de venta %d", req.PuntoDeVenta)
			}
			return fmt.Errorf("creando sesion de caja: %w", err)
		}

		detalle := make(map[string]any, len(sesion.Saldos))
		for _, saldo := range sesion.Saldos {
			detalle[saldo.Clave()] = saldo.Inicial.StringFixed(2)
		}
		return auditar(tx, s.auditRepo, &model.Auditoria{
			PuntoDeVenta: req.PuntoDeVenta,
			Tipo:         model.AuditApertura,
			ReferenciaID: sesion.ID,
			Monto:        decimal.Zero,
			Detalle:      detalle,
			UsuarioID:    usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Int("punto_de_venta", sesion.PuntoDeVenta).Str("sesion", sesion.ID.String()).Msg("caja abierta")
	return sesionToResponse(sesion), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Blind count: the discrepancy is computed only after the declaration is received.
// Everything is computed before the first write, so a rejected close leaves the
// session open and untouched.

func (s *cajaService) Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreResponse, error) {
	if err := validarPuntoDeVenta(req.PuntoDeVenta); err != nil {
		return nil, err
	}

	var cierre *model.CierreCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := bloquearSesion(tx, s.repo, req.PuntoDeVenta)
		if err != nil {
			return err
		}
		ventas, err := s.ventaRepo.ListPendientesCierreTx(tx, req.PuntoDeVenta)
		if err != nil {
			return fmt.Errorf("listando ventas del turno: %w", err)
		}
		gastos, err := s.gastoRepo.ListBySesionTx(tx, sesion.ID)
		if err != nil {
			return fmt.Errorf("listando gastos del turno: %w", err)
		}
		movs, err := s.repo.ListMovimientosTx(tx, sesion.ID)
		if err != nil {
			return fmt.Errorf("listando movimientos del turno: %w", err)
		}

		now := time.Now()
		cierre = armarCierre(sesion, ventas, gastos, movs)
		cierre.UsuarioID = usuarioID
		cierre.ClosedAt = now
		cierre.Observaciones = req.Observaciones

		if len(req.Declaracion) > 0 {
			if err := aplicarDeclaracion(cierre, req.Declaracion); err != nil {
				return err
			}
			if *cierre.ClasificacionDesvio == model.DesvioCritico && (req.Observaciones == nil || *req.Observaciones == "") {
				return apierror.Guarda("observaciones_requeridas", "desvio critico de %s%%: se requieren observaciones del supervisor",
					cierre.DesvioPct.StringFixed(2))
			}
		}

		// ── mutations ──
		if err := s.cierreRepo.CreateTx(tx, cierre); err != nil {
			return fmt.Errorf("guardando cierre: %w", err)
		}
		if err := s.ventaRepo.MarcarCierreTx(tx, cierre.VentaIDs, cierre.ID); err != nil {
			return fmt.Errorf("asociando ventas al cierre: %w", err)
		}
		sesion.Estado = model.SesionCerrada
		sesion.ClosedAt = &now
		sesion.CierreID = &cierre.ID
		sesion.Observaciones = req.Observaciones
		if err := s.repo.UpdateSesionTx(tx, sesion); err != nil {
			return fmt.Errorf("cerrando sesion: %w", err)
		}

		detalle := map[string]any{
			"ventas":    cierre.CantidadVentas,
			"anuladas":  cierre.CantidadAnuladas,
			"gastos":    cierre.CantidadGastos,
			"sesion_id": sesion.ID.String(),
		}
		if cierre.ClasificacionDesvio != nil {
			detalle["clasificacion"] = *cierre.ClasificacionDesvio
		}
		return auditar(tx, s.auditRepo, &model.Auditoria{
			PuntoDeVenta: req.PuntoDeVenta,
			Tipo:         model.AuditCierre,
			ReferenciaID: cierre.ID,
			Monto:        cierre.TotalVentas,
			Detalle:      detalle,
			UsuarioID:    usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("punto_de_venta", cierre.PuntoDeVenta).
		Int("ventas", cierre.CantidadVentas).
		Str("total", cierre.TotalVentas.StringFixed(2)).
		Msg("caja cerrada")

	// Async Z report (best-effort, after commit)
	if s.cola != nil {
		if err := s.cola.EnqueueReporteCierre(ctx, cierre.ID); err != nil {
			log.Warn().Err(err).Str("cierre", cierre.ID.String()).Msg("no se pudo encolar el reporte de cierre")
		}
	}
	return cierreToResponse(cierre), nil
}

// armarCierre aggregates the shift. For every drawer the expected balance equals
// Inicial + Ventas + Gastos + Abonos, all signed.
func armarCierre(sesion *model.SesionCaja, ventas []model.Venta, gastos []model.Gasto, movs []model.MovimientoCaja) *model.CierreCaja {
	c := &model.CierreCaja{
		ID:           uuid.New(),
		SesionCajaID: sesion.ID,
		PuntoDeVenta: sesion.PuntoDeVenta,
		TotalVentas:  decimal.Zero,
		TotalIGTF:    decimal.Zero,
		TotalCredito: decimal.Zero,
		VentaIDs:     make([]uuid.UUID, 0, len(ventas)),
		OpenedAt:     sesion.OpenedAt,
	}
	for _, v := range ventas {
		c.VentaIDs = append(c.VentaIDs, v.ID)
		if v.Estado == model.VentaAnulada {
			c.CantidadAnuladas++
			continue
		}
		c.CantidadVentas++
		c.TotalVentas = money.Add(c.TotalVentas, v.TotalConIGTF)
		c.TotalIGTF = money.Add(c.TotalIGTF, v.MontoIGTF)
		c.TotalCredito = money.Add(c.TotalCredito, v.DeudaPendiente)
	}
	for _, g := range gastos {
		if g.Tipo == model.GastoTipoGasto && !g.Revertido {
			c.CantidadGastos++
		}
	}

	sumas := repository.SumarMovimientos(movs)
	sumar := func(clave string, tipos ...string) decimal.Decimal {
		total := decimal.Zero
		for _, t := range tipos {
			total = money.Add(total, sumas[t][clave])
		}
		return total
	}
	for _, saldo := range sesion.Saldos {
		clave := saldo.Clave()
		c.Saldos = append(c.Saldos, model.CierreSaldo{
			ID:       uuid.New(),
			CierreID: c.ID,
			Moneda:   saldo.Moneda,
			Metodo:   saldo.Metodo,
			Inicial:  saldo.Inicial,
			Ventas:   sumar(clave, "venta", "vuelto", "anulacion"),
			Gastos:   sumar(clave, "gasto", "reversa_gasto"),
			Abonos:   sumar(clave, "abono"),
			Esperado: saldo.Actual,
		})
	}
	sort.Slice(c.Saldos, func(i, j int) bool { return c.Saldos[i].Clave() < c.Saldos[j].Clave() })
	return c
}

// aplicarDeclaracion compares the declared count per drawer against the expected
// balance. Drawers missing from the declaration count as declared zero. The
// classification uses the worst drawer.
func aplicarDeclaracion(c *model.CierreCaja, declaracion []dto.SaldoRequest) error {
	declarado := make(map[string]decimal.Decimal, len(declaracion))
	for _, d := range declaracion {
		if d.Monto.IsNegative() {
			return apierror.Guarda("declaracion_negativa", "el monto declarado para %s no puede ser negativo",
				model.ClaveSaldo(d.Moneda, d.Metodo))
		}
		clave := model.ClaveSaldo(d.Moneda, d.Metodo)
		declarado[clave] = money.Add(declarado[clave], d.Monto)
	}
	presentes := make(map[string]bool, len(c.Saldos))
	for _, s := range c.Saldos {
		presentes[s.Clave()] = true
	}
	for _, d := range declaracion {
		clave := model.ClaveSaldo(d.Moneda, d.Metodo)
		if !presentes[clave] {
			presentes[clave] = true
			c.Saldos = append(c.Saldos, model.CierreSaldo{
				ID: uuid.New(), CierreID: c.ID, Moneda: d.Moneda, Metodo: d.Metodo,
				Inicial: decimal.Zero, Ventas: decimal.Zero, Gastos: decimal.Zero, Abonos: decimal.Zero, Esperado: decimal.Zero,
			})
		}
	}

	peor := decimal.Zero
	for i := range c.Saldos {
		s := &c.Saldos[i]
		dec := money.RoundMoney(declarado[s.Clave()])
		dif := money.Sub(dec, s.Esperado)
		s.Declarado = &dec
		s.Diferencia = &dif
		pct := porcentajeDesvio(dif, s.Esperado)
		if pct.Abs().GreaterThan(peor.Abs()) {
			peor = pct
		}
	}
	clasificacion := clasificarDesvio(peor)
	c.DesvioPct = &peor
	c.ClasificacionDesvio = &clasificacion
	return nil
}

func porcentajeDesvio(diferencia, esperado decimal.Decimal) decimal.Decimal {
	if diferencia.IsZero() {
		return decimal.Zero
	}
	if esperado.IsZero() {
		return decimal.NewFromInt(100)
	}
	return money.Round(money.Div(diferencia.Mul(decimal.NewFromInt(100)), esperado.Abs()), 2)
}

// clasificarDesvio returns "normal" | "advertencia" | "critico"
// normal: |desvio| <= 1%, advertencia: <= 5%, critico: > 5%
func clasificarDesvio(pct decimal.Decimal) string {
	abs := pct.Abs()
	one := decimal.NewFromInt(1)
	five := decimal.NewFromInt(5)
	switch {
	case abs.LessThanOrEqual(one):
		return model.DesvioNormal
	case abs.LessThanOrEqual(five):
		return model.DesvioAdvertencia
	default:
		return model.DesvioCritico
	}
}

// ── Activa ────────────────────────────────────────────────────────────────────

func (s *cajaService) Activa(ctx context.Context, puntoDeVenta int) (*dto.SesionResponse, error) {
	sesion, err := s.repo.FindSesionAbierta(ctx, puntoDeVenta)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && sesion == nil) {
		return nil, errCajaCerrada(puntoDeVenta)
	}
	if err != nil {
		return nil, err
	}
	return sesionToResponse(sesion), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sesionToResponse(s *model.SesionCaja) *dto.SesionResponse {
	resp := &dto.SesionResponse{
		ID:           s.ID.String(),
		PuntoDeVenta: s.PuntoDeVenta,
		UsuarioID:    s.UsuarioID.String(),
		Estado:       s.Estado,
		Saldos:       make([]dto.SaldoResponse, 0, len(s.Saldos)),
		OpenedAt:     formatTime(s.OpenedAt),
	}
	for _, saldo := range s.Saldos {
		resp.Saldos = append(resp.Saldos, dto.SaldoResponse{
			Moneda:  saldo.Moneda,
			Metodo:  saldo.Metodo,
			Inicial: saldo.Inicial,
			Actual:  saldo.Actual,
		})
	}
	if s.ClosedAt != nil {
		t := formatTime(*s.ClosedAt)
		resp.ClosedAt = &t
	}
	return resp
}

func cierreToResponse(c *model.CierreCaja) *dto.CierreResponse {
	resp := &dto.CierreResponse{
		ID:               c.ID.String(),
		SesionCajaID:     c.SesionCajaID.String(),
		PuntoDeVenta:     c.PuntoDeVenta,
		CantidadVentas:   c.CantidadVentas,
		CantidadAnuladas: c.CantidadAnuladas,
		TotalVentas:      c.TotalVentas,
		TotalIGTF:        c.TotalIGTF,
		TotalCredito:     c.TotalCredito,
		CantidadGastos:   c.CantidadGastos,
		Saldos:           make([]dto.CierreSaldoResponse, 0, len(c.Saldos)),
		DesvioPct:        c.DesvioPct,
		Clasificacion:    c.ClasificacionDesvio,
		Observaciones:    c.Observaciones,
		VentaIDs:         make([]string, 0, len(c.VentaIDs)),
		OpenedAt:         formatTime(c.OpenedAt),
		ClosedAt:         formatTime(c.ClosedAt),
	}
	for _, s := range c.Saldos {
		resp.Saldos = append(resp.Saldos, dto.CierreSaldoResponse{
			Moneda:     s.Moneda,
			Metodo:     s.Metodo,
			Inicial:    s.Inicial,
			Ventas:     s.Ventas,
			Gastos:     s.Gastos,
			Abonos:     s.Abonos,
			Esperado:   s.Esperado,
			Declarado:  s.Declarado,
			Diferencia: s.Diferencia,
		})
	}
	for _, id := range c.VentaIDs {
		resp.VentaIDs = append(resp.VentaIDs, id.String())
	}
	return resp
}
