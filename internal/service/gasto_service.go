package service

import (
	"context"
	"errors"
	"fmt"

	"blendcaja/internal/apierror"
	"blendcaja/internal/dto"
	"blendcaja/internal/model"
	"blendcaja/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type GastoService interface {
	RegistrarGasto(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error)
	// RevertirGasto gives the amount back to the register's open session and pairs
	// the original expense with a reversa row. The original is never edited.
	RevertirGasto(ctx context.Context, usuarioID, id uuid.UUID, req dto.RevertirGastoRequest) (*dto.GastoResponse, error)
}

type gastoService struct {
	repo      repository.GastoRepository
	cajaRepo  repository.CajaRepository
	auditRepo repository.AuditoriaRepository
}

func NewGastoService(repo repository.GastoRepository, cajaRepo repository.CajaRepository, auditRepo repository.AuditoriaRepository) GastoService {
	return &gastoService{repo: repo, cajaRepo: cajaRepo, auditRepo: auditRepo}
}

func (s *gastoService) RegistrarGasto(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error) {
	if err := validarPuntoDeVenta(req.PuntoDeVenta); err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, apierror.Guarda("monto_invalido", "el monto del gasto debe ser mayor a cero")
	}

	var gasto *model.Gasto
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		sesion, err := bloquearSesion(tx, s.cajaRepo, req.PuntoDeVenta)
		if err != nil {
			return err
		}

		gasto = &model.Gasto{
			ID:           uuid.New(),
			PuntoDeVenta: req.PuntoDeVenta,
			SesionCajaID: sesion.ID,
			UsuarioID:    usuarioID,
			Tipo:         model.GastoTipoGasto,
			Monto:        req.Monto,
			Moneda:       req.Moneda,
			Metodo:       req.Metodo,
			Motivo:       req.Motivo,
			TasaCambio:   req.TasaCambio,
		}
		// Expenses may overdraw a drawer; the close report shows it.
		resultante, err := ajustarSaldo(tx, s.cajaRepo, sesion, movimientoCaja{
			tipo:        model.AuditGasto,
			moneda:      req.Moneda,
			metodo:      req.Metodo,
			monto:       req.Monto.Neg(),
			referencia:  gasto.ID,
			descripcion: req.Motivo,
		})
		if err != nil {
			return err
		}
		gasto.SaldoResultante = resultante
		if err := s.repo.CreateTx(tx, gasto); err != nil {
			return fmt.Errorf("guardando gasto: %w", err)
		}
		return auditar(tx, s.auditRepo, &model.Auditoria{
			PuntoDeVenta:    req.PuntoDeVenta,
			Tipo:            model.AuditGasto,
			ReferenciaID:    gasto.ID,
			Monto:           req.Monto,
			Moneda:          req.Moneda,
			Metodo:          req.Metodo,
			TasaCambio:      req.TasaCambio,
			SaldoResultante: &resultante,
			Detalle:         map[string]any{"motivo": req.Motivo},
			UsuarioID:       usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("punto_de_venta", gasto.PuntoDeVenta).
		Str("monto", gasto.Monto.StringFixed(2)).
		Str("saldo", gasto.SaldoResultante.StringFixed(2)).
		Msg("gasto registrado")
	return gastoToResponse(gasto), nil
}

func (s *gastoService) RevertirGasto(ctx context.Context, usuarioID, id uuid.UUID, req dto.RevertirGastoRequest) (*dto.GastoResponse, error) {
	var reversa *model.Gasto
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		original, err := s.repo.FindByIDForUpdateTx(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && original == nil) {
			return apierror.Estado(apierror.ErrGastoNoEncontrado.Code, "gasto %s no encontrado", id)
		}
		if err != nil {
			return fmt.Errorf("bloqueando gasto: %w", err)
		}
		if original.Tipo == model.GastoTipoReversa {
			return apierror.Estado("gasto_es_reversa", "una reversa de gasto no puede revertirse")
		}
		if original.Revertido {
			return apierror.Estado(apierror.ErrGastoRevertido.Code, "el gasto %s ya fue revertido", id)
		}

		sesion, err := bloquearSesion(tx, s.cajaRepo, original.PuntoDeVenta)
		if err != nil {
			return err
		}

		reversa = &model.Gasto{
			ID:           uuid.New(),
			PuntoDeVenta: original.PuntoDeVenta,
			SesionCajaID: sesion.ID,
			UsuarioID:    usuarioID,
			Tipo:         model.GastoTipoReversa,
			Monto:        original.Monto,
			Moneda:       original.Moneda,
			Metodo:       original.Metodo,
			Motivo:       req.Motivo,
			TasaCambio:   original.TasaCambio,
			ReversaDeID:  &original.ID,
		}
		resultante, err := ajustarSaldo(tx, s.cajaRepo, sesion, movimientoCaja{
			tipo:        model.AuditReversaGasto,
			moneda:      original.Moneda,
			metodo:      original.Metodo,
			monto:       original.Monto,
			referencia:  reversa.ID,
			descripcion: req.Motivo,
		})
		if err != nil {
			return err
		}
		reversa.SaldoResultante = resultante

		if err := s.repo.MarcarRevertidoTx(tx, original.ID); err != nil {
			return fmt.Errorf("marcando gasto revertido: %w", err)
		}
		if err := s.auditRepo.MarcarRevertidoTx(tx, model.AuditGasto, original.ID); err != nil {
			return fmt.Errorf("marcando auditoria del gasto: %w", err)
		}
		if err := s.repo.CreateTx(tx, reversa); err != nil {
			return fmt.Errorf("guardando reversa de gasto: %w", err)
		}
		return auditar(tx, s.auditRepo, &model.Auditoria{
			PuntoDeVenta:    original.PuntoDeVenta,
			Tipo:            model.AuditReversaGasto,
			ReferenciaID:    reversa.ID,
			Monto:           original.Monto,
			Moneda:          original.Moneda,
			Metodo:          original.Metodo,
			TasaCambio:      original.TasaCambio,
			SaldoResultante: &resultante,
			Detalle:         map[string]any{"motivo": req.Motivo, "gasto_id": original.ID.String()},
			UsuarioID:       usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("gasto", id.String()).Str("reversa", reversa.ID.String()).Msg("gasto revertido")
	return gastoToResponse(reversa), nil
}

func gastoToResponse(g *model.Gasto) *dto.GastoResponse {
	resp := &dto.GastoResponse{
		ID:              g.ID.String(),
		Tipo:            g.Tipo,
		PuntoDeVenta:    g.PuntoDeVenta,
		Monto:           g.Monto,
		Moneda:          g.Moneda,
		Metodo:          g.Metodo,
		Motivo:          g.Motivo,
		TasaCambio:      g.TasaCambio,
		SaldoResultante: g.SaldoResultante,
		Revertido:       g.Revertido,
		CreatedAt:       formatTime(g.CreatedAt),
	}
	if g.ReversaDeID != nil {
		id := g.ReversaDeID.String()
		resp.ReversaDeID = &id
	}
	return resp
}
