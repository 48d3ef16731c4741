package service

import (
	"context"
	"errors"
	"fmt"

	"blendcaja/internal/apierror"
	"blendcaja/internal/config"
	"blendcaja/internal/dto"
	"blendcaja/internal/finanzas"
	"blendcaja/internal/model"
	"blendcaja/internal/money"
	"blendcaja/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ClienteService interface {
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	// RegistrarAbono takes money at the register on the customer's account. It pays
	// debt first; any excess becomes saldo a favor.
	RegistrarAbono(ctx context.Context, usuarioID, clienteID uuid.UUID, req dto.AbonoRequest, params config.Parametros) (*dto.AbonoResponse, error)
}

type clienteService struct {
	repo      repository.ClienteRepository
	cajaRepo  repository.CajaRepository
	auditRepo repository.AuditoriaRepository
}

func NewClienteService(repo repository.ClienteRepository, cajaRepo repository.CajaRepository, auditRepo repository.AuditoriaRepository) ClienteService {
	return &clienteService{repo: repo, cajaRepo: cajaRepo, auditRepo: auditRepo}
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Estado(apierror.ErrClienteNoEncontrado.Code, "cliente %s no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) RegistrarAbono(ctx context.Context, usuarioID, clienteID uuid.UUID, req dto.AbonoRequest, params config.Parametros) (*dto.AbonoResponse, error) {
	if err := validarPuntoDeVenta(req.PuntoDeVenta); err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, apierror.Guarda("monto_invalido", "el abono debe ser mayor a cero")
	}
	params = params.ConTasa(req.TasaCambio)
	pago := finanzas.Pago{Monto: req.Monto, Moneda: req.Moneda, Metodo: req.Metodo, Tasa: req.Tasa}
	switch {
	case req.Moneda == finanzas.MonedaSecundaria && !params.TasaCambio.IsPositive():
		return nil, apierror.Guarda("tasa_cambio_invalida", "el abono en moneda secundaria requiere una tasa de cambio")
	case req.Moneda == finanzas.MonedaExtranjera && !req.Tasa.IsPositive():
		return nil, apierror.Guarda("tasa_extranjera_invalida", "el abono en moneda extranjera requiere una tasa positiva")
	}
	principal := money.RoundMoney(pago.EnPrincipal(params.TasaCambio))

	var (
		cliente    *model.Cliente
		aplicacion finanzas.Aplicacion
	)
	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		sesion, err := bloquearSesion(tx, s.cajaRepo, req.PuntoDeVenta)
		if err != nil {
			return err
		}
		cliente, err = bloquearCliente(tx, s.repo, clienteID)
		if err != nil {
			return err
		}

		abonoID := uuid.New()
		resultante, err := ajustarSaldo(tx, s.cajaRepo, sesion, movimientoCaja{
			tipo:        model.AuditAbono,
			moneda:      req.Moneda,
			metodo:      req.Metodo,
			monto:       req.Monto,
			referencia:  abonoID,
			descripcion: "abono " + cliente.Nombre,
		})
		if err != nil {
			return err
		}

		var cuenta finanzas.CuentaCliente
		cuenta, aplicacion = finanzas.AplicarMovimientoCliente(cliente.Cuenta(), finanzas.MovimientoCliente{
			VueltoAWallet: principal,
		})
		cliente.SetCuenta(cuenta)
		if err := s.repo.UpdateCuentaTx(tx, cliente); err != nil {
			return fmt.Errorf("actualizando cuenta del cliente: %w", err)
		}

		detalle := map[string]any{
			"cliente_id":        cliente.ID.String(),
			"monto_principal":   principal.StringFixed(2),
			"aplicado_a_deuda":  aplicacion.AplicadoADeuda.StringFixed(2),
			"aplicado_a_wallet": aplicacion.AplicadoAWallet.StringFixed(2),
		}
		if req.Referencia != nil {
			detalle["referencia"] = *req.Referencia
		}
		return auditar(tx, s.auditRepo, &model.Auditoria{
			PuntoDeVenta:    req.PuntoDeVenta,
			Tipo:            model.AuditAbono,
			ReferenciaID:    abonoID,
			Monto:           req.Monto,
			Moneda:          req.Moneda,
			Metodo:          req.Metodo,
			TasaCambio:      params.TasaCambio,
			SaldoResultante: &resultante,
			Detalle:         detalle,
			UsuarioID:       usuarioID,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("cliente", cliente.ID.String()).
		Str("monto", principal.StringFixed(2)).
		Str("deuda", cliente.Deuda.StringFixed(2)).
		Msg("abono registrado")
	return &dto.AbonoResponse{
		Cliente:         clienteToResponse(cliente),
		MontoPrincipal:  principal,
		AplicadoADeuda:  aplicacion.AplicadoADeuda,
		AplicadoAWallet: aplicacion.AplicadoAWallet,
	}, nil
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:         c.ID.String(),
		Nombre:     c.Nombre,
		Deuda:      money.RoundMoney(c.Deuda),
		SaldoFavor: money.RoundMoney(c.SaldoFavor),
	}
}
