package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blendcaja/internal/apierror"
	"blendcaja/internal/model"
	"blendcaja/internal/money"
	"blendcaja/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// bloquearSesion locks the open session of a register or reports the register as closed.
func bloquearSesion(tx *gorm.DB, repo repository.CajaRepository, puntoDeVenta int) (*model.SesionCaja, error) {
	sesion, err := repo.LockSesionAbiertaTx(tx, puntoDeVenta)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && sesion == nil) {
		return nil, errCajaCerrada(puntoDeVenta)
	}
	if err != nil {
		return nil, fmt.Errorf("bloqueando sesion de caja: %w", err)
	}
	return sesion, nil
}

func errCajaCerrada(puntoDeVenta int) error {
	return apierror.Estado(apierror.ErrCajaCerrada.Code, "no hay sesion de caja abierta en el punto de venta %d", puntoDeVenta)
}

func validarPuntoDeVenta(puntoDeVenta int) error {
	if puntoDeVenta < 1 {
		return apierror.Validacion("punto_de_venta_invalido", "punto_de_venta debe ser mayor a cero")
	}
	return nil
}

// buscarSaldo returns the (moneda, metodo) drawer of the session, creating an
// empty one on first use. The pointer is only valid until the next call.
func buscarSaldo(sesion *model.SesionCaja, moneda, metodo string) *model.SaldoCaja {
	for i := range sesion.Saldos {
		if sesion.Saldos[i].Moneda == moneda && sesion.Saldos[i].Metodo == metodo {
			return &sesion.Saldos[i]
		}
	}
	sesion.Saldos = append(sesion.Saldos, model.SaldoCaja{
		ID:           uuid.New(),
		SesionCajaID: sesion.ID,
		Moneda:       moneda,
		Metodo:       metodo,
		Inicial:      decimal.Zero,
		Actual:       decimal.Zero,
	})
	return &sesion.Saldos[len(sesion.Saldos)-1]
}

// movimientoCaja describes one change to a drawer.
type movimientoCaja struct {
	tipo        string
	moneda      string
	metodo      string
	monto       decimal.Decimal // signed: positive enters the drawer
	referencia  uuid.UUID
	descripcion string
}

// ajustarSaldo applies m to the locked session, persists the balance and the
// immutable movement row, and returns the resulting balance.
func ajustarSaldo(tx *gorm.DB, repo repository.CajaRepository, sesion *model.SesionCaja, m movimientoCaja) (decimal.Decimal, error) {
	saldo := buscarSaldo(sesion, m.moneda, m.metodo)
	saldo.Actual = money.Add(saldo.Actual, m.monto)
	resultante := saldo.Actual
	if err := repo.SaveSaldoTx(tx, saldo); err != nil {
		return decimal.Zero, fmt.Errorf("actualizando saldo %s: %w", saldo.Clave(), err)
	}
	ref := m.referencia
	mov := &model.MovimientoCaja{
		ID:           uuid.New(),
		SesionCajaID: sesion.ID,
		Tipo:         m.tipo,
		Moneda:       m.moneda,
		Metodo:       m.metodo,
		Monto:        m.monto,
		Descripcion:  m.descripcion,
		ReferenciaID: &ref,
	}
	if err := repo.CreateMovimientoTx(tx, mov); err != nil {
		return decimal.Zero, fmt.Errorf("registrando movimiento de caja: %w", err)
	}
	return resultante, nil
}

func auditar(tx *gorm.DB, repo repository.AuditoriaRepository, a *model.Auditoria) error {
	a.ID = uuid.New()
	if a.Estado == "" {
		a.Estado = model.AuditActivo
	}
	if err := repo.AppendTx(tx, a); err != nil {
		return fmt.Errorf("registrando auditoria %s: %w", a.Tipo, err)
	}
	return nil
}

// bloquearCliente loads and locks the customer, translating a missing row.
func bloquearCliente(tx *gorm.DB, repo repository.ClienteRepository, id uuid.UUID) (*model.Cliente, error) {
	c, err := repo.FindByIDForUpdateTx(tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && c == nil) {
		return nil, apierror.Estado(apierror.ErrClienteNoEncontrado.Code, "cliente %s no encontrado", id)
	}
	if err != nil {
		return nil, fmt.Errorf("bloqueando cliente: %w", err)
	}
	return c, nil
}

func parseUUIDOpcional(campo string, s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, apierror.Validacion(campo+"_invalido", "%s invalido: %s", campo, *s)
	}
	return &id, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
