package repository

import (
	"context"

	"blendcaja/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CajaRepository owns sessions, their running balances and the cash movement ledger.
type CajaRepository interface {
	CreateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	FindSesionAbierta(ctx context.Context, puntoDeVenta int) (*model.SesionCaja, error)
	// LockSesionAbiertaTx takes a row lock on the register's open session. Every
	// mutating operation on a register goes through it first, which serializes them.
	LockSesionAbiertaTx(tx *gorm.DB, puntoDeVenta int) (*model.SesionCaja, error)
	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	SaveSaldoTx(tx *gorm.DB, saldo *model.SaldoCaja) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientosTx(tx *gorm.DB, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error)
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Create(s).Error
}

func (r *cajaRepo) FindSesionAbierta(ctx context.Context, puntoDeVenta int) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Saldos").
		Where("punto_de_venta = ? AND estado = ?", puntoDeVenta, model.SesionAbierta).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) LockSesionAbiertaTx(tx *gorm.DB, puntoDeVenta int) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("punto_de_venta = ? AND estado = ?", puntoDeVenta, model.SesionAbierta).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	err = tx.Where("sesion_caja_id = ?", s.ID).Order("moneda, metodo").Find(&s.Saldos).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Model(&model.SesionCaja{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"estado":        s.Estado,
		"observaciones": s.Observaciones,
		"cierre_id":     s.CierreID,
		"closed_at":     s.ClosedAt,
	}).Error
}

func (r *cajaRepo) SaveSaldoTx(tx *gorm.DB, saldo *model.SaldoCaja) error {
	return tx.Save(saldo).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) ListMovimientosTx(tx *gorm.DB, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := tx.Where("sesion_caja_id = ?", sesionCajaID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

// SumarMovimientos groups movements by tipo and then by "moneda:metodo".
func SumarMovimientos(movs []model.MovimientoCaja) map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal)
	for _, m := range movs {
		porClave, ok := out[m.Tipo]
		if !ok {
			porClave = make(map[string]decimal.Decimal)
			out[m.Tipo] = porClave
		}
		clave := model.ClaveSaldo(m.Moneda, m.Metodo)
		porClave[clave] = porClave[clave].Add(m.Monto)
	}
	return out
}
