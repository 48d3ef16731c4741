package repository

import (
	"context"

	"blendcaja/internal/dto"
	"blendcaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// FindByIDForUpdateTx locks the sale row so two concurrent voids cannot both pass.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	UpdateAnulacionTx(tx *gorm.DB, v *model.Venta) error
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error)
	// CountTx counts every sale ever committed, voided ones included.
	CountTx(tx *gorm.DB) (int64, error)
	ListPendientesCierreTx(tx *gorm.DB, puntoDeVenta int) ([]model.Venta, error)
	MarcarCierreTx(tx *gorm.DB, ids []uuid.UUID, cierreID uuid.UUID) error
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").Preload("Pagos").Preload("Vueltos").First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").Preload("Pagos").Preload("Vueltos").
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) UpdateAnulacionTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Model(&model.Venta{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"estado":           v.Estado,
		"motivo_anulacion": v.MotivoAnulacion,
		"anulada_por":      v.AnuladaPor,
		"anulada_at":       v.AnuladaAt,
	}).Error
}

func (r *ventaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// Uses a PostgreSQL sequence for atomic ticket number generation
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('ventas_numero_ticket_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) CountTx(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Model(&model.Venta{}).Count(&n).Error
	return n, err
}

func (r *ventaRepo) ListPendientesCierreTx(tx *gorm.DB, puntoDeVenta int) ([]model.Venta, error) {
	var ventas []model.Venta
	err := tx.Where("punto_de_venta = ? AND cierre_id IS NULL", puntoDeVenta).
		Order("numero_ticket ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) MarcarCierreTx(tx *gorm.DB, ids []uuid.UUID, cierreID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&model.Venta{}).Where("id IN ?", ids).Update("cierre_id", cierreID).Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.PuntoDeVenta > 0 {
		q = q.Where("punto_de_venta = ?", filter.PuntoDeVenta)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").Preload("Pagos").Preload("Usuario").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}
