package repository

import (
	"context"

	"blendcaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	ListByReferencia(ctx context.Context, referenciaID uuid.UUID) ([]model.MovimientoStock, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

// ListByReferencia returns the stock trail of one sale: its decrements and, after a
// void, the matching restores.
func (r *movimientoStockRepo) ListByReferencia(ctx context.Context, referenciaID uuid.UUID) ([]model.MovimientoStock, error) {
	var movimientos []model.MovimientoStock
	err := r.db.WithContext(ctx).
		Where("referencia_id = ?", referenciaID).
		Order("created_at ASC").
		Find(&movimientos).Error
	return movimientos, err
}
