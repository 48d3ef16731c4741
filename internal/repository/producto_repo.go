package repository

import (
	"context"

	"blendcaja/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository is the narrow slice of the catalog the sale core needs:
// read products and move their stock.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Producto, error)
	// FindByIDsForUpdateTx locks the rows in id order so concurrent sales touching
	// the same products cannot deadlock.
	FindByIDsForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error)

	// Used inside transactions: callers must pass the tx instance
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) FindByIDsForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).Order("id").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}
