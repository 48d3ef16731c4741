package repository

import (
	"context"
	"time"

	"blendcaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CierreRepository interface {
	CreateTx(tx *gorm.DB, c *model.CierreCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error)
	UpdateReportePath(ctx context.Context, id uuid.UUID, path string) error
	// ListSinReporte returns closes older than antesDe whose PDF was never generated.
	ListSinReporte(ctx context.Context, antesDe time.Time, limit int) ([]model.CierreCaja, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) CreateTx(tx *gorm.DB, c *model.CierreCaja) error {
	return tx.Create(c).Error
}

func (r *cierreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := r.db.WithContext(ctx).Preload("Saldos").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cierreRepo) UpdateReportePath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.CierreCaja{}).Where("id = ?", id).Update("reporte_path", path).Error
}

func (r *cierreRepo) ListSinReporte(ctx context.Context, antesDe time.Time, limit int) ([]model.CierreCaja, error) {
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).
		Where("reporte_path IS NULL AND closed_at < ?", antesDe).
		Order("closed_at ASC").
		Limit(limit).
		Find(&cierres).Error
	return cierres, err
}
