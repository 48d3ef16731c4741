package repository

import (
	"context"

	"blendcaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditoriaRepository is append-only: entries are inserted, and the only update
// allowed is flagging an entry as revertido.
type AuditoriaRepository interface {
	AppendTx(tx *gorm.DB, a *model.Auditoria) error
	MarcarRevertidoTx(tx *gorm.DB, tipo string, referenciaID uuid.UUID) error
	ListByReferencia(ctx context.Context, referenciaID uuid.UUID) ([]model.Auditoria, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) AppendTx(tx *gorm.DB, a *model.Auditoria) error {
	return tx.Create(a).Error
}

func (r *auditoriaRepo) MarcarRevertidoTx(tx *gorm.DB, tipo string, referenciaID uuid.UUID) error {
	return tx.Model(&model.Auditoria{}).
		Where("tipo = ? AND referencia_id = ?", tipo, referenciaID).
		Update("estado", model.AuditRevertido).Error
}

func (r *auditoriaRepo) ListByReferencia(ctx context.Context, referenciaID uuid.UUID) ([]model.Auditoria, error) {
	var entries []model.Auditoria
	err := r.db.WithContext(ctx).Where("referencia_id = ?", referenciaID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}
