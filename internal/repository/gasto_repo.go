package repository

import (
	"blendcaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GastoRepository interface {
	CreateTx(tx *gorm.DB, g *model.Gasto) error
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Gasto, error)
	MarcarRevertidoTx(tx *gorm.DB, id uuid.UUID) error
	ListBySesionTx(tx *gorm.DB, sesionCajaID uuid.UUID) ([]model.Gasto, error)
}

type gastoRepo struct{ db *gorm.DB }

func NewGastoRepository(db *gorm.DB) GastoRepository { return &gastoRepo{db: db} }

func (r *gastoRepo) CreateTx(tx *gorm.DB, g *model.Gasto) error {
	return tx.Create(g).Error
}

func (r *gastoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Gasto, error) {
	var g model.Gasto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&g, "id = ?", id).Error
	return &g, err
}

func (r *gastoRepo) MarcarRevertidoTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.Gasto{}).Where("id = ?", id).Update("revertido", true).Error
}

func (r *gastoRepo) ListBySesionTx(tx *gorm.DB, sesionCajaID uuid.UUID) ([]model.Gasto, error) {
	var gastos []model.Gasto
	err := tx.Where("sesion_caja_id = ?", sesionCajaID).Order("created_at ASC").Find(&gastos).Error
	return gastos, err
}
