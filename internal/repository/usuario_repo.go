package repository

import (
	"context"
	"time"

	"blendcaja/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsuarioRepository resolves the operator behind a register session. Accounts
// are provisioned by cmd/seeduser; the server only reads them.
type UsuarioRepository interface {
	// BuscarActivoPorLogin matches the username, or the email ignoring case.
	BuscarActivoPorLogin(ctx context.Context, login string) (*model.Usuario, error)
	BuscarPorID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	MarcarLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) BuscarActivoPorLogin(ctx context.Context, login string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Where("activo AND (username = ? OR LOWER(email) = LOWER(?))", login, login).
		Take(&u).Error
	return &u, err
}

func (r *usuarioRepo) BuscarPorID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Take(&u, "id = ?", id).Error
	return &u, err
}

func (r *usuarioRepo) MarcarLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id = ?", id).
		UpdateColumn("ultimo_login_at", at).Error
}
