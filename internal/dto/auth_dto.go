package dto

import "time"

// LoginRequest accepts the username or the email as Username.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// UsuarioResponse is the operator as the register UI shows it.
type UsuarioResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Nombre        string     `json:"nombre"`
	Email         *string    `json:"email"`
	Rol           string     `json:"rol"`
	PuntoDeVenta  *int       `json:"punto_de_venta"`
	UltimoLoginAt *time.Time `json:"ultimo_login_at,omitempty"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	Usuario     UsuarioResponse `json:"usuario"`
}
