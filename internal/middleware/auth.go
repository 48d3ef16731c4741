package middleware

import (
	"net/http"
	"strings"

	"blendcaja/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"

	RolCajero        = "cajero"
	RolSupervisor    = "supervisor"
	RolAdministrador = "administrador"
)

// Operadores are the roles allowed to sell, spend and take payments.
var Operadores = []string{RolCajero, RolSupervisor, RolAdministrador}

// Supervisores may void sales and reverse expenses.
var Supervisores = []string{RolSupervisor, RolAdministrador}

// JWTClaims identify the operator behind every register operation. A cashier
// pinned to one register carries its PuntoDeVenta.
type JWTClaims struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Rol          string `json:"rol"`
	PuntoDeVenta *int   `json:"punto_de_venta"`
	jwt.RegisteredClaims
}

func (c *JWTClaims) coherentes() bool {
	switch c.Rol {
	case RolCajero, RolSupervisor, RolAdministrador:
	default:
		return false
	}
	return c.UserID != "" && (c.PuntoDeVenta == nil || *c.PuntoDeVenta > 0)
}

// JWTAuth accepts only HS256 tokens with an expiry, a known role and, when
// present, a valid register number.
func JWTAuth(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	clave := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}
		claims := &JWTClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, clave); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}
		if !claims.coherentes() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token con rol o punto de venta invalido"))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole runs after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	permitido := make(map[string]bool, len(roles))
	for _, r := range roles {
		permitido[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !permitido[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims returns nil outside JWTAuth.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.Value(ClaimsKey).(*JWTClaims)
	return claims
}
