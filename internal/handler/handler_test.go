package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"blendcaja/internal/apierror"
	"blendcaja/internal/dto"
	"blendcaja/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Stub GastoService ─────────────────────────────────────────────────────────

type stubGastoSvc struct {
	err     error
	ultimo  dto.RegistrarGastoRequest
	usuario uuid.UUID
}

func (s *stubGastoSvc) RegistrarGasto(_ context.Context, usuarioID uuid.UUID, req dto.RegistrarGastoRequest) (*dto.GastoResponse, error) {
	s.ultimo = req
	s.usuario = usuarioID
	if s.err != nil {
		return nil, s.err
	}
	return &dto.GastoResponse{ID: uuid.NewString(), Tipo: "gasto", PuntoDeVenta: req.PuntoDeVenta, Monto: req.Monto}, nil
}

func (s *stubGastoSvc) RevertirGasto(_ context.Context, _, _ uuid.UUID, _ dto.RevertirGastoRequest) (*dto.GastoResponse, error) {
	return nil, s.err
}

// newEngine mounts the gastos routes behind fake claims instead of a real JWT.
func newEngine(svc *stubGastoSvc, claims *middleware.JWTClaims) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ClaimsKey, claims)
		}
		c.Next()
	})
	h := NewGastosHandler(svc)
	r.POST("/v1/gastos", h.Registrar)
	r.POST("/v1/gastos/:id/revertir", h.Revertir)
	return r
}

func post(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func gastoValido() map[string]any {
	return map[string]any{"punto_de_venta": 2, "monto": "10", "moneda": "principal", "metodo": "efectivo", "motivo": "hielo"}
}

// ── statusFor ─────────────────────────────────────────────────────────────────

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  *apierror.Error
		want int
	}{
		{apierror.Guarda("pago_insuficiente", "x"), http.StatusUnprocessableEntity},
		{apierror.Validacion("monto_invalido", "x"), http.StatusUnprocessableEntity},
		{apierror.Validacion("credenciales_invalidas", "x"), http.StatusUnauthorized},
		{apierror.Estado(apierror.ErrCajaCerrada.Code, "x"), http.StatusConflict},
		{apierror.Estado(apierror.ErrVentaNoEncontrada.Code, "x"), http.StatusNotFound},
		{apierror.Estado(apierror.ErrVentaAnulada.Code, "x"), http.StatusConflict},
		{apierror.Recurso(apierror.ErrStockInsuficiente.Code, "x"), http.StatusConflict},
		{apierror.Cuota(apierror.ErrLimiteDemo.Code, "x"), http.StatusPaymentRequired},
	}
	for _, tc := range cases {
		t.Run(string(tc.err.Kind)+"/"+tc.err.Code, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}

// ── Handlers ──────────────────────────────────────────────────────────────────

func TestRegistrarGasto_UsaPuntoDeVentaDelToken(t *testing.T) {
	svc := &stubGastoSvc{}
	pdv := 7
	userID := uuid.New()
	r := newEngine(svc, &middleware.JWTClaims{UserID: userID.String(), Rol: "cajero", PuntoDeVenta: &pdv})

	w := post(r, "/v1/gastos", gastoValido())

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 7, svc.ultimo.PuntoDeVenta)
	assert.Equal(t, userID, svc.usuario)
}

func TestRegistrarGasto_SinPuntoFijoUsaElSolicitado(t *testing.T) {
	svc := &stubGastoSvc{}
	r := newEngine(svc, &middleware.JWTClaims{UserID: uuid.NewString(), Rol: "supervisor"})

	w := post(r, "/v1/gastos", gastoValido())

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, svc.ultimo.PuntoDeVenta)
}

func TestRegistrarGasto_ValidacionDeCampos(t *testing.T) {
	r := newEngine(&stubGastoSvc{}, &middleware.JWTClaims{UserID: uuid.NewString()})
	body := gastoValido()
	body["moneda"] = "bitcoin"

	w := post(r, "/v1/gastos", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "oneof", resp.Fields["Moneda"])
}

func TestRegistrarGasto_JSONInvalido(t *testing.T) {
	r := newEngine(&stubGastoSvc{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/gastos", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrarGasto_ErrorTipadoLlevaKindYCode(t *testing.T) {
	svc := &stubGastoSvc{err: apierror.Estado(apierror.ErrCajaCerrada.Code, "no hay sesion")}
	r := newEngine(svc, &middleware.JWTClaims{UserID: uuid.NewString()})

	w := post(r, "/v1/gastos", gastoValido())

	require.Equal(t, http.StatusConflict, w.Code)
	var resp apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apierror.KindEstado, resp.Kind)
	assert.Equal(t, "caja_cerrada", resp.Code)
}

func TestRegistrarGasto_ErrorNoTipadoEs500SinDetalle(t *testing.T) {
	svc := &stubGastoSvc{err: errors.New("pq: connection refused")}
	r := newEngine(svc, &middleware.JWTClaims{UserID: uuid.NewString()})

	w := post(r, "/v1/gastos", gastoValido())

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRevertirGasto_IDInvalido(t *testing.T) {
	r := newEngine(&stubGastoSvc{}, nil)
	w := post(r, "/v1/gastos/no-es-uuid/revertir", map[string]any{"motivo": "error"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevertirGasto_NoEncontradoEs404(t *testing.T) {
	svc := &stubGastoSvc{err: apierror.Estado(apierror.ErrGastoNoEncontrado.Code, "no existe")}
	r := newEngine(svc, &middleware.JWTClaims{UserID: uuid.NewString()})
	w := post(r, "/v1/gastos/"+uuid.NewString()+"/revertir", map[string]any{"motivo": "error"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
