//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"blendcaja/internal/config"
	"blendcaja/internal/infra"
	"blendcaja/internal/model"
	"blendcaja/internal/router"
	"blendcaja/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // administrador JWT
	db     *gorm.DB
	rdb    *redis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("blendcaja_test"),
		tcPostgres.WithUsername("blendcaja"),
		tcPostgres.WithPassword("blendcaja"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
		TasaImpuesto:       "0",
		TasaCambio:         "36.5",
		IGTFTasa:           "3",
		Epsilon:            "0.0001",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, true)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.WorkerPoolSize)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("blendcaja2026"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		Username: "admin", Nombre: "Admin E2E", PasswordHash: string(hash), Rol: "administrador", Activo: true,
	}).Error)

	mailer := infra.NewMailer(cfg, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	r, err := router.New(cfg, db, rdb, mailer)
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "blendcaja2026"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, db: db, rdb: rdb}
}

func (e *testEnv) producto(t *testing.T, nombre, codigo, precio string, stock int64) string {
	t.Helper()
	p := model.Producto{
		Nombre: nombre, CodigoBarras: codigo,
		PrecioVenta: decimal.RequireFromString(precio), Stock: decimal.NewFromInt(stock), Activo: true,
	}
	require.NoError(t, e.db.Create(&p).Error)
	return p.ID.String()
}

func (e *testEnv) abrirCaja(t *testing.T, pdv int, monto string) {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/caja/abrir", jsonBody(t, map[string]any{
		"punto_de_venta": pdv,
		"saldos":         []map[string]any{{"moneda": "principal", "metodo": "efectivo", "monto": monto}},
	}), e.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func ventaEfectivo(pdv int, productoID, cantidad, pago string) map[string]any {
	return map[string]any{
		"punto_de_venta": pdv,
		"items":          []map[string]any{{"producto_id": productoID, "cantidad": cantidad}},
		"pagos":          []map[string]any{{"moneda": "principal", "metodo": "efectivo", "monto": pago}},
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloCompletoDeCaja(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.producto(t, "Harina 1kg", "7590000000011", "1.50", 10)
	env.abrirCaja(t, 1, "100")

	// second open on the same register is rejected
	dup := do(t, env.server, "POST", "/v1/caja/abrir", jsonBody(t, map[string]any{"punto_de_venta": 1}), env.token)
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
	dup.Body.Close()

	ventaResp := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, ventaEfectivo(1, prodID, "2", "5")), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID           string          `json:"id"`
		NumeroTicket int             `json:"numero_ticket"`
		Total        decimal.Decimal `json:"total"`
		Vuelto       struct {
			EfectivoPrincipal decimal.Decimal `json:"efectivo_principal"`
		} `json:"vuelto"`
		Estado string `json:"estado"`
	}
	decodeJSON(t, ventaResp, &venta)
	assert.Equal(t, "completada", venta.Estado)
	assert.Equal(t, 1, venta.NumeroTicket)
	assert.True(t, venta.Total.Equal(decimal.RequireFromString("3")))
	assert.True(t, venta.Vuelto.EfectivoPrincipal.Equal(decimal.RequireFromString("2")))

	gastoResp := do(t, env.server, "POST", "/v1/gastos", jsonBody(t, map[string]any{
		"punto_de_venta": 1, "monto": "10", "moneda": "principal", "metodo": "efectivo", "motivo": "hielo",
	}), env.token)
	require.Equal(t, http.StatusCreated, gastoResp.StatusCode)
	gastoResp.Body.Close()

	// 100 + 5 - 2 - 10
	cierreResp := do(t, env.server, "POST", "/v1/caja/cerrar", jsonBody(t, map[string]any{
		"punto_de_venta": 1,
		"declaracion":    []map[string]any{{"moneda": "principal", "metodo": "efectivo", "monto": "93"}},
	}), env.token)
	require.Equal(t, http.StatusOK, cierreResp.StatusCode)
	var cierre struct {
		ID             string  `json:"id"`
		CantidadVentas int     `json:"cantidad_ventas"`
		Clasificacion  *string `json:"clasificacion"`
		Saldos         []struct {
			Esperado decimal.Decimal `json:"esperado"`
		} `json:"saldos"`
	}
	decodeJSON(t, cierreResp, &cierre)
	assert.Equal(t, 1, cierre.CantidadVentas)
	require.NotNil(t, cierre.Clasificacion)
	assert.Equal(t, "normal", *cierre.Clasificacion)
	require.Len(t, cierre.Saldos, 1)
	assert.True(t, cierre.Saldos[0].Esperado.Equal(decimal.RequireFromString("93")))

	// the close queued its Z report
	job, err := env.rdb.RPop(context.Background(), worker.QueueReportes).Result()
	require.NoError(t, err)
	assert.Contains(t, job, cierre.ID)

	// the register is closed now
	after := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, ventaEfectivo(1, prodID, "1", "5")), env.token)
	assert.Equal(t, http.StatusConflict, after.StatusCode)
	after.Body.Close()
}

func TestE2E_VentasConcurrentesNoSobrevendenStock(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.producto(t, "Refresco 2L", "7590000000028", "2.25", 1)
	env.abrirCaja(t, 1, "0")

	const intentos = 4
	codes := make([]int, intentos)
	var wg sync.WaitGroup
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _ := json.Marshal(ventaEfectivo(1, prodID, "1", "2.25"))
			req, _ := http.NewRequest("POST", env.server.URL+"/v1/ventas", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+env.token)
			resp, err := env.server.Client().Do(req)
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, c := range codes {
		if c == http.StatusCreated {
			ok++
		} else {
			assert.Equal(t, http.StatusConflict, c)
		}
	}
	assert.Equal(t, 1, ok)

	var p model.Producto
	require.NoError(t, env.db.First(&p, "id = ?", prodID).Error)
	assert.True(t, p.Stock.IsZero())
}

func TestE2E_AnularVentaRestauraStock(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.producto(t, "Leche 1L", "7590000000042", "2.00", 10)
	env.abrirCaja(t, 1, "50")

	ventaResp := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, ventaEfectivo(1, prodID, "3", "6")), env.token)
	require.Equal(t, http.StatusCreated, ventaResp.StatusCode)
	var venta struct {
		ID string `json:"id"`
	}
	decodeJSON(t, ventaResp, &venta)

	anular := do(t, env.server, "DELETE", "/v1/ventas/"+venta.ID, jsonBody(t, map[string]any{"motivo": "error de carga"}), env.token)
	require.Equal(t, http.StatusOK, anular.StatusCode)
	anular.Body.Close()

	var p model.Producto
	require.NoError(t, env.db.First(&p, "id = ?", prodID).Error)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)))

	activa := do(t, env.server, "GET", "/v1/caja/activa?punto_de_venta=1", nil, env.token)
	require.Equal(t, http.StatusOK, activa.StatusCode)
	var sesion struct {
		Saldos []struct {
			Actual decimal.Decimal `json:"actual"`
		} `json:"saldos"`
	}
	decodeJSON(t, activa, &sesion)
	require.Len(t, sesion.Saldos, 1)
	assert.True(t, sesion.Saldos[0].Actual.Equal(decimal.NewFromInt(50)))

	again := do(t, env.server, "DELETE", "/v1/ventas/"+venta.ID, jsonBody(t, map[string]any{"motivo": "otra vez"}), env.token)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
	again.Body.Close()
}

func TestE2E_HealthReportaDependencias(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		OK    bool             `json:"ok"`
		DB    string           `json:"db"`
		Redis string           `json:"redis"`
		SMTP  string           `json:"smtp"`
		DLQ   map[string]int64 `json:"dlq"`
	}
	decodeJSON(t, resp, &health)
	assert.True(t, health.OK)
	assert.Equal(t, "connected", health.DB)
	assert.Equal(t, "connected", health.Redis)
	assert.Equal(t, "disabled", health.SMTP)
	assert.Contains(t, health.DLQ, "jobs:reportes_cierre")
}
