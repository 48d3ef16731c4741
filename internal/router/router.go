package router

import (
	"fmt"
	"time"

	"blendcaja/internal/config"
	"blendcaja/internal/handler"
	"blendcaja/internal/infra"
	"blendcaja/internal/middleware"
	"blendcaja/internal/repository"
	"blendcaja/internal/service"
	"blendcaja/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) (*gin.Engine, error) {
	params, err := cfg.Parametros()
	if err != nil {
		return nil, fmt.Errorf("parametros de negocio: %w", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	stockRepo := repository.NewMovimientoStockRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	gastoRepo := repository.NewGastoRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	auditRepo := repository.NewAuditoriaRepository(db)

	// Worker dispatcher: the close enqueues its Z report through it
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, stockRepo, cajaRepo, clienteRepo, auditRepo)
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo, gastoRepo, cierreRepo, auditRepo, dispatcher)
	gastoSvc := service.NewGastoService(gastoRepo, cajaRepo, auditRepo)
	clienteSvc := service.NewClienteService(clienteRepo, cajaRepo, auditRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	ventasH := handler.NewVentasHandler(ventaSvc, params)
	cajaH := handler.NewCajaHandler(cajaSvc, cierreRepo)
	gastosH := handler.NewGastosHandler(gastoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc, params)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		operador := middleware.RequireRole(middleware.Operadores...)
		supervisor := middleware.RequireRole(middleware.Supervisores...)

		v1.GET("/auth/me", authH.Me)

		v1.POST("/ventas/calcular", operador, ventasH.Calcular)
		v1.POST("/ventas", operador, ventasH.RegistrarVenta)
		v1.GET("/ventas", operador, ventasH.ListarVentas)
		v1.DELETE("/ventas/:id", supervisor, ventasH.AnularVenta)

		caja := v1.Group("/caja", operador)
		{
			caja.POST("/abrir", cajaH.Abrir)
			caja.POST("/cerrar", cajaH.Cerrar)
			caja.GET("/activa", cajaH.GetActiva)
			caja.GET("/cierres/:id/reporte", cajaH.DescargarReporte)
		}

		v1.POST("/gastos", operador, gastosH.Registrar)
		v1.POST("/gastos/:id/revertir", supervisor, gastosH.Revertir)

		v1.GET("/clientes/:id", operador, clientesH.Obtener)
		v1.POST("/clientes/:id/abonos", operador, clientesH.RegistrarAbono)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
