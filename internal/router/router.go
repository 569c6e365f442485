package router

import (
	"time"

	"almapos/internal/config"
	"almapos/internal/handler"
	"almapos/internal/middleware"
	"almapos/internal/repository"
	"almapos/internal/service"
	"almapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	cajaRepo := repository.NewCajaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	contadorRepo := repository.NewContadorRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	productoRepo := repository.NewProductoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo, movimientoRepo, cierreRepo, dispatcher, rdb)
	ventaSvc := service.NewVentaService(ventaRepo, cajaRepo, contadorRepo, productoRepo)
	movimientoSvc := service.NewMovimientoService(movimientoRepo, cajaRepo)
	productoSvc := service.NewProductoService(productoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cajaH := handler.NewCajaHandler(cajaSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	movimientosH := handler.NewMovimientosHandler(movimientoSvc)
	productosH := handler.NewProductosHandler(productoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador — declared per-endpoint
		v1.POST("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.RegistrarVenta)
		v1.GET("/ventas", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.ListarVentas)
		v1.GET("/ventas/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.ObtenerVenta)
		v1.DELETE("/ventas/:id", middleware.RequireRole("supervisor", "administrador"), ventasH.AnularVenta)

		caja := v1.Group("/caja")
		{
			caja.POST("/sesion", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.AsegurarSesion)
			caja.GET("/resumen", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Resumen)
			caja.POST("/cerrar", middleware.RequireRole("supervisor", "administrador"), cajaH.Cerrar)
			caja.POST("/reabrir", middleware.RequireRole("supervisor", "administrador"), cajaH.Reabrir)
			caja.POST("/dia-siguiente", middleware.RequireRole("supervisor", "administrador"), cajaH.IniciarDiaSiguiente)
			caja.GET("/cierres", middleware.RequireRole("supervisor", "administrador"), cajaH.ListarCierres)
		}

		v1.GET("/movimientos", middleware.RequireRole("cajero", "supervisor", "administrador"), movimientosH.ListarMovimientos)

		gastos := v1.Group("/gastos", middleware.RequireRole("cajero", "supervisor", "administrador"))
		{
			gastos.POST("", movimientosH.CrearGasto)
			gastos.PUT("/:id", movimientosH.ActualizarGasto)
			gastos.DELETE("/:id", movimientosH.EliminarGasto)
		}

		ingresos := v1.Group("/ingresos", middleware.RequireRole("cajero", "supervisor", "administrador"))
		{
			ingresos.POST("", movimientosH.CrearIngreso)
			ingresos.PUT("/:id", movimientosH.ActualizarIngreso)
			ingresos.DELETE("/:id", movimientosH.EliminarIngreso)
		}

		v1.GET("/productos/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.ObtenerProducto)
		v1.POST("/productos/:id/stock", middleware.RequireRole("supervisor", "administrador"), productosH.AjustarStock)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
