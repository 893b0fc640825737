package router

import (
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/config"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/handler"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/infra"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/middleware"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/repository"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/service"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// The dispatcher and audit logger are built at the composition root so the
// fallback-drain goroutine runs against the same instance the services use.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, gatewayCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher, auditLog service.AuditLogger) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Domain))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	gateway := buildGateway(cfg, gatewayCB)
	tokenizer := infra.NewCardTokenizer(cfg.TokenPepper)
	vault, err := infra.NewMetadataVault(cfg.CardVaultKey)
	if err != nil {
		panic("card vault key invalid: " + err.Error())
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	drawerRepo := repository.NewDrawerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	productRepo := repository.NewProductRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	drawerSvc := service.NewDrawerService(drawerRepo, auditLog, dispatcher, cfg.SupervisorEmail)
	paymentSvc := service.NewPaymentService(
		paymentRepo, saleRepo, drawerRepo,
		gateway, tokenizer, vault, auditLog,
		time.Duration(cfg.GatewayTimeoutSeconds)*time.Second,
	)
	reportSvc := service.NewReportService(drawerRepo, paymentRepo, saleRepo, productRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	drawerH := handler.NewDrawerHandler(drawerSvc, reportSvc, cfg.BusinessName)
	paymentH := handler.NewPaymentHandler(paymentSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, gatewayCB))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		anyRole := middleware.RequireRole(middleware.RoleOperator, middleware.RoleSupervisor, middleware.RoleAdmin)
		supervisorUp := middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin)

		drawers := v1.Group("/drawers")
		{
			drawers.POST("/open", anyRole, drawerH.Open)
			drawers.POST("/:id/close", anyRole, drawerH.Close)
			drawers.POST("/:id/transactions", anyRole, drawerH.ManualTransaction)
			drawers.GET("/current", anyRole, drawerH.Current)
			drawers.GET("/:id/report", anyRole, drawerH.Report)
			drawers.GET("/:id/report/pdf", anyRole, drawerH.ReportPDF)

			// Reconciliation and the full history are supervisor territory.
			drawers.POST("/:id/reconcile", supervisorUp, drawerH.Reconcile)
			drawers.GET("", supervisorUp, drawerH.History)
		}

		v1.POST("/payments", anyRole, paymentH.Process)
	}

	// Swagger UI - only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// buildGateway selects the authorization backend. An empty GATEWAY_URL means
// the simulated gateway (development and demo deployments); a real URL gets
// the HTTP client wrapped in the circuit breaker.
func buildGateway(cfg *config.Config, cb *infra.CircuitBreaker) infra.Gateway {
	if cfg.GatewayURL == "" {
		return infra.NewSimulatedGateway(time.Now().UnixNano())
	}
	httpGW := infra.NewHTTPGateway(cfg.GatewayURL, time.Duration(cfg.GatewayTimeoutSeconds)*time.Second)
	return infra.NewBreakerGateway(httpGW, cb)
}
