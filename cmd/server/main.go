package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	crmapp "github.com/fitmanager/backend/internal/application/crm"
	ledgerapp "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/infrastructure/auth"
	"github.com/fitmanager/backend/internal/infrastructure/config"
	"github.com/fitmanager/backend/internal/infrastructure/logger"
	"github.com/fitmanager/backend/internal/infrastructure/persistence"
	"github.com/fitmanager/backend/internal/interfaces/http/handler"
	"github.com/fitmanager/backend/internal/interfaces/http/middleware"
	"github.com/fitmanager/backend/internal/interfaces/http/router"
)

//	@title			FitManager Backend API
//	@version		1.0
//	@description	Financial ledger backend for personal trainer studios

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting FitManager Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Token blacklist backed by Redis. If Redis is unreachable the server
	// still starts; revocation checks are skipped until it comes back.
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, token revocation checks disabled", zap.Error(err))
	} else {
		tokenBlacklist = redisBlacklist
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		log.Info("Token blacklist connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	auditRepo := persistence.NewGormAuditRecordRepository(db.DB)
	creditCounter := persistence.NewGormSessionCreditCounter(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	clientService := crmapp.NewClientService(txScope)
	contractService := ledgerapp.NewContractService(txScope, clientRepo)
	paymentService := ledgerapp.NewPaymentService(txScope, creditCounter)
	expenseService := ledgerapp.NewRecurringExpenseService(txScope)
	materializationService := ledgerapp.NewMaterializationService(txScope)
	entryService := ledgerapp.NewLedgerEntryService(txScope, materializationService)
	auditService := ledgerapp.NewAuditService(auditRepo)

	// JWT validation (tokens are issued by the identity service)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	clientHandler := handler.NewClientHandler(clientService)
	contractHandler := handler.NewContractHandler(contractService)
	installmentHandler := handler.NewInstallmentHandler(contractService, paymentService)
	entryHandler := handler.NewLedgerEntryHandler(entryService)
	expenseHandler := handler.NewRecurringExpenseHandler(expenseService, materializationService)
	auditHandler := handler.NewAuditHandler(auditService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup request validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// CRM domain (clients)
	crmRoutes := router.NewDomainGroup("crm", "/crm")
	crmRoutes.POST("/clients", clientHandler.Create)
	crmRoutes.GET("/clients", clientHandler.List)
	crmRoutes.GET("/clients/:id", clientHandler.GetByID)
	crmRoutes.PUT("/clients/:id", clientHandler.Update)
	crmRoutes.DELETE("/clients/:id", clientHandler.Delete)
	crmRoutes.POST("/clients/:id/activate", clientHandler.Activate)
	crmRoutes.POST("/clients/:id/deactivate", clientHandler.Deactivate)

	// Ledger domain (contracts, installments, entries, recurring expenses, audit)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")

	// Contract routes
	ledgerRoutes.POST("/contracts", contractHandler.Create)
	ledgerRoutes.GET("/contracts", contractHandler.List)
	ledgerRoutes.GET("/contracts/:id", contractHandler.GetByID)
	ledgerRoutes.PUT("/contracts/:id", contractHandler.Update)
	ledgerRoutes.DELETE("/contracts/:id", contractHandler.Delete)
	ledgerRoutes.POST("/contracts/:id/close", contractHandler.Close)
	ledgerRoutes.POST("/contracts/:id/reopen", contractHandler.Reopen)
	ledgerRoutes.POST("/contracts/:id/installments", contractHandler.AddInstallment)

	// Installment routes
	ledgerRoutes.GET("/installments/due", installmentHandler.ListDue)
	ledgerRoutes.POST("/installments/:id/pay", installmentHandler.Pay)
	ledgerRoutes.POST("/installments/:id/unpay", installmentHandler.Unpay)
	ledgerRoutes.DELETE("/installments/:id", installmentHandler.Delete)

	// Ledger entry routes
	ledgerRoutes.POST("/entries", entryHandler.Create)
	ledgerRoutes.GET("/entries", entryHandler.List)
	ledgerRoutes.GET("/entries/summary", entryHandler.MonthlySummary)
	ledgerRoutes.GET("/entries/:id", entryHandler.GetByID)
	ledgerRoutes.DELETE("/entries/:id", entryHandler.Delete)

	// Recurring expense routes
	ledgerRoutes.POST("/recurring-expenses", expenseHandler.Create)
	ledgerRoutes.GET("/recurring-expenses", expenseHandler.List)
	ledgerRoutes.POST("/recurring-expenses/sync", expenseHandler.Sync)
	ledgerRoutes.GET("/recurring-expenses/:id", expenseHandler.GetByID)
	ledgerRoutes.PUT("/recurring-expenses/:id", expenseHandler.Update)
	ledgerRoutes.POST("/recurring-expenses/:id/activate", expenseHandler.Activate)
	ledgerRoutes.POST("/recurring-expenses/:id/deactivate", expenseHandler.Deactivate)

	// Audit trail routes
	ledgerRoutes.GET("/audit", auditHandler.List)
	ledgerRoutes.GET("/audit/:entity_type/:entity_id", auditHandler.ListForEntity)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(crmRoutes).
		Register(ledgerRoutes).
		Register(systemRoutes)
	r.Setup()

	// Start HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
