package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storeline/backend/internal/application/catalog"
	eventapp "github.com/storeline/backend/internal/application/event"
	financeapp "github.com/storeline/backend/internal/application/finance"
	identityapp "github.com/storeline/backend/internal/application/identity"
	inventoryapp "github.com/storeline/backend/internal/application/inventory"
	partnerapp "github.com/storeline/backend/internal/application/partner"
	reportapp "github.com/storeline/backend/internal/application/report"
	tradeapp "github.com/storeline/backend/internal/application/trade"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/auth"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/infrastructure/event"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/infrastructure/persistence"
	"github.com/storeline/backend/internal/infrastructure/session"
	"github.com/storeline/backend/internal/infrastructure/telemetry"
	"github.com/storeline/backend/internal/interfaces/http/handler"
	"github.com/storeline/backend/internal/interfaces/http/middleware"
	"github.com/storeline/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log := logger.New(logCfg)

	ctx := context.Background()

	// OTLP log bridge; a no-op unless telemetry.logs_enabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log = logProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Storeline backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	metrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter("storeline"))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	defer func() {
		shutdownCtx := context.Background()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log exporter", zap.Error(err))
		}
	}()

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, telemetry.DBPlugins(cfg.Telemetry, cfg.Database.Driver)...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		// sqlite is a development target without SQL migrations
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	roleRepo := persistence.NewGormRoleRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	if err := identityapp.EnsureCatalog(ctx, roleRepo, log); err != nil {
		log.Fatal("Failed to seed permission catalog", zap.Error(err))
	}

	// Event bus: handlers run after commit
	eventBus := event.NewInMemoryEventBus(log)
	stockAlerts := inventoryapp.NewStockBelowThresholdHandler(log)
	documentMetrics := eventapp.NewDocumentMetricsHandler(metrics, log)
	eventBus.Subscribe(stockAlerts)
	eventBus.Subscribe(documentMetrics)
	log.Info("Event handlers registered",
		zap.Strings("stock_alert_events", stockAlerts.EventTypes()),
		zap.Strings("document_metric_events", documentMetrics.EventTypes()),
	)

	unit := persistence.NewGormUnitOfWork(db.DB, cfg.Sequence, cfg.Inventory,
		persistence.WithEventPublisher(eventBus),
		persistence.WithRetryObserver(func(ctx context.Context, kind trade.DocumentKind, attempt int, err error) {
			metrics.RecordSequenceRetry(ctx, string(kind))
		}),
	)

	// Sessions and token revocation share Redis when it is enabled
	sessions, redisClient := session.Backend(ctx, cfg.Redis, log)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
	}

	// Application services
	discounts, err := tradeapp.NewDiscountPolicy(cfg.Sales.RoundingPlaces, cfg.Sales.RoundingMode, cfg.Sales.MaxDiscountPercentage)
	if err != nil {
		log.Fatal("Invalid sales configuration", zap.Error(err))
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	guard := identityapp.NewPermissionGuard(roleRepo)
	resolver := identityapp.NewTenantResolver(tenantRepo, sessions)
	authService := identityapp.NewAuthService(unit, guard, jwtService, blacklist, sessions, cfg.Session.TTL)
	saleService := tradeapp.NewSaleService(unit, discounts).WithStockRejections(metrics)
	returnService := tradeapp.NewReturnService(unit).WithStockRejections(metrics)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, resolver, cfg.Session),
		Tenant:    handler.NewTenantHandler(identityapp.NewTenantService(tenantRepo)),
		Product:   handler.NewProductHandler(catalogapp.NewProductService(unit)),
		Inventory: handler.NewInventoryHandler(inventoryapp.NewInventoryService(unit)),
		Sale:      handler.NewSaleHandler(saleService),
		Purchase:  handler.NewPurchaseHandler(tradeapp.NewPurchaseService(unit)),
		Return:    handler.NewReturnHandler(returnService),
		Supplier:  handler.NewSupplierHandler(partnerapp.NewSupplierService(unit)),
		Expense:   handler.NewExpenseHandler(financeapp.NewExpenseService(unit)),
		Report:    handler.NewReportHandler(reportapp.NewReportService(unit)),
		Health:    handler.NewHealthHandler(db),
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	httpMetrics, err := middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	})
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.Telemetry.ServiceName),
		httpMetrics,
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Profiling(profiler.IsEnabled()),
	)

	appCtx, stopApp := context.WithCancel(ctx)
	defer stopApp()

	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateWindow)
	go authLimiter.RunCleanup(appCtx)

	r := router.NewRouter(engine, handlers, router.Security{
		Authn:       middleware.JWTConfig{Validator: jwtService, Blacklist: blacklist},
		Tenant:      middleware.TenantConfig{Resolver: resolver, CookieName: cfg.Session.CookieName},
		Authorizer:  guard,
		AuthLimiter: authLimiter,
	})
	if err := r.Setup(); err != nil {
		log.Fatal("Failed to register routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
