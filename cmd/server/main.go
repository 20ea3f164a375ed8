package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	identityapp "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/identity"
	lendingapp "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/lending"
	notificationapp "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/notification"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/auth"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/cache"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/event"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/logger"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/migration"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/notification"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/persistence"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/persistence/models"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/telemetry"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/handler"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/middleware"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/router"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/migrations"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting asset lending service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log, telemetry.WithEnvironment(cfg.App.Env))
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		_ = tracerProvider.Shutdown(context.Background())
	}()

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.Driver), log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := prepareSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to prepare database schema", zap.Error(err))
	}

	// Redis is only dialled when a component is configured to use it
	var redisClient redis.UniversalClient
	if cfg.Loans.NotificationSink == "redis" || cfg.Loans.IdempotencyStore == "redis" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			_ = client.Close()
		}()
		redisClient = client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	assetRepo := persistence.NewGormAssetRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	policy, err := lending.ParseQuantityPolicy(cfg.Loans.QuantityPolicy)
	if err != nil {
		log.Fatal("Invalid quantity policy", zap.Error(err))
	}
	engine := lending.NewEngine(lending.WithPolicy(policy))

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, log)
	assetService := lendingapp.NewAssetService(assetRepo, loanRepo, txScope, log)
	loanService := lendingapp.NewLoanService(assetRepo, loanRepo, txScope, engine, log)
	loanService.SetBorrowerDirectory(identityapp.NewUserDirectory(userRepo))

	if created, err := userService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
		log.Fatal("Failed to create bootstrap administrator", zap.Error(err))
	} else if created {
		log.Info("Bootstrap administrator created", zap.String("username", cfg.Bootstrap.AdminUsername))
	}

	metrics := telemetry.NewMetrics(cfg.Metrics)
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to export connection pool metrics", zap.Error(err))
		}
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())

	sink, err := notification.NewSink(cfg.Loans, redisClient, log)
	if err != nil {
		log.Fatal("Failed to create notification sink", zap.Error(err))
	}
	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Loans, redisClient, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	idempotencyCfg := shared.DefaultIdempotencyConfig()
	idempotencyCfg.TTL = cfg.Loans.IdempotencyTTL
	notifier := event.NewIdempotentHandler("notifier",
		notificationapp.NewDispatcher(sink, log),
		idempotencyStore,
		log,
		event.WithIdempotencyConfig(idempotencyCfg),
		event.WithDeliveryRecorder(metrics),
	)
	eventBus.Subscribe(notifier)
	eventBus.Subscribe(metrics)

	log.Info("Event handlers registered",
		zap.Strings("notifier_events", notifier.EventTypes()),
		zap.Strings("metrics_events", metrics.EventTypes()),
		zap.String("notification_sink", cfg.Loans.NotificationSink),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	userService.SetEventPublisher(eventBus)
	assetService.SetEventPublisher(eventBus)
	loanService.SetEventPublisher(eventBus)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}

	httpEngine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := httpEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// RequestID must run first; the logger and span enricher read it.
	httpEngine.Use(middleware.RequestID())
	httpEngine.Use(logger.Recovery(log))
	httpEngine.Use(logger.GinMiddleware(log))
	httpEngine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	httpEngine.Use(middleware.SpanEnricher())
	if cfg.Metrics.Enabled {
		httpEngine.Use(middleware.HTTPMetrics(metrics))
	}
	var secureOpts []middleware.SecureOption
	if cfg.IsProduction() {
		secureOpts = append(secureOpts, middleware.WithHSTS(365*24*time.Hour))
	}
	httpEngine.Use(middleware.Secure(secureOpts...))
	httpEngine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	httpEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, db)
	httpEngine.GET("/health", systemHandler.Health)
	if cfg.Metrics.Enabled {
		httpEngine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
	defer loginLimiter.Stop()

	handlers := router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		User:   handler.NewUserHandler(userService),
		Loan:   handler.NewLoanHandler(loanService),
		Asset:  handler.NewAssetHandler(assetService),
		System: systemHandler,
	}
	guards := router.Guards{
		Authenticate: middleware.JWTAuthMiddleware(jwtService, log),
		LoginLimit:   middleware.RateLimit(loginLimiter),
	}
	router.NewRouter(httpEngine, router.WithAPIVersion("v1")).
		Register(router.APIGroups(handlers, guards)...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("quantity_policy", string(policy)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// prepareSchema brings the schema up to date. PostgreSQL runs the embedded
// migrations over a dedicated connection, since the migrator closes the
// connection it was given; SQLite is created from the GORM models.
func prepareSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == "sqlite" {
		return db.DB.AutoMigrate(models.AllModels()...)
	}

	conn, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(conn, migrations.FS, log)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer m.Close()
	return m.Up()
}
