package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcatalog "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/catalog"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/checkout"
	appidentity "github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/identity"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/orders"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/application/session"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/auth"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/cache"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/config"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/logger"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/persistence"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/storage"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/infrastructure/telemetry"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/handler"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/middleware"
	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// sessionSweepInterval is how often idle cart sessions are dropped from memory
const sessionSweepInterval = time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	// Zap output is teed into OTLP logs when telemetry is on
	logsProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		Level:             logger.ParseLevel(cfg.Log.Level),
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = logsProvider.Attach(log)

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		Contention:      cfg.Telemetry.ProfileContention,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.Enabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	checkoutMetrics, err := telemetry.NewCheckoutMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create checkout metrics", zap.Error(err))
	}

	// Database with zap-backed GORM logger and query tracing
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Database.SlowQueryThreshold,
		DBName:          cfg.Database.DBName,
	}, log)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog, dbTracing)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Durable cart storage
	cartStorage, err := cache.NewCartStorageFactory(cfg.Cart, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStorage()
	if err != nil {
		log.Fatal("Failed to create cart storage", zap.Error(err))
	}
	defer func() {
		if err := cartStorage.Close(); err != nil {
			log.Error("Error closing cart storage", zap.Error(err))
		}
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	var catalogOpts []appcatalog.Option
	if cfg.Storage.Enabled {
		imageStore, err := storage.NewS3ImageStore(&cfg.Storage, storage.WithLogger(log.Named("storage")))
		if err != nil {
			log.Fatal("Failed to create image storage", zap.Error(err))
		}
		bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
		if err := imageStore.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Image bucket not ready", zap.Error(err))
		}
		cancelBucket()
		catalogOpts = append(catalogOpts, appcatalog.WithImageStore(imageStore))
		log.Info("Product image uploads enabled", zap.String("bucket", imageStore.Bucket()))
	}
	catalogService := appcatalog.NewService(productRepo, categoryRepo, catalogOpts...)
	identityService := appidentity.NewService(userRepo)
	orderService := orders.NewService(orderRepo)
	submitter := checkout.NewOrderSubmitter(orderRepo, checkout.SubmitterConfig{
		BreakerMaxFailures: cfg.Order.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.Order.BreakerOpenTimeout,
	}, checkout.WithSubmitterLogger(log), checkout.WithSubmitterMetrics(checkoutMetrics))
	checkoutService := checkout.NewService(submitter, log)

	// Cart sessions stream their dispatch output through the hub
	hub := handler.NewStreamHub(
		handler.WithStreamLogger(log.Named("stream")),
		handler.WithStreamHeartbeat(cfg.HTTP.SSEHeartbeat),
	)
	sessions := session.NewManager(cartStorage, checkout.Config{
		StoreName:           cfg.Dispatch.StoreName,
		ChannelBaseURL:      cfg.Dispatch.ChannelBaseURL,
		MinChannelDigits:    cfg.Dispatch.MinChannelDigits,
		ConfirmDelay:        cfg.Dispatch.ConfirmDelay,
		ReleaseDelay:        cfg.Dispatch.ReleaseDelay,
		BulkSettleDelay:     cfg.Dispatch.BulkSettleDelay,
		BulkInterGroupDelay: cfg.Dispatch.BulkInterGroupDelay,
		BulkFinalDelay:      cfg.Dispatch.BulkFinalDelay,
	}, func(id string) session.Sink { return hub.Sink(id) },
		session.WithLogger(log),
		session.WithKeyPrefix(cfg.Cart.KeyPrefix),
		session.WithDispatcherOptions(checkout.WithDispatchMetrics(checkoutMetrics)),
	)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sessions.Run(sweepCtx, sessionSweepInterval)

	// HTTP engine and middleware chain
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}
	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	if profiler.Enabled() {
		engine.Use(middleware.ProfileLabels())
	}
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		middleware.SpanEnricher(),
		httpMetrics,
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.Secure(middleware.DefaultSecurityConfig()),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	checks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if pinger, ok := cartStorage.(interface{ Ping(context.Context) error }); ok {
		checks["redis"] = pinger.Ping
	}

	r := router.NewRouter(engine)
	router.RegisterStorefront(r, router.Handlers{
		System:   handler.NewSystemHandler(cfg.App.Name, checks),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Cart:     handler.NewCartHandler(sessions, catalogService),
		Checkout: handler.NewCheckoutHandler(sessions, checkoutService, identityService, hub),
		Account:  handler.NewAccountHandler(identityService, orderService),
		Seller:   handler.NewSellerHandler(catalogService),
	}, router.Guards{
		OptionalAuth:  middleware.OptionalAuth(jwtService),
		RequireAuth:   middleware.RequireAuth(jwtService),
		RequireSeller: middleware.RequireSeller(identityService),
	})
	r.Setup()
	for group, routes := range r.Routes() {
		log.Debug("Routes registered", zap.String("group", group), zap.Strings("routes", routes))
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// Streams never end on their own, so close them before draining requests
	hub.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopSweep()
	sessions.Close()

	if err := meterProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := logsProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
