package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	appcart "github.com/tungtungsport/storefront/internal/application/cart"
	appcatalog "github.com/tungtungsport/storefront/internal/application/catalog"
	appidentity "github.com/tungtungsport/storefront/internal/application/identity"
	apporder "github.com/tungtungsport/storefront/internal/application/order"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/infrastructure/auth"
	"github.com/tungtungsport/storefront/internal/infrastructure/cache"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/tungtungsport/storefront/internal/infrastructure/event"
	"github.com/tungtungsport/storefront/internal/infrastructure/logger"
	"github.com/tungtungsport/storefront/internal/infrastructure/persistence"
	"github.com/tungtungsport/storefront/internal/infrastructure/scheduler"
	"github.com/tungtungsport/storefront/internal/infrastructure/storage"
	"github.com/tungtungsport/storefront/internal/infrastructure/telemetry"
	"github.com/tungtungsport/storefront/internal/interfaces/http/handler"
	"github.com/tungtungsport/storefront/internal/interfaces/http/middleware"
	"github.com/tungtungsport/storefront/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/tungtungsport/storefront/docs"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront API
//	@version		1.0
//	@description	Sportswear storefront: catalog, cart, checkout, payment proofs, order lifecycle, returns and ratings.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

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

	ctx := context.Background()

	// Telemetry: traces, OTLP metrics, OTLP logs, profiling and Prometheus
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		log = loggerProvider.Bridge(log, zap.InfoLevel)
	}
	profiler, err := telemetry.StartProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Warn("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if profiler != nil {
			_ = profiler.Stop()
		}
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log export", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down metrics", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracing", zap.Error(err))
		}
	}()
	promMetrics := telemetry.NewPromMetrics("storefront")

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize database connection, SQL logged through zap
	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.NewDBTracing(cfg.Telemetry, "postgresql", log).Register(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Redis backs the token blacklist and checkout idempotency when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
			redisClient = nil
		} else {
			defer func() {
				_ = redisClient.Close()
			}()
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx, redisClient)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Payment proof storage: S3 behind a circuit breaker, memory for local runs
	var proofStorage apporder.ProofStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ProofStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize proof storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Failed to ensure proof bucket", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		proofStorage = storage.NewBreakerProofStorage(s3Storage, storage.DefaultBreakerSettings(), promMetrics, log)
		log.Info("Payment proof storage initialized", zap.String("bucket", s3Storage.Bucket()))
	} else {
		log.Warn("Object storage disabled, payment proofs are kept in memory")
		proofStorage = storage.NewMemoryProofStorage()
	}

	policy := order.Policy{
		ReturnWindow:      cfg.Storefront.ReturnWindow,
		AutoCompleteAfter: cfg.Storefront.AutoCompleteAfter,
	}

	// Initialize repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	favoriteRepo := persistence.NewGormFavoriteRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	proofRepo := persistence.NewGormPaymentProofRepository(db.DB)
	ratingRepo := persistence.NewGormRatingRepository(db.DB)
	returnRepo := persistence.NewGormReturnRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB).WithPolicy(policy)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(customerRepo, jwtService, blacklist, log)
	productService := appcatalog.NewProductService(productRepo, ratingRepo, log)
	favoriteService := appcatalog.NewFavoriteService(favoriteRepo, productRepo, log)
	cartService := appcart.NewCartService(cartRepo, productRepo, log)
	checkoutService := apporder.NewCheckoutService(txScope, orderRepo, productRepo, apporder.CheckoutConfig{
		VirtualAccountPrefix: cfg.Storefront.VirtualAccountPrefix,
		IdempotencyTTL:       cfg.Storefront.IdempotencyTTL,
		Policy:               policy,
	}, log)
	checkoutService.SetIdempotencyStore(idempotencyStore)
	orderService := apporder.NewOrderService(txScope, orderRepo, ratingRepo, policy, log)
	proofService := apporder.NewPaymentProofService(txScope, orderRepo, proofRepo, proofStorage, log)
	ratingService := apporder.NewRatingService(txScope, orderRepo, ratingRepo, policy, log)
	returnService := apporder.NewReturnService(txScope, orderRepo, returnRepo, policy, log)
	sweeper := apporder.NewAutoTransitionSweeper(orderRepo, policy, cfg.Scheduler.BatchSize, log)

	// Initialize event bus and handlers
	eventSerializer := event.NewEventSerializer()
	event.RegisterOrderEvents(eventSerializer)
	eventBus := event.NewInMemoryEventBus(log)

	orderMetrics, err := telemetry.NewOrderMetrics(meterProvider.Meter("storefront"), promMetrics)
	if err != nil {
		log.Fatal("Failed to create order metrics", zap.Error(err))
	}
	eventBus.Subscribe(orderMetrics)

	if cfg.RabbitMQ.Enabled {
		forwarder, err := event.DialAMQPForwarder(cfg.RabbitMQ, eventSerializer, promMetrics, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Error("Error closing RabbitMQ forwarder", zap.Error(err))
			}
		}()
		eventBus.Subscribe(event.NewIdempotentHandler(forwarder, idempotencyStore, log))
		log.Info("Order events forwarded to RabbitMQ",
			zap.String("exchange", cfg.RabbitMQ.Exchange),
			zap.Strings("event_types", forwarder.EventTypes()),
		)
	}

	// Start event bus
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	checkoutService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	proofService.SetEventPublisher(eventBus)
	ratingService.SetEventPublisher(eventBus)
	returnService.SetEventPublisher(eventBus)
	sweeper.SetEventPublisher(eventBus)

	// Initialize auto transition scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		sweepScheduler, err := scheduler.NewSweepScheduler(scheduler.NewSweepSchedulerConfig(cfg.Scheduler), sweeper, promMetrics, log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := sweepScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start sweep scheduler", zap.Error(err))
		}
		defer func() {
			if err := sweepScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sweep scheduler", zap.Error(err))
			}
		}()
		log.Info("Sweep scheduler started",
			zap.Duration("interval", cfg.Scheduler.SweepInterval),
			zap.Int("batch_size", cfg.Scheduler.BatchSize),
		)
	}

	// Initialize HTTP handlers
	checks := map[string]handler.Pinger{
		"database": handler.PingerFunc(func(context.Context) error { return db.Ping() }),
	}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Product:  handler.NewProductHandler(productService, ratingService),
		Cart:     handler.NewCartHandler(cartService),
		Favorite: handler.NewFavoriteHandler(favoriteService),
		Order: handler.NewOrderHandler(handler.OrderServices{
			Checkout: checkoutService,
			Orders:   orderService,
			Proofs:   proofService,
			Returns:  returnService,
			Ratings:  ratingService,
			Auth:     authService,
		}),
		Admin:  handler.NewAdminHandler(orderService, proofService, returnService),
		System: handler.NewSystemHandler(cfg.App.Name, version, checks),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine, err := router.NewEngine(router.EngineConfig{
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     cfg.Telemetry.Enabled,
		Logger:      log,
		Metrics:     promMetrics,
	})
	if err != nil {
		log.Fatal("Failed to configure HTTP engine", zap.Error(err))
	}
	if cfg.HTTP.RateLimitEnabled {
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Public endpoints skip authentication; everything else needs a bearer token
	basePath := router.NewRouter(engine).BasePath()
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:       jwtService,
		TokenBlacklist:   blacklist,
		SkipPaths:        router.PublicPaths(basePath),
		SkipPathPrefixes: router.PublicPathPrefixes(basePath),
		Logger:           log,
	})

	router.Mount(engine, router.MountConfig{
		Handlers:     handlers,
		Auth:         jwtMiddleware,
		RequireStaff: middleware.RequireStaff(),
		Swagger:      cfg.Swagger,
		Metrics:      promMetrics,
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
