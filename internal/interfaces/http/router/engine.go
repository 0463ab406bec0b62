package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tungtungsport/storefront/internal/infrastructure/config"
	"github.com/tungtungsport/storefront/internal/infrastructure/logger"
	"github.com/tungtungsport/storefront/internal/infrastructure/telemetry"
	"github.com/tungtungsport/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig configures the engine-wide middleware chain
type EngineConfig struct {
	HTTP        config.HTTPConfig
	ServiceName string
	Tracing     bool
	Logger      *zap.Logger
	Metrics     *telemetry.PromMetrics
}

// NewEngine creates a gin engine with the global middleware chain installed
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return nil, err
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
	}))
	if cfg.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Metrics))
	}

	return engine, nil
}

// MountConfig describes what Mount puts on the engine
type MountConfig struct {
	Handlers     Handlers
	Auth         gin.HandlerFunc
	RequireStaff gin.HandlerFunc
	Swagger      config.SwaggerConfig
	Metrics      *telemetry.PromMetrics
	APIVersion   string
}

// Mount registers the operational endpoints and the versioned storefront API
func Mount(engine *gin.Engine, cfg MountConfig) *Router {
	engine.GET("/health", cfg.Handlers.System.Health)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, cfg.Auth),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	var opts []RouterOption
	if cfg.APIVersion != "" {
		opts = append(opts, WithAPIVersion(cfg.APIVersion))
	}
	r := NewRouter(engine, opts...)
	if cfg.Auth != nil {
		r.Use(cfg.Auth)
	}
	r.Use(middleware.SpanEnricher())
	for _, group := range DomainGroups(cfg.Handlers, cfg.RequireStaff) {
		r.Register(group)
	}
	r.Setup()
	return r
}
