package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	storagehttp "github.com/uniedit/storage-oss/internal/adapter/inbound/http/storage"
	jwtadapter "github.com/uniedit/storage-oss/internal/adapter/outbound/jwt"
	redisadapter "github.com/uniedit/storage-oss/internal/adapter/outbound/redis"
	s3adapter "github.com/uniedit/storage-oss/internal/adapter/outbound/s3"
	"github.com/uniedit/storage-oss/internal/domain/storage"
	"github.com/uniedit/storage-oss/internal/port/outbound"
	"github.com/uniedit/storage-oss/internal/shared/config"
	"github.com/uniedit/storage-oss/internal/shared/logger"
	"github.com/uniedit/storage-oss/internal/shared/metrics"
	"github.com/uniedit/storage-oss/internal/shared/middleware"
)

// App wires configuration, adapters and HTTP routes together.
type App struct {
	config    *config.Config
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics

	objectStorage outbound.ObjectStoragePort
	storageDomain *storage.Domain
	rateLimiter   outbound.RateLimiterPort
	validator     outbound.TokenValidatorPort

	cleanupFuncs []func()
}

// Option customizes the application.
type Option func(*App)

// WithObjectStorage replaces the S3 client, e.g. in tests.
func WithObjectStorage(s outbound.ObjectStoragePort) Option {
	return func(a *App) { a.objectStorage = s }
}

// WithRateLimiter replaces the Redis rate limiter.
func WithRateLimiter(l outbound.RateLimiterPort) Option {
	return func(a *App) { a.rateLimiter = l }
}

// WithZapLogger replaces the domain logger.
func WithZapLogger(l *zap.Logger) Option {
	return func(a *App) { a.zapLogger = l }
}

// New creates a new application instance.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger.New(&logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		}),
		registry:     prometheus.NewRegistry(),
		cleanupFuncs: make([]func(), 0),
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.zapLogger == nil {
		zapLog, err := logger.NewZapLogger(&logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		})
		if err != nil {
			return nil, fmt.Errorf("init zap logger: %w", err)
		}
		app.zapLogger = zapLog
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New("storage_oss", app.registry)

	app.initInfrastructure()
	app.initStorage()

	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

// initInfrastructure connects optional backing services.
func (a *App) initInfrastructure() {
	if a.config.Auth.JWTSecret != "" {
		a.validator = jwtadapter.NewValidator(a.config.Auth.JWTSecret)
	}

	if a.rateLimiter != nil || a.config.Redis.Address == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := redisadapter.NewClient(ctx, a.config.Redis.Address, a.config.Redis.Password, a.config.Redis.DB)
	if err != nil {
		a.zapLogger.Warn("Redis connection failed, continuing without rate limiting", zap.Error(err))
		return
	}
	a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = client.Close() })
	a.rateLimiter = redisadapter.NewRateLimiter(client)
}

// initStorage builds the storage domain. The S3 client itself is created on
// first use.
func (a *App) initStorage() {
	sc := a.config.Storage
	if !sc.Enabled {
		a.zapLogger.Info("Object storage disabled")
		return
	}

	if a.objectStorage == nil {
		a.objectStorage = s3adapter.NewLazyStorage(a.storageFactory())
	}

	collections := make(map[string]string, len(sc.Collections))
	for slug, col := range sc.Collections {
		collections[slug] = col.Prefix
	}

	a.storageDomain = storage.NewDomain(
		a.objectStorage,
		nil,
		nil,
		&storage.Config{
			ACL:          sc.ACL,
			CustomDomain: sc.CustomDomain,
			Endpoint:     sc.Endpoint,
			Region:       sc.Region,
			Bucket:       sc.Bucket,
			Secure:       sc.Secure,
			Collections:  collections,
		},
		a.zapLogger.Named("storage"),
	)
}

func (a *App) storageFactory() s3adapter.Factory {
	sc := a.config.Storage
	return func(ctx context.Context) (outbound.ObjectStoragePort, error) {
		region := sc.Region
		if region == "" {
			region = storage.DefaultRegion
		}

		client, err := s3adapter.NewClient(ctx, s3adapter.ClientConfig{
			Endpoint:        storage.EffectiveEndpoint(sc.Endpoint, sc.Region),
			Region:          region,
			AccessKeyID:     sc.AccessKeyID,
			AccessKeySecret: sc.AccessKeySecret,
			Secure:          sc.Secure,
			PathStyle:       sc.PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("init storage client: %w", err)
		}

		var store outbound.ObjectStoragePort = s3adapter.NewObjectStorage(client, sc.Bucket, a.metrics, a.zapLogger.Named("s3"))
		if sc.Breaker.Enabled {
			store = s3adapter.NewBreakerStorage(store, s3adapter.BreakerConfig{
				Name:             "oss:" + sc.Bucket,
				FailureThreshold: sc.Breaker.FailureThreshold,
				Timeout:          sc.Breaker.Timeout,
			}, a.zapLogger)
		}

		a.zapLogger.Info("Object storage client initialized",
			zap.String("bucket", sc.Bucket),
			zap.String("region", region),
		)
		return store, nil
	}
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowMethods = append(corsCfg.AllowMethods, http.MethodPut)
	if len(a.config.CORS.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = a.config.CORS.AllowOrigins
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.CORS(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return r
}

// registerRoutes registers the storage routes.
func (a *App) registerRoutes() {
	if a.storageDomain == nil {
		return
	}

	api := a.router.Group("/api")
	if a.validator != nil {
		api.Use(middleware.OptionalAuth(a.validator))
	}

	handler := storagehttp.NewHandler(a.storageDomain, a.zapLogger.Named("http"))

	if a.config.Storage.ClientUploads.Enabled {
		var extra []gin.HandlerFunc
		if a.rateLimiter != nil {
			extra = append(extra, middleware.RateLimit(a.rateLimiter, middleware.RateLimitConfig{
				Limit:  a.config.RateLimit.SignedURLLimit,
				Window: a.config.RateLimit.SignedURLWindow,
				Logger: a.logger,
			}))
		}
		handler.RegisterSignedURLRoute(api, extra...)
	}

	handler.RegisterStaticRoutes(api)
}

// Router returns the HTTP handler.
func (a *App) Router() *gin.Engine {
	return a.router
}

// StorageDomain returns the storage domain, or nil when storage is disabled.
// The upload pipeline obtains per-collection adapters from it.
func (a *App) StorageDomain() *storage.Domain {
	return a.storageDomain
}

// Stop releases resources held by the application.
func (a *App) Stop() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if a.zapLogger != nil {
		_ = a.zapLogger.Sync()
	}
}
