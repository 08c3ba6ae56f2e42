package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itmade/itmade-api/config"
	"github.com/itmade/itmade-api/internal/handlers"
	"github.com/itmade/itmade-api/internal/middleware"
	"github.com/itmade/itmade-api/internal/services"
	"github.com/itmade/itmade-api/pkg/alerting"
	"github.com/itmade/itmade-api/pkg/httpclient"
	"github.com/itmade/itmade-api/pkg/logger"
	"github.com/itmade/itmade-api/pkg/mailer/provider"
	"github.com/itmade/itmade-api/pkg/metrics"
	"github.com/itmade/itmade-api/pkg/profiling"
	"github.com/itmade/itmade-api/pkg/ratelimit"
	"github.com/itmade/itmade-api/pkg/recaptcha"
	"github.com/itmade/itmade-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Dev server of the site, allowed by CORS outside production
const devOrigin = "http://localhost:4200"

// routerDeps groups everything the HTTP router is built from
type routerDeps struct {
	cfg           *config.Config
	contact       services.ContactServiceInterface
	quotaStore    ratelimit.Store
	apiLimiter    *middleware.RateLimiter
	logsHandler   *handlers.LogsHandler
	healthHandler *handlers.HealthHandler
	siteHandler   *handlers.SiteHandler
}

// corsOrigins returns the allowed origins, adding the local dev server outside production
func corsOrigins(cfg *config.Config) []string {
	origins := append([]string{}, cfg.Server.AllowedOrigins...)
	if !cfg.IsProduction() {
		origins = append(origins, devOrigin)
	}
	return origins
}

// newRouter registers middleware and routes. Anything not under /api is served
// from the static site directory.
func newRouter(d routerDeps) (*gin.Engine, error) {
	cfg := d.cfg

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.SiteHeadersMiddleware(cfg.IsProduction()))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ObservabilityMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins(cfg),
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}))

	contactHandler := handlers.NewContactHandler(d.contact, cfg)

	api := router.Group("/api")
	api.Use(middleware.SecurityHeadersMiddleware())
	api.Use(d.apiLimiter.Middleware())

	// the quota sees every request, oversized ones included
	api.POST("/contact/send-email",
		middleware.ContactQuota(d.quotaStore, middleware.ContactQuotaConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		middleware.BodySizeLimitMiddleware(cfg.Contact.MaxBodyBytes),
		contactHandler.SendEmail)
	api.GET("/contact/health", contactHandler.Health)
	if !cfg.IsProduction() {
		api.GET("/test-config", contactHandler.TestConfig)
	}

	// Utility endpoints
	api.GET("/healthcheck", d.healthHandler.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	api.POST("/logs", middleware.BodySizeLimitMiddleware(1*1024*1024), d.logsHandler.ReceiveFrontendLogs)

	router.NoRoute(d.siteHandler.Serve)

	return router, nil
}

// newQuotaStore returns the contact quota store: Redis with an in-memory
// fallback when REDIS_URL is set, memory alone otherwise
func newQuotaStore(cfg config.RateLimitConfig) (ratelimit.Store, func(), error) {
	memory := ratelimit.NewMemoryStore(time.Minute)
	if cfg.RedisURL == "" {
		return memory, func() {}, nil
	}

	client, err := ratelimit.Open(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	redisStore := ratelimit.NewRedisStore(client, "itmade:contact:")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if pingErr := redisStore.Ping(ctx); pingErr != nil {
		logger.Warn("Redis unreachable at startup, contact quota uses memory until it recovers", zap.Error(pingErr))
	}

	closeFn := func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error("Failed to close Redis client", zap.Error(closeErr))
		}
	}
	return ratelimit.NewFallbackStore(redisStore, memory), closeFn, nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ITMade API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("transport", cfg.Email.Transport),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	flushAlerts, err := alerting.Init(cfg.Sentry, cfg.Server.AppEnv, cfg.Observability.ServiceVersion)
	if err != nil {
		logger.Fatal("Failed to initialize Sentry", zap.Error(err))
	}
	defer flushAlerts()

	// Start infrastructure metrics collection
	stopMetrics := make(chan struct{})
	defer close(stopMetrics)
	metrics.RecordInfrastructureMetrics(stopMetrics)

	// Outbound email transport. Missing credentials are reported per request.
	transport, err := provider.New(cfg.Email, cfg.Contact.BreakerEnabled)
	if err != nil {
		logger.Fatal("Failed to initialize email transport", zap.Error(err))
	}
	if !transport.Configured() {
		logger.Warn("Email transport is not configured, submissions will fail",
			zap.String("transport", transport.Name()),
			zap.Any("credentials", cfg.Email.CredentialStatus()))
	}

	captcha := recaptcha.NewVerifier(cfg.ReCAPTCHA.SecretKey, httpclient.NewStandardClient())
	contactService := services.NewContactService(cfg, transport, captcha)

	quotaStore, closeQuotaStore, err := newQuotaStore(cfg.RateLimit)
	if err != nil {
		logger.Fatal("Failed to initialize contact quota store", zap.Error(err))
	}
	defer closeQuotaStore()

	// SECURITY: general limiter for the whole API, 100 req/sec with a burst of 200
	apiLimiter := middleware.NewRateLimiter(100, 200)
	defer apiLimiter.Stop()

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router, err := newRouter(routerDeps{
		cfg:           cfg,
		contact:       contactService,
		quotaStore:    quotaStore,
		apiLimiter:    apiLimiter,
		logsHandler:   handlers.NewLogsHandler(logger.RotatingFile(cfg.Logging.Dir, "frontend.log")),
		healthHandler: handlers.NewHealthHandler(),
		siteHandler:   handlers.NewSiteHandler(cfg.Server.StaticDir),
	})
	if err != nil {
		logger.Fatal("Failed to set up router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started",
			zap.String("port", cfg.Server.Port),
			zap.String("static_dir", cfg.Server.StaticDir))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// In-flight sends may take up to the send timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Contact.SendTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
