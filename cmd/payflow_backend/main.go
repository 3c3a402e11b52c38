package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/payflow_backend/internal/adapters/audit"
	"github.com/SscSPs/payflow_backend/internal/adapters/authorization"
	"github.com/SscSPs/payflow_backend/internal/adapters/cache"
	"github.com/SscSPs/payflow_backend/internal/adapters/notification"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
	"github.com/SscSPs/payflow_backend/internal/core/services"
	"github.com/SscSPs/payflow_backend/internal/handlers"
	"github.com/SscSPs/payflow_backend/internal/middleware"
	"github.com/SscSPs/payflow_backend/internal/platform/config"
	"github.com/SscSPs/payflow_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/payflow_backend/internal/repositories/memory"
	"github.com/SscSPs/payflow_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

// @title PayFlow Backend API
// @version 1.0
// @description Accounts, transfers, deposits, withdrawals, refunds and reversals.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	var redisClient *redis.Client
	var idempotencyStore portsrepo.IdempotencyStore = cache.NewMemoryIdempotencyStore()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Error closing redis client", slog.String("error", err.Error()))
			}
		}()
		idempotencyStore = cache.NewRedisIdempotencyStore(redisClient, "")
		logger.Info("Using redis for idempotency keys and rate limits")
	}

	loginLimiter, err := middleware.NewLimiter(cfg.LoginRateLimit, redisClient, "payflow:login")
	if err != nil {
		logger.Error("Failed to create login rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	auditSink, closeAudit := setupAudit(cfg, logger)
	defer closeAudit()

	metrics := services.NewMetrics(nil)

	gate := authorization.NewClient(authorization.Options{
		URL:                 cfg.AuthorizerURL,
		Timeout:             cfg.AuthorizerTimeout,
		AvailabilityTimeout: cfg.AuthorizerAvailabilityTimeout,
		BreakerFailures:     cfg.AuthorizerBreakerFailures,
		BreakerOpenTimeout:  cfg.AuthorizerBreakerOpenTimeout,
		OnDecision:          metrics.ObserveGateDecision,
	}, nil)

	dispatcher := services.NewNotificationDispatcher(
		notification.NewClient(cfg.NotifierURL, cfg.NotifierTimeout, nil),
		services.DispatcherOptions{
			Workers:     cfg.NotifierWorkers,
			QueueSize:   cfg.NotifierQueueSize,
			MaxAttempts: cfg.NotifierMaxAttempts,
			Metrics:     metrics,
			Logger:      logger,
		},
	)
	dispatcher.Start(context.WithoutCancel(ctx))

	container := services.NewServiceContainer(cfg, repos, services.Dependencies{
		Gate:       gate,
		Dispatcher: dispatcher,
		Audit:      auditSink,
		Metrics:    metrics,
	})

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		container.Sweeper.Run(ctx)
	}()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.SecurityHeaders(cfg.IsProduction),
		cors.New(corsConfig(cfg)),
		middleware.Metrics(),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, handlers.RouterDeps{
		IdempotencyStore: idempotencyStore,
		LoginLimiter:     loginLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	<-sweeperDone
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn("Notification queue not drained before shutdown", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
}

// setupStorage builds the repositories for the configured driver. The returned func releases them.
func setupStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{SkipPing: !cfg.EnableDBCheck})
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations"); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// setupAudit returns the configured audit sink and its close func.
func setupAudit(cfg *config.Config, logger *slog.Logger) (portssvc.AuditSink, func()) {
	logSink := audit.NewLogSink(logger)
	if cfg.AuditSink != config.AuditSinkKafka {
		return logSink, func() {}
	}

	sink := audit.NewKafkaSink(audit.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaAuditTopic, logger), logSink)
	logger.Info("Publishing audit events to kafka", slog.String("topic", cfg.KafkaAuditTopic))
	return sink, func() {
		if err := sink.Close(); err != nil {
			logger.Error("Error closing kafka audit writer", slog.String("error", err.Error()))
		}
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = cfg.CORSAllowedOrigins
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", middleware.IdempotencyKeyHeader)
	c.ExposeHeaders = []string{middleware.RequestIDHeader, middleware.IdempotentReplayHeader}
	return c
}
