package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/adapters/bundesbank"
	portsrepo "github.com/SscSPs/fx_reference_rates/internal/core/ports/repositories"
	"github.com/SscSPs/fx_reference_rates/internal/core/services"
	"github.com/SscSPs/fx_reference_rates/internal/events"
	"github.com/SscSPs/fx_reference_rates/internal/handlers"
	"github.com/SscSPs/fx_reference_rates/internal/middleware"
	"github.com/SscSPs/fx_reference_rates/internal/platform/config"
	"github.com/SscSPs/fx_reference_rates/internal/platform/metrics"
	"github.com/SscSPs/fx_reference_rates/internal/repositories/database/pgsql"
	"github.com/SscSPs/fx_reference_rates/internal/repositories/memory"
	"github.com/SscSPs/fx_reference_rates/internal/scheduler"
	"github.com/SscSPs/fx_reference_rates/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title FX Reference Rates API
// @version 1.0
// @description Daily EUR reference exchange rates from the Deutsche Bundesbank, with conversion into EUR.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logger.Warn("Invalid LOG_LEVEL, using INFO", slog.String("log_level", cfg.LogLevel))
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize rate store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize event publisher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", slog.String("error", err.Error()))
		}
	}()

	source := bundesbank.NewResilientClient(
		bundesbank.NewHTTPClient(bundesbank.ClientConfig{
			BaseURL:      cfg.BundesbankBaseURL,
			FormatSuffix: cfg.BundesbankFormatSuffix,
			Timeout:      cfg.BundesbankTimeout,
		}, m),
		bundesbank.ResilienceConfig{
			MaxConcurrent:   cfg.SourceMaxConcurrent,
			MaxWait:         cfg.SourceMaxWait,
			RetryAttempts:   cfg.SourceRetryAttempts,
			RetryBackoff:    cfg.SourceRetryInitial,
			RetryMaxBackoff: cfg.SourceRetryMax,
			Breaker: bundesbank.BreakerConfig{
				Name:             "bundesbank",
				FailureThreshold: cfg.BreakerFailureThreshold,
				OpenTimeout:      cfg.BreakerOpenTimeout,
				HalfOpenMaxCalls: cfg.BreakerHalfOpenMax,
			},
		},
		m,
	)

	serviceContainer := services.NewServiceContainer(cfg, repos, source, publisher, m)

	if cfg.RefreshEnabled {
		refresh, err := scheduler.NewRefreshScheduler(serviceContainer.Ingestion, cfg.RefreshCron, 10*time.Minute, logger)
		if err != nil {
			logger.Error("Failed to configure refresh scheduler", slog.String("error", err.Error()))
			os.Exit(1)
		}
		refresh.Start(ctx)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rateLimiter, err := middleware.NewLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT", slog.String("rate_limit", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, reg, middleware.RateLimit(rateLimiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore selects the rate store. PostgreSQL is migrated before use.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory rate store, data is lost on restart")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, database.PoolConfig{}, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if !cfg.KafkaEnabled {
		return events.NewNoopPublisher(logger), nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Publishing ingestion events to Kafka", slog.String("topic", cfg.KafkaTopic))
	return publisher, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
