package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/auth"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/cache"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/database"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/ledger"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/llm"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metering"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/middleware"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/queue"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/storage"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/tracing"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/transcript"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/webhook"
)

// API holds the dependencies of the HTTP handlers
type API struct {
	transcripts    *transcript.Service
	metering       *metering.Coordinator
	ledger         ledger.Ledger
	llm            *llm.Registry
	verifier       auth.Verifier
	limiter        *middleware.RateLimiter
	allowedOrigins []string
	checks         map[string]func(context.Context) error
	logger         *logging.Logger
	production     bool
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing
	tracer, err := tracing.Setup(cfg.Tracing.Enabled, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		logger.WithError(err).Warn("Tracing disabled")
	} else {
		defer tracer.Close()
	}

	api := &API{
		allowedOrigins: cfg.Server.AllowedOrigins,
		checks:         make(map[string]func(context.Context) error),
		logger:         logger,
		production:     cfg.IsProduction(),
	}

	// Initialize transcript cache
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := cache.NewRedisStore(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Transcript.TTL())
		if err != nil {
			logger.ErrorWithErr("Failed to connect to Redis", err)
			os.Exit(1)
		}
		defer rs.Close()
		api.checks["redis"] = rs.Ping
		store = rs
	default:
		store = cache.NewMemoryStore(cfg.Transcript.TTL(),
			cache.WithSweepInterval(cfg.Cache.SweepInterval),
			cache.WithEvictionHook(func(key string) {
				metrics.RecordCacheEvictions(1)
				logger.WithField("cache_key", key).Debug("Transcript evicted")
			}),
		)
	}
	logger.WithField("backend", cfg.Cache.Backend).
		WithField("ttl", cfg.Transcript.TTL().String()).
		Info("Transcript cache configured")

	// Initialize transcript service
	opts := []transcript.Option{
		transcript.WithLogger(logger),
		transcript.WithCacheType(cfg.Cache.Backend),
	}
	if cfg.Storage.Enabled {
		archive, err := storage.New(cfg.Storage)
		if err != nil {
			logger.ErrorWithErr("Failed to initialize transcript archive", err)
			os.Exit(1)
		}
		opts = append(opts, transcript.WithArchive(archive, cfg.Storage.ReadThrough))
	}
	api.transcripts = transcript.NewService(store, transcript.NewRapidAPIFetcher(cfg.Transcript), opts...)

	// Initialize ledger
	if cfg.Database.Enabled {
		db, err := database.New(cfg.Database)
		if err != nil {
			logger.ErrorWithErr("Failed to connect to database", err)
			os.Exit(1)
		}
		defer db.Close()

		if cfg.Database.EnsureSchema {
			if err := db.EnsureSchema(ctx); err != nil {
				logger.ErrorWithErr("Failed to create schema", err)
				os.Exit(1)
			}
		}
		api.checks["database"] = db.Health
		api.ledger = database.NewRepository(db)
	} else {
		mem := ledger.NewMemory()
		mem.SetDefaultBalance(cfg.Tokens.InitialBalance)
		api.ledger = mem
		logger.Warn("Database disabled, token balances are kept in memory")
	}

	// Initialize usage event queue
	meterOpts := []metering.Option{metering.WithLogger(logger)}
	if cfg.Queue.Enabled {
		q, err := queue.New(cfg.Queue, logger)
		if err != nil {
			logger.ErrorWithErr("Failed to connect to queue", err)
			os.Exit(1)
		}
		defer q.Close()
		meterOpts = append(meterOpts, metering.WithPublisher(q))
	}
	if cfg.Webhook.Enabled {
		notifier := webhook.NewNotifier(cfg.Webhook, logger)
		defer notifier.Wait()
		meterOpts = append(meterOpts, metering.WithPublisher(notifier))
	}
	api.metering = metering.NewCoordinator(api.ledger, cfg.Tokens.PerVideo, meterOpts...)

	api.llm = llm.NewRegistryFromConfig(cfg.LLM, logger)
	logger.Infof("Using LLM provider: %s", api.llm.CurrentName())

	api.verifier, err = auth.NewVerifier(cfg.Auth)
	if err != nil {
		logger.ErrorWithErr("Failed to initialize authentication", err)
		os.Exit(1)
	}

	if cfg.RateLimit.Enabled {
		api.limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		go api.limiter.Cleanup(ctx, time.Minute)
	}

	// Start metrics server
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.ErrorWithErr("Metrics server failed", err)
			}
		}()
	}

	router := setupRouter(api)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr("Failed to start server", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr("Server forced to shutdown", err)
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	cancel()

	logger.Info("Server stopped")
}

// configPath returns CONFIG_PATH, or config.yaml when present. An empty
// path loads defaults and environment only.
func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}
