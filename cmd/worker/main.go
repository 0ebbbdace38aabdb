package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/queue"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
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

	// Initialize queue
	q, err := queue.New(cfg.Queue, logger)
	if err != nil {
		logger.ErrorWithErr("Failed to connect to queue", err)
		os.Exit(1)
	}
	defer q.Close()

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

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutting down worker...")
		cancel()
	}()

	agg := newAggregator(logger)
	logger.Info("Worker started, consuming usage events")

	if err := q.Consume(ctx, agg.handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithErr("Consumer stopped", err)
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	logger.Info("Worker stopped")
}

// aggregator turns usage events into Prometheus aggregates
type aggregator struct {
	logger *logging.Logger
}

func newAggregator(logger *logging.Logger) *aggregator {
	return &aggregator{logger: logger}
}

func (a *aggregator) handle(_ context.Context, evt *models.UsageEvent) error {
	switch evt.Type {
	case models.EventTokensCharged:
	case models.EventUsageCompleted, models.EventUsageFailed:
		// Terminal events carry tokens only for the request that paid
		if evt.Tokens > 0 {
			metrics.RecordConsumedTokens(string(evt.OutputType), evt.Tokens)
		}
	default:
		a.logger.WithField("event", evt.Type).Warn("Ignoring unknown usage event")
		return nil
	}

	a.logger.WithUserID(evt.UserID).
		WithVideoID(evt.VideoID).
		WithField("event", evt.Type).
		WithField("output_type", string(evt.OutputType)).
		Debug("Usage event processed")
	return nil
}
