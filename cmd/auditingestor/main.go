// Command auditingestor consumes every task event topic into a batched,
// idempotent audit trail and serves per-task history queries (spec §4.5).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/taskflow/coordination/internal/api"
	"github.com/taskflow/coordination/internal/audit"
	"github.com/taskflow/coordination/internal/broker"
	"github.com/taskflow/coordination/internal/config"
	"github.com/taskflow/coordination/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)
	logger.Info("starting auditingestor")

	cfg := config.LoadAuditConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPool(ctx, database.DefaultPostgresConfig(cfg.Database.URL))
	if err != nil {
		return fmt.Errorf("auditingestor: connect database: %w", err)
	}
	defer db.Close()

	backend := buildBroker(cfg.Broker, logger)
	defer backend.Close()

	repo := audit.NewRepository(db)
	buf := audit.NewBuffer(repo, cfg.BatchSize, logger)

	health := api.NewHealthService()
	health.Register("database", db)
	health.Register("broker", brokerHealth{backend})

	router := chi.NewRouter()
	router.Use(api.RequestID, api.Logger(logger), api.Recovery(logger))
	router.Get("/health/live", api.LivenessHandler())
	router.Get("/health/ready", health.ReadinessHandler())
	router.Get("/api/v1/audit/tasks/{task-id}", audit.QueryHandler(repo))
	subscriber := broker.NewSubscriber(logger, audit.Routes(buf, cfg.Broker.PubsubName)...)
	subscriber.Mount(router)

	server := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf.Run(gctx, cfg.FlushInterval)
		return nil
	})
	if cfg.Broker.Mode == "kafka" {
		g.Go(func() error { return subscriber.RunDirect(gctx, backend) })
	}
	g.Go(func() error {
		logger.Info("auditingestor listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("auditingestor: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("auditingestor stopped")
	return nil
}

func buildBroker(cfg config.BrokerConfig, logger *slog.Logger) broker.Backend {
	if cfg.Mode != "kafka" || len(cfg.KafkaBrokers) == 0 {
		logger.Warn("auditingestor: broker running in noop mode", "mode", cfg.Mode)
		return broker.NewNoopBackend()
	}
	return broker.NewKafkaBackend(broker.DefaultKafkaConfig(cfg.KafkaBrokers, cfg.ConsumerGroup))
}

type brokerHealth struct{ backend broker.Backend }

func (b brokerHealth) Health(ctx context.Context) error { return b.backend.Healthy(ctx) }

func logLevel() slog.Level {
	switch os.Getenv("TASKFLOW_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
