// Command taskapi is the minimal Task CRUD collaborator (SPEC_FULL §1,
// §6): it owns the tasks table exclusively and is the sole event
// producer the four sidecar workers react to. Auth, chat and ORM code
// generation are explicit spec.md Non-goals.
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
	"github.com/taskflow/coordination/internal/broker"
	"github.com/taskflow/coordination/internal/config"
	"github.com/taskflow/coordination/internal/publisher"
	"github.com/taskflow/coordination/internal/task"
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
	logger.Info("starting taskapi")

	cfg := config.LoadTaskAPIConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPool(ctx, database.DefaultPostgresConfig(cfg.Database.URL))
	if err != nil {
		return fmt.Errorf("taskapi: connect database: %w", err)
	}
	defer db.Close()

	backend := buildBroker(cfg.Broker, logger)
	defer backend.Close()
	pub := publisher.New(backend, logger)

	repo := task.NewRepository(db.Pool)
	service := task.NewService(repo, pub)
	handler := task.NewHandler(service)

	health := api.NewHealthService()
	health.Register("database", db)
	health.Register("broker", brokerHealth{backend})

	router := chi.NewRouter()
	router.Use(api.RequestID, api.Logger(logger), api.Recovery(logger))
	router.Get("/health/live", api.LivenessHandler())
	router.Get("/health/ready", health.ReadinessHandler())
	broker.NewSubscriber(logger).Mount(router)
	router.Mount("/api/v1/tasks", handler.Routes())

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("taskapi listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("taskapi: serve: %w", err)
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
	logger.Info("taskapi stopped")
	return nil
}

func buildBroker(cfg config.BrokerConfig, logger *slog.Logger) broker.Backend {
	if cfg.Mode != "kafka" || len(cfg.KafkaBrokers) == 0 {
		logger.Warn("taskapi: broker running in noop mode", "mode", cfg.Mode)
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
