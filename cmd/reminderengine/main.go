// Command reminderengine runs the Reminder Engine (spec §4.3): an
// in-memory min-heap of scheduled reminders, fired by a background tick
// and snapshotted to Postgres on a second tick.
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
	"github.com/taskflow/coordination/internal/reminder"
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
	logger.Info("starting reminderengine")

	cfg := config.LoadReminderConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPool(ctx, database.DefaultPostgresConfig(cfg.Database.URL))
	if err != nil {
		return fmt.Errorf("reminderengine: connect database: %w", err)
	}
	defer db.Close()

	backend := buildBroker(cfg.Broker, logger)
	defer backend.Close()
	pub := publisher.New(backend, logger)

	repo := reminder.NewRepository(db.Pool)
	engine := reminder.NewEngine(repo, pub, logger, cfg.FiringInterval, cfg.PersistInterval)

	if err := engine.Reload(ctx); err != nil {
		return fmt.Errorf("reminderengine: reload: %w", err)
	}

	health := api.NewHealthService()
	health.Register("database", db)
	health.Register("broker", brokerHealth{backend})

	subscriber := broker.NewSubscriber(logger, reminder.Routes(engine, cfg.Broker.PubsubName)...)

	router := chi.NewRouter()
	router.Use(api.RequestID, api.Logger(logger), api.Recovery(logger))
	router.Get("/health/live", api.LivenessHandler())
	router.Get("/health/ready", health.ReadinessHandler())
	subscriber.Mount(router)

	server := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	if cfg.Broker.Mode == "kafka" {
		g.Go(func() error { return subscriber.RunDirect(gctx, backend) })
	}
	g.Go(func() error {
		logger.Info("reminderengine listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("reminderengine: serve: %w", err)
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
	logger.Info("reminderengine stopped")
	return nil
}

func buildBroker(cfg config.BrokerConfig, logger *slog.Logger) broker.Backend {
	if cfg.Mode != "kafka" || len(cfg.KafkaBrokers) == 0 {
		logger.Warn("reminderengine: broker running in noop mode", "mode", cfg.Mode)
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
