// Command recurringgen materializes the next child task instance for each
// recurring task template on a fixed tick (spec §4.2). It never writes to
// the tasks table directly; child creation goes through the Task API so
// that service remains the sole store owner.
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
	"github.com/taskflow/coordination/internal/config"
	"github.com/taskflow/coordination/internal/recurring"
	"github.com/taskflow/coordination/internal/taskapiclient"
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
	logger.Info("starting recurringgen")

	cfg := config.LoadRecurringConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPool(ctx, database.DefaultPostgresConfig(cfg.Database.URL))
	if err != nil {
		return fmt.Errorf("recurringgen: connect database: %w", err)
	}
	defer db.Close()

	repo := recurring.NewRepository(db.Pool)
	client := taskapiclient.New(cfg.TaskAPIBaseURL)
	generator := recurring.NewGenerator(repo, client, logger, cfg.TickInterval)

	health := api.NewHealthService()
	health.Register("database", db)

	router := chi.NewRouter()
	router.Use(api.RequestID, api.Logger(logger), api.Recovery(logger))
	router.Get("/health/live", api.LivenessHandler())
	router.Get("/health/ready", health.ReadinessHandler())

	server := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return generator.Run(gctx) })
	g.Go(func() error {
		logger.Info("recurringgen listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("recurringgen: serve: %w", err)
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
	logger.Info("recurringgen stopped")
	return nil
}

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
