// Command notifier fans task events out to owners' live connections over
// Server-Sent Events (spec §4.4), enforcing a per-owner connection cap and
// a rolling delivery rate limit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/taskflow/coordination/internal/api"
	"github.com/taskflow/coordination/internal/auth"
	"github.com/taskflow/coordination/internal/broker"
	"github.com/taskflow/coordination/internal/config"
	"github.com/taskflow/coordination/internal/notifier"
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
	logger.Info("starting notifier")

	cfg := config.LoadNotifierConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("notifier: parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	ledger := notifier.NewRedisLedger(redisClient, cfg.StaleThreshold)

	backend := buildBroker(cfg.Broker, logger)
	defer backend.Close()

	registry := notifier.NewRegistry(cfg.MaxConnsPerOwner, cfg.RateLimitPerSec, cfg.RateLimitWindow, ledger, logger)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	health := api.NewHealthService()
	health.Register("redis", redisHealth{redisClient})
	health.Register("broker", brokerHealth{backend})

	subscriber := broker.NewSubscriber(logger, notifier.Routes(registry, cfg.Broker.PubsubName)...)

	router := chi.NewRouter()
	router.Use(api.RequestID, api.Logger(logger), api.Recovery(logger))
	router.Get("/health/live", api.LivenessHandler())
	router.Get("/health/ready", health.ReadinessHandler())
	subscriber.Mount(router)
	router.Get("/api/v1/notifications/stream", notifier.StreamHandler(registry, auth.StreamAuthenticator(verifier)))

	server := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tickLoop(gctx, cfg.HeartbeatInterval, registry.Heartbeat) })
	g.Go(func() error {
		return tickLoop(gctx, cfg.EvictionInterval, func() { registry.EvictStale(cfg.StaleThreshold) })
	})
	if cfg.Broker.Mode == "kafka" {
		g.Go(func() error { return subscriber.RunDirect(gctx, backend) })
	}
	g.Go(func() error {
		logger.Info("notifier listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("notifier: serve: %w", err)
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
	logger.Info("notifier stopped")
	return nil
}

func tickLoop(ctx context.Context, interval time.Duration, fn func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		}
	}
}

func buildBroker(cfg config.BrokerConfig, logger *slog.Logger) broker.Backend {
	if cfg.Mode != "kafka" || len(cfg.KafkaBrokers) == 0 {
		logger.Warn("notifier: broker running in noop mode", "mode", cfg.Mode)
		return broker.NewNoopBackend()
	}
	return broker.NewKafkaBackend(broker.DefaultKafkaConfig(cfg.KafkaBrokers, cfg.ConsumerGroup))
}

type brokerHealth struct{ backend broker.Backend }

func (b brokerHealth) Health(ctx context.Context) error { return b.backend.Healthy(ctx) }

type redisHealth struct{ client *redis.Client }

func (r redisHealth) Health(ctx context.Context) error { return r.client.Ping(ctx).Err() }

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
