// Command server runs the CarMarket HTTP API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carmarket/internal/app"
	"carmarket/internal/config"
	"carmarket/internal/middleware"
	"carmarket/internal/observability"
	"carmarket/internal/server"
	"carmarket/internal/store"

	"github.com/redis/go-redis/v9"
)

const serviceName = "carmarket-api"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.SetLogger(observability.NewLogger(os.Stdout, cfg.Env))

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1.0,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	core, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Redis backs the per-route rate limits; without it they fail open.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = store.NewRedisClient(cfg.RedisURL)
		if err != nil {
			observability.Logger.Warn("redis unavailable, rate limits disabled", slog.String("error", err.Error()))
			rdb = nil
		}
	}

	srv := server.NewServer(server.Deps{
		Config:    cfg,
		Store:     core.Store,
		Redis:     rdb,
		Metrics:   middleware.InitMetrics(serviceName),
		Auth:      core.Auth,
		Tokens:    core.Tokens,
		Listings:  core.Listing,
		Chat:      core.Chat,
		Community: core.Community,
		Assistant: core.Assistant,
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		observability.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			observability.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			observability.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
