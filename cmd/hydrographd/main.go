// Command hydrographd serves hydrograph runs from a Kafka request topic and
// over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-hydrograph-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-hydrograph-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-hydrograph-service/internal/adapter/memcache"
	"github.com/couchcryptid/storm-hydrograph-service/internal/adapter/postgres"
	redisadapter "github.com/couchcryptid/storm-hydrograph-service/internal/adapter/redis"
	"github.com/couchcryptid/storm-hydrograph-service/internal/config"
	"github.com/couchcryptid/storm-hydrograph-service/internal/observability"
	"github.com/couchcryptid/storm-hydrograph-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Result cache: Redis when configured, otherwise in-process.
	var cache pipeline.ResultCache
	switch {
	case cfg.RedisURL != "":
		rc, err := redisadapter.New(ctx, cfg.RedisURL, cfg.ResultCacheTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		cache = rc
		logger.Info("redis result cache enabled", "ttl", cfg.ResultCacheTTL)
	case cfg.ResultCacheSize > 0:
		cache = memcache.New(cfg.ResultCacheSize, cfg.ResultCacheTTL)
		logger.Info("in-process result cache enabled", "size", cfg.ResultCacheSize, "ttl", cfg.ResultCacheTTL)
	default:
		logger.Info("result cache disabled")
	}
	if cache != nil {
		metrics.CacheEnabled.Set(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	loader := pipeline.MultiLoader{writer}
	if cfg.DatabaseURL != "" {
		archive, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		defer archive.Close()
		loader = append(loader, archive)
		logger.Info("postgres archive enabled")
	}

	engine := pipeline.NewEngine(cfg.Settings(), cfg.Workers, logger, metrics)
	transformer := pipeline.NewTransformer(engine, cache, logger, metrics)

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, transformer, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
