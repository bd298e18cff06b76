package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cv-analyzer/config"
	"cv-analyzer/internal/analyzer"
	"cv-analyzer/internal/jobs"
	"cv-analyzer/internal/providers"
	"cv-analyzer/internal/storage"
	"cv-analyzer/internal/tracking"
	"cv-analyzer/internal/worker"
	"cv-analyzer/pkg/logger"
	"cv-analyzer/pkg/memorydb"
	"cv-analyzer/pkg/postgres"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.ServiceName+"-worker", cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := memorydb.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	store, err := storage.NewMinioStore(ctx, &cfg.Minio, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to object storage", zap.Error(err))
	}

	registry := providers.NewRegistry(&cfg.Provider, zlog)
	if len(registry.Names()) == 0 {
		zlog.Warn("no providers configured, every job will fail")
	}

	var recorder worker.RunRecorder = tracking.Disabled{}
	if cfg.Tracking.Enabled {
		db, err := postgres.NewDB(ctx, &cfg.Postgres)
		if err != nil {
			// Tracking is a side effect; run without it rather than crash.
			zlog.Error("failed to connect to tracking database, runs will not be recorded", zap.Error(err))
		} else {
			defer db.Close()
			rec, err := tracking.NewRecorder(ctx, db, cfg.Tracking.Experiment, zlog)
			if err != nil {
				zlog.Error("failed to initialize run recorder", zap.Error(err))
			} else {
				recorder = rec
			}
		}
	}

	tracker := jobs.NewTracker(redisClient, zlog)
	queue := jobs.NewQueue(redisClient, cfg.Redis.QueueName, zlog)
	an := analyzer.New(registry, zlog)

	w := worker.New(tracker, queue, store, an, recorder, &cfg.Worker, zlog)

	// Expose worker metrics on a side port.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil && err != http.ErrServerClosed {
			zlog.Error("metrics server failed", zap.Error(err))
		}
	}()

	if err := w.Run(ctx); err != nil {
		zlog.Error("worker exited with error", zap.Error(err))
		os.Exit(1)
	}
	zlog.Info("worker exited")
}
