package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cv-analyzer/config"
	"cv-analyzer/internal/handlers"
	"cv-analyzer/internal/jobs"
	"cv-analyzer/internal/middleware"
	"cv-analyzer/internal/services"
	"cv-analyzer/internal/storage"
	"cv-analyzer/pkg/logger"
	"cv-analyzer/pkg/memorydb"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.ServiceName+"-api", cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	redisClient, err := memorydb.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	store, err := storage.NewMinioStore(ctx, &cfg.Minio, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to object storage", zap.Error(err))
	}

	tracker := jobs.NewTracker(redisClient, zlog)
	queue := jobs.NewQueue(redisClient, cfg.Redis.QueueName, zlog)

	cvService := services.NewCVService(store, &cfg.Upload, zlog)
	analysisService := services.NewAnalysisService(cvService, tracker, queue, cfg.Provider.Default, zlog)

	cvHandler := handlers.NewCVHandler(cvService, analysisService)
	jobHandler := handlers.NewJobHandler(analysisService)
	healthHandler := handlers.NewHealthHandler(cfg.App.ServiceName, redisClient, store, zlog)

	router := setupRouter(cfg, zlog, cvHandler, jobHandler, healthHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zlog.Info("server starting",
			zap.String("host", cfg.Server.Host),
			zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited")
}

func setupRouter(
	cfg *config.Config,
	zlog *zap.Logger,
	cvHandler *handlers.CVHandler,
	jobHandler *handlers.JobHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(zlog))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ErrorMiddleware(zlog))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		cv := v1.Group("/cv")
		{
			cv.POST("/upload", cvHandler.Upload)
			cv.POST("/:cv_id/analyze", cvHandler.Analyze)
			cv.GET("/:cv_id/report", cvHandler.Report)
		}

		v1.GET("/jobs/:job_id", jobHandler.Status)
	}

	return router
}
