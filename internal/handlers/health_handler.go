package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cv-analyzer/internal/storage"
	"cv-analyzer/pkg/memorydb"
)

type HealthHandler struct {
	service string
	rdb     *memorydb.RedisClient
	store   storage.Store
	log     *zap.Logger
}

func NewHealthHandler(service string, rdb *memorydb.RedisClient, store storage.Store, log *zap.Logger) *HealthHandler {
	return &HealthHandler{service: service, rdb: rdb, store: store, log: log}
}

// Health is a liveness probe.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
	})
}

// Ready verifies the queue store and document store are reachable.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.rdb.Ping(ctx); err != nil {
		h.log.Error("readiness check failed", zap.String("dependency", "redis"), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	if err := h.store.Ready(ctx); err != nil {
		h.log.Error("readiness check failed", zap.String("dependency", "storage"), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": h.service,
	})
}
