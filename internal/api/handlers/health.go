package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HealthStatus is the response body for the health/readiness endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthHandler handles the optimization service's health/readiness
// endpoints, adapted from the teacher's health.go to a redis-only backing
// store (this service has no SQL database).
type HealthHandler struct {
	redis  *redis.Client
	logger *logrus.Logger
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(redisClient *redis.Client, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{redis: redisClient, logger: logger}
}

// GetHealth handles GET /health.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	resp := HealthStatus{
		Status:    "ok",
		Service:   "nascar-dfs-optimizer",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			resp.Status = "degraded"
			resp.Checks["redis"] = "failed: " + err.Error()
		} else {
			resp.Checks["redis"] = "ok"
		}
	} else {
		resp.Checks["redis"] = "not_configured"
	}

	statusCode := http.StatusOK
	if resp.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	c.JSON(statusCode, resp)
}

// GetReady handles GET /ready. Redis is the only hard dependency for this
// service — the optimizer and job-progress streaming run entirely
// in-process without it, but the response cache needs it.
func (h *HealthHandler) GetReady(c *gin.Context) {
	resp := HealthStatus{
		Status:    "ready",
		Service:   "nascar-dfs-optimizer",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			resp.Status = "not_ready"
			resp.Checks["redis"] = "failed: " + err.Error()
		} else {
			resp.Checks["redis"] = "ok"
		}
	}

	statusCode := http.StatusOK
	if resp.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, resp)
}
