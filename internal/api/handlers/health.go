package handlers

import (
	"net/http"
	"time"

	"github.com/docintel/answer-engine/internal/health"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	checker *health.HealthChecker
	logger  *logrus.Logger
}

func NewHealthHandler(checker *health.HealthChecker, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logger}
}

// HandleLiveness is a cheap liveness probe.
func (h *HealthHandler) HandleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "answer-engine",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleDetailed reports per-dependency health, preferring the cached
// snapshot written by the periodic checker.
func (h *HealthHandler) HandleDetailed(c *gin.Context) {
	if cached, err := h.checker.CheckCached(c.Request.Context()); err == nil && len(cached.Services) > 0 {
		h.respond(c, cached)
		return
	}

	overall := h.checker.CheckAll()
	h.respond(c, &overall)
}

func (h *HealthHandler) respond(c *gin.Context, overall *health.OverallHealth) {
	code := http.StatusOK
	if overall.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, overall)
}
