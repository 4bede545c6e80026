package handler

import (
	"net/http"
	"time"

	"doc-anchor/conf"
	"doc-anchor/service/record_service"

	"github.com/gin-gonic/gin"
)

// HealthHandler liveness and readiness handler
type HealthHandler struct {
	recordService *record_service.RecordService
	startedAt     time.Time
}

// NewHealthHandler create health handler instance
func NewHealthHandler(recordService *record_service.RecordService) *HealthHandler {
	return &HealthHandler{
		recordService: recordService,
		startedAt:     time.Now(),
	}
}

// HealthResponse health check response structure
type HealthResponse struct {
	Status      string  `json:"status" example:"ok"`
	Timestamp   string  `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Uptime      float64 `json:"uptime" example:"3600.5"`
	Database    string  `json:"database" example:"connected"`
	Environment string  `json:"environment" example:"development"`
}

// Health report service health
// @Summary      Health check
// @Description  Report process uptime and database connectivity
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse  "Service healthy"
// @Failure      503  {object}  HealthResponse  "Database unreachable"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "connected"
	if err := h.recordService.Ping(); err != nil {
		dbStatus = "disconnected"
	}

	health := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Uptime:      time.Since(h.startedAt).Seconds(),
		Database:    dbStatus,
		Environment: conf.Cfg.Env,
	}

	if dbStatus != "connected" {
		health.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}
