package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/core"
	"ixiclinic-admin-go/internal/db"
)

// MetricsHandler handles the dashboard aggregation endpoints.
type MetricsHandler struct {
	metricsService core.MetricsService
	logger         *zap.Logger
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(ms core.MetricsService, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{metricsService: ms, logger: logger}
}

func (h *MetricsHandler) mapMetricsErrorToStatus(c *gin.Context, err error) {
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Resource not found", Details: err.Error()})
		return
	}
	h.logger.Error("metrics handler internal error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
}

// GetDashboardMetrics handles GET /metrics/dashboard.
func (h *MetricsHandler) GetDashboardMetrics(c *gin.Context) {
	metrics, err := h.metricsService.DashboardMetrics(c.Request.Context())
	if err != nil {
		h.mapMetricsErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetQuickStats handles GET /metrics/quick-stats.
func (h *MetricsHandler) GetQuickStats(c *gin.Context) {
	stats, err := h.metricsService.QuickStats(c.Request.Context())
	if err != nil {
		h.mapMetricsErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListAlerts handles GET /alerts (unresolved only).
func (h *MetricsHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.metricsService.ListAlerts(c.Request.Context())
	if err != nil {
		h.mapMetricsErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// ResolveAlert handles POST /alerts/:alertId/resolve.
func (h *MetricsHandler) ResolveAlert(c *gin.Context) {
	if err := h.metricsService.ResolveAlert(c.Request.Context(), c.Param("alertId")); err != nil {
		h.mapMetricsErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Alert resolved"})
}
