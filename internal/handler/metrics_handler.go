package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/service"
)

// MetricsHandler serves usage metrics to administrators
type MetricsHandler struct {
	metrics *service.MetricsService
}

func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// List godoc
// @Summary List recorded usage events, newest first
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Param event_type query string false "Event type"
// @Param user_id query string false "User ID"
// @Param start_date query string false "RFC 3339 lower bound"
// @Param end_date query string false "RFC 3339 upper bound"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {object} model.MetricListResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /metrics [get]
func (h *MetricsHandler) List(c *gin.Context) {
	var req model.MetricListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.metrics.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Summary godoc
// @Summary Count events overall, today, this week and this month
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Param event_type query string false "Event type"
// @Success 200 {object} model.MetricSummary
// @Router /metrics/summary [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	summary, err := h.metrics.Summary(c.Request.Context(), model.MetricEventType(c.Query("event_type")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Distribution godoc
// @Summary Count events per type
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.MetricCount
// @Router /metrics/distribution [get]
func (h *MetricsHandler) Distribution(c *gin.Context) {
	counts, err := h.metrics.Distribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
