package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tribehive/ai-orchestrator/internal/analytics"
	"github.com/tribehive/ai-orchestrator/internal/core/services"
)

type HealthHandler struct {
	engine *services.Engine
}

func NewHealthHandler(engine *services.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// Health reports aggregated component status. Degraded dependencies do not
// fail the endpoint; callers inspect the body.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Health(c.Request.Context()))
}

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Activity returns the most recent processing log entries.
func (h *AnalyticsHandler) Activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.service.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
