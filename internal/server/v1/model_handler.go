package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/ports"
)

type ModelHandler struct {
	registry ports.ModelRegistry
	logger   *zap.Logger
}

func NewModelHandler(registry ports.ModelRegistry, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{registry: registry, logger: logger}
}

func (h *ModelHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.registry.List(c.Request.Context())})
}

// Get resolves one catalog entry. Model ids contain slashes, so the route
// uses a wildcard parameter.
func (h *ModelHandler) Get(c *gin.Context) {
	id := strings.TrimPrefix(c.Param("id"), "/")
	m, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Refresh forces a catalog pull from the provider.
func (h *ModelHandler) Refresh(c *gin.Context) {
	if err := h.registry.Refresh(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.registry.Health(c.Request.Context()))
}
