package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/services/prompt"
	"github.com/tribehive/ai-orchestrator/internal/server/validator"
	"github.com/tribehive/ai-orchestrator/internal/store"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
	"github.com/tribehive/ai-orchestrator/pkg/api"
)

type ConfigHandler struct {
	repo   store.Repository
	logger *zap.Logger
}

func NewConfigHandler(repo store.Repository, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{repo: repo, logger: logger}
}

func (h *ConfigHandler) Create(c *gin.Context) {
	var body api.ConfigRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	feature, err := domain.ParseFeature(body.Feature)
	if err != nil {
		c.Error(err)
		return
	}

	// Both referenced templates must exist and belong to the same feature.
	for _, id := range []string{body.SystemTemplateID, body.UserTemplateID} {
		row, err := h.repo.Templates().GetByID(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			return
		}
		if row.Feature != string(feature) {
			c.Error(domain.BadRequestError("template " + id + " belongs to a different feature"))
			return
		}
	}

	now := time.Now().UTC()
	row := &model.Config{
		ID:               uuid.NewString(),
		Feature:          string(feature),
		SystemTemplateID: body.SystemTemplateID,
		UserTemplateID:   body.UserTemplateID,
		IsDefault:        body.IsDefault,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if body.AssistantTemplateID != "" {
		row.AssistantTemplateID.String = body.AssistantTemplateID
		row.AssistantTemplateID.Valid = true
	}
	if body.Active != nil {
		row.IsActive = *body.Active
	}

	if err := h.repo.Configs().Create(c.Request.Context(), row); err != nil {
		c.Error(err)
		return
	}
	if body.IsDefault {
		if err := h.repo.Configs().SetDefault(c.Request.Context(), row.ID); err != nil {
			c.Error(err)
			return
		}
	}
	c.JSON(http.StatusCreated, prompt.ConfigFromModel(row))
}

func (h *ConfigHandler) Get(c *gin.Context) {
	row, err := h.repo.Configs().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prompt.ConfigFromModel(row))
}

func (h *ConfigHandler) List(c *gin.Context) {
	feature, err := domain.ParseFeature(c.Query("feature"))
	if err != nil {
		c.Error(err)
		return
	}

	rows, err := h.repo.Configs().ListByFeature(c.Request.Context(), string(feature))
	if err != nil {
		c.Error(err)
		return
	}

	configs := make([]*domain.PromptConfig, 0, len(rows))
	for i := range rows {
		configs = append(configs, prompt.ConfigFromModel(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

// SetDefault atomically moves the default flag within the feature.
func (h *ConfigHandler) SetDefault(c *gin.Context) {
	id := c.Param("id")
	if err := h.repo.Configs().SetDefault(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	row, err := h.repo.Configs().GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prompt.ConfigFromModel(row))
}
