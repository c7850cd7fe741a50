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
	"github.com/tribehive/ai-orchestrator/pkg/api"
)

type TemplateHandler struct {
	repo     store.Repository
	renderer *prompt.Renderer
	logger   *zap.Logger
}

func NewTemplateHandler(repo store.Repository, renderer *prompt.Renderer, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{repo: repo, renderer: renderer, logger: logger}
}

// Create validates the placeholder/variable bijection before persisting.
func (h *TemplateHandler) Create(c *gin.Context) {
	var body api.TemplateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	tmpl, err := templateFromRequest(&body)
	if err != nil {
		c.Error(err)
		return
	}
	tmpl.ID = uuid.NewString()
	tmpl.Version = 1
	tmpl.Active = true
	if body.Active != nil {
		tmpl.Active = *body.Active
	}
	now := time.Now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	if err := prompt.ValidateTemplate(tmpl); err != nil {
		c.Error(err)
		return
	}

	row, err := prompt.TemplateToModel(tmpl)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.repo.Templates().Create(c.Request.Context(), row); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tmpl)
}

// Update bumps the version and invalidates the cached copy.
func (h *TemplateHandler) Update(c *gin.Context) {
	var body api.TemplateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	row, err := h.repo.Templates().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	existing, err := prompt.TemplateFromModel(row)
	if err != nil {
		c.Error(err)
		return
	}

	tmpl, err := templateFromRequest(&body)
	if err != nil {
		c.Error(err)
		return
	}
	tmpl.ID = existing.ID
	tmpl.Version = existing.Version + 1
	tmpl.Active = existing.Active
	if body.Active != nil {
		tmpl.Active = *body.Active
	}
	tmpl.CreatedAt = existing.CreatedAt
	tmpl.UpdatedAt = time.Now().UTC()

	if err := prompt.ValidateTemplate(tmpl); err != nil {
		c.Error(err)
		return
	}

	updated, err := prompt.TemplateToModel(tmpl)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.repo.Templates().Update(c.Request.Context(), updated); err != nil {
		c.Error(err)
		return
	}
	h.renderer.InvalidateTemplate(c.Request.Context(), tmpl.ID, tmpl.Feature)
	c.JSON(http.StatusOK, tmpl)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	row, err := h.repo.Templates().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	tmpl, err := prompt.TemplateFromModel(row)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (h *TemplateHandler) List(c *gin.Context) {
	feature := c.Query("feature")
	if feature != "" {
		if _, err := domain.ParseFeature(feature); err != nil {
			c.Error(err)
			return
		}
	}

	rows, err := h.repo.Templates().List(c.Request.Context(), feature, c.Query("category"), c.Query("all") != "true")
	if err != nil {
		c.Error(err)
		return
	}

	templates := make([]*domain.PromptTemplate, 0, len(rows))
	for i := range rows {
		tmpl, err := prompt.TemplateFromModel(&rows[i])
		if err != nil {
			c.Error(err)
			return
		}
		templates = append(templates, tmpl)
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func templateFromRequest(body *api.TemplateRequest) (*domain.PromptTemplate, error) {
	feature, err := domain.ParseFeature(body.Feature)
	if err != nil {
		return nil, err
	}

	variables := make([]domain.TemplateVariable, 0, len(body.Variables))
	for _, v := range body.Variables {
		variables = append(variables, domain.TemplateVariable{
			Name:     v.Name,
			Type:     domain.VariableType(v.Type),
			Required: v.Required,
			Default:  v.Default,
		})
	}

	return &domain.PromptTemplate{
		Category:  domain.TemplateCategory(body.Category),
		Feature:   feature,
		Body:      body.Body,
		Variables: variables,
	}, nil
}
