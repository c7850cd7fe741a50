package ports

import (
	"context"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
)

// PromptRenderer substitutes variables into templates, validates variable
// completeness and types, and estimates token counts.
type PromptRenderer interface {
	// Render produces the text of a single template. Missing required
	// variables and type mismatches are validation errors.
	Render(tmpl *domain.PromptTemplate, vars map[string]any) (*domain.RenderedPrompt, error)

	// RenderConfig renders the system, user and (if present) assistant
	// templates of a configuration against the same variable set.
	RenderConfig(ctx context.Context, cfg *domain.PromptConfig, vars map[string]any) (map[domain.TemplateCategory]*domain.RenderedPrompt, error)

	// RenderForFeature resolves the feature's default configuration
	// (creating canonical defaults if absent) and renders it.
	RenderForFeature(ctx context.Context, feature domain.Feature, vars map[string]any) (map[domain.TemplateCategory]*domain.RenderedPrompt, error)

	// EnsureDefaults lazily creates the canonical default templates and
	// configuration for a feature. Idempotent.
	EnsureDefaults(ctx context.Context, feature domain.Feature) error
}
