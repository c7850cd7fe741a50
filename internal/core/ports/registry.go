package ports

import (
	"context"
	"time"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
)

// RegistryHealth summarizes the catalog state for health reporting.
type RegistryHealth struct {
	Models      int       `json:"models"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Stale       bool      `json:"stale"`
}

// ModelRegistry caches the provider catalog and selects models per feature.
type ModelRegistry interface {
	// ModelForFeature resolves the best active model for the feature,
	// honoring the operator preference when it satisfies the feature's
	// required capabilities.
	ModelForFeature(ctx context.Context, feature domain.Feature, preferredID string) (*domain.ModelConfig, error)

	// Get returns a single catalog entry by id.
	Get(ctx context.Context, id string) (*domain.ModelConfig, error)

	// List returns the active catalog.
	List(ctx context.Context) []domain.ModelConfig

	// Refresh atomically replaces the catalog from the provider.
	Refresh(ctx context.Context) error

	Health(ctx context.Context) RegistryHealth
}
