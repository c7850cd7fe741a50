package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/modeldata"
	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

const catalogCacheKey = "models:catalog"

// ModelRegistry keeps an in-memory index of the provider catalog, guarded by
// a RWMutex and replaced wholesale on refresh. The external cache carries the
// catalog across restarts; the static fallback covers cold starts with the
// provider down.
type ModelRegistry struct {
	provider   ports.ProviderClient
	cache      ports.CacheService
	metrics    ports.Metrics
	logger     *zap.Logger
	catalogTTL time.Duration

	// defaults maps a feature to the model used when automatic selection
	// finds no candidate; defaultChatModel is the last resort.
	defaults         map[domain.Feature]string
	defaultChatModel string

	mu          sync.RWMutex
	models      map[string]domain.ModelConfig
	refreshedAt time.Time
}

type RegistryOptions struct {
	CatalogTTL       time.Duration
	Defaults         map[domain.Feature]string
	DefaultChatModel string
}

func NewModelRegistry(provider ports.ProviderClient, cache ports.CacheService, metrics ports.Metrics, logger *zap.Logger, opts RegistryOptions) *ModelRegistry {
	r := &ModelRegistry{
		provider:         provider,
		cache:            cache,
		metrics:          metrics,
		logger:           logger,
		catalogTTL:       opts.CatalogTTL,
		defaults:         opts.Defaults,
		defaultChatModel: opts.DefaultChatModel,
		models:           map[string]domain.ModelConfig{},
	}
	r.seed(context.Background())
	return r
}

// seed loads the cached catalog if one survives, falling back to the static
// catalog so selection works before the first successful refresh.
func (r *ModelRegistry) seed(ctx context.Context) {
	var cached []domain.ModelConfig
	if err := r.cache.Get(ctx, catalogCacheKey, &cached); err == nil && len(cached) > 0 {
		r.metrics.CacheHit("models")
		r.replace(cached, catalogRefreshTime(cached))
		return
	}
	r.metrics.CacheMiss("models")
	r.replace(modeldata.Catalog(), time.Time{})
	r.logger.Info("model catalog seeded from static fallback",
		zap.Int("models", len(r.models)))
}

func catalogRefreshTime(models []domain.ModelConfig) time.Time {
	var latest time.Time
	for _, m := range models {
		if m.RefreshedAt.After(latest) {
			latest = m.RefreshedAt
		}
	}
	return latest
}

// Refresh replaces the entire catalog atomically from the provider listing.
// Idempotent; on provider failure the current catalog stays in place.
func (r *ModelRegistry) Refresh(ctx context.Context) error {
	listed, err := r.provider.Models(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	models := make([]domain.ModelConfig, 0, len(listed))
	for _, pm := range listed {
		models = append(models, fromProviderModel(pm, now))
	}

	r.replace(models, now)

	if err := r.cache.Set(ctx, catalogCacheKey, models, r.catalogTTL); err != nil {
		r.logger.Warn("catalog cache write failed", zap.Error(err))
	}

	r.logger.Info("model catalog refreshed", zap.Int("models", len(models)))
	return nil
}

func (r *ModelRegistry) replace(models []domain.ModelConfig, refreshedAt time.Time) {
	index := make(map[string]domain.ModelConfig, len(models))
	for _, m := range models {
		index[m.ID] = m
	}

	r.mu.Lock()
	r.models = index
	r.refreshedAt = refreshedAt
	r.mu.Unlock()
}

// fromProviderModel derives the capability set from the listing's modality
// and supported parameters.
func fromProviderModel(pm schema.ProviderModel, refreshedAt time.Time) domain.ModelConfig {
	var caps []domain.Capability

	if strings.Contains(pm.ID, "embed") {
		caps = append(caps, domain.CapabilityEmbedding)
	} else {
		caps = append(caps, domain.CapabilityTextGeneration, domain.CapabilityChatCompletion)
	}
	if modalityHasImageInput(pm.Architecture.Modality) {
		caps = append(caps, domain.CapabilityImageUnderstanding)
	}
	for _, p := range pm.Architecture.SupportedParameters {
		if p == "tools" || p == "functions" {
			caps = append(caps, domain.CapabilityFunctionCalling)
			break
		}
	}

	contextWindow := pm.ContextLength
	if pm.TopProvider.ContextLength > 0 {
		contextWindow = pm.TopProvider.ContextLength
	}

	name := pm.Name
	if name == "" {
		name = pm.ID
	}

	return domain.ModelConfig{
		ID:              pm.ID,
		Name:            name,
		Provider:        providerOf(pm.ID),
		Capabilities:    caps,
		ContextWindow:   contextWindow,
		MaxOutputTokens: pm.TopProvider.MaxCompletionTokens,
		Active:          true,
		RefreshedAt:     refreshedAt,
	}
}

// modalityHasImageInput parses modality tags like "text+image->text".
func modalityHasImageInput(modality string) bool {
	input := modality
	if idx := strings.Index(modality, "->"); idx >= 0 {
		input = modality[:idx]
	}
	return strings.Contains(input, "image")
}

func providerOf(id string) string {
	if idx := strings.Index(id, "/"); idx > 0 {
		return id[:idx]
	}
	return id
}

// ModelForFeature picks the best active model for the feature. A preferred
// model wins only when it exists, is active, and satisfies the feature's
// required capabilities; otherwise selection falls through to ranking.
func (r *ModelRegistry) ModelForFeature(ctx context.Context, feature domain.Feature, preferredID string) (*domain.ModelConfig, error) {
	required := domain.RequiredCapabilities(feature)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if preferredID != "" {
		if m, ok := r.models[preferredID]; ok && m.Active && m.Satisfies(required) {
			return &m, nil
		}
		r.logger.Warn("preferred model unsuitable, falling back to ranking",
			zap.String("preferred", preferredID),
			zap.String("feature", string(feature)))
	}

	var candidates []domain.ModelConfig
	for _, m := range r.models {
		if m.Active && m.Satisfies(required) {
			candidates = append(candidates, m)
		}
	}

	if len(candidates) == 0 {
		return r.defaultModel(feature)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		am, bm := matchedCapabilities(&a, required), matchedCapabilities(&b, required)
		if am != bm {
			return am > bm
		}
		if a.ContextWindow != b.ContextWindow {
			return a.ContextWindow > b.ContextWindow
		}
		if a.MaxOutputTokens != b.MaxOutputTokens {
			return a.MaxOutputTokens > b.MaxOutputTokens
		}
		return a.Name < b.Name
	})

	return &candidates[0], nil
}

func matchedCapabilities(m *domain.ModelConfig, required []domain.Capability) int {
	matched := 0
	for _, c := range required {
		if m.HasCapability(c) {
			matched++
		}
	}
	return matched
}

// defaultModel resolves the configured fallback, assuming the caller holds
// at least a read lock.
func (r *ModelRegistry) defaultModel(feature domain.Feature) (*domain.ModelConfig, error) {
	for _, id := range []string{r.defaults[feature], r.defaultChatModel} {
		if id == "" {
			continue
		}
		if m, ok := r.models[id]; ok && m.Active {
			r.logger.Warn("no qualifying model, using configured default",
				zap.String("feature", string(feature)),
				zap.String("model", id))
			return &m, nil
		}
	}
	return nil, domain.BadRequestError("no suitable model for feature " + string(feature))
}

func (r *ModelRegistry) Get(ctx context.Context, id string) (*domain.ModelConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.models[id]; ok {
		return &m, nil
	}
	return nil, domain.NotFoundError("model not found: " + id)
}

func (r *ModelRegistry) List(ctx context.Context) []domain.ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]domain.ModelConfig, 0, len(r.models))
	for _, m := range r.models {
		if m.Active {
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *ModelRegistry) Health(ctx context.Context) ports.RegistryHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return ports.RegistryHealth{
		Models:      len(r.models),
		RefreshedAt: r.refreshedAt,
		Stale:       r.refreshedAt.IsZero() || time.Since(r.refreshedAt) > r.catalogTTL,
	}
}

var _ ports.ModelRegistry = (*ModelRegistry)(nil)
