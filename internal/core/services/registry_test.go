package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/adapters/cache/memory"
	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

type stubProvider struct {
	models []schema.ProviderModel
	err    error
}

func (s *stubProvider) Completion(ctx context.Context, req *schema.CompletionRequest) (*schema.CompletionResponse, error) {
	return nil, nil
}
func (s *stubProvider) ChatCompletion(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	return nil, nil
}
func (s *stubProvider) Embeddings(ctx context.Context, req *schema.EmbeddingRequest) (*schema.EmbeddingResponse, error) {
	return nil, nil
}
func (s *stubProvider) Models(ctx context.Context) ([]schema.ProviderModel, error) {
	return s.models, s.err
}
func (s *stubProvider) Health(ctx context.Context) error { return nil }

func newTestRegistry(t *testing.T, provider *stubProvider) *ModelRegistry {
	t.Helper()
	return NewModelRegistry(provider, memory.New(), ports.NopMetrics{}, zap.NewNop(), RegistryOptions{
		CatalogTTL:       time.Hour,
		Defaults:         map[domain.Feature]string{},
		DefaultChatModel: "openai/gpt-4o-mini",
	})
}

func providerModel(id string, contextLen int, params ...string) schema.ProviderModel {
	return schema.ProviderModel{
		ID:            id,
		Name:          id,
		ContextLength: contextLen,
		Architecture: schema.ModelArchitecture{
			Modality:            "text->text",
			SupportedParameters: params,
		},
	}
}

func TestRefresh_DerivesCapabilities(t *testing.T) {
	provider := &stubProvider{models: []schema.ProviderModel{
		providerModel("acme/chat-large", 32000, "tools"),
		providerModel("acme/chat-small", 8000),
		{
			ID:            "acme/embedder-embed-v1",
			ContextLength: 8191,
			Architecture:  schema.ModelArchitecture{Modality: "text->vector"},
		},
		{
			ID:            "acme/vision",
			ContextLength: 128000,
			Architecture:  schema.ModelArchitecture{Modality: "text+image->text"},
		},
	}}
	r := newTestRegistry(t, provider)
	require.NoError(t, r.Refresh(context.Background()))

	large, err := r.Get(context.Background(), "acme/chat-large")
	require.NoError(t, err)
	assert.True(t, large.HasCapability(domain.CapabilityFunctionCalling))
	assert.True(t, large.HasCapability(domain.CapabilityChatCompletion))

	embedder, err := r.Get(context.Background(), "acme/embedder-embed-v1")
	require.NoError(t, err)
	assert.True(t, embedder.HasCapability(domain.CapabilityEmbedding))
	assert.False(t, embedder.HasCapability(domain.CapabilityChatCompletion))

	vision, err := r.Get(context.Background(), "acme/vision")
	require.NoError(t, err)
	assert.True(t, vision.HasCapability(domain.CapabilityImageUnderstanding))
}

func TestModelForFeature_PreferredWins(t *testing.T) {
	provider := &stubProvider{models: []schema.ProviderModel{
		providerModel("acme/chat-a", 32000, "tools"),
		providerModel("acme/chat-b", 128000, "tools"),
	}}
	r := newTestRegistry(t, provider)
	require.NoError(t, r.Refresh(context.Background()))

	m, err := r.ModelForFeature(context.Background(), domain.FeatureMatching, "acme/chat-a")
	require.NoError(t, err)
	assert.Equal(t, "acme/chat-a", m.ID)
}

func TestModelForFeature_UnsuitablePreferredFallsBack(t *testing.T) {
	provider := &stubProvider{models: []schema.ProviderModel{
		providerModel("acme/no-tools", 128000),
		providerModel("acme/with-tools", 32000, "tools"),
	}}
	r := newTestRegistry(t, provider)
	require.NoError(t, r.Refresh(context.Background()))

	// MATCHING requires function-calling, which the preferred model lacks.
	m, err := r.ModelForFeature(context.Background(), domain.FeatureMatching, "acme/no-tools")
	require.NoError(t, err)
	assert.Equal(t, "acme/with-tools", m.ID)
}

func TestModelForFeature_RankingDeterministic(t *testing.T) {
	provider := &stubProvider{models: []schema.ProviderModel{
		providerModel("acme/bbb", 32000, "tools"),
		providerModel("acme/aaa", 32000, "tools"),
		providerModel("acme/big", 200000, "tools"),
	}}
	r := newTestRegistry(t, provider)
	require.NoError(t, r.Refresh(context.Background()))

	first, err := r.ModelForFeature(context.Background(), domain.FeatureMatching, "")
	require.NoError(t, err)
	second, err := r.ModelForFeature(context.Background(), domain.FeatureMatching, "")
	require.NoError(t, err)

	// Largest context window wins; repeat selection is identical.
	assert.Equal(t, "acme/big", first.ID)
	assert.Equal(t, first.ID, second.ID)
}

func TestModelForFeature_NameTiebreak(t *testing.T) {
	provider := &stubProvider{models: []schema.ProviderModel{
		providerModel("acme/bbb", 32000, "tools"),
		providerModel("acme/aaa", 32000, "tools"),
	}}
	r := newTestRegistry(t, provider)
	require.NoError(t, r.Refresh(context.Background()))

	m, err := r.ModelForFeature(context.Background(), domain.FeatureMatching, "")
	require.NoError(t, err)
	assert.Equal(t, "acme/aaa", m.ID)
}

func TestModelForFeature_ConfiguredDefault(t *testing.T) {
	provider := &stubProvider{models: []schema.ProviderModel{
		providerModel("acme/plain", 8000),
	}}
	r := NewModelRegistry(provider, memory.New(), ports.NopMetrics{}, zap.NewNop(), RegistryOptions{
		CatalogTTL:       time.Hour,
		Defaults:         map[domain.Feature]string{domain.FeatureMatching: "acme/plain"},
		DefaultChatModel: "",
	})
	require.NoError(t, r.Refresh(context.Background()))

	// No model satisfies MATCHING; the configured default is used.
	m, err := r.ModelForFeature(context.Background(), domain.FeatureMatching, "")
	require.NoError(t, err)
	assert.Equal(t, "acme/plain", m.ID)
}

func TestModelForFeature_NoSuitableModel(t *testing.T) {
	provider := &stubProvider{}
	r := NewModelRegistry(provider, memory.New(), ports.NopMetrics{}, zap.NewNop(), RegistryOptions{
		CatalogTTL: time.Hour,
	})
	require.NoError(t, r.Refresh(context.Background()))

	_, err := r.ModelForFeature(context.Background(), domain.FeatureMatching, "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestSeed_FallbackCatalog(t *testing.T) {
	r := newTestRegistry(t, &stubProvider{})

	// Before any refresh the static catalog backs selection.
	assert.NotEmpty(t, r.List(context.Background()))
	assert.True(t, r.Health(context.Background()).Stale)
}

func TestHealth_FreshAfterRefresh(t *testing.T) {
	provider := &stubProvider{models: []schema.ProviderModel{
		providerModel("acme/chat", 8000),
	}}
	r := newTestRegistry(t, provider)
	require.NoError(t, r.Refresh(context.Background()))

	h := r.Health(context.Background())
	assert.Equal(t, 1, h.Models)
	assert.False(t, h.Stale)
}
