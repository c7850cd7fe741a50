package prompt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/adapters/cache/memory"
	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/store/sqlite"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	repo, err := sqlite.NewSQLiteStorage(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return NewRenderer(repo, memory.New(), zap.NewNop(), time.Minute)
}

func TestExtractPlaceholders(t *testing.T) {
	body := "Hello {{name}}. {{#if vip}}Welcome back!{{else}}Welcome.{{/if}}\n{{#each items}}- {{this}}\n{{/each}}{{ name }}"
	assert.Equal(t, []string{"items", "name", "vip"}, ExtractPlaceholders(body))
}

func TestValidateTemplate_Bijection(t *testing.T) {
	tmpl := &domain.PromptTemplate{
		Body: "Hi {{name}}",
		Variables: []domain.TemplateVariable{
			{Name: "name", Type: domain.VarString, Required: true},
		},
	}
	assert.NoError(t, ValidateTemplate(tmpl))

	// Placeholder without declaration.
	tmpl.Body = "Hi {{name}}, you are {{age}}"
	err := ValidateTemplate(tmpl)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	// Declaration without placeholder.
	tmpl.Body = "Hi"
	err = ValidateTemplate(tmpl)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestValidateTemplate_UnknownType(t *testing.T) {
	tmpl := &domain.PromptTemplate{
		Body: "{{x}}",
		Variables: []domain.TemplateVariable{
			{Name: "x", Type: "datetime", Required: true},
		},
	}
	assert.True(t, domain.IsKind(ValidateTemplate(tmpl), domain.KindValidation))
}

func TestRender_Substitution(t *testing.T) {
	r := newTestRenderer(t)
	tmpl := &domain.PromptTemplate{
		ID:      "t1",
		Feature: domain.FeatureConversation,
		Body:    "Hello {{name}}, you have {{count}} new messages",
		Variables: []domain.TemplateVariable{
			{Name: "name", Type: domain.VarString, Required: true},
			{Name: "count", Type: domain.VarNumber, Required: true},
		},
	}

	out, err := r.Render(tmpl, map[string]any{"name": "Ada", "count": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, you have 3 new messages", out.Text)
	assert.Equal(t, []string{"count", "name"}, out.VariablesUsed)
	assert.Greater(t, out.EstimatedTokens, 0)
	assert.NotContains(t, out.Text, "{{")
}

func TestRender_MissingRequired(t *testing.T) {
	r := newTestRenderer(t)
	tmpl := &domain.PromptTemplate{
		Body: "Hi {{name}}",
		Variables: []domain.TemplateVariable{
			{Name: "name", Type: domain.VarString, Required: true},
		},
	}

	_, err := r.Render(tmpl, map[string]any{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestRender_WrongType(t *testing.T) {
	r := newTestRenderer(t)
	tmpl := &domain.PromptTemplate{
		Body: "Hi {{name}}",
		Variables: []domain.TemplateVariable{
			{Name: "name", Type: domain.VarString, Required: true},
		},
	}

	_, err := r.Render(tmpl, map[string]any{"name": 42})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "name")
}

func TestRender_DefaultsApplied(t *testing.T) {
	r := newTestRenderer(t)
	tmpl := &domain.PromptTemplate{
		Body: "Generate {{count}} prompts",
		Variables: []domain.TemplateVariable{
			{Name: "count", Type: domain.VarNumber, Required: false, Default: 5},
		},
	}

	out, err := r.Render(tmpl, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Generate 5 prompts", out.Text)
}

func TestRender_ConditionalBlocks(t *testing.T) {
	r := newTestRenderer(t)
	tmpl := &domain.PromptTemplate{
		Body: "{{#if vip}}Priority support.{{else}}Standard support.{{/if}}",
		Variables: []domain.TemplateVariable{
			{Name: "vip", Type: domain.VarBoolean, Required: false},
		},
	}

	out, err := r.Render(tmpl, map[string]any{"vip": true})
	require.NoError(t, err)
	assert.Equal(t, "Priority support.", out.Text)

	out, err = r.Render(tmpl, map[string]any{"vip": false})
	require.NoError(t, err)
	assert.Equal(t, "Standard support.", out.Text)
}

func TestRender_EachBlock(t *testing.T) {
	r := newTestRenderer(t)
	tmpl := &domain.PromptTemplate{
		Body: "Items:\n{{#each items}}- {{this}}\n{{/each}}",
		Variables: []domain.TemplateVariable{
			{Name: "items", Type: domain.VarArray, Required: true},
		},
	}

	out, err := r.Render(tmpl, map[string]any{"items": []any{"a", "b"}})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "- a")
	assert.Contains(t, out.Text, "- b")
}

func TestEnsureDefaults_Idempotent(t *testing.T) {
	r := newTestRenderer(t)
	ctx := context.Background()

	require.NoError(t, r.EnsureDefaults(ctx, domain.FeatureMatching))
	require.NoError(t, r.EnsureDefaults(ctx, domain.FeatureMatching))

	configs, err := r.repo.Configs().ListByFeature(ctx, string(domain.FeatureMatching))
	require.NoError(t, err)
	assert.Len(t, configs, 1)
	assert.True(t, configs[0].IsDefault)
}

func TestRenderForFeature_CreatesAndRenders(t *testing.T) {
	r := newTestRenderer(t)
	ctx := context.Background()

	rendered, err := r.RenderForFeature(ctx, domain.FeatureMatching, map[string]any{
		"userProfile": map[string]any{"name": "Ada", "interests": []any{"chess"}},
		"tribes":      []any{map[string]any{"id": "tribe-1"}},
	})
	require.NoError(t, err)

	require.Contains(t, rendered, domain.CategorySystem)
	require.Contains(t, rendered, domain.CategoryUser)
	assert.NotContains(t, rendered[domain.CategoryUser].Text, "{{")
	assert.Contains(t, rendered[domain.CategoryUser].Text, "tribe-1")
}

func TestEnsureDefaults_CoversEveryCategory(t *testing.T) {
	r := newTestRenderer(t)
	ctx := context.Background()

	for _, feature := range domain.Features() {
		require.NoError(t, r.EnsureDefaults(ctx, feature))

		rows, err := r.repo.Templates().List(ctx, string(feature), "", false)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, row := range rows {
			seen[row.Category] = true
		}
		for _, category := range []domain.TemplateCategory{domain.CategorySystem, domain.CategoryUser, domain.CategoryAssistant} {
			assert.True(t, seen[string(category)], "%s is missing a default %s template", feature, category)
		}

		cfg, err := r.repo.Configs().GetDefault(ctx, string(feature))
		require.NoError(t, err)
		assert.True(t, cfg.AssistantTemplateID.Valid, "%s default config must bind the assistant template", feature)
	}
}

func TestRenderForFeature_IncludesAssistantExemplar(t *testing.T) {
	r := newTestRenderer(t)

	rendered, err := r.RenderForFeature(context.Background(), domain.FeatureMatching, map[string]any{
		"userProfile": map[string]any{"name": "Ada"},
		"tribes":      []any{map[string]any{"id": "tribe-1"}},
	})
	require.NoError(t, err)

	require.Contains(t, rendered, domain.CategoryAssistant)
	assert.Contains(t, rendered[domain.CategoryAssistant].Text, "compatibilityScore")
}

// countingCache counts reads and writes per key prefix so tests can observe
// read-through behavior without reaching into the adapter.
type countingCache struct {
	ports.CacheService
	gets map[string]int
	sets map[string]int
}

func newCountingCache() *countingCache {
	return &countingCache{CacheService: memory.New(), gets: map[string]int{}, sets: map[string]int{}}
}

func prefixOf(key string) string {
	if i := strings.IndexByte(key, ':'); i != -1 {
		return key[:i]
	}
	return key
}

func (c *countingCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets[prefixOf(key)]++
	return c.CacheService.Get(ctx, key, dest)
}

func (c *countingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets[prefixOf(key)]++
	return c.CacheService.Set(ctx, key, value, ttl)
}

func TestRenderForFeature_CachesRenderedPrompts(t *testing.T) {
	repo, err := sqlite.NewSQLiteStorage(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	cache := newCountingCache()
	r := NewRenderer(repo, cache, zap.NewNop(), time.Minute)
	ctx := context.Background()

	vars := map[string]any{
		"userProfile": map[string]any{"name": "Ada"},
		"tribes":      []any{map[string]any{"id": "tribe-1"}},
	}

	first, err := r.RenderForFeature(ctx, domain.FeatureMatching, vars)
	require.NoError(t, err)
	setsAfterFirst := cache.sets["render"]
	assert.Equal(t, len(first), setsAfterFirst, "each rendered category is written once")

	second, err := r.RenderForFeature(ctx, domain.FeatureMatching, vars)
	require.NoError(t, err)
	assert.Equal(t, setsAfterFirst, cache.sets["render"], "repeat render with identical variables hits the cache")
	assert.Equal(t, first[domain.CategoryUser].Text, second[domain.CategoryUser].Text)

	// A different variable set renders and caches separately.
	vars["userProfile"] = map[string]any{"name": "Grace"}
	_, err = r.RenderForFeature(ctx, domain.FeatureMatching, vars)
	require.NoError(t, err)
	assert.Greater(t, cache.sets["render"], setsAfterFirst)
}

func TestCanonicalDefaults_AllValid(t *testing.T) {
	for feature, categories := range canonicalDefaults {
		for category, def := range categories {
			tmpl := &domain.PromptTemplate{
				Feature:   feature,
				Category:  category,
				Body:      def.body,
				Variables: def.variables,
			}
			assert.NoError(t, ValidateTemplate(tmpl), "%s/%s", feature, category)
		}
	}
}
