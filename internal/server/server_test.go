package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/adapters/cache/memory"
	"github.com/tribehive/ai-orchestrator/internal/analytics"
	"github.com/tribehive/ai-orchestrator/internal/config"
	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/core/services"
	"github.com/tribehive/ai-orchestrator/internal/core/services/prompt"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
	"github.com/tribehive/ai-orchestrator/internal/store/sqlite"
	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

const testAPIKey = "test-key"

type fakeEngineClient struct{}

func (fakeEngineClient) Matching(context.Context, *schema.MatchingRequest) (*schema.EngineResult, error) {
	return &schema.EngineResult{Payload: json.RawMessage(`{"matches":[{"tribeId":"tribe-1","score":0.9}]}`)}, nil
}
func (fakeEngineClient) Personality(context.Context, *schema.PersonalityRequest) (*schema.EngineResult, error) {
	return &schema.EngineResult{Payload: json.RawMessage(`{"traits":{}}`)}, nil
}
func (fakeEngineClient) Engagement(context.Context, *schema.EngagementRequest) (*schema.EngineResult, error) {
	return &schema.EngineResult{Payload: json.RawMessage(`{"prompts":[]}`)}, nil
}
func (fakeEngineClient) Recommendations(context.Context, *schema.RecommendationRequest) (*schema.EngineResult, error) {
	return &schema.EngineResult{Payload: json.RawMessage(`{"recommendations":[]}`)}, nil
}
func (fakeEngineClient) Health(context.Context) error { return nil }

type fakeProvider struct{}

func (fakeProvider) Completion(context.Context, *schema.CompletionRequest) (*schema.CompletionResponse, error) {
	return nil, nil
}
func (fakeProvider) ChatCompletion(_ context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error) {
	return &schema.ChatResponse{
		Model:   req.Model,
		Choices: []schema.ChatChoice{{Message: schema.ChatMessage{Role: "assistant", Content: "hi"}}},
	}, nil
}
func (fakeProvider) Embeddings(context.Context, *schema.EmbeddingRequest) (*schema.EmbeddingResponse, error) {
	return nil, nil
}
func (fakeProvider) Models(context.Context) ([]schema.ProviderModel, error) {
	return []schema.ProviderModel{{
		ID:            "openai/gpt-4o-mini",
		Name:          "openai/gpt-4o-mini",
		ContextLength: 128000,
		Architecture: schema.ModelArchitecture{
			Modality:            "text->text",
			SupportedParameters: []string{"tools"},
		},
	}}, nil
}
func (fakeProvider) Health(context.Context) error { return nil }

type noopQueue struct{}

func (noopQueue) Enqueue(string, domain.Priority) error { return nil }
func (noopQueue) Start(context.Context)                 {}
func (noopQueue) Stop()                                 {}

type noopIngestor struct{}

func (noopIngestor) Record(*model.ProcessingLog) {}
func (noopIngestor) Start(context.Context)       {}
func (noopIngestor) Stop()                       {}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := sqlite.NewSQLiteStorage(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cache := memory.New()
	registry := services.NewModelRegistry(fakeProvider{}, cache, ports.NopMetrics{}, zap.NewNop(), services.RegistryOptions{
		CatalogTTL:       time.Hour,
		DefaultChatModel: "openai/gpt-4o-mini",
	})
	require.NoError(t, registry.Refresh(context.Background()))

	renderer := prompt.NewRenderer(repo, cache, zap.NewNop(), 10*time.Minute)
	engine := services.NewEngine(repo, cache, registry, renderer, fakeEngineClient{}, fakeProvider{},
		noopIngestor{}, ports.NopMetrics{}, zap.NewNop(), services.EngineOptions{ResponseTTL: 30 * time.Minute})

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "8080", Env: "test"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		APIKeys:   []string{testAPIKey},
	}

	return New(cfg, zap.NewNop(), Dependencies{
		Engine:    engine,
		Queue:     noopQueue{},
		Registry:  registry,
		Renderer:  renderer,
		Repo:      repo,
		Analytics: analytics.NewService(repo),
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_HealthIsPublic(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "model_registry")
}

func TestServer_RequiresAPIKey(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/models", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/models", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_CreateRequestSync(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/requests", map[string]any{
		"feature": "MATCHING",
		"input": map[string]any{
			"operation":   "USER_TO_TRIBES",
			"userProfile": map[string]any{"id": "user-1"},
			"tribes":      []map[string]any{{"id": "tribe-1"}},
		},
		"requester_id": "svc-social",
		"sync":         true,
	}, true)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "COMPLETED")
	assert.Contains(t, w.Body.String(), "tribe-1")
}

func TestServer_CreateRequestAsyncAccepted(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/requests", map[string]any{
		"feature": "MATCHING",
		"input": map[string]any{
			"operation":   "USER_TO_TRIBES",
			"userProfile": map[string]any{"id": "user-1"},
			"tribes":      []map[string]any{{"id": "tribe-1"}},
		},
		"requester_id": "svc-social",
	}, true)

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "PENDING")
}

func TestServer_CreateRequestValidation(t *testing.T) {
	srv := newTestServer(t)

	// Missing required body fields fail binding.
	w := doJSON(t, srv, http.MethodPost, "/api/v1/requests", map[string]any{
		"feature": "MATCHING",
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Domain-level validation failures surface with detail.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/requests", map[string]any{
		"feature":      "MATCHING",
		"input":        map[string]any{"operation": "USER_TO_TRIBES"},
		"requester_id": "svc-social",
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "userProfile")
}

func TestServer_TemplateBijectionEnforced(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/templates", map[string]any{
		"category": "user",
		"feature":  "MATCHING",
		"body":     "Hello {{name}}, you have {{count}} matches",
		"variables": []map[string]any{
			{"name": "name", "type": "string", "required": true},
		},
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "count")

	w = doJSON(t, srv, http.MethodPost, "/api/v1/templates", map[string]any{
		"category": "user",
		"feature":  "MATCHING",
		"body":     "Hello {{name}}, you have {{count}} matches",
		"variables": []map[string]any{
			{"name": "name", "type": "string", "required": true},
			{"name": "count", "type": "number", "required": false, "default": 0},
		},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestServer_ModelEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/models", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openai/gpt-4o-mini")

	w = doJSON(t, srv, http.MethodGet, "/api/v1/models/detail/openai/gpt-4o-mini", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/models/refresh", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RequestLifecycleEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/requests", map[string]any{
		"feature": "MATCHING",
		"input": map[string]any{
			"operation":   "USER_TO_TRIBES",
			"userProfile": map[string]any{"id": "user-1"},
			"tribes":      []map[string]any{{"id": "tribe-1"}},
		},
		"requester_id": "svc-social",
	}, true)
	require.Equal(t, http.StatusAccepted, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/requests/"+created.ID, nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/requests/"+created.ID+"/cancel", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CANCELLED")

	// A cancelled request has no response row.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/requests/"+created.ID+"/response", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
