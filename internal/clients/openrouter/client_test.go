package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/retry"
	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	return New(
		Config{BaseURL: url, APIKey: "sk-or-test"},
		retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Jitter: 0.2},
		zap.NewNop(),
		ports.NopMetrics{},
	)
}

func TestChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req schema.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "openai/gpt-4o", req.Model)

		_ = json.NewEncoder(w).Encode(schema.ChatResponse{
			ID:    "gen-1",
			Model: req.Model,
			Choices: []schema.ChatChoice{
				{Message: schema.ChatMessage{Role: "assistant", Content: "hello"}, FinishReason: "stop"},
			},
		})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	resp, err := c.ChatCompletion(context.Background(), &schema.ChatRequest{
		Model:    "openai/gpt-4o",
		Messages: []schema.ChatMessage{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
}

func TestChatCompletion_EmptyChoicesFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"gen-2","choices":[]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.ChatCompletion(context.Background(), &schema.ChatRequest{Model: "m"})

	require.Error(t, err)
	assert.Equal(t, domain.KindServiceUnavailable, domain.KindOf(err))
}

func TestModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"id":"openai/gpt-4o","name":"GPT-4o","context_length":128000,
			 "architecture":{"modality":"text+image->text","supported_parameters":["tools"]},
			 "top_provider":{"context_length":128000,"max_completion_tokens":16384}}
		]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	models, err := c.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "openai/gpt-4o", models[0].ID)
	assert.Contains(t, models[0].Architecture.SupportedParameters, "tools")
}

func TestModels_MissingDataFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Models(context.Background())

	require.Error(t, err)
	assert.Equal(t, domain.KindServiceUnavailable, domain.KindOf(err))
}

func TestEmbeddings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"model":"embed-1","data":[{"index":0,"embedding":[0.1,0.2]}]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	resp, err := c.Embeddings(context.Background(), &schema.EmbeddingRequest{Model: "embed-1", Input: []string{"hi"}})
	require.NoError(t, err)
	assert.Len(t, resp.Data[0].Embedding, 2)
}
