package ports

import (
	"context"

	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

// EngineClient wraps the internal AI Engine REST endpoint. Every call is
// instrumented, retried per the client's policy, and classified on terminal
// failure.
type EngineClient interface {
	Matching(ctx context.Context, req *schema.MatchingRequest) (*schema.EngineResult, error)
	Personality(ctx context.Context, req *schema.PersonalityRequest) (*schema.EngineResult, error)
	Engagement(ctx context.Context, req *schema.EngagementRequest) (*schema.EngineResult, error)
	Recommendations(ctx context.Context, req *schema.RecommendationRequest) (*schema.EngineResult, error)
	Health(ctx context.Context) error
}

// ProviderClient wraps an OpenRouter-style model provider.
type ProviderClient interface {
	Completion(ctx context.Context, req *schema.CompletionRequest) (*schema.CompletionResponse, error)
	ChatCompletion(ctx context.Context, req *schema.ChatRequest) (*schema.ChatResponse, error)
	Embeddings(ctx context.Context, req *schema.EmbeddingRequest) (*schema.EmbeddingResponse, error)
	Models(ctx context.Context) ([]schema.ProviderModel, error)
	Health(ctx context.Context) error
}
