package modeldata

import "github.com/tribehive/ai-orchestrator/internal/core/domain"

// KnownModels is the static fallback catalog used when the provider's model
// listing is unavailable and no cached catalog exists. Entries mirror the
// provider's published limits as of mid-2025.
var KnownModels = map[string]domain.ModelConfig{
	// OpenAI
	"openai/gpt-4o": {
		ID:       "openai/gpt-4o",
		Name:     "GPT-4o",
		Provider: "openai",
		Capabilities: []domain.Capability{
			domain.CapabilityTextGeneration,
			domain.CapabilityChatCompletion,
			domain.CapabilityFunctionCalling,
			domain.CapabilityImageUnderstanding,
		},
		ContextWindow:   128000,
		MaxOutputTokens: 16384,
		Active:          true,
	},
	"openai/gpt-4o-mini": {
		ID:       "openai/gpt-4o-mini",
		Name:     "GPT-4o mini",
		Provider: "openai",
		Capabilities: []domain.Capability{
			domain.CapabilityTextGeneration,
			domain.CapabilityChatCompletion,
			domain.CapabilityFunctionCalling,
		},
		ContextWindow:   128000,
		MaxOutputTokens: 16384,
		Active:          true,
	},
	"openai/text-embedding-3-small": {
		ID:       "openai/text-embedding-3-small",
		Name:     "Text Embedding 3 Small",
		Provider: "openai",
		Capabilities: []domain.Capability{
			domain.CapabilityEmbedding,
		},
		ContextWindow: 8191,
		Active:        true,
	},

	// Anthropic
	"anthropic/claude-3.5-sonnet": {
		ID:       "anthropic/claude-3.5-sonnet",
		Name:     "Claude 3.5 Sonnet",
		Provider: "anthropic",
		Capabilities: []domain.Capability{
			domain.CapabilityTextGeneration,
			domain.CapabilityChatCompletion,
			domain.CapabilityFunctionCalling,
			domain.CapabilityImageUnderstanding,
		},
		ContextWindow:   200000,
		MaxOutputTokens: 8192,
		Active:          true,
	},
	"anthropic/claude-3-haiku": {
		ID:       "anthropic/claude-3-haiku",
		Name:     "Claude 3 Haiku",
		Provider: "anthropic",
		Capabilities: []domain.Capability{
			domain.CapabilityTextGeneration,
			domain.CapabilityChatCompletion,
		},
		ContextWindow:   200000,
		MaxOutputTokens: 4096,
		Active:          true,
	},

	// Google
	"google/gemini-1.5-pro": {
		ID:       "google/gemini-1.5-pro",
		Name:     "Gemini 1.5 Pro",
		Provider: "google",
		Capabilities: []domain.Capability{
			domain.CapabilityTextGeneration,
			domain.CapabilityChatCompletion,
			domain.CapabilityFunctionCalling,
			domain.CapabilityImageUnderstanding,
		},
		ContextWindow:   2000000,
		MaxOutputTokens: 8192,
		Active:          true,
	},

	// Meta
	"meta-llama/llama-3.1-70b-instruct": {
		ID:       "meta-llama/llama-3.1-70b-instruct",
		Name:     "Llama 3.1 70B Instruct",
		Provider: "meta-llama",
		Capabilities: []domain.Capability{
			domain.CapabilityTextGeneration,
			domain.CapabilityChatCompletion,
		},
		ContextWindow:   131072,
		MaxOutputTokens: 4096,
		Active:          true,
	},
}

// Catalog returns the fallback models as a slice, for registry seeding.
func Catalog() []domain.ModelConfig {
	models := make([]domain.ModelConfig, 0, len(KnownModels))
	for _, m := range KnownModels {
		models = append(models, m)
	}
	return models
}
