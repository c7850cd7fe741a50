package domain

import "fmt"

// Feature is a top-level orchestration capability.
type Feature string

const (
	FeatureMatching       Feature = "MATCHING"
	FeaturePersonality    Feature = "PERSONALITY"
	FeatureEngagement     Feature = "ENGAGEMENT"
	FeatureRecommendation Feature = "RECOMMENDATION"
	FeatureConversation   Feature = "CONVERSATION"
)

// Features lists every known feature in a stable order.
func Features() []Feature {
	return []Feature{
		FeatureMatching,
		FeaturePersonality,
		FeatureEngagement,
		FeatureRecommendation,
		FeatureConversation,
	}
}

// ParseFeature validates a raw feature tag.
func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	switch f {
	case FeatureMatching, FeaturePersonality, FeatureEngagement,
		FeatureRecommendation, FeatureConversation:
		return f, nil
	}
	return "", BadRequestError(fmt.Sprintf("unknown feature: %q", s))
}

// Capability is a declared ability of a model.
type Capability string

const (
	CapabilityTextGeneration     Capability = "text-generation"
	CapabilityChatCompletion     Capability = "chat-completion"
	CapabilityEmbedding          Capability = "embedding"
	CapabilityFunctionCalling    Capability = "function-calling"
	CapabilityImageUnderstanding Capability = "image-understanding"
)

// featureCapabilities maps each feature to the capabilities a model must
// declare before it can serve that feature.
var featureCapabilities = map[Feature][]Capability{
	FeatureMatching:       {CapabilityTextGeneration, CapabilityChatCompletion, CapabilityFunctionCalling},
	FeaturePersonality:    {CapabilityTextGeneration, CapabilityChatCompletion},
	FeatureEngagement:     {CapabilityTextGeneration, CapabilityChatCompletion},
	FeatureRecommendation: {CapabilityTextGeneration, CapabilityChatCompletion, CapabilityFunctionCalling},
	FeatureConversation:   {CapabilityTextGeneration, CapabilityChatCompletion},
}

// RequiredCapabilities returns the capability set a model must satisfy for
// the given feature. Unknown features fall back to chat completion.
func RequiredCapabilities(f Feature) []Capability {
	if caps, ok := featureCapabilities[f]; ok {
		return caps
	}
	return []Capability{CapabilityChatCompletion}
}

// Priority orders queued requests. Higher values are admitted first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

const PriorityLevels = 4

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	}
	return "MEDIUM"
}

// ParsePriority maps a wire tag to a priority. Empty or unknown tags default
// to MEDIUM.
func ParsePriority(s string) Priority {
	switch s {
	case "CRITICAL":
		return PriorityCritical
	case "HIGH":
		return PriorityHigh
	case "LOW":
		return PriorityLow
	default:
		return PriorityMedium
	}
}
