package domain

import (
	"encoding/json"
	"fmt"
)

// FeatureInput is the tagged union of feature-specific payloads. Each
// variant validates its own required-field schema at the boundary, before
// any request is persisted.
type FeatureInput interface {
	Feature() Feature
	Validate() error
}

// Matching sub-operations.
type MatchingOp string

const (
	MatchUserToTribes   MatchingOp = "USER_TO_TRIBES"
	MatchTribeFormation MatchingOp = "TRIBE_FORMATION"
	MatchCompatibility  MatchingOp = "COMPATIBILITY"
)

type MatchingInput struct {
	Operation     MatchingOp         `json:"operation"`
	UserProfile   map[string]any     `json:"userProfile,omitempty"`
	UserProfiles  []map[string]any   `json:"userProfiles,omitempty"`
	Tribes        []map[string]any   `json:"tribes,omitempty"`
	TargetProfile map[string]any     `json:"targetProfile,omitempty"`
	FactorWeights map[string]float64 `json:"factorWeights,omitempty"`
}

func (in *MatchingInput) Feature() Feature { return FeatureMatching }

func (in *MatchingInput) Validate() error {
	switch in.Operation {
	case MatchUserToTribes:
		if len(in.UserProfile) == 0 {
			return RequiredFieldError("userProfile")
		}
		if len(in.Tribes) == 0 {
			return RequiredFieldError("tribes")
		}
	case MatchTribeFormation:
		if len(in.UserProfiles) < 2 {
			return ValidationError(map[string]string{"userProfiles": "at least two profiles are required"})
		}
	case MatchCompatibility:
		if len(in.UserProfile) == 0 {
			return RequiredFieldError("userProfile")
		}
		if len(in.TargetProfile) == 0 {
			return RequiredFieldError("targetProfile")
		}
	default:
		return BadRequestError(fmt.Sprintf("unknown matching operation: %q", in.Operation))
	}
	return nil
}

// Personality sub-operations.
type PersonalityOp string

const (
	PersonalityAssessment         PersonalityOp = "ASSESSMENT"
	PersonalityCommunicationStyle PersonalityOp = "COMMUNICATION_STYLE"
	PersonalityInterests          PersonalityOp = "INTERESTS"
)

type PersonalityInput struct {
	Operation       PersonalityOp  `json:"operation"`
	AssessmentData  map[string]any `json:"assessmentData,omitempty"`
	InteractionData map[string]any `json:"interactionData,omitempty"`
	ProfileData     map[string]any `json:"profileData,omitempty"`
}

func (in *PersonalityInput) Feature() Feature { return FeaturePersonality }

func (in *PersonalityInput) Validate() error {
	switch in.Operation {
	case PersonalityAssessment:
		if len(in.AssessmentData) == 0 {
			return RequiredFieldError("assessmentData")
		}
	case PersonalityCommunicationStyle:
		if len(in.InteractionData) == 0 {
			return RequiredFieldError("interactionData")
		}
	case PersonalityInterests:
		if len(in.ProfileData) == 0 {
			return RequiredFieldError("profileData")
		}
	default:
		return BadRequestError(fmt.Sprintf("unknown personality operation: %q", in.Operation))
	}
	return nil
}

// Engagement sub-operations.
type EngagementOp string

const (
	EngagementConversationPrompts EngagementOp = "CONVERSATION_PROMPTS"
	EngagementChallenge           EngagementOp = "CHALLENGE"
	EngagementActivity            EngagementOp = "ACTIVITY"
)

type EngagementInput struct {
	Operation EngagementOp   `json:"operation"`
	TribeData map[string]any `json:"tribeData,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

func (in *EngagementInput) Feature() Feature { return FeatureEngagement }

func (in *EngagementInput) Validate() error {
	switch in.Operation {
	case EngagementConversationPrompts, EngagementChallenge, EngagementActivity:
		if len(in.TribeData) == 0 {
			return RequiredFieldError("tribeData")
		}
	default:
		return BadRequestError(fmt.Sprintf("unknown engagement operation: %q", in.Operation))
	}
	return nil
}

// Recommendation sub-operations.
type RecommendationOp string

const (
	RecommendEvents     RecommendationOp = "EVENTS"
	RecommendActivities RecommendationOp = "ACTIVITIES"
	RecommendContent    RecommendationOp = "CONTENT"
)

type RecommendationInput struct {
	Operation RecommendationOp `json:"operation"`
	UserData  map[string]any   `json:"userData,omitempty"`
	Context   map[string]any   `json:"context,omitempty"`
}

func (in *RecommendationInput) Feature() Feature { return FeatureRecommendation }

func (in *RecommendationInput) Validate() error {
	switch in.Operation {
	case RecommendEvents, RecommendActivities, RecommendContent:
		if len(in.UserData) == 0 {
			return RequiredFieldError("userData")
		}
	default:
		return BadRequestError(fmt.Sprintf("unknown recommendation operation: %q", in.Operation))
	}
	return nil
}

// Conversation sub-operations.
type ConversationOp string

const (
	ConversationReply   ConversationOp = "REPLY_SUGGESTION"
	ConversationSummary ConversationOp = "SUMMARY"
	ConversationTone    ConversationOp = "TONE_ANALYSIS"
)

type ConversationMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type ConversationInput struct {
	Operation ConversationOp        `json:"operation"`
	Messages  []ConversationMessage `json:"messages,omitempty"`
	Context   map[string]any        `json:"context,omitempty"`
}

func (in *ConversationInput) Feature() Feature { return FeatureConversation }

func (in *ConversationInput) Validate() error {
	switch in.Operation {
	case ConversationReply, ConversationSummary, ConversationTone:
		if len(in.Messages) == 0 {
			return RequiredFieldError("messages")
		}
	default:
		return BadRequestError(fmt.Sprintf("unknown conversation operation: %q", in.Operation))
	}
	return nil
}

// ParseInput decodes and validates the feature-specific payload. It never
// persists anything; callers must treat an error as "no request exists".
func ParseInput(feature Feature, raw json.RawMessage) (FeatureInput, error) {
	if len(raw) == 0 {
		return nil, RequiredFieldError("input")
	}

	var in FeatureInput
	switch feature {
	case FeatureMatching:
		in = &MatchingInput{}
	case FeaturePersonality:
		in = &PersonalityInput{}
	case FeatureEngagement:
		in = &EngagementInput{}
	case FeatureRecommendation:
		in = &RecommendationInput{}
	case FeatureConversation:
		in = &ConversationInput{}
	default:
		return nil, BadRequestError(fmt.Sprintf("unknown feature: %q", feature))
	}

	if err := json.Unmarshal(raw, in); err != nil {
		return nil, BadRequestError(fmt.Sprintf("malformed %s input: %v", feature, err))
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}
