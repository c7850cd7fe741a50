package prompt

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/store"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
)

type defaultTemplate struct {
	body      string
	variables []domain.TemplateVariable
}

// canonicalDefaults holds a built-in template for every feature and category.
// Bodies follow the platform's production prompt wording; every placeholder is
// declared so the bijection invariant holds. Assistant bodies are few-shot
// exemplars of the expected response shape.
var canonicalDefaults = map[domain.Feature]map[domain.TemplateCategory]defaultTemplate{
	domain.FeatureMatching: {
		domain.CategorySystem: {
			body: "You are an AI matchmaker for the Tribe platform. You analyze user profiles and group compositions to find compatibility. Always respond in the exact JSON format requested.",
		},
		domain.CategoryUser: {
			body: "User Profile:\n{{userProfile}}\n\nPotential Tribes:\n{{tribes}}\n\nAnalyze the compatibility between the user and each tribe. Consider personality balance, shared interests and communication style. Provide a compatibility score (0-100) for each tribe and explain your reasoning.\n\nFormat your response as a JSON array of objects containing tribeId, compatibilityScore and compatibilityReasoning.",
			variables: []domain.TemplateVariable{
				{Name: "userProfile", Type: domain.VarObject, Required: true},
				{Name: "tribes", Type: domain.VarArray, Required: true},
			},
		},
		domain.CategoryAssistant: {
			body: "[{\"tribeId\": \"tribe-1\", \"compatibilityScore\": 85, \"compatibilityReasoning\": \"Shared interest in hiking and a complementary mix of organizers and participants.\"}]",
		},
	},
	domain.FeaturePersonality: {
		domain.CategorySystem: {
			body: "You are an AI personality analyst for the Tribe platform. You produce structured personality profiles for social matchmaking. Always respond in the exact JSON format requested.",
		},
		domain.CategoryUser: {
			body: "Assessment Data:\n{{assessmentData}}\n\nAnalyze the responses to identify Big Five personality traits with scores (0-100), communication style, social preferences, and key strengths and growth areas in social settings.\n\nFormat your response as a JSON object with traits, communicationStyle, socialPreferences and insights sections.",
			variables: []domain.TemplateVariable{
				{Name: "assessmentData", Type: domain.VarObject, Required: true},
			},
		},
		domain.CategoryAssistant: {
			body: "{\"traits\": {\"openness\": 72, \"conscientiousness\": 64, \"extraversion\": 58, \"agreeableness\": 81, \"neuroticism\": 35}, \"communicationStyle\": \"collaborative\", \"socialPreferences\": {\"groupSize\": \"small\"}, \"insights\": {\"strengths\": [\"active listener\"], \"growthAreas\": [\"initiating plans\"]}}",
		},
	},
	domain.FeatureEngagement: {
		domain.CategorySystem: {
			body: "You are an AI engagement specialist for the Tribe platform. You generate prompts, challenges and activities that deepen connections within a tribe. Always respond in the exact JSON format requested.",
		},
		domain.CategoryUser: {
			body: "Tribe Data:\n{{tribeData}}\n\nGenerate {{count}} engaging conversation prompts of type \"{{promptType}}\" that will spark meaningful interaction among tribe members. Each prompt must be specific to this tribe's composition and interests, not generic.\n\nFormat your response as a JSON array of prompt objects, each with a prompt text and a brief explanation of why it suits this tribe.",
			variables: []domain.TemplateVariable{
				{Name: "tribeData", Type: domain.VarObject, Required: true},
				{Name: "count", Type: domain.VarNumber, Required: false, Default: 5},
				{Name: "promptType", Type: domain.VarString, Required: false, Default: "icebreaker"},
			},
		},
		domain.CategoryAssistant: {
			body: "[{\"prompt\": \"What trail has surprised you the most this year?\", \"explanation\": \"Draws on the group's shared love of hiking while inviting personal stories.\"}]",
		},
	},
	domain.FeatureRecommendation: {
		domain.CategorySystem: {
			body: "You are an AI recommendation specialist for the Tribe platform. You recommend events and activities tailored to a group's shared interests. Always respond in the exact JSON format requested.",
		},
		domain.CategoryUser: {
			body: "User Data:\n{{userData}}\n\nContext:\n{{context}}\n\nRecommend {{count}} options that would appeal to this group based on their shared interests and composition. For each option, provide a title, description, estimated cost and a matchReason explaining the personalized recommendation.\n\nFormat your response as a JSON array of option objects.",
			variables: []domain.TemplateVariable{
				{Name: "userData", Type: domain.VarObject, Required: true},
				{Name: "context", Type: domain.VarObject, Required: false, Default: map[string]any{}},
				{Name: "count", Type: domain.VarNumber, Required: false, Default: 5},
			},
		},
		domain.CategoryAssistant: {
			body: "[{\"title\": \"Sunset photography walk\", \"description\": \"A guided golden-hour walk along the waterfront.\", \"estimatedCost\": \"free\", \"matchReason\": \"Combines the group's photography and outdoor interests.\"}]",
		},
	},
	domain.FeatureConversation: {
		domain.CategorySystem: {
			body: "You are a conversation assistant for the Tribe platform. You help members keep group conversations warm and inclusive.",
		},
		domain.CategoryUser: {
			body: "Conversation so far:\n{{#each messages}}- {{this}}\n{{/each}}\nSuggest a thoughtful reply that matches the tone of the conversation and invites quieter members to participate.",
			variables: []domain.TemplateVariable{
				{Name: "messages", Type: domain.VarArray, Required: true},
			},
		},
		domain.CategoryAssistant: {
			body: "That sounds like a great idea! Sarah mentioned she loves trivia too, maybe we could all go together on Thursday?",
		},
	},
}

// EnsureDefaults lazily creates the canonical default templates and the
// default configuration for a feature. Safe to call repeatedly.
func (r *Renderer) EnsureDefaults(ctx context.Context, feature domain.Feature) error {
	defaults, ok := canonicalDefaults[feature]
	if !ok {
		return domain.BadRequestError("unknown feature: " + string(feature))
	}

	if _, err := r.repo.Configs().GetDefault(ctx, string(feature)); err == nil {
		return nil
	} else if !domain.IsKind(err, domain.KindNotFound) {
		return err
	}

	return r.repo.WithTx(ctx, func(repo store.Repository) error {
		// Another caller may have won the race.
		if _, err := repo.Configs().GetDefault(ctx, string(feature)); err == nil {
			return nil
		} else if !domain.IsKind(err, domain.KindNotFound) {
			return err
		}

		now := time.Now().UTC()
		templateIDs := map[domain.TemplateCategory]string{}

		for _, category := range []domain.TemplateCategory{domain.CategorySystem, domain.CategoryUser, domain.CategoryAssistant} {
			def := defaults[category]
			tmpl := &domain.PromptTemplate{
				ID:        uuid.NewString(),
				Category:  category,
				Feature:   feature,
				Body:      def.body,
				Variables: def.variables,
				Version:   1,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := ValidateTemplate(tmpl); err != nil {
				return err
			}
			row, err := TemplateToModel(tmpl)
			if err != nil {
				return err
			}
			if err := repo.Templates().Create(ctx, row); err != nil {
				return err
			}
			templateIDs[category] = tmpl.ID
		}

		cfg := &model.Config{
			ID:               uuid.NewString(),
			Feature:          string(feature),
			SystemTemplateID: templateIDs[domain.CategorySystem],
			UserTemplateID:   templateIDs[domain.CategoryUser],
			AssistantTemplateID: sql.NullString{
				String: templateIDs[domain.CategoryAssistant],
				Valid:  true,
			},
			IsDefault: true,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Configs().Create(ctx, cfg); err != nil {
			return err
		}

		r.logger.Info("created default prompt templates",
			zap.String("feature", string(feature)),
			zap.String("config_id", cfg.ID))
		return nil
	})
}
