package schema

import "encoding/json"

// Payloads for the internal AI Engine REST endpoint.

type MatchingRequest struct {
	MatchingType string         `json:"matching_type"`
	Data         map[string]any `json:"data"`
	Options      map[string]any `json:"options,omitempty"`
	ModelName    string         `json:"model_name,omitempty"`
}

type PersonalityRequest struct {
	AnalysisType   string         `json:"analysis_type"`
	AssessmentData map[string]any `json:"assessment_data"`
	Options        map[string]any `json:"options,omitempty"`
	ModelName      string         `json:"model_name,omitempty"`
}

type EngagementRequest struct {
	EngagementType string         `json:"engagement_type"`
	Context        map[string]any `json:"context"`
	Options        map[string]any `json:"options,omitempty"`
	ModelName      string         `json:"model_name,omitempty"`
}

type RecommendationRequest struct {
	RecommendationType string         `json:"recommendation_type"`
	UserData           map[string]any `json:"user_data"`
	Context            map[string]any `json:"context,omitempty"`
	Options            map[string]any `json:"options,omitempty"`
	ModelName          string         `json:"model_name,omitempty"`
}

// EngineResult carries the provider's parsed payload. Payload is the full
// JSON object as returned upstream; the client has already verified the
// expected top-level field is present.
type EngineResult struct {
	Payload json.RawMessage `json:"payload"`
}

// Field extracts a top-level field of the payload.
func (r *EngineResult) Field(name string) (json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Payload, &fields); err != nil {
		return nil, false
	}
	v, ok := fields[name]
	return v, ok
}
