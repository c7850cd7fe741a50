package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RequestStatus tracks a request through its lifecycle.
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusProcessing RequestStatus = "PROCESSING"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusFailed     RequestStatus = "FAILED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

// Terminal reports whether the status permits no further transitions.
func (s RequestStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// transitions is the directed graph of legal status changes.
var transitions = map[RequestStatus][]RequestStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GenerationParams are the tunable knobs forwarded to a model call.
type GenerationParams struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`
}

// OrchestrationRequest is the unit of work submitted to the pipeline.
// Only the engine's state machine mutates it; once it reaches a terminal
// status it is immutable.
type OrchestrationRequest struct {
	ID               string           `json:"id"`
	Feature          Feature          `json:"feature"`
	Input            json.RawMessage  `json:"input"`
	RequesterID      string           `json:"requester_id"`
	PreferredModelID string           `json:"preferred_model_id,omitempty"`
	Parameters       GenerationParams `json:"parameters"`
	Status           RequestStatus    `json:"status"`
	Priority         Priority         `json:"priority"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// OrchestrationResponse is the terminal result of a request. Created exactly
// once, when the request leaves PROCESSING.
type OrchestrationResponse struct {
	ID           string          `json:"id"`
	RequestID    string          `json:"request_id"`
	Feature      Feature         `json:"feature"`
	Result       json.RawMessage `json:"result,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
	ModelID      string          `json:"model_id"`
	Status       RequestStatus   `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ErrorTrace   string          `json:"error_trace,omitempty"`
	DurationMS   int64           `json:"duration_ms"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TransitionError builds the conflict error for an illegal edge.
func TransitionError(id string, from, to RequestStatus) *Error {
	return ConflictError(fmt.Sprintf("request %s cannot move from %s to %s", id, from, to))
}
