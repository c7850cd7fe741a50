package api

import "encoding/json"

// ErrorResponse is the standard wire error shape.
type ErrorResponse struct {
	Kind    string            `json:"kind,omitempty"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RequestResponse mirrors one orchestration request on the wire.
type RequestResponse struct {
	ID          string          `json:"id"`
	Feature     string          `json:"feature"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	RequesterID string          `json:"requester_id"`
	ModelID     string          `json:"model_id,omitempty"`
	Input       json.RawMessage `json:"input,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// ResponseResponse mirrors one orchestration response on the wire.
type ResponseResponse struct {
	ID           string          `json:"id"`
	RequestID    string          `json:"request_id"`
	Feature      string          `json:"feature"`
	Status       string          `json:"status"`
	ModelID      string          `json:"model_id"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	DurationMS   int64           `json:"duration_ms"`
	CreatedAt    string          `json:"created_at"`
}

// BatchCreateResponse reports the per-item outcome of a batch submission.
type BatchCreateResponse struct {
	Accepted []RequestResponse `json:"accepted"`
	Rejected []BatchRejection  `json:"rejected,omitempty"`
}

type BatchRejection struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// HealthResponse aggregates component health.
type HealthResponse struct {
	Status        string         `json:"status"`
	Engine        map[string]any `json:"engine"`
	ModelRegistry map[string]any `json:"model_registry"`
	Providers     map[string]any `json:"providers"`
}
