package api

import "encoding/json"

// CreateRequest is the payload for submitting an orchestration request.
type CreateRequest struct {
	Feature     string          `json:"feature" binding:"required,feature"`
	Input       json.RawMessage `json:"input" binding:"required"`
	RequesterID string          `json:"requester_id" binding:"required"`
	ModelID     string          `json:"model_id,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Priority    string          `json:"priority,omitempty" binding:"omitempty,oneof=CRITICAL HIGH MEDIUM LOW"`

	// Sync processes inline instead of enqueuing.
	Sync bool `json:"sync,omitempty"`
}

// BatchCreateRequest submits several requests at once. Items are validated
// independently; valid items are enqueued, invalid ones reported.
type BatchCreateRequest struct {
	Requests []CreateRequest `json:"requests" binding:"required,min=1,dive"`
}

// TemplateRequest creates or updates a prompt template.
type TemplateRequest struct {
	Category  string            `json:"category" binding:"required,oneof=system user assistant"`
	Feature   string            `json:"feature" binding:"required,feature"`
	Body      string            `json:"body" binding:"required"`
	Variables []VariableRequest `json:"variables" binding:"dive"`
	Active    *bool             `json:"active,omitempty"`
}

type VariableRequest struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=string number boolean array object"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// ConfigRequest creates or updates a prompt configuration.
type ConfigRequest struct {
	Feature             string `json:"feature" binding:"required,feature"`
	SystemTemplateID    string `json:"system_template_id" binding:"required"`
	UserTemplateID      string `json:"user_template_id" binding:"required"`
	AssistantTemplateID string `json:"assistant_template_id,omitempty"`
	IsDefault           bool   `json:"is_default"`
	Active              *bool  `json:"active,omitempty"`
}
