package model

import (
	"database/sql"
	"time"
)

// Request is the persisted form of an orchestration request. InputJSON and
// ParamsJSON carry the feature payload and generation parameters verbatim.
type Request struct {
	ID               string         `db:"id" json:"id"`
	Feature          string         `db:"feature" json:"feature"`
	InputJSON        string         `db:"input_json" json:"input_json"`
	RequesterID      string         `db:"requester_id" json:"requester_id"`
	PreferredModelID sql.NullString `db:"preferred_model_id" json:"preferred_model_id,omitempty"`
	ParamsJSON       string         `db:"params_json" json:"params_json"`
	Status           string         `db:"status" json:"status"`
	Priority         int            `db:"priority" json:"priority"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Response is the persisted terminal result, 1:1 with its request.
type Response struct {
	ID           string         `db:"id" json:"id"`
	RequestID    string         `db:"request_id" json:"request_id"`
	Feature      string         `db:"feature" json:"feature"`
	ResultJSON   sql.NullString `db:"result_json" json:"result_json,omitempty"`
	RawJSON      sql.NullString `db:"raw_json" json:"raw_json,omitempty"`
	ModelID      string         `db:"model_id" json:"model_id"`
	Status       string         `db:"status" json:"status"`
	ErrorMessage sql.NullString `db:"error_message" json:"error_message,omitempty"`
	ErrorTrace   sql.NullString `db:"error_trace" json:"error_trace,omitempty"`
	DurationMS   int64          `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Template stores a prompt template; variables are a JSON array of
// declarations.
type Template struct {
	ID            string    `db:"id" json:"id"`
	Category      string    `db:"category" json:"category"`
	Feature       string    `db:"feature" json:"feature"`
	Body          string    `db:"body" json:"body"`
	VariablesJSON string    `db:"variables_json" json:"variables_json"`
	Version       int       `db:"version" json:"version"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Config binds templates to a feature.
type Config struct {
	ID                  string         `db:"id" json:"id"`
	Feature             string         `db:"feature" json:"feature"`
	SystemTemplateID    string         `db:"system_template_id" json:"system_template_id"`
	UserTemplateID      string         `db:"user_template_id" json:"user_template_id"`
	AssistantTemplateID sql.NullString `db:"assistant_template_id" json:"assistant_template_id,omitempty"`
	IsDefault           bool           `db:"is_default" json:"is_default"`
	IsActive            bool           `db:"is_active" json:"is_active"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// ProcessingLog is one audit record per terminal transition.
type ProcessingLog struct {
	ID         string    `db:"id" json:"id"`
	RequestID  string    `db:"request_id" json:"request_id"`
	Feature    string    `db:"feature" json:"feature"`
	ModelID    string    `db:"model_id" json:"model_id"`
	Status     string    `db:"status" json:"status"`
	ErrorKind  string    `db:"error_kind" json:"error_kind,omitempty"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
