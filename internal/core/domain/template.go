package domain

import (
	"fmt"
	"time"
)

// TemplateCategory places a template inside a chat exchange.
type TemplateCategory string

const (
	CategorySystem    TemplateCategory = "system"
	CategoryUser      TemplateCategory = "user"
	CategoryAssistant TemplateCategory = "assistant"
)

// ParseTemplateCategory validates a raw category tag.
func ParseTemplateCategory(s string) (TemplateCategory, error) {
	c := TemplateCategory(s)
	switch c {
	case CategorySystem, CategoryUser, CategoryAssistant:
		return c, nil
	}
	return "", BadRequestError(fmt.Sprintf("unknown template category: %q", s))
}

// VariableType constrains the runtime value bound to a template variable.
type VariableType string

const (
	VarString  VariableType = "string"
	VarNumber  VariableType = "number"
	VarBoolean VariableType = "boolean"
	VarArray   VariableType = "array"
	VarObject  VariableType = "object"
)

// TemplateVariable declares one placeholder of a template body.
type TemplateVariable struct {
	Name     string       `json:"name"`
	Type     VariableType `json:"type"`
	Required bool         `json:"required"`
	Default  any          `json:"default,omitempty"`
}

// PromptTemplate is a parameterized text blueprint. The set of placeholders
// in Body and the set of declared variable names must be identical; the
// renderer enforces this at create/update time.
type PromptTemplate struct {
	ID        string             `json:"id"`
	Category  TemplateCategory   `json:"category"`
	Feature   Feature            `json:"feature"`
	Body      string             `json:"body"`
	Variables []TemplateVariable `json:"variables"`
	Version   int                `json:"version"`
	Active    bool               `json:"active"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Variable looks up a declared variable by name.
func (t *PromptTemplate) Variable(name string) (*TemplateVariable, bool) {
	for i := range t.Variables {
		if t.Variables[i].Name == name {
			return &t.Variables[i], true
		}
	}
	return nil, false
}

// PromptConfig binds a system/user/assistant template triple to a feature.
// At most one active config per feature carries IsDefault=true.
type PromptConfig struct {
	ID                  string    `json:"id"`
	Feature             Feature   `json:"feature"`
	SystemTemplateID    string    `json:"system_template_id"`
	UserTemplateID      string    `json:"user_template_id"`
	AssistantTemplateID string    `json:"assistant_template_id,omitempty"`
	IsDefault           bool      `json:"is_default"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// RenderedPrompt is the ephemeral product of one render. It is never
// persisted; it lives only for a single render -> dispatch cycle.
type RenderedPrompt struct {
	TemplateID      string   `json:"template_id"`
	Text            string   `json:"text"`
	EstimatedTokens int      `json:"estimated_tokens"`
	VariablesUsed   []string `json:"variables_used"`
}
