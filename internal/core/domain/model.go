package domain

import "time"

// ModelConfig describes one entry of the provider catalog. Entries are
// immutable between catalog refreshes.
type ModelConfig struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Provider        string           `json:"provider"`
	Capabilities    []Capability     `json:"capabilities"`
	ContextWindow   int              `json:"context_window"`
	MaxOutputTokens int              `json:"max_output_tokens"`
	DefaultParams   GenerationParams `json:"default_params"`
	Active          bool             `json:"active"`
	RefreshedAt     time.Time        `json:"refreshed_at"`
}

// HasCapability reports whether the model declares c.
func (m *ModelConfig) HasCapability(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Satisfies reports whether the model declares every required capability.
func (m *ModelConfig) Satisfies(required []Capability) bool {
	for _, c := range required {
		if !m.HasCapability(c) {
			return false
		}
	}
	return true
}
