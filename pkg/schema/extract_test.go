package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject_FencedWithLanguageTag(t *testing.T) {
	raw, ok := ExtractObject("```json\n{\"tone\": \"friendly\", \"confidence\": 0.92}\n```")
	require.True(t, ok)
	assert.JSONEq(t, `{"tone":"friendly","confidence":0.92}`, string(raw))
}

func TestExtractObject_LeadingProse(t *testing.T) {
	raw, ok := ExtractObject(`Here is the summary you asked for: {"summary": "plans for a weekend hike", "participants": 3}`)
	require.True(t, ok)
	assert.JSONEq(t, `{"summary":"plans for a weekend hike","participants":3}`, string(raw))
}

func TestExtractObject_NestedAndStrings(t *testing.T) {
	raw, ok := ExtractObject(`{"outer": {"inner": "braces } in \" strings"}, "n": 1}`)
	require.True(t, ok)
	assert.JSONEq(t, `{"outer":{"inner":"braces } in \" strings"},"n":1}`, string(raw))
}

func TestExtractObject_NoObject(t *testing.T) {
	cases := []string{
		"plain prose without structure",
		"unbalanced { opener",
		`[1, 2, 3]`,
	}
	for _, text := range cases {
		_, ok := ExtractObject(text)
		assert.False(t, ok, "input %q", text)
	}
}

func TestExtractObject_SkipsInvalidCandidate(t *testing.T) {
	raw, ok := ExtractObject(`{not json} but later {"valid": true}`)
	require.True(t, ok)
	assert.JSONEq(t, `{"valid":true}`, string(raw))
}
