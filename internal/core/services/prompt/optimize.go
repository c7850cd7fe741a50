package prompt

import (
	"regexp"
	"strings"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
)

// featurePhrases rewrites terse wording into the phrasing each feature's
// downstream models respond best to. Substitutions are plain string replaces
// applied in table order; none of them overlap, so ordering is cosmetic.
var featurePhrases = map[domain.Feature][]struct{ from, to string }{
	domain.FeatureMatching: {
		{"match", "find compatibility between"},
		{"score the", "rate the compatibility of the"},
	},
	domain.FeaturePersonality: {
		{"describe", "analyze the personality traits of"},
		{"profile the", "build a structured personality profile for the"},
	},
	domain.FeatureEngagement: {
		{"suggest", "generate engagement ideas for"},
		{"prompt the", "write a conversation prompt for the"},
	},
	domain.FeatureRecommendation: {
		{"suggest", "recommend options tailored to"},
		{"list", "rank and recommend"},
	},
	domain.FeatureConversation: {
		{"reply", "compose a contextually appropriate reply"},
	},
}

var (
	multiSpace   = regexp.MustCompile(`[ \t]{2,}`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
	spaceBefore  = regexp.MustCompile(` +([.,?!;:])`)
)

// OptimizeForFeature applies the feature's phrase substitutions followed by
// whitespace and punctuation normalization. The transform is deterministic
// and changes surface wording only.
func OptimizeForFeature(text string, feature domain.Feature) string {
	for _, p := range featurePhrases[feature] {
		text = strings.ReplaceAll(text, p.from, p.to)
	}
	return Normalize(text)
}

// Normalize collapses runs of spaces and blank lines and removes stray
// spaces before punctuation.
func Normalize(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	text = spaceBefore.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
