package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens_Basic(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))

	// 16 chars, 3 words: char estimate wins.
	assert.Equal(t, 4, EstimateTokens("alpha beta gamma"))

	// Many short words: word count wins over chars/4.
	text := strings.Repeat("a ", 50)
	assert.Equal(t, 50, EstimateTokens(text))
}

func TestEstimateTokens_Surcharges(t *testing.T) {
	assert.Equal(t, 2, structuralSurcharge("- one\n- two"))

	withTable := "x\n| a | b |\n| c | d |"
	noTable := "x\n  a   b  \n  c   d  "
	assert.Equal(t, 4, structuralSurcharge(withTable))
	assert.Equal(t, 0, structuralSurcharge(noTable))

	fenced := "```\ncode line here\n```"
	assert.Greater(t, structuralSurcharge(fenced), 0)
}

func TestTruncate_UnderBudgetUnchanged(t *testing.T) {
	text := "Short sentence."
	assert.Equal(t, text, TruncateToMaxTokens(text, 100))
}

func TestTruncate_SentenceGreedy(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third sentence closes."
	out := TruncateToMaxTokens(text, 10)

	assert.True(t, strings.HasSuffix(out, "..."))
	assert.True(t, strings.HasPrefix(out, "First sentence here."))
	assert.NotContains(t, out, "Third")
}

func TestTruncate_WordFallback(t *testing.T) {
	// One long sentence that cannot fit whole.
	text := "This single enormous sentence keeps going with many words and never terminates early enough to fit."
	out := TruncateToMaxTokens(text, 5)

	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Less(t, len(out), len(text))
}

func TestTruncate_BudgetProperty(t *testing.T) {
	samples := []string{
		"One. Two. Three. Four. Five. Six. Seven. Eight. Nine. Ten.",
		strings.Repeat("word ", 200),
		"A sentence with some length to it. Another one follows here! And a question? Then more text without terminator",
		"- bullet one\n- bullet two\n| a | b |\n" + strings.Repeat("filler text ", 40),
	}
	for _, text := range samples {
		for _, maxTokens := range []int{3, 5, 10, 25, 100} {
			out := TruncateToMaxTokens(text, maxTokens)
			assert.LessOrEqual(t, EstimateTokens(out), maxTokens,
				"maxTokens=%d text=%q", maxTokens, text[:20])
		}
	}
}

func TestOptimizeForFeature(t *testing.T) {
	out := OptimizeForFeature("match the user  with   tribes .", "MATCHING")
	assert.Equal(t, "find compatibility between the user with tribes.", out)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b\n\nc", Normalize("a   b\n\n\n\nc"))
}
