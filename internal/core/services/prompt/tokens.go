package prompt

import (
	"strings"
)

// EstimateTokens approximates the token count of a text. The base estimate is
// max(ceil(chars/4), words); code fences, bullet lines and table rows carry a
// structural surcharge. This is a heuristic and will not match provider-side
// tokenizers exactly.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	base := (len(text) + 3) / 4
	if words := len(strings.Fields(text)); words > base {
		base = words
	}

	return base + structuralSurcharge(text)
}

func structuralSurcharge(text string) int {
	surcharge := 0
	inFence := false
	fenceLen := 0

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				surcharge += (fenceLen + 2) / 3
				fenceLen = 0
			}
			inFence = !inFence
			continue
		}
		if inFence {
			fenceLen += len(line) + 1
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "- "),
			strings.HasPrefix(trimmed, "* "),
			strings.HasPrefix(trimmed, "+ "):
			surcharge++
		case strings.HasPrefix(trimmed, "|"):
			surcharge += 2
		}
	}
	// Unterminated fence still counts.
	if inFence {
		surcharge += (fenceLen + 2) / 3
	}

	return surcharge
}

// ellipsisReserve is the token budget held back for the trailing marker.
const ellipsisReserve = 3

// TruncateToMaxTokens returns text unchanged when it fits the budget.
// Otherwise it accumulates whole sentences until the budget minus an ellipsis
// reserve is reached, falling back to word-by-word accumulation of the first
// sentence when not even one sentence fits. Truncated output always ends in
// "...".
func TruncateToMaxTokens(text string, maxTokens int) string {
	if EstimateTokens(text) <= maxTokens {
		return text
	}

	budget := maxTokens - ellipsisReserve
	sentences := splitSentences(text)

	var acc strings.Builder
	kept := 0
	for _, s := range sentences {
		candidate := acc.String() + s
		if EstimateTokens(candidate) > budget {
			break
		}
		acc.WriteString(s)
		kept++
	}

	if kept == 0 && len(sentences) > 0 {
		return truncateWords(sentences[0], budget)
	}

	return strings.TrimRight(acc.String(), " ") + "..."
}

// splitSentences cuts on sentence terminators, keeping the terminator and any
// trailing space with the sentence it ends.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r == '.' || r == '?' || r == '!' {
			end := i + 1
			for end < len(runes) && runes[end] == ' ' {
				end++
			}
			sentences = append(sentences, string(runes[start:end]))
			start = end
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func truncateWords(sentence string, budget int) string {
	words := strings.Fields(sentence)
	var acc strings.Builder
	for _, w := range words {
		candidate := acc.String()
		if candidate != "" {
			candidate += " "
		}
		candidate += w
		if EstimateTokens(candidate) > budget {
			break
		}
		if acc.Len() > 0 {
			acc.WriteString(" ")
		}
		acc.WriteString(w)
	}
	return acc.String() + "..."
}
