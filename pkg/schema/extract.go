package schema

import (
	"encoding/json"
	"strings"
)

// ExtractObject pulls the first JSON object out of raw completion text.
// Models frequently wrap structured output in markdown code fences or lead
// with prose, so the scan tolerates both: fenced blocks are unwrapped first,
// then the text is searched for a brace-balanced region that unmarshals
// cleanly. Returns false when no valid object is present.
func ExtractObject(text string) (json.RawMessage, bool) {
	text = unfence(text)

	start := strings.IndexByte(text, '{')
	for start != -1 {
		if end := matchBrace(text, start); end != -1 {
			candidate := text[start : end+1]
			var probe map[string]json.RawMessage
			if json.Unmarshal([]byte(candidate), &probe) == nil {
				return json.RawMessage(candidate), true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			break
		}
		start += 1 + next
	}
	return nil, false
}

// unfence strips a markdown code fence, with or without a language tag.
func unfence(text string) string {
	trimmed := strings.TrimSpace(text)
	open := strings.Index(trimmed, "```")
	if open == -1 {
		return text
	}
	rest := trimmed[open+3:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[nl+1:]
	}
	if close := strings.Index(rest, "```"); close != -1 {
		return rest[:close]
	}
	return rest
}

// matchBrace returns the index of the brace closing the object opened at
// start, honoring strings and escapes, or -1 when unbalanced.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
