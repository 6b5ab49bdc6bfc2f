// Package jsonx recovers structured data from free-form model output.
//
// Language models asked for JSON routinely wrap it in prose or markdown
// code fences, or return something that is not JSON at all. Callers pass
// a stage-appropriate fallback and always get a usable value back.
package jsonx

import (
	"encoding/json"
	"strings"
)

// Extract locates a JSON object or array embedded in raw and
// unmarshals it into T. The object span is tried first: prose around
// the payload may contain stray brackets, so the array span is only a
// second candidate. On any failure (no candidate span, malformed JSON,
// wrong shape) it returns fallback. It never returns an error.
func Extract[T any](raw string, fallback T) T {
	s := StripCodeFences(raw)
	for _, candidate := range []string{ObjectSpan(s), ArraySpan(s)} {
		if candidate == "" {
			continue
		}
		var out T
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			return out
		}
	}
	return fallback
}

// StripCodeFences removes a surrounding markdown code fence, if any.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ObjectSpan returns the greedy {...} span of s: from the first `{` to
// the last `}`. Returns "" when no such span exists.
func ObjectSpan(s string) string {
	return span(s, '{', '}')
}

// ArraySpan returns the greedy [...] span of s: from the first `[` to
// the last `]`. Returns "" when no such span exists.
func ArraySpan(s string) string {
	return span(s, '[', ']')
}

func span(s string, open, closer byte) string {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return ""
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
