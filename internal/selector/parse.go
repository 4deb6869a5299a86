package selector

import (
	"encoding/json"
	"strings"
)

// ParseOutcome tags how a model response was interpreted.
type ParseOutcome int

const (
	// ParseOK means the response decoded as the expected JSON object.
	ParseOK ParseOutcome = iota
	// ParseExtracted means the object was recovered from surrounding text.
	ParseExtracted
	// ParseFallback means no usable object was found.
	ParseFallback
)

type parsedSelection struct {
	Outcome   ParseOutcome
	Indices   []int
	Reasoning string
}

type selectionPayload struct {
	SelectedIndices []int  `json:"selectedIndices"`
	Reasoning       string `json:"reasoning"`
}

// parseSelection decodes a selection response tolerantly. Models sometimes
// wrap the JSON object in prose or code fences; a decode of the whole body is
// tried first, then the first balanced {...} span. Anything else is tagged
// ParseFallback for the caller to handle.
func parseSelection(raw string) parsedSelection {
	raw = strings.TrimSpace(raw)

	var payload selectionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return parsedSelection{Outcome: ParseOK, Indices: payload.SelectedIndices, Reasoning: payload.Reasoning}
	}

	if obj, ok := extractObject(raw); ok {
		if err := json.Unmarshal([]byte(obj), &payload); err == nil {
			return parsedSelection{Outcome: ParseExtracted, Indices: payload.SelectedIndices, Reasoning: payload.Reasoning}
		}
	}

	return parsedSelection{Outcome: ParseFallback}
}

// extractObject returns the first balanced top-level {...} span in s.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
