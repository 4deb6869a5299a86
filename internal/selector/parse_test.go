package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelectionCleanJSON(t *testing.T) {
	p := parseSelection(`{"selectedIndices":[0,2],"reasoning":"relevant"}`)
	assert.Equal(t, ParseOK, p.Outcome)
	assert.Equal(t, []int{0, 2}, p.Indices)
	assert.Equal(t, "relevant", p.Reasoning)
}

func TestParseSelectionFencedJSON(t *testing.T) {
	raw := "Here is my selection:\n```json\n{\"selectedIndices\": [1], \"reasoning\": \"best match\"}\n```"
	p := parseSelection(raw)
	assert.Equal(t, ParseExtracted, p.Outcome)
	assert.Equal(t, []int{1}, p.Indices)
	assert.Equal(t, "best match", p.Reasoning)
}

func TestParseSelectionBracesInsideStrings(t *testing.T) {
	raw := `prefix {"selectedIndices":[0],"reasoning":"uses {curly} braces"} suffix`
	p := parseSelection(raw)
	assert.Equal(t, ParseExtracted, p.Outcome)
	assert.Equal(t, "uses {curly} braces", p.Reasoning)
}

func TestParseSelectionGarbage(t *testing.T) {
	p := parseSelection("no json here at all")
	assert.Equal(t, ParseFallback, p.Outcome)
}

func TestParseSelectionUnbalanced(t *testing.T) {
	p := parseSelection(`{"selectedIndices":[0`)
	assert.Equal(t, ParseFallback, p.Outcome)
}

func TestExtractObject(t *testing.T) {
	obj, ok := extractObject(`text {"a": {"b": 1}} tail`)
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, obj)

	_, ok = extractObject("nothing")
	assert.False(t, ok)
}
