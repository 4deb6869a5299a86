package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkdownBold(t *testing.T) {
	assert.Equal(t, "big launch today", StripMarkdown("**big launch** today"))
}

func TestStripMarkdownHeadings(t *testing.T) {
	got := StripMarkdown("## The headline\n\nBody text")
	assert.Equal(t, "The headline\n\nBody text", got)
}

func TestStripMarkdownBullets(t *testing.T) {
	got := StripMarkdown("- first point\n• second point\nplain line")
	assert.Equal(t, "first point\nsecond point\nplain line", got)
}

func TestStripMarkdownMarkersWithoutSpace(t *testing.T) {
	assert.Equal(t, "Heading", StripMarkdown("#Heading"))
	assert.Equal(t, "The headline", StripMarkdown("##The headline"))
	assert.Equal(t, "item", StripMarkdown("-item"))
	assert.Equal(t, "point", StripMarkdown("•point"))
}

func TestStripMarkdownBackticks(t *testing.T) {
	assert.Equal(t, "use go test for this", StripMarkdown("use `go test` for this"))
}

func TestStripMarkdownKeepsHyphensMidLine(t *testing.T) {
	got := StripMarkdown("a well-known trade-off")
	assert.Equal(t, "a well-known trade-off", got)
}

func TestStripMarkdownMessyResponse(t *testing.T) {
	in := "# My Post\n\n**Key idea:** agents.\n\n- one\n- two\n\nTry `this` *now*."
	out := StripMarkdown(in)

	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "##")
	assert.NotContains(t, out, "`")
	assert.NotContains(t, out, "*")
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		assert.False(t, strings.HasPrefix(trimmed, "- "), "line keeps bullet: %q", line)
		assert.False(t, strings.HasPrefix(trimmed, "• "), "line keeps bullet: %q", line)
		assert.False(t, strings.HasPrefix(trimmed, "#"), "line keeps heading: %q", line)
	}
}
