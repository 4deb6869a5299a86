package generate

import "strings"

// StripMarkdown removes the formatting models sneak into plain-text output:
// bold and italic markers, backticks, heading prefixes, and bullet markers.
func StripMarkdown(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = stripLinePrefix(line)
	}
	s = strings.Join(lines, "\n")

	s = strings.ReplaceAll(s, "*", "")
	return strings.TrimSpace(s)
}

func stripLinePrefix(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]

	// Headings: one or more # with or without a following space.
	if strings.HasPrefix(trimmed, "#") {
		rest := strings.TrimLeft(trimmed, "#")
		return indent + strings.TrimLeft(rest, " \t")
	}

	for _, marker := range []string{"-", "•"} {
		if strings.HasPrefix(trimmed, marker) {
			rest := strings.TrimPrefix(trimmed, marker)
			return indent + strings.TrimLeft(rest, " \t")
		}
	}
	return line
}
