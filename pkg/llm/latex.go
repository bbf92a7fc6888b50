package llm

import (
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // Compiled once, read-only
var latexFenceRe = regexp.MustCompile("(?s)```(?:latex|tex)?\\s*\n(.*?)```")

// ExtractLatexBody pulls the LaTeX body out of a model response. Models
// sometimes wrap output in code fences or prepend prose like "Here is the
// optimized section:"; both are stripped. Returns the trimmed body, which
// may be empty if the response contained no LaTeX at all.
func ExtractLatexBody(text string) (body string) {
	body = text

	// Prefer a fenced code block when present
	if m := latexFenceRe.FindStringSubmatch(body); m != nil {
		body = m[1]
	}

	// Drop leading prose lines that contain no LaTeX command, but only when
	// a command-bearing line follows
	lines := strings.Split(body, "\n")
	first := -1
	for i, line := range lines {
		if strings.Contains(line, `\`) {
			first = i
			break
		}
	}
	if first > 0 {
		body = strings.Join(lines[first:], "\n")
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	return body
}
