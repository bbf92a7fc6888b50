package doc

import (
	"regexp"
	"sort"
)

//nolint:gochecknoglobals // Compiled once, read-only
var envRe = regexp.MustCompile(`\\(begin|end)\{([^}]*)\}`)

// BraceBalance returns the net count of unescaped opening minus closing
// braces in text, plus the byte offset where the count first went negative
// (-1 if it never did). LaTeX escape sequences like \{ and \} are skipped.
func BraceBalance(text string) (balance int, firstNegative int) {
	firstNegative = -1
	escaped := false
	for i, r := range text {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '{':
			balance++
		case '}':
			balance--
			if balance < 0 && firstNegative < 0 {
				firstNegative = i
			}
		}
	}
	return balance, firstNegative
}

// EnvironmentImbalances returns the names of environments whose \begin and
// \end counts differ, sorted for deterministic reporting.
func EnvironmentImbalances(text string) (names []string) {
	counts := map[string]int{}
	for _, m := range envRe.FindAllStringSubmatch(text, -1) {
		if m[1] == "begin" {
			counts[m[2]]++
		} else {
			counts[m[2]]--
		}
	}

	for name, n := range counts {
		if n != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// MacroCount counts invocations of a macro (without the leading backslash) in
// text. A word boundary after the macro name keeps \resumeItem from matching
// \resumeItemListStart.
func MacroCount(text, macro string) (count int) {
	re := regexp.MustCompile(`\\` + regexp.QuoteMeta(macro) + `\b`)
	count = len(re.FindAllStringIndex(text, -1))
	return count
}
