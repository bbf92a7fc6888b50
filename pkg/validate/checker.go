package validate

import (
	"fmt"
	"strings"

	"github.com/ris3abh/ResumeForgeAI/pkg/doc"
)

// Violation kinds reported by the checker. KindMalformedBody and
// KindGenerationFailed are reported by the revision loop rather than the
// checker itself, so the feedback channel carries one violation type.
const (
	KindUnbalancedBraces      = "unbalanced_braces"
	KindUnbalancedEnvironment = "unbalanced_environment"
	KindMacroCount            = "macro_count"
	KindEmptySection          = "empty_section"
	KindOverLength            = "over_length"
	KindMalformedBody         = "malformed_body"
	KindGenerationFailed      = "generation_failed"
)

// Violation is a single structural problem with enough location context for
// a caller or reviewer to act on without re-deriving the diff.
type Violation struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Section     string `json:"section,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// Result is the verdict of a structural check.
type Result struct {
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations,omitempty"`
}

// Config holds the checker's tunables.
type Config struct {
	// RequiredMacros are macro names (without backslash) whose invocation
	// counts must match the base document.
	RequiredMacros []string
	// LineCeiling caps the rendered line count; 0 disables the check. This
	// is the textual proxy for the one-page constraint.
	LineCeiling int
}

// Checker validates candidate documents against a baseline captured from the
// base document: required-macro invocation counts and which sections were
// non-empty. Check is a pure function of the checker and its argument.
type Checker struct {
	cfg         Config
	baseMacros  map[string]int
	baseHasBody map[string]bool
}

// NewChecker captures the baseline from the base document.
func NewChecker(base doc.Document, cfg Config) (c *Checker) {
	c = &Checker{
		cfg:         cfg,
		baseMacros:  map[string]int{},
		baseHasBody: map[string]bool{},
	}

	rendered := base.Render()
	for _, macro := range cfg.RequiredMacros {
		c.baseMacros[macro] = doc.MacroCount(rendered, macro)
	}
	for _, sec := range base.Sections() {
		c.baseHasBody[sec.Name] = strings.TrimSpace(sec.Body) != ""
	}

	return c
}

// Check validates a candidate document and reports every violation found,
// not just the first.
func (c *Checker) Check(candidate doc.Document) (result Result) {
	rendered := candidate.Render()

	result.Violations = append(result.Violations, c.checkBraces(rendered)...)
	result.Violations = append(result.Violations, c.checkEnvironments(rendered)...)
	result.Violations = append(result.Violations, c.checkMacros(rendered)...)
	result.Violations = append(result.Violations, c.checkSectionBodies(candidate)...)
	result.Violations = append(result.Violations, c.checkLength(rendered)...)

	result.Passed = len(result.Violations) == 0
	return result
}

func (c *Checker) checkBraces(rendered string) (violations []Violation) {
	balance, firstNegative := doc.BraceBalance(rendered)
	if balance == 0 && firstNegative < 0 {
		return violations
	}

	offset := firstNegative
	if offset < 0 {
		offset = len(rendered)
	}

	// A zero net count can still hide a close brace that precedes its open.
	description := fmt.Sprintf("brace count is off by %+d", balance)
	if balance == 0 {
		description = fmt.Sprintf("close brace precedes its open brace near offset %d", firstNegative)
	}

	violations = append(violations, Violation{
		Kind:        KindUnbalancedBraces,
		Description: description,
		Offset:      offset,
	})
	return violations
}

func (c *Checker) checkEnvironments(rendered string) (violations []Violation) {
	for _, env := range doc.EnvironmentImbalances(rendered) {
		violations = append(violations, Violation{
			Kind:        KindUnbalancedEnvironment,
			Description: fmt.Sprintf("environment %q has unmatched begin/end", env),
			Offset:      strings.Index(rendered, `\begin{`+env+`}`),
		})
	}
	return violations
}

func (c *Checker) checkMacros(rendered string) (violations []Violation) {
	for _, macro := range c.cfg.RequiredMacros {
		want := c.baseMacros[macro]
		got := doc.MacroCount(rendered, macro)
		if got != want {
			violations = append(violations, Violation{
				Kind:        KindMacroCount,
				Description: fmt.Sprintf(`macro \%s invoked %d times, expected %d`, macro, got, want),
			})
		}
	}
	return violations
}

func (c *Checker) checkSectionBodies(candidate doc.Document) (violations []Violation) {
	for _, sec := range candidate.Sections() {
		if !c.baseHasBody[sec.Name] {
			continue
		}
		if strings.TrimSpace(sec.Body) == "" {
			violations = append(violations, Violation{
				Kind:        KindEmptySection,
				Description: "section body is empty but was non-empty in the base document",
				Section:     sec.Name,
			})
		}
	}
	return violations
}

func (c *Checker) checkLength(rendered string) (violations []Violation) {
	if c.cfg.LineCeiling <= 0 {
		return violations
	}

	lines := strings.Count(rendered, "\n")
	if !strings.HasSuffix(rendered, "\n") && rendered != "" {
		lines++
	}
	if lines > c.cfg.LineCeiling {
		violations = append(violations, Violation{
			Kind:        KindOverLength,
			Description: fmt.Sprintf("document is %d lines, ceiling is %d", lines, c.cfg.LineCeiling),
		})
	}
	return violations
}
