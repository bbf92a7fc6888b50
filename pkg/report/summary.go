package report

import (
	"fmt"
	"strings"

	"github.com/ris3abh/ResumeForgeAI/pkg/revise"
)

// Summary renders a human-readable account of a revision run: what passed,
// what was retried, and what was ultimately exhausted.
func Summary(outcome revise.Outcome) (summary string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s\n", outcome.RunID)
	if outcome.Accepted {
		b.WriteString("Outcome: accepted\n")
	} else {
		b.WriteString("Outcome: best-effort (not all sections accepted)\n")
	}

	for _, so := range outcome.Sections {
		fmt.Fprintf(&b, "\nSection %q: %s", so.Name, so.Status)
		if so.Status != revise.StatusSkipped {
			fmt.Fprintf(&b, " after %d iteration(s)", so.IterationsUsed)
		}
		b.WriteString("\n")

		if so.Warning != "" {
			fmt.Fprintf(&b, "  warning: %s\n", so.Warning)
		}

		for i, attempt := range so.Attempts {
			if attempt.Result.Passed {
				fmt.Fprintf(&b, "  attempt %d: accepted\n", i+1)
				continue
			}
			fmt.Fprintf(&b, "  attempt %d: rejected\n", i+1)
			for _, v := range attempt.Result.Violations {
				fmt.Fprintf(&b, "    - [%s] %s\n", v.Kind, v.Description)
			}
		}
	}

	summary = b.String()
	return summary
}
