package revise

import (
	"context"

	"github.com/ris3abh/ResumeForgeAI/pkg/doc"
	"github.com/ris3abh/ResumeForgeAI/pkg/validate"
)

// Request carries everything the external content generator needs to produce
// a candidate body for one section.
type Request struct {
	SectionName string
	CurrentBody string
	JobContext  string
	// Feedback holds the violations from the previous attempt, empty on the
	// first iteration.
	Feedback []validate.Violation
}

// Generator produces candidate section bodies. Implementations are external
// collaborators (typically an LLM client) and must respect ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req Request) (body string, err error)
}

// Terminal states for a section's revision.
const (
	StatusAccepted  = "accepted"
	StatusExhausted = "exhausted"
	StatusSkipped   = "skipped"
)

// Attempt is one generate-apply-validate cycle, retained for audit. Candidate
// is a stable snapshot because documents are immutable values.
type Attempt struct {
	Body string
	// Applied reports whether the body patched cleanly onto the base
	// document. When false, Result carries the malformed-body or
	// generation-failure violation instead of a checker verdict.
	Applied   bool
	Candidate doc.Document
	Result    validate.Result
	Err       string
}

// SectionOutcome is the terminal state of one requested section.
type SectionOutcome struct {
	Name           string
	Status         string
	IterationsUsed int
	Attempts       []Attempt
	Warning        string
}

// Outcome is the result of a full revision run. The run always terminates
// with a document: fully accepted, or best-effort with Accepted false and the
// per-section history explaining what was retried and what ran out.
type Outcome struct {
	RunID    string
	Final    doc.Document
	Accepted bool
	Sections []SectionOutcome
}

// Section returns the outcome for a section by name, resolving aliases the
// same way the run did.
func (o Outcome) Section(name string) (so SectionOutcome, found bool) {
	canonical := o.Final.ResolveName(name)
	for _, s := range o.Sections {
		if s.Name == canonical {
			return s, true
		}
	}
	return so, false
}
