package doc

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// PatchRequest is a proposed full replacement of one section's body.
type PatchRequest struct {
	SectionName string `json:"section_name"`
	Body        string `json:"body"`
}

// ErrUnknownSection is returned by Apply when the patch target does not exist
// in the document. Callers treat it as a local, non-fatal condition.
var ErrUnknownSection = errors.New("unknown section")

// MalformedError reports a replacement body that failed its independent
// well-formedness parse.
type MalformedError struct {
	SectionName string
	Problems    []string
}

func (e *MalformedError) Error() (msg string) {
	msg = fmt.Sprintf("malformed replacement for section %q: %s",
		e.SectionName, strings.Join(e.Problems, "; "))
	return msg
}

// CheckBody verifies that a replacement body is independently well formed:
// non-empty, with balanced braces and balanced environments. The heading and
// wrapper tokens are not the generator's to supply, so the body must stand
// on its own.
func CheckBody(body string) (problems []string) {
	if strings.TrimSpace(body) == "" {
		problems = append(problems, "body is empty")
		return problems
	}

	balance, _ := BraceBalance(body)
	if balance != 0 {
		problems = append(problems, fmt.Sprintf("unbalanced braces (net %+d)", balance))
	}

	for _, env := range EnvironmentImbalances(body) {
		problems = append(problems, fmt.Sprintf("unbalanced environment %q", env))
	}

	return problems
}

// Apply replaces one section's body and returns the resulting document. The
// receiver is never modified, so patches to distinct sections commute and a
// shared base document is safe to patch from concurrent goroutines.
//
// Returns ErrUnknownSection when the target is absent and *MalformedError
// when the body fails CheckBody. The section's heading and wrapper tokens
// are preserved untouched in either case.
func (d Document) Apply(req PatchRequest) (patched Document, err error) {
	canonical := d.ResolveName(req.SectionName)

	target := -1
	for i, seg := range d.segments {
		if seg.section != nil && seg.section.Name == canonical {
			target = i
			break
		}
	}
	if target < 0 {
		err = errors.Wrapf(ErrUnknownSection, "section %q", canonical)
		return patched, err
	}

	if problems := CheckBody(req.Body); len(problems) > 0 {
		err = &MalformedError{SectionName: canonical, Problems: problems}
		return patched, err
	}

	segments := make([]segment, len(d.segments))
	copy(segments, d.segments)

	sec := *d.segments[target].section
	sec.Body = req.Body
	segments[target].section = &sec

	patched = Document{segments: segments, aliases: d.aliases}
	return patched, err
}
