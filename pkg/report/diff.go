package report

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// ChangeOp classifies a line in a diff.
type ChangeOp string

// Line-level diff operations.
const (
	OpAdd     ChangeOp = "add"
	OpRemove  ChangeOp = "remove"
	OpContext ChangeOp = "context"
)

// Change is one line-level change record.
type Change struct {
	Op   ChangeOp `json:"op"`
	Line string   `json:"line"`
}

// Diff computes a line-based diff between the original and final document
// text with standard longest-common-subsequence semantics. Pure function;
// the result is an audit trail and carries no control-flow meaning.
func Diff(original, final string) (changes []Change) {
	a := splitLines(original)
	b := splitLines(final)

	matcher := difflib.NewMatcher(a, b)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			changes = appendLines(changes, OpContext, a[op.I1:op.I2])
		case 'd':
			changes = appendLines(changes, OpRemove, a[op.I1:op.I2])
		case 'i':
			changes = appendLines(changes, OpAdd, b[op.J1:op.J2])
		case 'r':
			changes = appendLines(changes, OpRemove, a[op.I1:op.I2])
			changes = appendLines(changes, OpAdd, b[op.J1:op.J2])
		}
	}
	return changes
}

// splitLines splits text for line matching. difflib.SplitLines appends a
// newline to its final element, which leaves a phantom "\n" entry for
// newline-terminated input; that entry would surface as a spurious empty
// context record.
func splitLines(text string) (lines []string) {
	lines = difflib.SplitLines(text)
	if n := len(lines); n > 0 && lines[n-1] == "\n" {
		lines = lines[:n-1]
	}
	return lines
}

func appendLines(changes []Change, op ChangeOp, lines []string) (result []Change) {
	result = changes
	for _, line := range lines {
		result = append(result, Change{Op: op, Line: strings.TrimSuffix(line, "\n")})
	}
	return result
}

// Unified renders a unified diff between the original and final document
// text, suitable for writing alongside the tailored output.
func Unified(original, final string) (diff string, err error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(final),
		FromFile: "original",
		ToFile:   "tailored",
		Context:  3,
	}

	diff, err = difflib.GetUnifiedDiffString(ud)
	if err != nil {
		err = errors.Wrap(err, "failed to build unified diff")
		return diff, err
	}

	return diff, err
}
