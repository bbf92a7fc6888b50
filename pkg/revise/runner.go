package revise

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ris3abh/ResumeForgeAI/pkg/doc"
	"github.com/ris3abh/ResumeForgeAI/pkg/validate"
)

// DefaultMaxIterations bounds generation attempts per section when the
// config leaves it unset.
const DefaultMaxIterations = 3

// Config holds the revision loop's tunables.
type Config struct {
	// MaxIterations caps generation attempts per section.
	MaxIterations int
	// IterationTimeout bounds a single generator call; 0 means the run
	// context alone bounds it. Expiry consumes an iteration like any other
	// failed attempt.
	IterationTimeout time.Duration
}

// Runner drives the iterative revision of requested sections against an
// immutable base document.
type Runner struct {
	gen     Generator
	checker *validate.Checker
	cfg     Config
}

// NewRunner creates a runner. MaxIterations defaults to DefaultMaxIterations.
func NewRunner(gen Generator, checker *validate.Checker, cfg Config) (r *Runner) {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	r = &Runner{gen: gen, checker: checker, cfg: cfg}
	return r
}

// Run revises the requested sections and assembles the final document.
//
// Sections are processed concurrently: the base document is immutable, so
// goroutines share it without locking, and patches to distinct sections
// commute. Assembly is a single join step after every section reaches a
// terminal state. A section absent from the base is skipped with a warning
// and does not prevent an accepted outcome; an exhausted section contributes
// its last cleanly-applied candidate as best-effort output and marks the run
// not accepted.
func (r *Runner) Run(ctx context.Context, base doc.Document, jobContext string, sections []string) (outcome Outcome, err error) {
	outcome.RunID = uuid.New().String()

	names := dedupeNames(base, sections)
	results := make([]SectionOutcome, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		if _, found := base.FindSection(name); !found {
			results[i] = SectionOutcome{
				Name:    name,
				Status:  StatusSkipped,
				Warning: fmt.Sprintf("section %q not found in base document, skipping", name),
			}
			continue
		}

		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = r.reviseSection(ctx, base, name, jobContext)
		}(i, name)
	}
	wg.Wait()

	outcome.Sections = results
	outcome.Final, outcome.Accepted, err = assemble(base, results)
	return outcome, err
}

// reviseSection runs the generate-apply-validate cycle for one section until
// a candidate passes, iterations run out, or the context is cancelled. A new
// iteration is never scheduled after cancellation is observed; an in-flight
// generator call is bounded by its own context.
func (r *Runner) reviseSection(ctx context.Context, base doc.Document, name, jobContext string) (so SectionOutcome) {
	so = SectionOutcome{Name: name, Status: StatusExhausted}

	sec, _ := base.FindSection(name)

	var feedback []validate.Violation
	for len(so.Attempts) < r.cfg.MaxIterations {
		if ctx.Err() != nil {
			so.Warning = fmt.Sprintf("cancelled after %d attempts: %v", len(so.Attempts), ctx.Err())
			break
		}

		body, genErr := r.generate(ctx, Request{
			SectionName: name,
			CurrentBody: sec.Body,
			JobContext:  jobContext,
			Feedback:    feedback,
		})
		if genErr != nil {
			v := validate.Violation{
				Kind:        validate.KindGenerationFailed,
				Description: genErr.Error(),
				Section:     name,
			}
			so.Attempts = append(so.Attempts, Attempt{
				Err:    genErr.Error(),
				Result: validate.Result{Violations: []validate.Violation{v}},
			})
			feedback = []validate.Violation{v}
			continue
		}

		candidate, applyErr := base.Apply(doc.PatchRequest{SectionName: name, Body: body})
		if applyErr != nil {
			v := validate.Violation{
				Kind:        validate.KindMalformedBody,
				Description: applyErr.Error(),
				Section:     name,
			}
			so.Attempts = append(so.Attempts, Attempt{
				Body:   body,
				Result: validate.Result{Violations: []validate.Violation{v}},
			})
			feedback = []validate.Violation{v}
			continue
		}

		result := r.checker.Check(candidate)
		so.Attempts = append(so.Attempts, Attempt{
			Body:      body,
			Applied:   true,
			Candidate: candidate,
			Result:    result,
		})

		if result.Passed {
			so.Status = StatusAccepted
			break
		}
		feedback = result.Violations
	}

	so.IterationsUsed = len(so.Attempts)
	return so
}

func (r *Runner) generate(ctx context.Context, req Request) (body string, err error) {
	if r.cfg.IterationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.IterationTimeout)
		defer cancel()
	}

	body, err = r.gen.Generate(ctx, req)
	return body, err
}

// assemble merges per-section results into the final document. Accepted
// bodies always apply; exhausted sections contribute their most recent
// cleanly-applied candidate, if any.
func assemble(base doc.Document, results []SectionOutcome) (final doc.Document, accepted bool, err error) {
	final = base
	accepted = true

	for _, so := range results {
		switch so.Status {
		case StatusAccepted:
			body := so.Attempts[len(so.Attempts)-1].Body
			final, err = final.Apply(doc.PatchRequest{SectionName: so.Name, Body: body})
			if err != nil {
				err = errors.Wrapf(err, "failed to re-apply accepted patch for section %q", so.Name)
				return final, false, err
			}
		case StatusExhausted:
			accepted = false
			for i := len(so.Attempts) - 1; i >= 0; i-- {
				if !so.Attempts[i].Applied {
					continue
				}
				final, err = final.Apply(doc.PatchRequest{SectionName: so.Name, Body: so.Attempts[i].Body})
				if err != nil {
					err = errors.Wrapf(err, "failed to apply best-effort patch for section %q", so.Name)
					return final, false, err
				}
				break
			}
		}
	}

	return final, accepted, err
}

// dedupeNames resolves requested names through the base document's alias map,
// so an aliased spelling and its canonical form count as one request.
func dedupeNames(base doc.Document, sections []string) (names []string) {
	seen := map[string]bool{}
	for _, s := range sections {
		canonical := base.ResolveName(s)
		if canonical == "" || seen[canonical] {
			continue
		}
		seen[canonical] = true
		names = append(names, canonical)
	}
	return names
}
