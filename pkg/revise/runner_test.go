package revise

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/ris3abh/ResumeForgeAI/pkg/doc"
	"github.com/ris3abh/ResumeForgeAI/pkg/validate"
)

//nolint:gochecknoglobals // Shared test fixture
var baseResume = `\documentclass{resume}
\begin{document}
\section{EXPERIENCE}
\resumeSubHeadingListStart
\resumeItem{Built the ingest pipeline}
\resumeSubHeadingListEnd

\section{TECHNICAL SKILLS}
\resumeSubHeadingListStart
\resumeItem{Go, Python, Postgres}
\resumeSubHeadingListEnd

\section{EDUCATION}
\resumeSubHeadingListStart
\resumeItem{BSc Computer Science}
\resumeSubHeadingListEnd

\end{document}
`

// scriptedGenerator replays a fixed sequence of bodies (or errors) per section
// and records every request it receives.
type scriptedGenerator struct {
	mu       sync.Mutex
	bodies   map[string][]string
	errs     map[string][]error
	requests map[string][]Request
}

func newScriptedGenerator() (g *scriptedGenerator) {
	g = &scriptedGenerator{
		bodies:   map[string][]string{},
		errs:     map[string][]error{},
		requests: map[string][]Request{},
	}
	return g
}

func (g *scriptedGenerator) Generate(ctx context.Context, req Request) (body string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	call := len(g.requests[req.SectionName])
	g.requests[req.SectionName] = append(g.requests[req.SectionName], req)

	if errList := g.errs[req.SectionName]; call < len(errList) && errList[call] != nil {
		return "", errList[call]
	}

	script := g.bodies[req.SectionName]
	if len(script) == 0 {
		return "", errors.Errorf("no script for section %q", req.SectionName)
	}
	if call >= len(script) {
		call = len(script) - 1
	}
	return script[call], err
}

func (g *scriptedGenerator) calls(section string) (n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests[section])
}

func (g *scriptedGenerator) request(t *testing.T, section string, i int) (req Request) {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	reqs := g.requests[section]
	if i >= len(reqs) {
		t.Fatalf("section %q has %d requests, wanted index %d", section, len(reqs), i)
	}
	return reqs[i]
}

func mustParse(t *testing.T, raw string) (d doc.Document) {
	t.Helper()
	d, err := doc.Parse(raw, doc.DefaultRuleset())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return d
}

func newTestRunner(gen Generator, base doc.Document, maxIterations int) (r *Runner) {
	checker := validate.NewChecker(base, validate.Config{
		RequiredMacros: []string{"resumeSubHeadingListStart", "resumeSubHeadingListEnd"},
	})
	r = NewRunner(gen, checker, Config{MaxIterations: maxIterations})
	return r
}

func TestRunFirstTryAccept(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.bodies["experience"] = []string{"\\resumeItem{Shipped the billing rewrite}"}
	gen.bodies["skills"] = []string{"\\resumeItem{Go, Kubernetes, Terraform}"}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "job description", []string{"experience", "skills"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.RunID == "" {
		t.Error("Expected a non-empty run ID")
	}
	if !outcome.Accepted {
		t.Errorf("Expected accepted outcome, got sections: %+v", outcome.Sections)
	}

	for _, name := range []string{"experience", "skills"} {
		so, found := outcome.Section(name)
		if !found {
			t.Fatalf("Missing outcome for section %q", name)
		}
		if so.Status != StatusAccepted {
			t.Errorf("Section %q status %q, want accepted", name, so.Status)
		}
		if so.IterationsUsed != 1 {
			t.Errorf("Section %q used %d iterations, want 1", name, so.IterationsUsed)
		}
	}

	// The unrequested section is preserved byte-for-byte.
	before, _ := base.FindSection("education")
	after, found := outcome.Final.FindSection("education")
	if !found {
		t.Fatal("education section missing from final document")
	}
	if before.Raw() != after.Raw() {
		t.Error("Unrequested section changed during the run")
	}

	finalText := outcome.Final.Render()
	if !strings.Contains(finalText, "Shipped the billing rewrite") {
		t.Error("Final document missing the accepted experience body")
	}
	if !strings.HasPrefix(finalText, "\\documentclass{resume}\n\\begin{document}\n") {
		t.Error("Preamble changed during the run")
	}
}

func TestRunEmptyBodiesThenValid(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.bodies["skills"] = []string{"", "  \n", "\\resumeItem{Go, Rust, Kafka}"}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "jd", []string{"skills"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !outcome.Accepted {
		t.Errorf("Expected accepted outcome, got: %+v", outcome.Sections)
	}

	so, _ := outcome.Section("skills")
	if so.Status != StatusAccepted {
		t.Errorf("Expected accepted status, got %q", so.Status)
	}
	if so.IterationsUsed != 3 {
		t.Errorf("Expected 3 iterations used, got %d", so.IterationsUsed)
	}
	if len(so.Attempts) != 3 {
		t.Fatalf("Expected 3 attempts in history, got %d", len(so.Attempts))
	}

	// The two empty bodies never applied and were fed back as violations.
	for i := 0; i < 2; i++ {
		if so.Attempts[i].Applied {
			t.Errorf("Attempt %d should not have applied", i)
		}
	}
	secondReq := gen.request(t, "skills", 1)
	if len(secondReq.Feedback) == 0 {
		t.Fatal("Second attempt received no feedback")
	}
	if secondReq.Feedback[0].Kind != validate.KindMalformedBody {
		t.Errorf("Expected malformed_body feedback, got %q", secondReq.Feedback[0].Kind)
	}

	if !strings.Contains(outcome.Final.Render(), "Go, Rust, Kafka") {
		t.Error("Final document missing the third, valid body")
	}
}

func TestRunExhaustion(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.bodies["experience"] = []string{`\resumeItem{never balanced`}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "jd", []string{"experience"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.Accepted {
		t.Error("Expected not-accepted outcome after exhaustion")
	}

	so, _ := outcome.Section("experience")
	if so.Status != StatusExhausted {
		t.Errorf("Expected exhausted status, got %q", so.Status)
	}
	if len(so.Attempts) != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", len(so.Attempts))
	}
	if got := gen.calls("experience"); got != 3 {
		t.Errorf("Generator called %d times, want 3", got)
	}

	// No attempt applied cleanly, so the base body survives as best effort.
	if !strings.Contains(outcome.Final.Render(), "Built the ingest pipeline") {
		t.Error("Expected the base body to survive when no candidate applied")
	}
}

func TestRunBestEffortUsesLastAppliedAttempt(t *testing.T) {
	base := mustParse(t, baseResume)

	// First body applies cleanly but fails validation (it smuggles in an extra
	// wrapper macro); the rest never apply at all.
	gen := newScriptedGenerator()
	gen.bodies["experience"] = []string{
		"\\resumeItem{Applied but rejected}\n\\resumeSubHeadingListStart",
		`{broken`,
	}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "jd", []string{"experience"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.Accepted {
		t.Error("Expected not-accepted outcome")
	}

	so, _ := outcome.Section("experience")
	if so.Status != StatusExhausted {
		t.Fatalf("Expected exhausted status, got %q", so.Status)
	}
	if !so.Attempts[0].Applied {
		t.Fatal("First attempt should have applied")
	}
	if so.Attempts[0].Result.Passed {
		t.Fatal("First attempt should have failed validation")
	}

	if !strings.Contains(outcome.Final.Render(), "Applied but rejected") {
		t.Error("Best-effort output should carry the last cleanly-applied body")
	}
}

func TestRunUnknownSectionSkipped(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.bodies["experience"] = []string{"\\resumeItem{Tailored}"}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "jd", []string{"projects", "experience"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !outcome.Accepted {
		t.Error("A skipped section should not prevent an accepted outcome")
	}

	so, found := outcome.Section("projects")
	if !found {
		t.Fatal("Missing outcome for skipped section")
	}
	if so.Status != StatusSkipped {
		t.Errorf("Expected skipped status, got %q", so.Status)
	}
	if so.Warning == "" {
		t.Error("Expected a warning for the skipped section")
	}
	if got := gen.calls("projects"); got != 0 {
		t.Errorf("Generator should not be called for a skipped section, got %d calls", got)
	}
}

func TestRunGeneratorErrorConsumesIteration(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.errs["skills"] = []error{errors.New("api unavailable")}
	gen.bodies["skills"] = []string{"", "\\resumeItem{Go, Spark}"}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "jd", []string{"skills"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	so, _ := outcome.Section("skills")
	if so.Status != StatusAccepted {
		t.Fatalf("Expected accepted status, got %q (attempts: %+v)", so.Status, so.Attempts)
	}
	if so.IterationsUsed != 2 {
		t.Errorf("Expected 2 iterations, got %d", so.IterationsUsed)
	}
	if so.Attempts[0].Err == "" {
		t.Error("First attempt should record the generator error")
	}

	secondReq := gen.request(t, "skills", 1)
	if len(secondReq.Feedback) == 0 || secondReq.Feedback[0].Kind != validate.KindGenerationFailed {
		t.Errorf("Expected generation_failed feedback on retry, got %+v", secondReq.Feedback)
	}
}

func TestRunFeedbackCarriesCheckerViolations(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.bodies["experience"] = []string{
		"\\resumeItem{Sneaky}\n\\resumeSubHeadingListEnd",
		"\\resumeItem{Clean}",
	}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "jd", []string{"experience"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	so, _ := outcome.Section("experience")
	if so.Status != StatusAccepted {
		t.Fatalf("Expected accepted status, got %q", so.Status)
	}

	secondReq := gen.request(t, "experience", 1)
	if len(secondReq.Feedback) == 0 {
		t.Fatal("Second attempt received no feedback")
	}
	if secondReq.Feedback[0].Kind != validate.KindMacroCount {
		t.Errorf("Expected macro_count feedback, got %q", secondReq.Feedback[0].Kind)
	}
}

func TestRunCancelledContext(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.bodies["experience"] = []string{"\\resumeItem{never reached}"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(ctx, base, "jd", []string{"experience"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.Accepted {
		t.Error("Expected not-accepted outcome under cancellation")
	}

	so, _ := outcome.Section("experience")
	if so.Status != StatusExhausted {
		t.Errorf("Expected exhausted status, got %q", so.Status)
	}
	if so.IterationsUsed != 0 {
		t.Errorf("Expected 0 iterations under pre-cancelled context, got %d", so.IterationsUsed)
	}
	if so.Warning == "" {
		t.Error("Expected a cancellation warning")
	}
	if got := gen.calls("experience"); got != 0 {
		t.Errorf("Generator should not run under a cancelled context, got %d calls", got)
	}
}

func TestRunAliasedSectionName(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.bodies["skills"] = []string{"\\resumeItem{Rust, Kafka}"}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "jd", []string{"technical_skills"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !outcome.Accepted {
		t.Errorf("Expected accepted outcome, got: %+v", outcome.Sections)
	}

	so, found := outcome.Section("technical_skills")
	if !found {
		t.Fatal("Aliased spelling should resolve to a section outcome")
	}
	if so.Status != StatusAccepted {
		t.Errorf("Expected accepted status, got %q", so.Status)
	}
	if got := gen.calls("skills"); got != 1 {
		t.Errorf("Expected 1 generator call for the resolved section, got %d", got)
	}

	if !strings.Contains(outcome.Final.Render(), "Rust, Kafka") {
		t.Error("Final document missing the tailored skills body")
	}
}

func TestRunDeduplicatesRequestedSections(t *testing.T) {
	base := mustParse(t, baseResume)

	gen := newScriptedGenerator()
	gen.bodies["experience"] = []string{"\\resumeItem{Once}"}

	runner := newTestRunner(gen, base, 3)
	outcome, err := runner.Run(context.Background(), base, "jd", []string{"experience", "EXPERIENCE", " experience ", "work_experience"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(outcome.Sections) != 1 {
		t.Errorf("Expected 1 section outcome, got %d", len(outcome.Sections))
	}
	if got := gen.calls("experience"); got != 1 {
		t.Errorf("Expected 1 generator call, got %d", got)
	}
}
