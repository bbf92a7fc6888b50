package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/ris3abh/ResumeForgeAI/pkg/config"
	"github.com/ris3abh/ResumeForgeAI/pkg/doc"
	"github.com/ris3abh/ResumeForgeAI/pkg/jd"
	"github.com/ris3abh/ResumeForgeAI/pkg/llm"
	"github.com/ris3abh/ResumeForgeAI/pkg/renderer"
	"github.com/ris3abh/ResumeForgeAI/pkg/report"
	"github.com/ris3abh/ResumeForgeAI/pkg/revise"
	"github.com/ris3abh/ResumeForgeAI/pkg/validate"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var resumePath string

//nolint:gochecknoglobals // Cobra boilerplate
var sectionList string

//nolint:gochecknoglobals // Cobra boilerplate
var outputPath string

//nolint:gochecknoglobals // Cobra boilerplate
var maxIterations int

//nolint:gochecknoglobals // Cobra boilerplate
var renderPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var runTimeout time.Duration

//nolint:gochecknoglobals // Cobra boilerplate
var optimizeCmd = &cobra.Command{
	Use:   "optimize <jd-file-or-url>",
	Short: "Tailor resume sections to a job description",
	Long: `Tailor the requested sections of a LaTeX resume to a job description.

The job description can be provided as:
- A file path (e.g., jd.txt)
- A URL (e.g., https://example.com/jobs/123)

Each requested section is rewritten via the Claude API, validated, and retried
with feedback until it passes or the iteration budget runs out. Sections are
processed concurrently; everything outside the requested sections is preserved
byte-for-byte. A unified diff is written next to the output for audit.

Exit code is non-zero when any requested section exhausts its retries; the
best-effort output is still written.

Example:
  resumeforge optimize jd.txt --resume resume.tex
  resumeforge optimize https://example.com/jobs/123 --resume resume.tex --sections experience,skills`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(optimizeCmd)
	optimizeCmd.Flags().StringVar(&resumePath, "resume", "", "Path to the LaTeX resume (required)")
	optimizeCmd.Flags().StringVar(&sectionList, "sections", "experience,skills", "Comma-separated sections to tailor")
	optimizeCmd.Flags().StringVar(&outputPath, "output", "", "Output path (default <resume>-tailored.tex in the configured output dir)")
	optimizeCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Max generation attempts per section (default from config)")
	optimizeCmd.Flags().BoolVar(&renderPDF, "render", false, "Render the tailored resume to PDF and report the page count")
	optimizeCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "Overall run deadline")
	_ = optimizeCmd.MarkFlagRequired("resume")
}

func runOptimize(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	// Load configuration
	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	// Read and parse the base resume
	var base doc.Document
	var original string
	base, original, err = loadResume(resumePath, cfg.Ruleset())
	if err != nil {
		return err
	}

	// Fetch the job description
	var jobDescription string
	jobDescription, err = fetchJD(ctx, args[0])
	if err != nil {
		return err
	}

	// Analyze the job description
	client := llm.NewClient(cfg.AnthropicAPIKey, cfg.GetModel())
	var analysis llm.JDAnalysis
	analysis, err = runAnalysis(ctx, client, jobDescription)
	if err != nil {
		return err
	}

	// Revise the requested sections
	var outcome revise.Outcome
	outcome, err = runRevision(ctx, cfg, base, client, analysis, jobDescription)
	if err != nil {
		return err
	}

	// Write output and diff
	finalText := outcome.Final.Render()
	outPath := buildOutputPath(outputPath, resumePath, cfg.Defaults.OutputDir)
	err = writeOutputs(original, finalText, outPath)
	if err != nil {
		return err
	}

	fmt.Println(report.Summary(outcome))
	fmt.Printf("Tailored resume written to: %s\n", outPath)
	fmt.Printf("Audit diff written to: %s\n", outPath+".diff")

	if renderPDF {
		renderFinal(outPath)
	}

	if !outcome.Accepted {
		err = errors.New("one or more sections could not be tailored within the iteration budget (best-effort output written)")
		return err
	}

	return err
}

func loadResume(path string, rs doc.Ruleset) (base doc.Document, original string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume: %s", path)
		return base, original, err
	}
	original = string(data)

	base, err = doc.Parse(original, rs)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse resume: %s", path)
		return base, original, err
	}

	if getVerbose() {
		fmt.Printf("Parsed %d sections from %s:\n", len(base.Sections()), path)
		for _, sec := range base.Sections() {
			fmt.Printf("  - %s\n", sec.Name)
		}
	}

	return base, original, err
}

func fetchJD(ctx context.Context, input string) (jobDescription string, err error) {
	jobDescription, err = jd.Fetch(ctx, input)
	if err != nil {
		err = errors.Wrap(err, "failed to fetch job description")
		return jobDescription, err
	}

	if getVerbose() {
		fmt.Printf("Fetched job description (%d characters)\n", len(jobDescription))
	}

	return jobDescription, err
}

func runAnalysis(ctx context.Context, client *llm.Client, jobDescription string) (analysis llm.JDAnalysis, err error) {
	// Show spinner during analysis unless in verbose mode
	var analysisSpinner *spinner
	if !getVerbose() {
		analysisSpinner = newSpinner("Analyzing job description with Claude API...")
		analysisSpinner.start()
	} else {
		fmt.Println("Analyzing job description with Claude API...")
	}

	analysis, err = client.Analyze(ctx, jobDescription)

	if analysisSpinner != nil {
		analysisSpinner.stopSpinner()
	}

	if err != nil {
		err = errors.Wrap(err, "Claude API analysis failed")
		return analysis, err
	}

	if !getVerbose() {
		fmt.Println("✓ Analysis complete")
	} else {
		fmt.Printf("Company: %s\nRole: %s\n", analysis.CompanyName, analysis.RoleTitle)
		fmt.Printf("Key requirements: %s\n", strings.Join(analysis.KeyRequirements, ", "))
	}

	return analysis, err
}

func runRevision(ctx context.Context, cfg config.Config, base doc.Document, client *llm.Client, analysis llm.JDAnalysis, jobDescription string) (outcome revise.Outcome, err error) {
	iterations := maxIterations
	if iterations <= 0 {
		iterations = cfg.GetMaxIterations()
	}

	checker := validate.NewChecker(base, validate.Config{
		RequiredMacros: cfg.RequiredMacros,
		LineCeiling:    cfg.LineCeiling,
	})
	generator := llm.NewSectionGenerator(client, analysis)
	runner := revise.NewRunner(generator, checker, revise.Config{
		MaxIterations:    iterations,
		IterationTimeout: 2 * time.Minute,
	})

	sections := strings.Split(sectionList, ",")

	var revSpinner *spinner
	if !getVerbose() {
		revSpinner = newSpinner("Tailoring sections...")
		revSpinner.start()
	} else {
		fmt.Printf("Tailoring sections: %s\n", sectionList)
	}

	outcome, err = runner.Run(ctx, base, jobDescription, sections)

	if revSpinner != nil {
		revSpinner.stopSpinner()
	}

	if err != nil {
		err = errors.Wrap(err, "revision run failed")
		return outcome, err
	}

	if !getVerbose() {
		fmt.Println("✓ Tailoring complete")
	}

	return outcome, err
}

func buildOutputPath(flagValue, resumePath, outputDir string) (outPath string) {
	if flagValue != "" {
		outPath = flagValue
		return outPath
	}

	base := strings.TrimSuffix(filepath.Base(resumePath), filepath.Ext(resumePath))
	outPath = filepath.Join(outputDir, base+"-tailored.tex")
	return outPath
}

func writeOutputs(original, finalText, outPath string) (err error) {
	err = renderer.WriteTeX(finalText, outPath)
	if err != nil {
		err = errors.Wrap(err, "failed to write tailored resume")
		return err
	}

	var unified string
	unified, err = report.Unified(original, finalText)
	if err != nil {
		err = errors.Wrap(err, "failed to build audit diff")
		return err
	}

	err = renderer.WriteTeX(unified, outPath+".diff")
	if err != nil {
		err = errors.Wrap(err, "failed to write audit diff")
		return err
	}

	return err
}

func renderFinal(outPath string) {
	pdfPath, pages, renderErr := renderer.RenderPDF(outPath, filepath.Dir(outPath))
	if renderErr != nil {
		fmt.Printf("Warning: PDF render failed: %v\n", renderErr)
		return
	}

	fmt.Printf("PDF written to: %s (%d page(s))\n", pdfPath, pages)
	if pages > 1 {
		fmt.Println("Warning: tailored resume exceeds one page")
	}
}

// spinner provides a simple text-based progress indicator.
type spinner struct {
	message string
	stop    chan bool
	done    chan bool
	mu      sync.Mutex
	active  bool
}

func newSpinner(message string) (s *spinner) {
	s = &spinner{
		message: message,
		stop:    make(chan bool),
		done:    make(chan bool),
	}
	return s
}

func (s *spinner) start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		chars := []string{"|", "/", "-", "\\"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		fmt.Printf("%s ", s.message)
		for {
			select {
			case <-s.stop:
				// Clear the line and ensure cursor is at start of new line
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(s.message)+2))
				s.done <- true
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s", s.message, chars[i%len(chars)])
				i++
			}
		}
	}()
}

func (s *spinner) stopSpinner() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stop <- true
	<-s.done

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}
