package renderer

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//nolint:gochecknoglobals // Compiled once, read-only
var pagesRe = regexp.MustCompile(`Output written on .*\((\d+) pages?`)

// RenderPDF compiles a LaTeX file to PDF with pdflatex and reports the page
// count parsed from the engine's log. This is the optional typesetting
// collaborator; structural validation never depends on it.
func RenderPDF(texPath, outputDir string) (pdfPath string, pages int, err error) {
	// Validate pdflatex exists
	err = checkPdflatexExists()
	if err != nil {
		return pdfPath, pages, err
	}

	// Validate input file exists
	_, err = os.Stat(texPath)
	if os.IsNotExist(err) {
		err = errors.Errorf("file not found: %s", texPath)
		return pdfPath, pages, err
	}

	// Ensure output directory exists
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return pdfPath, pages, err
	}

	//nolint:noctx // Context not available for exec.Command - pdflatex is a long-running subprocess
	cmd := exec.Command(
		"pdflatex",
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", outputDir,
		texPath,
	)

	// Capture output
	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "pdflatex failed: %s", string(output))
		return pdfPath, pages, err
	}

	pages = parsePageCount(string(output))

	base := strings.TrimSuffix(filepath.Base(texPath), filepath.Ext(texPath))
	pdfPath = filepath.Join(outputDir, base+".pdf")

	return pdfPath, pages, err
}

// checkPdflatexExists verifies pdflatex is installed.
func checkPdflatexExists() (err error) {
	//nolint:noctx // Context not available for version check
	cmd := exec.Command("pdflatex", "--version")
	err = cmd.Run()
	if err != nil {
		err = errors.New("pdflatex not found in PATH (install a TeX distribution to render PDFs)")
		return err
	}
	return err
}

// parsePageCount extracts the page count from pdflatex terminal output.
// Returns 0 when the line is absent.
func parsePageCount(output string) (pages int) {
	m := pagesRe.FindStringSubmatch(output)
	if m == nil {
		return pages
	}
	pages, _ = strconv.Atoi(m[1])
	return pages
}

// WriteTeX writes LaTeX content to a file.
func WriteTeX(content, outputPath string) (err error) {
	// Ensure output directory exists
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	// Write file
	err = os.WriteFile(outputPath, []byte(content), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write tex file: %s", outputPath)
		return err
	}

	return err
}
