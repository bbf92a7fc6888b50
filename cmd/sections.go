package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/ris3abh/ResumeForgeAI/pkg/config"
	"github.com/ris3abh/ResumeForgeAI/pkg/doc"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var sectionsCmd = &cobra.Command{
	Use:   "sections <resume.tex>",
	Short: "List the sections recognized in a resume",
	Long: `Parse a LaTeX resume and list the sections the configured heading rules
recognize, with their canonical names and body sizes. Useful for checking
which names to pass to 'optimize --sections'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSections,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) (err error) {
	rs := rulesetFromConfig()

	var data []byte
	data, err = os.ReadFile(args[0])
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume: %s", args[0])
		return err
	}

	var d doc.Document
	d, err = doc.Parse(string(data), rs)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse resume: %s", args[0])
		return err
	}

	sections := d.Sections()
	if len(sections) == 0 {
		fmt.Println("No sections recognized (check section heading patterns in config)")
		return err
	}

	for _, sec := range sections {
		lines := strings.Count(strings.TrimSpace(sec.Body), "\n") + 1
		wrapper := "no wrapper"
		if sec.Open != "" {
			wrapper = "wrapped"
		}
		fmt.Printf("%-20s %4d body line(s)  %s\n", sec.Name, lines, wrapper)
	}

	return err
}

// rulesetFromConfig loads the configured ruleset, falling back to defaults
// when no config file exists so read-only commands work without setup.
func rulesetFromConfig() (rs doc.Ruleset) {
	cfg, err := config.Load(getConfigFile())
	if err != nil {
		if getVerbose() {
			fmt.Printf("Using default section rules: %v\n", err)
		}
		rs = doc.DefaultRuleset()
		return rs
	}
	rs = cfg.Ruleset()
	return rs
}
