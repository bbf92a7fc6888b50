package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "resumeforge",
	Short: "Tailor LaTeX resume sections to a job description",
	Long: `resumeforge rewrites individual sections of a LaTeX resume so their wording
better matches a target job description.

Sections are parsed out of the document, rewritten via the Claude API, validated
for structural integrity (balanced braces, preserved macros, length ceiling),
and spliced back in with everything outside the section preserved byte-for-byte.
Failed candidates are retried with the validation findings as feedback.`,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.resumeforge/config.json)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}
