package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/ris3abh/ResumeForgeAI/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Create a default configuration file at $HOME/.resumeforge/config.json
(or at the path given with --config).

Edit the file afterwards to set your Anthropic API key, required macros, and
section heading rules.`,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	err = config.InitConfig(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to create config")
		return err
	}

	fmt.Println("Config file created. Set anthropic_api_key before running 'resumeforge optimize'.")
	return err
}
