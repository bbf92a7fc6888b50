package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/ris3abh/ResumeForgeAI/pkg/doc"
)

// Config represents the application configuration.
type Config struct {
	AnthropicAPIKey string            `json:"anthropic_api_key"`
	Model           string            `json:"model,omitempty"`
	MaxIterations   int               `json:"max_iterations,omitempty"`
	LineCeiling     int               `json:"line_ceiling,omitempty"`
	RequiredMacros  []string          `json:"required_macros,omitempty"`
	Sections        []doc.SectionRule `json:"sections,omitempty"`
	Aliases         map[string]string `json:"aliases,omitempty"`
	Defaults        DefaultConfig     `json:"defaults"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
}

// GetModel returns the configured model or the default if not specified.
func (c *Config) GetModel() (model string) {
	if c.Model != "" {
		model = c.Model
		return model
	}
	model = "claude-sonnet-4-20250514"
	return model
}

// GetMaxIterations returns the configured iteration cap or the default.
func (c *Config) GetMaxIterations() (iterations int) {
	if c.MaxIterations > 0 {
		iterations = c.MaxIterations
		return iterations
	}
	iterations = 3
	return iterations
}

// Ruleset builds the section recognition rules from config, falling back to
// the default LaTeX resume conventions when none are configured.
func (c *Config) Ruleset() (rs doc.Ruleset) {
	rs = doc.DefaultRuleset()
	if len(c.Sections) > 0 {
		rs.Headings = c.Sections
	}
	if len(c.Aliases) > 0 {
		rs.Aliases = c.Aliases
	}
	return rs
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return cfg, err
		}
		path = filepath.Join(homeDir, ".resumeforge", "config.json")
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'resumeforge init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	// Parse JSON
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	// Override with environment variable if set
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.AnthropicAPIKey = apiKey
	}

	// Validate required fields
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() (err error) {
	if c.AnthropicAPIKey == "" {
		err = errors.New("anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")
		return err
	}

	if c.MaxIterations < 0 {
		err = errors.New("max_iterations must not be negative")
		return err
	}

	if c.LineCeiling < 0 {
		err = errors.New("line_ceiling must not be negative")
		return err
	}

	// Set default output_dir if not specified
	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "."
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return err
		}
		path = filepath.Join(homeDir, ".resumeforge", "config.json")
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	defaultRules := doc.DefaultRuleset()
	defaultConfig := Config{
		AnthropicAPIKey: "sk-ant-api03-...",
		MaxIterations:   3,
		LineCeiling:     120,
		RequiredMacros: []string{
			"resumeSubHeadingListStart",
			"resumeSubHeadingListEnd",
		},
		Sections: defaultRules.Headings,
		Aliases:  defaultRules.Aliases,
		Defaults: DefaultConfig{
			OutputDir: ".",
		},
	}

	// Write to file
	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
