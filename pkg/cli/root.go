package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	// Version is the current version of numentry
	Version = "1.0.0"
)

// Config holds the global configuration for the numentry CLI
type Config struct {
	ConfigDir string
	Debug     bool
}

// GlobalConfig is the shared configuration instance
var GlobalConfig = &Config{}

// NewRootCommand creates the root cobra command for numentry
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "numentry",
		Short: "numentry - controlled numeric text entry",
		Long: `numentry runs numeric entry fields that accept only keystrokes keeping the
text a well-formed number within its bounds and precision.

Fields are grouped into forms described in YAML. Forms can be checked, replayed
from key scripts, and edited interactively in the terminal.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			if GlobalConfig.Debug {
				log.SetOutput(os.Stderr)
				log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
			} else {
				log.SetOutput(io.Discard)
			}

			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&GlobalConfig.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&GlobalConfig.ConfigDir, "config-dir", "", "Configuration directory (default: ~/.numentry)")

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewReplayCommand())
	cmd.AddCommand(NewFormatCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewFormsCommand())
	cmd.AddCommand(NewEditCommand())

	return cmd
}

// initConfig creates the configuration directory, its forms directory and
// a default config.yaml
func initConfig() error {
	// Environment variable always takes priority (for testing)
	if envDir := os.Getenv("NUMENTRY_CONFIG_DIR"); envDir != "" {
		GlobalConfig.ConfigDir = envDir
	} else if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		GlobalConfig.ConfigDir = filepath.Join(homeDir, ".numentry")
	}

	if err := os.MkdirAll(GlobalConfig.ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.MkdirAll(GetFormsDir(), 0755); err != nil {
		return fmt.Errorf("failed to create forms directory: %w", err)
	}

	configFile := filepath.Join(GlobalConfig.ConfigDir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := map[string]interface{}{
			"version": "1.0",
		}
		data, err := yaml.Marshal(defaultConfig)
		if err != nil {
			return fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err := os.WriteFile(configFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
	}

	return nil
}

// GetConfigDir returns the configuration directory path
// Priority order: 1) NUMENTRY_CONFIG_DIR env var, 2) GlobalConfig.ConfigDir, 3) ~/.numentry
func GetConfigDir() string {
	if envDir := os.Getenv("NUMENTRY_CONFIG_DIR"); envDir != "" {
		return envDir
	}
	if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".numentry"
		}
		return filepath.Join(homeDir, ".numentry")
	}
	return GlobalConfig.ConfigDir
}

// GetFormsDir returns the directory holding saved form definitions
func GetFormsDir() string {
	return filepath.Join(GetConfigDir(), "forms")
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
