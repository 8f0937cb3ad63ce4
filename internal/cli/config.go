package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/DataSum/internal/config"
	"github.com/yildizm/DataSum/internal/emoji"
)

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage DataSum configuration",
		Long: `Manage DataSum configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
	}

	// Add subcommands
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new DataSum configuration file with default values.

By default, writes every section. Use --minimal for only the dataset and
output settings.`,
		Example: `  # Create full config in current directory
  datasum config init

  # Create minimal config
  datasum config init --minimal

  # Create config at specific path
  datasum config init --output ~/.config/datasum/config.yaml

  # Overwrite existing config
  datasum config init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = ".datasum.yaml"
			}

			if !force && fileExists(outputPath) {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
			}

			dir := filepath.Dir(outputPath)
			if dir != "." && dir != "/" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			var (
				content []byte
				err     error
			)
			if minimal {
				content, err = config.MarshalMinimal(config.DefaultConfig())
			} else {
				content, err = config.Marshal(config.DefaultConfig())
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(outputPath, content, 0o600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			statusf(out, "success", "Configuration file created at: %s", outputPath)
			if minimal {
				statusf(out, "details", "Created minimal configuration with dataset and output settings")
			} else {
				statusf(out, "details", "Created full configuration with all sections")
			}
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for config file (default: .datasum.yaml)")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	return initCmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current effective configuration after loading from all sources.

Shows the merged configuration from all sources including defaults,
config files, .env and environment variable overrides.`,
		Example: `  # Show config in YAML format
  datasum config show

  # Show config in JSON format
  datasum config show --format json

  # Show config from specific file
  datasum config show --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetGlobalConfig()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}

			return nil
		},
	}

	showCmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, json)")

	return showCmd
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate a DataSum configuration file for syntax and semantic errors.

Checks the configuration file for:
- Valid YAML syntax
- Valid values for enums
- Proper data types and ranges`,
		Example: `  # Validate current config
  datasum config validate

  # Validate specific config file
  datasum config validate --config /path/to/config.yaml`,
		// replaces the root hook so a broken config is reported below
		// instead of aborting before the command runs
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			emoji.SetEmojiDisabled(isEmojiDisabled())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := loadEnvFile(envFile, cmd.Flag("env-file").Changed); err != nil {
				return err
			}

			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				statusf(out, "error", "Configuration validation failed:")
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			statusf(out, "success", "Configuration is valid")
			statusf(out, "statistics", "Configuration summary:")
			fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
			fmt.Fprintf(out, "   Dataset Source: %s\n", valueOr(cfg.Dataset.Source, "(built-in sample)"))
			fmt.Fprintf(out, "   Dashboard: %s\n", valueOr(cfg.Dashboard.Path, "(automatic)"))
			fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)
			fmt.Fprintf(out, "   Server Address: %s\n", cfg.Server.Addr)
			fmt.Fprintf(out, "   Theme: %s\n", cfg.UI.Theme)

			return nil
		},
	}

	return validateCmd
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths DataSum searches for configuration files.

Shows the search order and indicates which files exist.`,
		Example: `  # Show config search paths
  datasum config path`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			statusf(out, "details", "Configuration file search paths (in priority order):")
			fmt.Fprintln(out)

			priority := []string{"Highest", "Medium", "Lowest"}
			for i, path := range config.GetConfigPaths() {
				exists := " " + GetEmoji("error") + " (not found)"
				if fileExists(path) {
					exists = " " + GetEmoji("success") + " (exists)"
				}

				fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, exists)
				if i < len(priority) {
					fmt.Fprintf(out, "     Priority: %s\n", priority[i])
				}
				fmt.Fprintln(out)
			}

			if currentConfig, found := config.FindConfigFile(); found {
				statusf(out, "info", "Current config file: %s", currentConfig)
			} else {
				statusf(out, "info", "No config file found, using defaults")
			}

			fmt.Fprintln(out)
			statusf(out, "insight", "Environment variables with DATASUM_ prefix (also read from .env) override file settings")
		},
	}

	return pathCmd
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
