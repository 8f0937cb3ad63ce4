package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yildizm/DataSum/internal/config"
	"github.com/yildizm/DataSum/internal/emoji"
	"github.com/yildizm/DataSum/internal/logger"
)

var (
	cfgFile       string
	envFile       string
	verbose       bool
	noColor       bool
	noEmoji       bool
	dashboardPath string
	themeName     string
	profile       bool

	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "datasum",
		Short: "Interactive dataset explorer",
		Long: `DataSum explores a static tabular dataset through a dashboard of filters,
key metrics, charts and the raw records.

Every filter narrows the view; the metrics, charts and table always describe
the records that pass all active filters. The same dashboard is available as a
terminal UI, an HTTP server and one-shot reports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)

			if err := loadEnvFile(envFile, cmd.Flag("env-file").Changed); err != nil {
				return err
			}
			return initConfig()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with DATASUM_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&dashboardPath, "dashboard", "d", "", "dashboard definition file (YAML)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "terminal UI theme (default, high-contrast, minimal)")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "print operation timings to stderr when done")

	// Add subcommands
	rootCmd.AddCommand(newExploreCommand())
	rootCmd.AddCommand(newSummaryCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newChartCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newSampleCommand())
	rootCmd.AddCommand(newDashboardCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DataSum %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadEnvFile loads DATASUM_* variables from a dotenv file. Variables
// already set in the environment win. A missing default file is fine; a
// missing file named on the command line is not.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if !fileExists(path) {
		if explicit {
			return fmt.Errorf("env file not found: %s", path)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func initConfig() error {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Output.Verbose {
		verbose = true
	}
	globalConfig = cfg
	return nil
}

// GetGlobalConfig returns the loaded configuration, or defaults before
// the root command has run
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// Global helpers
func isVerbose() bool {
	return verbose
}

func isEmojiDisabled() bool {
	return noEmoji
}

// colorEnabled resolves --no-color, NO_COLOR and the configured color mode
func colorEnabled() bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch GetGlobalConfig().Output.ColorMode {
	case "never":
		return false
	case "always":
		return true
	default:
		return isTerminal(os.Stdout)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func newLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}

// Helper function to check if file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
