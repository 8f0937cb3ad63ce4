package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.datasum.yaml",               // Project-specific config (highest priority)
	"~/.config/datasum/config.yaml", // User config
	"/etc/datasum/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.datasum.yaml
// 4. ~/.config/datasum/config.yaml
// 5. /etc/datasum/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If custom path is provided, use only that path
	if customPath != "" {
		// Validate the custom path for security
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load from standard paths in reverse priority order (lowest to highest)
		paths := make([]string, len(l.configPaths))
		copy(paths, l.configPaths)
		// Reverse the slice to load lowest priority first
		for i := len(paths)/2 - 1; i >= 0; i-- {
			opp := len(paths) - 1 - i
			paths[i], paths[opp] = paths[opp], paths[i]
		}

		for _, path := range paths {
			expandedPath := expandPath(path)
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					// Log warning but continue with other config files
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	// Apply environment variable overrides
	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Create a temporary config to unmarshal into
	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Merge the file config into the existing config
	mergeConfigs(config, &fileConfig)

	return nil
}

// applyEnvOverrides applies DATASUM_* environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Dataset Config
		"DATASUM_DATASET_SOURCE":   func(v string) error { config.Dataset.Source = v; return nil },
		"DATASUM_DATASET_MAX_ROWS": func(v string) error { return parseInt(v, &config.Dataset.MaxRows) },
		"DATASUM_DATASET_SHEET":    func(v string) error { config.Dataset.Sheet = v; return nil },
		"DATASUM_DATASET_TIMEOUT":  func(v string) error { return parseDuration(v, &config.Dataset.Timeout) },

		// Dashboard Config
		"DATASUM_DASHBOARD_PATH": func(v string) error { config.Dashboard.Path = v; return nil },

		// Output Config
		"DATASUM_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"DATASUM_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"DATASUM_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"DATASUM_OUTPUT_DELIMITER":      func(v string) error { config.Output.Delimiter = v; return nil },
		"DATASUM_OUTPUT_EXPORT_DIR":     func(v string) error { config.Output.ExportDir = v; return nil },

		// Server Config
		"DATASUM_SERVER_ADDR":          func(v string) error { config.Server.Addr = v; return nil },
		"DATASUM_SERVER_READ_TIMEOUT":  func(v string) error { return parseDuration(v, &config.Server.ReadTimeout) },
		"DATASUM_SERVER_WRITE_TIMEOUT": func(v string) error { return parseDuration(v, &config.Server.WriteTimeout) },
		"DATASUM_SERVER_PREVIEW_ROWS":  func(v string) error { return parseInt(v, &config.Server.PreviewRows) },

		// Charts Config
		"DATASUM_CHARTS_WIDTH":          func(v string) error { return parseInt(v, &config.Charts.Width) },
		"DATASUM_CHARTS_HEIGHT":         func(v string) error { return parseInt(v, &config.Charts.Height) },
		"DATASUM_CHARTS_HISTOGRAM_BINS": func(v string) error { return parseInt(v, &config.Charts.HistogramBins) },

		// UI Config
		"DATASUM_UI_THEME":      func(v string) error { config.UI.Theme = v; return nil },
		"DATASUM_UI_TABLE_ROWS": func(v string) error { return parseInt(v, &config.UI.TableRows) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	// Clean the path to resolve any ".." components
	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Ensure it's a YAML file
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	// Convert to absolute path for additional validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Basic sanity check - ensure it's not in sensitive system directories
	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config
// Only non-zero values from source overwrite destination
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeDatasetConfig(&dst.Dataset, &src.Dataset)
	if src.Dashboard.Path != "" {
		dst.Dashboard.Path = src.Dashboard.Path
	}
	mergeOutputConfig(&dst.Output, &src.Output)
	mergeServerConfig(&dst.Server, &src.Server)
	mergeChartsConfig(&dst.Charts, &src.Charts)
	mergeUIConfig(&dst.UI, &src.UI)
}

func mergeDatasetConfig(dst, src *DatasetConfig) {
	if src.Source != "" {
		dst.Source = src.Source
	}
	if src.MaxRows != 0 {
		dst.MaxRows = src.MaxRows
	}
	if src.Sheet != "" {
		dst.Sheet = src.Sheet
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
}

// mergeOutputConfig merges output configuration
func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	if src.Delimiter != "" {
		dst.Delimiter = src.Delimiter
	}
	if src.ExportDir != "" {
		dst.ExportDir = src.ExportDir
	}
	// yaml cannot tell an explicit false from an absent key, so a file only turns verbose on
	if src.Verbose {
		dst.Verbose = true
	}
}

func mergeServerConfig(dst, src *ServerConfig) {
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.ReadTimeout != 0 {
		dst.ReadTimeout = src.ReadTimeout
	}
	if src.WriteTimeout != 0 {
		dst.WriteTimeout = src.WriteTimeout
	}
	if src.PreviewRows != 0 {
		dst.PreviewRows = src.PreviewRows
	}
}

func mergeChartsConfig(dst, src *ChartsConfig) {
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
	if src.HistogramBins != 0 {
		dst.HistogramBins = src.HistogramBins
	}
	if src.TerminalWidth != 0 {
		dst.TerminalWidth = src.TerminalWidth
	}
	if src.MaxCategories != 0 {
		dst.MaxCategories = src.MaxCategories
	}
}

func mergeUIConfig(dst, src *UIConfig) {
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	if src.TableRows != 0 {
		dst.TableRows = src.TableRows
	}
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

// Marshal renders a configuration as YAML
func Marshal(c *Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default configuration to path, refusing to overwrite
func WriteDefault(path string) error {
	if err := validateConfigPath(path); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}
	if fileExists(path) {
		return fmt.Errorf("config file already exists: %s", path)
	}
	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// MarshalMinimal renders only the dataset and output sections, the
// settings most projects change
func MarshalMinimal(c *Config) ([]byte, error) {
	minimal := struct {
		Version string        `yaml:"version"`
		Dataset DatasetConfig `yaml:"dataset"`
		Output  OutputConfig  `yaml:"output"`
	}{c.Version, c.Dataset, c.Output}

	data, err := yaml.Marshal(minimal)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
