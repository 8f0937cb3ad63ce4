package config

import (
	"fmt"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	Dataset   DatasetConfig   `yaml:"dataset" json:"dataset"`
	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Charts    ChartsConfig    `yaml:"charts" json:"charts"`
	UI        UIConfig        `yaml:"ui" json:"ui"`
}

// DatasetConfig configures where data comes from
type DatasetConfig struct {
	Source  string        `yaml:"source" json:"source"`     // path, URI or sample:titanic
	MaxRows int           `yaml:"max_rows" json:"max_rows"` // 0 means no limit
	Sheet   string        `yaml:"sheet" json:"sheet"`       // xlsx sheet name
	Timeout time.Duration `yaml:"timeout" json:"timeout"`   // load timeout
}

// DashboardConfig points at a dashboard definition file
type DashboardConfig struct {
	Path string `yaml:"path" json:"path"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv|prompt
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	Delimiter     string `yaml:"delimiter" json:"delimiter"` // export delimiter
	ExportDir     string `yaml:"export_dir" json:"export_dir"`
}

// ServerConfig configures the HTTP dashboard
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	PreviewRows  int           `yaml:"preview_rows" json:"preview_rows"`
}

// ChartsConfig configures chart rendering
type ChartsConfig struct {
	Width         int `yaml:"width" json:"width"`
	Height        int `yaml:"height" json:"height"`
	HistogramBins int `yaml:"histogram_bins" json:"histogram_bins"`
	TerminalWidth int `yaml:"terminal_width" json:"terminal_width"`
	MaxCategories int `yaml:"max_categories" json:"max_categories"`
}

// UIConfig configures the terminal dashboard
type UIConfig struct {
	Theme     string `yaml:"theme" json:"theme"` // default|high-contrast|minimal
	TableRows int    `yaml:"table_rows" json:"table_rows"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Dataset: DatasetConfig{
			Source:  "",
			MaxRows: 0,
			Timeout: 30 * time.Second,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			Delimiter:     ",",
			ExportDir:     ".",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			PreviewRows:  50,
		},
		Charts: ChartsConfig{
			Width:         800,
			Height:        480,
			HistogramBins: 20,
			TerminalWidth: 40,
			MaxCategories: 12,
		},
		UI: UIConfig{
			Theme:     "default",
			TableRows: 15,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateDatasetConfig(); err != nil {
		return err
	}
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateChartsConfig(); err != nil {
		return err
	}
	return c.validateUIConfig()
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
			"prompt":   true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv, prompt)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Delimiter != "" {
		validDelimiters := map[string]bool{
			",": true, ";": true, "|": true, "\t": true, "tab": true, "comma": true,
		}
		if !validDelimiters[c.Output.Delimiter] {
			return fmt.Errorf("invalid delimiter: %q (must be one of: ',', ';', '|', tab)", c.Output.Delimiter)
		}
	}
	return nil
}

func (c *Config) validateDatasetConfig() error {
	if c.Dataset.MaxRows < 0 {
		return fmt.Errorf("max_rows must be non-negative")
	}
	if c.Dataset.Timeout < 0 {
		return fmt.Errorf("dataset timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.PreviewRows < 0 {
		return fmt.Errorf("preview_rows must be non-negative")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	return nil
}

func (c *Config) validateChartsConfig() error {
	if c.Charts.Width < 1 || c.Charts.Height < 1 {
		return fmt.Errorf("chart width and height must be greater than 0")
	}
	if c.Charts.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be greater than 0")
	}
	if c.Charts.TerminalWidth < 1 {
		return fmt.Errorf("terminal_width must be greater than 0")
	}
	return nil
}

func (c *Config) validateUIConfig() error {
	if c.UI.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.UI.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.UI.Theme)
		}
	}
	if c.UI.TableRows < 1 {
		return fmt.Errorf("table_rows must be greater than 0")
	}
	return nil
}
