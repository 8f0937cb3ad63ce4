package formatter

import (
	"fmt"

	"github.com/yildizm/DataSum/internal/analyzer"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(analysis *analyzer.Analysis) ([]byte, error)
}

// Options selects and configures a formatter by name
type Options struct {
	Color       bool
	Delimiter   rune
	PreviewRows int
}

// New returns the formatter for a format name: text, json, markdown, csv
// or prompt
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case "", "text", "terminal":
		return NewTerminal(opts.Color), nil
	case "json":
		return NewJSONWithPreview(opts.PreviewRows), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(opts.Delimiter), nil
	case "prompt":
		return NewPrompt(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (must be one of: text, json, markdown, csv, prompt)", format)
	}
}
