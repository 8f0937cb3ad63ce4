package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yildizm/go-logparser"

	"github.com/yildizm/DataSum/internal/dataset"
)

// LogLoader turns a log file into a table of timestamp, level and message
// records, so application logs can be filtered like any other dataset.
type LogLoader struct{}

// NewLogLoader creates a log file loader
func NewLogLoader() *LogLoader { return &LogLoader{} }

// Name returns the loader name
func (l *LogLoader) Name() string { return "log" }

// CanOpen accepts .log files
func (l *LogLoader) CanOpen(uri string) bool {
	return hasExt(uri, ".log")
}

// Open parses the file, detecting json, logfmt or plain text lines
func (l *LogLoader) Open(ctx context.Context, uri string, opts Options) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(uri) // #nosec G304 - user supplied dataset path
	if err != nil {
		return nil, err
	}

	entries, err := logparser.New().ParseString(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse log: %w", err)
	}

	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		ts := ""
		if !e.Timestamp.IsZero() {
			ts = e.Timestamp.Format(time.RFC3339)
		}
		records = append(records, []string{ts, e.Level, e.Message})
	}
	records = limit(records, opts.MaxRows)

	overrides := map[string]dataset.Kind{
		"timestamp": dataset.KindCategorical,
		"level":     dataset.KindCategorical,
		"message":   dataset.KindCategorical,
	}
	for k, v := range opts.Overrides {
		overrides[k] = v
	}

	return dataset.FromRecords(datasetName(uri), []string{"timestamp", "level", "message"}, records, overrides)
}
