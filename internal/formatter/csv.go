package formatter

import (
	"bytes"
	"fmt"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/export"
)

// csvFormatter formats the filtered records as delimited text
type csvFormatter struct {
	delimiter rune
}

// NewCSV creates a new CSV formatter; a zero delimiter means comma
func NewCSV(delimiter rune) Formatter {
	return &csvFormatter{delimiter: delimiter}
}

func (f *csvFormatter) Format(analysis *analyzer.Analysis) ([]byte, error) {
	var b bytes.Buffer
	if err := export.Write(&b, analysis.View, export.Options{Delimiter: f.delimiter}); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return b.Bytes(), nil
}
