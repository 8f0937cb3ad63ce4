package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yildizm/DataSum/internal/dataset"
)

// XLSXLoader reads one sheet of a workbook. The sheet is taken from
// Options.Sheet, a "#Sheet" suffix on the path, or the first sheet.
type XLSXLoader struct{}

// NewXLSXLoader creates a workbook loader
func NewXLSXLoader() *XLSXLoader { return &XLSXLoader{} }

// Name returns the loader name
func (l *XLSXLoader) Name() string { return "xlsx" }

// CanOpen accepts .xlsx and .xlsm files
func (l *XLSXLoader) CanOpen(uri string) bool {
	return hasExt(uri, ".xlsx", ".xlsm")
}

// Open reads the sheet
func (l *XLSXLoader) Open(ctx context.Context, uri string, opts Options) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := FilePath(uri)
	sheet := opts.Sheet
	if sheet == "" && path != uri {
		sheet = uri[len(path)+1:]
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	header := rows[0]
	records := limit(rows[1:], opts.MaxRows)
	for i, rec := range records {
		records[i] = trimTrailingBlank(rec, len(header))
	}

	return dataset.FromRecords(datasetName(path), header, records, opts.Overrides)
}

// trimTrailingBlank drops empty cells past the header width that
// spreadsheets leave behind after formatting
func trimTrailingBlank(rec []string, width int) []string {
	for len(rec) > width && strings.TrimSpace(rec[len(rec)-1]) == "" {
		rec = rec[:len(rec)-1]
	}
	return rec
}
