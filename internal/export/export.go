// Package export writes a filtered view as delimited text or a workbook.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/yildizm/DataSum/internal/dataset"
)

// ErrUnknownColumn is returned when an export names a column the dataset lacks
var ErrUnknownColumn = errors.New("unknown column")

// Options controls an export
type Options struct {
	Delimiter rune     // field separator, ',' when zero
	Columns   []string // columns to write, all when empty
	NoHeader  bool     // skip the header row
}

// Write writes the view as delimited text: a header row followed by one
// line per record in view order. Missing values are empty cells.
func Write(w io.Writer, view dataset.View, opts Options) error {
	cols, err := columns(view, opts.Columns)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}

	if !opts.NoHeader {
		if err := writer.Write(cols); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	record := make([]string, len(cols))
	for i := 0; i < view.Len(); i++ {
		for j, col := range cols {
			record[j] = view.Value(i, col).String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// WriteXLSX writes the view as a single-sheet workbook. Numbers and
// booleans keep their cell types.
func WriteXLSX(w io.Writer, view dataset.View, opts Options) error {
	cols, err := columns(view, opts.Columns)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Data"
	if ds := view.Dataset(); ds != nil && ds.Name() != "" {
		sheet = sheetName(ds.Name())
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet writer: %w", err)
	}

	row := 1
	if !opts.NoHeader {
		header := make([]any, len(cols))
		for i, c := range cols {
			header[i] = c
		}
		if err := sw.SetRow("A1", header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		row++
	}

	cells := make([]any, len(cols))
	for i := 0; i < view.Len(); i++ {
		for j, col := range cols {
			cells[j] = cellValue(view.Value(i, col))
		}
		axis, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
		row++
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(v dataset.Value) any {
	if v.IsMissing() {
		return nil
	}
	switch v.Kind() {
	case dataset.KindNumeric:
		f, _ := v.Float()
		return f
	case dataset.KindBoolean:
		b, _ := v.Truth()
		return b
	default:
		return v.String()
	}
}

// sheetName trims a dataset name to excel's 31 character sheet limit
func sheetName(name string) string {
	name = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(name)
	for utf8.RuneCountInString(name) > 31 {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return name
}

func columns(view dataset.View, requested []string) ([]string, error) {
	ds := view.Dataset()
	if ds == nil {
		return append([]string(nil), requested...), nil
	}
	if len(requested) == 0 {
		return ds.ColumnNames(), nil
	}
	for _, c := range requested {
		if _, ok := ds.Column(c); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
		}
	}
	return append([]string(nil), requested...), nil
}

// ParseDelimiter accepts a literal delimiter or one of the names
// comma, tab, semicolon, pipe
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", ",", "comma", "csv":
		return ',', nil
	case "\t", "\\t", "tab", "tsv":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("invalid delimiter: %q (must be one of: ',', ';', '|', tab)", s)
	}
}

// Filename returns the download name for an export of base
func Filename(base string, delim rune) string {
	base = filepath.Base(base)
	base = strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), ":", "_")
	if base == "" || base == "." || base == "-" {
		base = "export"
	}
	ext := ".csv"
	if delim == '\t' {
		ext = ".tsv"
	}
	return base + "_filtered" + ext
}
