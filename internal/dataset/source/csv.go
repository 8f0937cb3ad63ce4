package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/yildizm/DataSum/internal/dataset"
)

// CSVLoader reads comma or tab separated text
type CSVLoader struct{}

// NewCSVLoader creates a delimited text loader
func NewCSVLoader() *CSVLoader { return &CSVLoader{} }

// Name returns the loader name
func (l *CSVLoader) Name() string { return "csv" }

// CanOpen accepts .csv, .tsv and .txt files and "-" for stdin
func (l *CSVLoader) CanOpen(uri string) bool {
	return uri == "-" || hasExt(uri, ".csv", ".tsv", ".tab", ".txt")
}

// Open reads the file
func (l *CSVLoader) Open(ctx context.Context, uri string, opts Options) (*dataset.Dataset, error) {
	if opts.Delimiter == 0 && hasExt(uri, ".tsv", ".tab") {
		opts.Delimiter = '\t'
	}

	if uri == "-" {
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		return ReadCSV(in, "stdin", opts)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(uri) // #nosec G304 - user supplied dataset path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f, datasetName(uri), opts)
}

// ReadCSV reads a header row followed by records
func ReadCSV(r io.Reader, name string, opts Options) (*dataset.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var records [][]string
	for opts.MaxRows <= 0 || len(records) < opts.MaxRows {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}

	return dataset.FromRecords(name, header, records, opts.Overrides)
}
