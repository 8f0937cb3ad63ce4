package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/yildizm/DataSum/internal/dataset"
)

// JSONLoader reads an array of objects or newline delimited objects.
// Columns follow the order keys are first seen.
type JSONLoader struct{}

// NewJSONLoader creates a JSON loader
func NewJSONLoader() *JSONLoader { return &JSONLoader{} }

// Name returns the loader name
func (l *JSONLoader) Name() string { return "json" }

// CanOpen accepts .json, .ndjson and .jsonl files
func (l *JSONLoader) CanOpen(uri string) bool {
	return hasExt(uri, ".json", ".ndjson", ".jsonl")
}

// Open reads the file
func (l *JSONLoader) Open(ctx context.Context, uri string, opts Options) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(uri) // #nosec G304 - user supplied dataset path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadJSON(f, datasetName(uri), opts)
}

// ReadJSON decodes objects from r. A leading '[' selects array mode,
// otherwise the stream is read as consecutive objects.
func ReadJSON(r io.Reader, name string, opts Options) (*dataset.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty document")
	}
	if err != nil {
		return nil, err
	}

	t := &jsonTable{index: map[string]int{}}
	full := func() bool { return opts.MaxRows > 0 && len(t.rows) >= opts.MaxRows }

	switch tok {
	case json.Delim('['):
		for dec.More() && !full() {
			open, err := dec.Token()
			if err != nil {
				return nil, err
			}
			if open != json.Delim('{') {
				return nil, fmt.Errorf("record %d is not an object", len(t.rows)+1)
			}
			if err := t.readObject(dec); err != nil {
				return nil, fmt.Errorf("record %d: %w", len(t.rows)+1, err)
			}
		}
	case json.Delim('{'):
		if err := t.readObject(dec); err != nil {
			return nil, fmt.Errorf("record 1: %w", err)
		}
		for dec.More() && !full() {
			open, err := dec.Token()
			if err != nil {
				return nil, err
			}
			if open != json.Delim('{') {
				return nil, fmt.Errorf("record %d is not an object", len(t.rows)+1)
			}
			if err := t.readObject(dec); err != nil {
				return nil, fmt.Errorf("record %d: %w", len(t.rows)+1, err)
			}
		}
	default:
		return nil, fmt.Errorf("expected an array or object, got %v", tok)
	}

	if len(t.header) == 0 {
		return nil, fmt.Errorf("no fields found")
	}
	return dataset.FromRecords(name, t.header, t.rows, opts.Overrides)
}

type jsonTable struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// readObject consumes one object body; the opening brace is already read
func (t *jsonTable) readObject(dec *json.Decoder) error {
	row := make([]string, len(t.header))
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", keyTok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}

		i, seen := t.index[key]
		if !seen {
			i = len(t.header)
			t.index[key] = i
			t.header = append(t.header, key)
		}
		for len(row) <= i {
			row = append(row, "")
		}
		row[i] = jsonCell(raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	t.rows = append(t.rows, row)
	return nil
}

func jsonCell(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
