package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// missingTokens are the cell spellings loaded as absent values
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"nil":  true,
}

// IsMissingToken reports whether raw spells an absent cell
func IsMissingToken(raw string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(raw))]
}

func parseBoolToken(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "t":
		return true, true
	case "false", "no", "n", "f":
		return false, true
	case "1":
		return true, true
	case "0":
		return false, true
	default:
		return false, false
	}
}

// isBoolWord is stricter than parseBoolToken: 0/1 columns stay numeric
func isBoolWord(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

// ParseCell converts a raw cell into a value of the given kind.
// Cells that do not fit the kind load as missing.
func ParseCell(raw string, kind Kind) Value {
	if IsMissingToken(raw) {
		return Missing()
	}
	trimmed := strings.TrimSpace(raw)
	switch kind {
	case KindNumeric:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Missing()
		}
		return Number(f)
	case KindBoolean:
		b, ok := parseBoolToken(trimmed)
		if !ok {
			return Missing()
		}
		return Bool(b)
	default:
		return Text(trimmed)
	}
}

// InferKind picks the narrowest kind that fits every non-missing cell
func InferKind(cells []string) Kind {
	seen := 0
	numeric, boolean := true, true
	for _, raw := range cells {
		if IsMissingToken(raw) {
			continue
		}
		seen++
		if numeric {
			if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
				numeric = false
			}
		}
		if boolean && !isBoolWord(raw) {
			boolean = false
		}
		if !numeric && !boolean {
			return KindCategorical
		}
	}
	switch {
	case seen == 0:
		return KindCategorical
	case numeric:
		return KindNumeric
	case boolean:
		return KindBoolean
	default:
		return KindCategorical
	}
}

// FromRecords builds a dataset from a header and raw string records,
// inferring column kinds unless overridden. Short records are padded
// with missing cells.
func FromRecords(name string, header []string, records [][]string, overrides map[string]Kind) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset %s has no columns", name)
	}
	width := len(header)
	for i, rec := range records {
		if len(rec) > width {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", i+1, len(rec), width)
		}
	}

	columns := make([]Column, width)
	for c, h := range header {
		colName := strings.TrimSpace(h)
		if c == 0 {
			colName = strings.TrimPrefix(colName, "\ufeff")
		}
		kind, ok := overrides[colName]
		if !ok {
			cells := make([]string, 0, len(records))
			for _, rec := range records {
				if c < len(rec) {
					cells = append(cells, rec[c])
				}
			}
			kind = InferKind(cells)
		}
		columns[c] = Column{Name: colName, Kind: kind}
	}

	rows := make([][]Value, len(records))
	for r, rec := range records {
		row := make([]Value, width)
		for c := range columns {
			if c < len(rec) {
				row[c] = ParseCell(rec[c], columns[c].Kind)
			}
		}
		rows[r] = row
	}

	return New(name, columns, rows)
}
