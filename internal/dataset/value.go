package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the logical type of a column
type Kind string

const (
	KindCategorical Kind = "categorical"
	KindNumeric     Kind = "numeric"
	KindBoolean     Kind = "boolean"
)

// ParseKind parses a kind name
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCategorical, "string", "text", "category":
		return KindCategorical, nil
	case KindNumeric, "number", "float", "int":
		return KindNumeric, nil
	case KindBoolean, "bool":
		return KindBoolean, nil
	default:
		return "", fmt.Errorf("unknown column kind: %q (must be one of: categorical, numeric, boolean)", s)
	}
}

// Value is a single cell. The zero Value is missing.
type Value struct {
	kind    Kind
	num     float64
	text    string
	flag    bool
	present bool
}

// Missing returns an absent value
func Missing() Value { return Value{} }

// Number returns a numeric value; NaN and ±Inf are treated as missing
func Number(f float64) Value {
	if !isFinite(f) {
		return Value{}
	}
	return Value{kind: KindNumeric, num: f, present: true}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Text returns a categorical value
func Text(s string) Value {
	return Value{kind: KindCategorical, text: s, present: true}
}

// Bool returns a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBoolean, flag: b, present: true}
}

// IsMissing reports whether the cell is absent
func (v Value) IsMissing() bool { return !v.present }

// Kind returns the value kind, empty for missing values
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric reading of the value. Booleans read as 0 or 1,
// text only when it parses as a number.
func (v Value) Float() (float64, bool) {
	if !v.present {
		return 0, false
	}
	switch v.kind {
	case KindNumeric:
		return v.num, true
	case KindBoolean:
		if v.flag {
			return 1, true
		}
		return 0, true
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || !isFinite(f) {
			return 0, false
		}
		return f, true
	}
}

// Truth returns the boolean reading of the value. Numbers are true when
// non-zero, text when it is a recognised boolean literal.
func (v Value) Truth() (bool, bool) {
	if !v.present {
		return false, false
	}
	switch v.kind {
	case KindBoolean:
		return v.flag, true
	case KindNumeric:
		return v.num != 0, true
	default:
		return parseBoolToken(v.text)
	}
}

// String formats the value for display and export. Missing is empty.
func (v Value) String() string {
	if !v.present {
		return ""
	}
	switch v.kind {
	case KindNumeric:
		return FormatNumber(v.num)
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	default:
		return v.text
	}
}

// Equal compares two values by kind and content
func (v Value) Equal(o Value) bool {
	if v.present != o.present {
		return false
	}
	if !v.present {
		return true
	}
	return v.kind == o.kind && v.num == o.num && v.text == o.text && v.flag == o.flag
}

// MarshalJSON encodes missing as null and keeps numbers numeric
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindBoolean:
		return json.Marshal(v.flag)
	default:
		return json.Marshal(v.text)
	}
}

// FormatNumber renders a float in its shortest round-trip form
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
