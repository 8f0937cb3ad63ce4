package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFilter is returned for a filter name the dashboard does not define
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrInvalidValue is returned when a filter value cannot be parsed
	ErrInvalidValue = errors.New("invalid filter value")
)

// ValueError describes a filter value that could not be parsed
type ValueError struct {
	Filter string
	Value  string
	Reason string
}

// Error implements the error interface
func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %q for filter %s: %s", e.Value, e.Filter, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidValue
func (e *ValueError) Unwrap() error { return ErrInvalidValue }
