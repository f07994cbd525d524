package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for broad classification
var (
	ErrNotFound        = errors.New("not found")
	ErrParse           = errors.New("parse error")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrInvalidGraph    = errors.New("invalid graph")
	ErrInternal        = errors.New("internal error")
)

// ErrorKind is a coarse-grained categorization for errors
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindParse           ErrorKind = "parse"
	KindUnknownCategory ErrorKind = "unknown_category"
	KindInvalidConfig   ErrorKind = "invalid_config"
	KindGraph           ErrorKind = "graph"
	KindInternal        ErrorKind = "internal"
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:        ErrNotFound,
	KindParse:           ErrParse,
	KindUnknownCategory: ErrUnknownCategory,
	KindInvalidConfig:   ErrInvalidConfig,
	KindGraph:           ErrInvalidGraph,
	KindInternal:        ErrInternal,
}

// OpError wraps an underlying error with operation context and a kind
type OpError struct {
	Op    string
	Kind  ErrorKind
	Path  string // optional: relevant file path
	Row   int    // optional: 1-based data row
	Value string // optional: offending value
	Err   error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		fmt.Fprintf(&b, " (path=%s)", e.Path)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " (row=%d)", e.Row)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value=%q)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match the sentinel of the error's kind
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// IsKind helps callers classify errors without depending on producer packages
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// ValidationError represents structured validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	if ve.Value != "" {
		return fmt.Sprintf("validation error in field '%s': %s (value: %s)", ve.Field, ve.Message, ve.Value)
	}
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(ve), ve[0].Error(), len(ve)-1)
}
