package cfdi

import (
	"fmt"
	"strings"
)

// ShapeError reports a field whose raw XML shape could not be coerced to the
// expected sequence form (neither a mapping nor a sequence, or wrong nesting
// for the flatten variant).
type ShapeError struct {
	Path    string
	Message string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid shape at %s: %s", e.Path, e.Message)
}

// NewShapeError creates a new shape error
func NewShapeError(path, message string) *ShapeError {
	return &ShapeError{Path: path, Message: message}
}

// ValidationError reports a single scalar field that failed its type or
// constraint check.
type ValidationError struct {
	Path    string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Path, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Path, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(path string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{Path: path, Value: value, Rule: rule, Message: message}
}

// InvalidCFDIError is the document-level failure: a structural or constraint
// violation somewhere in the tree, carrying the offending field path.
type InvalidCFDIError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *InvalidCFDIError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid CFDI at %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid CFDI: %s", e.Reason)
}

func (e *InvalidCFDIError) Unwrap() error {
	return e.Cause
}

// NewInvalidCFDIError creates a new invalid-document error
func NewInvalidCFDIError(path, reason string, cause error) *InvalidCFDIError {
	return &InvalidCFDIError{Path: path, Reason: reason, Cause: cause}
}

// invalidCFDI wraps any lower-level validation failure into the document-level
// error so that internals never leak across the parse boundary.
func invalidCFDI(err error) *InvalidCFDIError {
	switch e := err.(type) {
	case *InvalidCFDIError:
		return e
	case *ValidationError:
		return &InvalidCFDIError{Path: e.Path, Reason: e.Message, Cause: e}
	case *ShapeError:
		return &InvalidCFDIError{Path: e.Path, Reason: e.Message, Cause: e}
	default:
		return &InvalidCFDIError{Reason: err.Error(), Cause: err}
	}
}

// UnsupportedCFDIError is returned when the declared version attribute is not
// in the supported set.
type UnsupportedCFDIError struct {
	Version   string
	Supported []string
}

func (e *UnsupportedCFDIError) Error() string {
	return fmt.Sprintf("version %q is not supported, must be one of [%s]", e.Version, strings.Join(e.Supported, ", "))
}

// ComplementoNotFoundError is returned by the complemento accessor when the
// requested extension type is absent from a parsed document.
type ComplementoNotFoundError struct {
	Requested string
}

func (e *ComplementoNotFoundError) Error() string {
	return fmt.Sprintf("this CFDI has no %s", e.Requested)
}
