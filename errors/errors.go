// Package errors provides error types and handling for gfluent operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a failed gfluent operation with context about what was
// being done and which resource was involved. Failures originating from the
// Google Cloud SDKs are carried in Err unchanged so callers can still match
// them with errors.As.
type Error struct {
	// Op is the operation that failed (e.g., "load", "query", "upload")
	Op string

	// Resource is the table, bucket/prefix or sheet involved (if applicable)
	Resource string

	// Err is the underlying error from the SDK or from local validation
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("gfluent.%s %s: %v", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("gfluent.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithResource adds resource context to an existing error.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewResourceError creates a new Error with resource context.
func NewResourceError(op, resource string, err error) *Error {
	return &Error{
		Op:       op,
		Resource: resource,
		Err:      err,
	}
}

// Sentinel errors for local validation failures. These can be used with
// errors.Is(). Everything else surfaced by this module originates from the
// wrapped SDKs and passes through untranslated.
var (
	// ErrInvalidOption indicates a setter received a value outside its
	// enumerated or structural domain.
	ErrInvalidOption = errors.New("gfluent: invalid option value")

	// ErrIncompleteConfig indicates a terminal call was made before all
	// required references were configured.
	ErrIncompleteConfig = errors.New("gfluent: incomplete configuration")

	// ErrEmptySheet indicates the requested sheet range contained no values.
	ErrEmptySheet = errors.New("gfluent: empty sheet range")

	// ErrInvalidColumnName indicates a sheet header cell is not usable as a
	// BigQuery column name.
	ErrInvalidColumnName = errors.New("gfluent: invalid column name")
)
