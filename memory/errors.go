package memory

import (
	"errors"
	"fmt"

	"github.com/syssam/querykit/query"
)

var (
	// ErrCursorPaging is returned for queries paged by cursor. Cursors are
	// resolved by the connection layer into offset paging.
	ErrCursorPaging = errors.New("memory: cursor paging is not supported")

	// ErrNegativePaging is returned for a negative offset or limit.
	ErrNegativePaging = errors.New("memory: negative offset or limit")

	// ErrUnknownField is returned when a query references a field the
	// records do not have.
	ErrUnknownField = errors.New("memory: unknown field")
)

// UnknownFieldError is returned when a filter, sort or aggregate references
// a field the records do not have.
type UnknownFieldError struct {
	Field string
}

// Error returns the error string.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("memory: unknown field %q", e.Field)
}

// Is reports whether the target error matches UnknownFieldError.
func (e *UnknownFieldError) Is(err error) bool {
	return err == ErrUnknownField
}

// IsUnknownField returns true if the error is an UnknownFieldError.
func IsUnknownField(err error) bool {
	var e *UnknownFieldError
	return errors.As(err, &e)
}

// OperandError is returned when a comparison operand does not fit its operator,
// e.g. a non-list value for "in".
type OperandError struct {
	Field string
	Op    query.Op
	Value any
}

// Error returns the error string.
func (e *OperandError) Error() string {
	return fmt.Sprintf("memory: invalid operand %v (%T) for %s on %q", e.Value, e.Value, e.Op, e.Field)
}
