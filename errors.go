package querykit

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("querykit: record not found")

	// ErrNotImplemented is returned by services that do not support an operation,
	// such as a relation router constructed without a base service.
	ErrNotImplemented = errors.New("querykit: not implemented")

	// ErrUnmappedField is returned when a field name has no entry in a field map.
	ErrUnmappedField = errors.New("querykit: unmapped field")

	// ErrFieldCollision is returned when two fields are renamed to the same field.
	ErrFieldCollision = errors.New("querykit: field collision")

	// ErrRelationType is returned when a relation service yields records of an unexpected type.
	ErrRelationType = errors.New("querykit: unexpected relation type")
)

// UnmappedFieldError is returned when a filter, sort, aggregate query or aggregate
// response references a field that the field map does not know about.
type UnmappedFieldError struct {
	Field string // Offending field name
	Kind  string // What was being transformed: Filter, SortField, AggregateQuery, AggregateResponse
}

// Error returns the error string.
func (e *UnmappedFieldError) Error() string {
	return fmt.Sprintf("querykit: no corresponding field found for %q when transforming %s", e.Field, e.Kind)
}

// Is reports whether the target error matches UnmappedFieldError.
// This allows errors.Is(err, ErrUnmappedField) to return true.
func (e *UnmappedFieldError) Is(err error) bool {
	return err == ErrUnmappedField
}

// NewUnmappedFieldError returns a new UnmappedFieldError.
func NewUnmappedFieldError(field, kind string) *UnmappedFieldError {
	return &UnmappedFieldError{Field: field, Kind: kind}
}

// IsUnmappedField returns true if the error is an UnmappedFieldError.
func IsUnmappedField(err error) bool {
	if err == nil {
		return false
	}
	var e *UnmappedFieldError
	return errors.As(err, &e) || errors.Is(err, ErrUnmappedField)
}

// FieldCollisionError is returned when two fields of one filter or aggregate
// response map to the same target field, which would drop one of them.
type FieldCollisionError struct {
	Field  string
	Other  string
	Target string
	Kind   string
}

// Error returns the error string.
func (e *FieldCollisionError) Error() string {
	return fmt.Sprintf("querykit: fields %q and %q both map to %q when transforming %s", e.Field, e.Other, e.Target, e.Kind)
}

// Is reports whether the target error matches FieldCollisionError.
func (e *FieldCollisionError) Is(err error) bool {
	return err == ErrFieldCollision
}

// IsFieldCollision returns true if the error is a FieldCollisionError.
func IsFieldCollision(err error) bool {
	var e *FieldCollisionError
	return errors.As(err, &e)
}

// NotImplementedError is returned when a service is asked to perform an
// operation it does not provide.
type NotImplementedError struct {
	Op string
}

// Error returns the error string.
func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("querykit: %s is not implemented", e.Op)
}

// Is reports whether the target error matches NotImplementedError.
func (e *NotImplementedError) Is(err error) bool {
	return err == ErrNotImplemented
}

// NewNotImplementedError returns a new NotImplementedError for the given operation.
func NewNotImplementedError(op string) *NotImplementedError {
	return &NotImplementedError{Op: op}
}

// IsNotImplemented returns true if the error is a NotImplementedError.
func IsNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var e *NotImplementedError
	return errors.As(err, &e) || errors.Is(err, ErrNotImplemented)
}

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	label string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("querykit: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("querykit: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the record label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given record type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a storage constraint violation, such as a duplicate id.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("querykit: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// RelationTypeError is returned by the typed relation helpers when the
// relation service returned a value of a different type than requested.
type RelationTypeError struct {
	Relation string
	Want     string
	Got      string
}

// Error returns the error string.
func (e *RelationTypeError) Error() string {
	return fmt.Sprintf("querykit: relation %q yields %s, not %s", e.Relation, e.Got, e.Want)
}

// Is reports whether the target error matches RelationTypeError.
func (e *RelationTypeError) Is(err error) bool {
	return err == ErrRelationType
}

// IsRelationType returns true if the error is a RelationTypeError.
func IsRelationType(err error) bool {
	if err == nil {
		return false
	}
	var e *RelationTypeError
	return errors.As(err, &e)
}
