package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every *Error unwraps to exactly one of these.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrInvalidReference = errors.New("invalid reference")
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("operation not allowed")
)

// Error is a classified domain error
type Error struct {
	kind    error
	Entity  string // post, category, tag, comment
	Field   string // field that caused the error, if any
	Details string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.kind.Error()
	if e.Entity != "" {
		msg = e.Entity + " " + msg
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	return msg
}

// Unwrap lets errors.Is match the sentinel kind
func (e *Error) Unwrap() error {
	return e.kind
}

// Kind returns the sentinel this error is classified as
func (e *Error) Kind() error {
	return e.kind
}

func NotFound(entity string) *Error {
	return &Error{kind: ErrNotFound, Entity: entity}
}

func Duplicate(entity, field string) *Error {
	return &Error{kind: ErrDuplicateKey, Entity: entity, Field: field}
}

func InvalidReference(entity, field, details string) *Error {
	return &Error{kind: ErrInvalidReference, Entity: entity, Field: field, Details: details}
}

func Validation(field, details string) *Error {
	return &Error{kind: ErrValidation, Field: field, Details: details}
}

func Forbidden(operation string) *Error {
	return &Error{kind: ErrForbidden, Details: operation + " requires admin"}
}

// WithCause attaches the underlying driver error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

func IsInvalidReference(err error) bool {
	return errors.Is(err, ErrInvalidReference)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// FieldErrors aggregates several validation failures into one error
type FieldErrors []*Error

func (fe FieldErrors) Error() string {
	if len(fe) == 1 {
		return fe[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", fe[0].Error(), len(fe)-1)
}

func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}

// OrNil returns nil for an empty set so callers can return it directly
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
