package book

import (
	"errors"
	"fmt"
)

// Kind discriminates the errors the service reports to its callers.
type Kind int

const (
	// KindValidation maps to 400: bad input, missing id, or a failed write.
	KindValidation Kind = iota + 1
	// KindNotFound maps to 404: a strict lookup found nothing.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// FieldError describes one rejected payload field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the error type returned by Service. Err carries the underlying
// cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError builds a KindValidation error with field details.
func NewValidationError(message string, fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// invalidData collapses a write-path failure into a validation error that
// still names the cause.
func invalidData(cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("Invalid data - %v", cause),
		Err:     cause,
	}
}

func notFound(id int64, cause error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("book %d not found", id),
		Err:     cause,
	}
}

// KindOf returns the kind of err, or 0 when err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsValidation reports whether err is a KindValidation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
