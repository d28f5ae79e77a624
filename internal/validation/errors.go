// Package validation provides the structured validation error returned by every
// write path and the field rules applied to setting values and keys.
package validation

import (
	"errors"
	"sort"
	"strings"
)

// Field error codes.
const (
	CodeRequired         = "required"
	CodeInvalid          = "invalid"
	CodeMaxLength        = "max_length"
	CodeMinValue         = "min_value"
	CodeMaxValue         = "max_value"
	CodeMaxDigits        = "max_digits"
	CodeMaxDecimalPlaces = "max_decimal_places"
	CodeMaxWholeDigits   = "max_whole_digits"
	CodeDoesNotExist     = "does_not_exist"
	CodeUnique           = "unique"
)

// ErrInvalid matches every *Error with errors.Is.
var ErrInvalid = errors.New("validation failed")

// Code is a sentinel matching any *Error that carries the code on one of its fields.
type Code string

// Error implements the error interface.
func (c Code) Error() string {
	return "validation: " + string(c)
}

// FieldError describes a single failed rule on a field.
type FieldError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// Error aggregates field errors: field name -> list of failures.
// A nil *Error means the input is valid.
type Error struct {
	Fields map[string][]FieldError `json:"errors"`
	cause  error
}

// New returns an empty validation error ready to collect field errors.
func New() *Error {
	return &Error{Fields: make(map[string][]FieldError)}
}

// Single is a shorthand for an error with one failure on one field.
func Single(field, code, message string, params map[string]any) *Error {
	return New().Add(field, FieldError{Code: code, Message: message, Params: params})
}

// Add appends a failure for field.
func (e *Error) Add(field string, fe FieldError) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string][]FieldError)
	}

	e.Fields[field] = append(e.Fields[field], fe)

	return e
}

// Merge copies the failures of other into e. A nil other is ignored.
func (e *Error) Merge(other *Error) *Error {
	if other == nil {
		return e
	}

	for field, errs := range other.Fields {
		for _, fe := range errs {
			e.Add(field, fe)
		}
	}

	if e.cause == nil {
		e.cause = other.cause
	}

	return e
}

// WithCause records the low-level error that produced this validation error.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// Empty reports whether no failure was collected. It is safe on a nil receiver.
func (e *Error) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns nil when no failure was collected so callers never see a typed nil.
func (e *Error) OrNil() *Error {
	if e.Empty() {
		return nil
	}

	return e
}

// HasCode reports whether any field carries the given code.
func (e *Error) HasCode(code string) bool {
	if e == nil {
		return false
	}

	for _, errs := range e.Fields {
		for _, fe := range errs {
			if fe.Code == code {
				return true
			}
		}
	}

	return false
}

// Codes returns the codes recorded for field in insertion order.
func (e *Error) Codes(field string) []string {
	if e == nil {
		return nil
	}

	codes := make([]string, 0, len(e.Fields[field]))
	for _, fe := range e.Fields[field] {
		codes = append(codes, fe.Code)
	}

	return codes
}

// Error renders "field: message" pairs sorted by field name.
func (e *Error) Error() string {
	if e.Empty() {
		return ErrInvalid.Error()
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	var b strings.Builder

	b.WriteString(ErrInvalid.Error())
	b.WriteString(": ")

	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}

		msgs := make([]string, 0, len(e.Fields[field]))
		for _, fe := range e.Fields[field] {
			msgs = append(msgs, fe.Message)
		}

		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(strings.Join(msgs, " "))
	}

	return b.String()
}

// Is matches ErrInvalid and any Code carried by one of the fields.
func (e *Error) Is(target error) bool {
	if target == ErrInvalid { //nolint:errorlint // sentinel identity
		return true
	}

	if code, ok := target.(Code); ok {
		return e.HasCode(string(code))
	}

	return false
}

// Unwrap exposes the low-level cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}
