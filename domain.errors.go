package main

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by storages and services when no record
	// matches a well-formed identifier.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned when an identifier is not a valid object id.
	ErrInvalidID = errors.New("invalid identifier")
)

// FieldError describes a single rejected field of a write request.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is returned when a write request breaks one or more field
// constraints. It is a client fault and never reaches the storage.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, rule, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}

// InternalError wraps any unexpected storage or serialization failure
// with the name of the operation which triggered it.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func internalError(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
