package model

import (
	"errors"
	"fmt"
)

// Errors returned by model operations.
var (
	// ErrSchemaViolation indicates a node, mark or attribute set that does not
	// conform to the schema.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrPositionOutOfRange indicates a position outside the document.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrInvalidReplace indicates a structural replace that cannot be performed.
	ErrInvalidReplace = errors.New("invalid replace")

	// ErrUnknownType indicates a node or mark name that is not in the schema.
	ErrUnknownType = errors.New("unknown node or mark type")
)

// SchemaViolation describes why a node or mark was rejected.
type SchemaViolation struct {
	// Type is the node or mark name being constructed.
	Type string
	// Attr is the offending attribute, if any.
	Attr string
	// Reason is a human readable description.
	Reason string
}

// Error implements error.
func (e *SchemaViolation) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("schema violation: %s.%s: %s", e.Type, e.Attr, e.Reason)
	}
	return fmt.Sprintf("schema violation: %s: %s", e.Type, e.Reason)
}

// Unwrap returns ErrSchemaViolation.
func (e *SchemaViolation) Unwrap() error {
	return ErrSchemaViolation
}

func violation(typ, attr, format string, args ...any) *SchemaViolation {
	return &SchemaViolation{Type: typ, Attr: attr, Reason: fmt.Sprintf(format, args...)}
}

// ReplaceError describes a failed structural replace.
type ReplaceError struct {
	Message string
	Err     error
}

// Error implements error.
func (e *ReplaceError) Error() string {
	if e.Err != nil {
		return "invalid replace: " + e.Message + ": " + e.Err.Error()
	}
	return "invalid replace: " + e.Message
}

// Unwrap returns the underlying cause, or ErrInvalidReplace.
func (e *ReplaceError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidReplace, e.Err}
	}
	return []error{ErrInvalidReplace}
}

func replaceError(format string, args ...any) error {
	return &ReplaceError{Message: fmt.Sprintf(format, args...)}
}
