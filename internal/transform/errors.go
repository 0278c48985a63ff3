package transform

import (
	"errors"
	"fmt"
)

// Errors returned by steps and transforms.
var (
	// ErrStepFailed indicates a step that could not be applied to a document.
	ErrStepFailed = errors.New("step failed")

	// ErrNoTarget indicates a node-level step pointing at a position with no
	// node after it.
	ErrNoTarget = errors.New("no node at position")

	// ErrInvalidWrap indicates wrappers that do not form valid content.
	ErrInvalidWrap = errors.New("invalid wrapping")
)

// StepError describes a step that failed to apply.
type StepError struct {
	Kind StepKind
	Err  error
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Kind, e.Err)
}

// Unwrap returns ErrStepFailed and the cause.
func (e *StepError) Unwrap() []error {
	return []error{ErrStepFailed, e.Err}
}

func stepFailed(kind StepKind, err error) error {
	return &StepError{Kind: kind, Err: err}
}
