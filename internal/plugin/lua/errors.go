package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution runs past its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrInvalidRule is returned for rules a script cannot register.
	ErrInvalidRule = errors.New("invalid input rule")
)

// RuleError describes a rejected rule registration.
type RuleError struct {
	Rule   string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Reason)
}

// Unwrap returns ErrInvalidRule.
func (e *RuleError) Unwrap() error { return ErrInvalidRule }
