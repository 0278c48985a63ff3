package plugin

import (
	"errors"
	"fmt"
)

// Plugin pipeline errors.
var (
	// ErrPluginPanic is the cause recorded when a plugin call panics.
	ErrPluginPanic = errors.New("plugin panicked")

	// ErrNotMounted is returned when views are updated before Mount.
	ErrNotMounted = errors.New("plugin views are not mounted")
)

// PanicError records a recovered plugin panic.
type PanicError struct {
	Plugin string
	Call   string
	Value  any
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("plugin %q: %s: %v", e.Plugin, e.Call, e.Value)
}

// Unwrap returns ErrPluginPanic.
func (e *PanicError) Unwrap() error { return ErrPluginPanic }
