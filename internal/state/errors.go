package state

import "errors"

// Errors returned by state operations.
var (
	// ErrMismatchedTransaction indicates a transaction built from a
	// different document than the state it is applied to.
	ErrMismatchedTransaction = errors.New("transaction does not start at this state's document")

	// ErrInvalidSelection indicates a selection that does not fit the
	// document.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrDuplicatePlugin indicates two plugins with the same key.
	ErrDuplicatePlugin = errors.New("duplicate plugin key")
)
