package view

import "errors"

var (
	// ErrDestroyed is returned by operations on a destroyed view.
	ErrDestroyed = errors.New("view destroyed")
)
