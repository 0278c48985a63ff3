package store

import "errors"

var (
	// ErrNotFound is returned when no snapshot has the requested ID.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned for an empty document ID.
	ErrInvalidID = errors.New("invalid document id")

	// ErrClosed is returned by a store that has been closed.
	ErrClosed = errors.New("store closed")
)
