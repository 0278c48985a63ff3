package upload

import "errors"

var (
	// ErrUnsupportedType indicates a file whose MIME type is not accepted.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrEmptyFile indicates a file without content.
	ErrEmptyFile = errors.New("empty file")

	// ErrBucket indicates the storage bucket could not be checked or
	// created.
	ErrBucket = errors.New("bucket unavailable")
)
