package config

import (
	"errors"
	"strings"

	"github.com/dshills/inkwell/internal/config/loader"
)

var (
	// ErrValidationFailed indicates settings that are out of range.
	ErrValidationFailed = errors.New("validation failed")

	// ErrClosed is returned by Watch after Close.
	ErrClosed = errors.New("config closed")
)

// ParseError is a syntax error in a configuration file.
type ParseError = loader.ParseError

// ValidationError lists every invalid setting.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
