package markup

import "errors"

var (
	// ErrParse is returned when HTML cannot be turned into a document.
	ErrParse = errors.New("markup: parse failed")

	// ErrNotDocument is returned when a node other than doc is exported
	// as a whole document.
	ErrNotDocument = errors.New("markup: not a document")
)
