package terminal

import "errors"

// ErrNoSave is reported when Ctrl-S is pressed without a save function.
var ErrNoSave = errors.New("no save target")
