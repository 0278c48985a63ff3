package commands

import (
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/state"
)

// KeymapKey is the key of the base keymap plugin.
const KeymapKey = "base-keymap"

// Keymap returns the base editing keymap: mark toggles, Enter and select
// all.
func Keymap(opts ...plugin.KeymapOption) *plugin.Keymap {
	return plugin.NewKeymap(KeymapKey, map[string]state.Command{
		"Mod-b":       ToggleMark(model.Bold, nil),
		"Mod-i":       ToggleMark(model.Italic, nil),
		"Mod-u":       ToggleMark(model.Underline, nil),
		"Mod-e":       ToggleMark(model.Code, nil),
		"Mod-Shift-s": ToggleMark(model.Strike, nil),
		"Enter":       SplitBlock,
		"Shift-Enter": InsertNode(model.HardBreak, nil),
		"Mod-a":       SelectAll,
		"Backspace":   DeleteSelection,
		"Delete":      DeleteSelection,
		"Mod-[":       Lift,
	}, opts...)
}
