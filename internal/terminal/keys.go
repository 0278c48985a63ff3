package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkwell/internal/dom"
)

var keyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyEscape:     "Escape",
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
}

// keyEvent converts a tcell key press into a keydown event. Control
// letters arrive as their own key codes and become the letter with Ctrl
// held.
func keyEvent(ev *tcell.EventKey) *dom.Event {
	out := &dom.Event{Type: dom.KeyDown, Mods: mods(ev.Modifiers())}
	k := ev.Key()
	if name, ok := keyNames[k]; ok {
		out.Key = name
		if k == tcell.KeyBacktab {
			out.Mods |= dom.ModShift
		}
		return out
	}
	switch {
	case k == tcell.KeyRune:
		out.Key = string(ev.Rune())
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		out.Key = string(rune('a' + k - tcell.KeyCtrlA))
		out.Mods |= dom.ModCtrl
	default:
		out.Key = ev.Name()
	}
	return out
}

func mods(m tcell.ModMask) dom.Modifiers {
	var out dom.Modifiers
	if m&tcell.ModShift != 0 {
		out |= dom.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= dom.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= dom.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= dom.ModMeta
	}
	return out
}
