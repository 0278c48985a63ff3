package plugin

import (
	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/state"
)

// Keymap binds key names such as "Mod-z" or "Shift-Enter" to commands. A
// binding whose command does not apply lets the key fall through.
type Keymap struct {
	key      string
	bindings map[string]state.Command
	mac      bool
}

// KeymapOption configures a Keymap.
type KeymapOption func(*Keymap)

// WithMac makes Mod mean the Meta key.
func WithMac(mac bool) KeymapOption {
	return func(k *Keymap) {
		k.mac = mac
	}
}

// NewKeymap creates a keymap plugin with the given key.
func NewKeymap(key string, bindings map[string]state.Command, opts ...KeymapOption) *Keymap {
	k := &Keymap{key: key, bindings: make(map[string]state.Command, len(bindings))}
	for name, cmd := range bindings {
		k.bindings[name] = cmd
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Key implements state.Plugin.
func (k *Keymap) Key() string { return k.key }

// Binding returns the command bound to name.
func (k *Keymap) Binding(name string) (state.Command, bool) {
	cmd, ok := k.bindings[name]
	return cmd, ok
}

// HandleKeyDown implements KeyDownHandler.
func (k *Keymap) HandleKeyDown(h Host, ev *dom.Event) Result {
	cmd, ok := k.bindings[dom.KeyName(ev, k.mac)]
	if !ok || !cmd(h.State(), nil) {
		return NotHandled
	}
	ev.PreventDefault()
	return Handled(cmd)
}
