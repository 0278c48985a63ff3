// Package dom is the small event model hosts use to feed input into the
// editor: typed events, event targets with listener registration, and
// scopes that own a set of listeners and release them together.
package dom

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Event types.
const (
	PointerDown      = "pointerdown"
	PointerMove      = "pointermove"
	PointerUp        = "pointerup"
	KeyDown          = "keydown"
	DragStart        = "dragstart"
	DragOver         = "dragover"
	DragLeave        = "dragleave"
	Drop             = "drop"
	DragEnd          = "dragend"
	Paste            = "paste"
	Focus            = "focus"
	Blur             = "blur"
	CompositionStart = "compositionstart"
	CompositionEnd   = "compositionend"
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// File is a file carried by a paste or drop.
type File struct {
	Name string
	Type string
	Data []byte
}

// DataTransfer carries clipboard or drag payloads keyed by MIME type.
type DataTransfer struct {
	data  map[string]string
	order []string
	Files []File
}

// NewDataTransfer returns an empty payload.
func NewDataTransfer() *DataTransfer {
	return &DataTransfer{data: make(map[string]string)}
}

// SetData stores v under mime.
func (d *DataTransfer) SetData(mime, v string) {
	if _, ok := d.data[mime]; !ok {
		d.order = append(d.order, mime)
	}
	d.data[mime] = v
}

// GetData returns the value stored under mime, or "".
func (d *DataTransfer) GetData(mime string) string {
	if d == nil {
		return ""
	}
	return d.data[mime]
}

// Types returns the stored MIME types in insertion order.
func (d *DataTransfer) Types() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.order)
}

// Event is an input event.
type Event struct {
	Type string
	// Key is the key name for keyboard events, e.g. "z" or "Enter".
	Key  string
	Mods Modifiers
	// X and Y are viewport coordinates for pointer and drag events.
	X, Y   float64
	Button int
	// Target is the rendered node the event was aimed at, if known.
	Target *html.Node
	// Data is the clipboard or drag payload.
	Data *DataTransfer

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the event as handled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops delivery to remaining listeners.
func (e *Event) StopPropagation() { e.stopped = true }

// KeyName returns the keymap name of a keyboard event, e.g. "Mod-Shift-z".
// Mod is Meta on macOS and Ctrl elsewhere.
func KeyName(e *Event, mac bool) string {
	var b strings.Builder
	mod, other := ModCtrl, ModMeta
	if mac {
		mod, other = ModMeta, ModCtrl
	}
	if e.Mods&mod != 0 {
		b.WriteString("Mod-")
	}
	if e.Mods&other != 0 {
		if mac {
			b.WriteString("Ctrl-")
		} else {
			b.WriteString("Meta-")
		}
	}
	if e.Mods&ModAlt != 0 {
		b.WriteString("Alt-")
	}
	key := e.Key
	if e.Mods&ModShift != 0 {
		b.WriteString("Shift-")
		if utf8.RuneCountInString(key) == 1 {
			key = strings.ToLower(key)
		}
	}
	b.WriteString(key)
	return b.String()
}

// Listener handles an event.
type Listener func(*Event)

type registration struct {
	id uint64
	fn Listener
}

// EventTarget holds listeners by event type. It is not safe for concurrent
// use; a host delivers events from a single goroutine.
type EventTarget struct {
	listeners map[string][]registration
	nextID    uint64
}

// NewEventTarget returns a target with no listeners.
func NewEventTarget() *EventTarget {
	return &EventTarget{listeners: make(map[string][]registration)}
}

// AddEventListener registers fn for typ and returns the function that
// removes it. Removing twice is harmless.
func (t *EventTarget) AddEventListener(typ string, fn Listener) (remove func()) {
	t.nextID++
	id := t.nextID
	t.listeners[typ] = append(t.listeners[typ], registration{id: id, fn: fn})
	return func() {
		t.listeners[typ] = slices.DeleteFunc(t.listeners[typ], func(r registration) bool {
			return r.id == id
		})
	}
}

// Dispatch delivers ev to the listeners registered for its type, in
// registration order. It reports whether the default was not prevented.
func (t *EventTarget) Dispatch(ev *Event) bool {
	for _, r := range slices.Clone(t.listeners[ev.Type]) {
		r.fn(ev)
		if ev.stopped {
			break
		}
	}
	return !ev.defaultPrevented
}

// ListenerCount returns the number of listeners for typ.
func (t *EventTarget) ListenerCount(typ string) int {
	return len(t.listeners[typ])
}

// Scope owns listeners acquired together and releases them together. The
// zero value is ready to use.
type Scope struct {
	releases []func()
}

// Listen registers fn on target and records it in the scope.
func (s *Scope) Listen(target *EventTarget, typ string, fn Listener) {
	s.releases = append(s.releases, target.AddEventListener(typ, fn))
}

// Active returns the number of listeners the scope holds.
func (s *Scope) Active() int { return len(s.releases) }

// Release removes every listener the scope holds. It is safe to call more
// than once.
func (s *Scope) Release() {
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}
