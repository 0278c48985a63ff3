package plugin

import (
	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

// Rect is a box in viewport coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Host is what plugins see of the view hosting them.
type Host interface {
	// State returns the current state.
	State() *state.State
	// Dispatch applies tr to the current state.
	Dispatch(tr *state.Transaction)
	// Composing reports whether an IME composition is in progress.
	Composing() bool
	// CoordsAtPos returns the box of the document position pos.
	CoordsAtPos(pos int) (Rect, error)
	// PosAtCoords returns the document position at viewport coordinates.
	PosAtCoords(x, y float64) (int, bool)
	// Logger returns the host's logger.
	Logger() *logging.Logger
}

// Result is what an interceptor returns.
type Result struct {
	// Handled stops the event from reaching later plugins and suppresses
	// default handling.
	Handled bool
	// Commands run in order against the live state once the interceptor
	// returns.
	Commands []state.Command
}

// NotHandled passes the event on.
var NotHandled = Result{}

// Handled returns a handled result running cmds.
func Handled(cmds ...state.Command) Result {
	return Result{Handled: true, Commands: cmds}
}

// TextInputHandler intercepts typed or inserted text replacing [from, to).
type TextInputHandler interface {
	state.Plugin
	HandleTextInput(h Host, from, to int, text string) Result
}

// KeyDownHandler intercepts key presses.
type KeyDownHandler interface {
	state.Plugin
	HandleKeyDown(h Host, ev *dom.Event) Result
}

// PasteHandler intercepts pastes. slice is the parsed clipboard content.
type PasteHandler interface {
	state.Plugin
	HandlePaste(h Host, ev *dom.Event, slice model.Slice) Result
}

// DropHandler intercepts drops. moved reports whether the drag started
// inside this editor.
type DropHandler interface {
	state.Plugin
	HandleDrop(h Host, ev *dom.Event, slice model.Slice, moved bool) Result
}

// DOMEventHandler intercepts raw events of any type.
type DOMEventHandler interface {
	state.Plugin
	HandleDOMEvent(h Host, ev *dom.Event) Result
}

// Decorator contributes decorations computed from the state.
type Decorator interface {
	state.Plugin
	Decorations(st *state.State) DecorationSet
}

// ViewProvider creates a view object with a lifecycle tied to the host.
type ViewProvider interface {
	state.Plugin
	View(h Host) PluginView
}

// PluginView is a plugin's stateful companion to the view.
type PluginView interface {
	// Update is called after every state change with the previous state.
	Update(h Host, prev *state.State)
	// Destroy releases the view's resources.
	Destroy()
}

// SchemaContributor adjusts the schema before it is compiled.
type SchemaContributor interface {
	state.Plugin
	SchemaOptions() []model.SchemaOption
}

// SchemaOptions collects the schema options contributed by plugins, in
// order.
func SchemaOptions(plugins []state.Plugin) []model.SchemaOption {
	var opts []model.SchemaOption
	for _, p := range plugins {
		if c, ok := p.(SchemaContributor); ok {
			opts = append(opts, c.SchemaOptions()...)
		}
	}
	return opts
}
