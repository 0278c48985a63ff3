package plugin

import (
	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

// Pipeline calls plugins in registration order and applies what they
// return. It is not safe for concurrent use.
type Pipeline struct {
	log     *logging.Logger
	views   []mountedView
	mounted bool
}

type mountedView struct {
	key  string
	view PluginView
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for plugin failures.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// NewPipeline creates a pipeline.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logging.OrNop(p.log).WithComponent("plugin")
	return p
}

// call runs fn, converting a panic into a logged *PanicError.
func (p *Pipeline) call(key, what string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Plugin: key, Call: what, Value: r}
			p.log.WithField("plugin", key).Error("%v", err)
		}
	}()
	fn()
	return nil
}

// intercept offers an event to every plugin implementing H until one
// handles it, then runs the handler's commands.
func intercept[H any](p *Pipeline, h Host, what string, fn func(H) Result) bool {
	for _, pl := range h.State().Plugins() {
		handler, ok := pl.(H)
		if !ok {
			continue
		}
		var res Result
		if err := p.call(pl.Key(), what, func() { res = fn(handler) }); err != nil {
			continue
		}
		if !res.Handled {
			continue
		}
		p.runCommands(h, pl.Key(), res.Commands)
		return true
	}
	return false
}

func (p *Pipeline) runCommands(h Host, key string, cmds []state.Command) {
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		var applied bool
		err := p.call(key, "command", func() { applied = cmd(h.State(), h.Dispatch) })
		if err == nil && !applied {
			p.log.WithField("plugin", key).Debug("command did not apply")
		}
	}
}

// TextInput offers text replacing [from, to) to the TextInputHandlers. It
// reports whether a plugin handled it.
func (p *Pipeline) TextInput(h Host, from, to int, text string) bool {
	return intercept(p, h, "handleTextInput", func(t TextInputHandler) Result {
		return t.HandleTextInput(h, from, to, text)
	})
}

// KeyDown offers a key press to the KeyDownHandlers.
func (p *Pipeline) KeyDown(h Host, ev *dom.Event) bool {
	return intercept(p, h, "handleKeyDown", func(k KeyDownHandler) Result {
		return k.HandleKeyDown(h, ev)
	})
}

// Paste offers a paste to the PasteHandlers.
func (p *Pipeline) Paste(h Host, ev *dom.Event, slice model.Slice) bool {
	return intercept(p, h, "handlePaste", func(ph PasteHandler) Result {
		return ph.HandlePaste(h, ev, slice)
	})
}

// Drop offers a drop to the DropHandlers.
func (p *Pipeline) Drop(h Host, ev *dom.Event, slice model.Slice, moved bool) bool {
	return intercept(p, h, "handleDrop", func(d DropHandler) Result {
		return d.HandleDrop(h, ev, slice, moved)
	})
}

// DOMEvent offers a raw event to the DOMEventHandlers.
func (p *Pipeline) DOMEvent(h Host, ev *dom.Event) bool {
	return intercept(p, h, "handleDOMEvent", func(d DOMEventHandler) Result {
		return d.HandleDOMEvent(h, ev)
	})
}

// Decorations calls every Decorator and unions the results. It never
// short-circuits.
func (p *Pipeline) Decorations(st *state.State) DecorationSet {
	var sets []DecorationSet
	for _, pl := range st.Plugins() {
		d, ok := pl.(Decorator)
		if !ok {
			continue
		}
		var set DecorationSet
		if err := p.call(pl.Key(), "decorations", func() { set = d.Decorations(st) }); err != nil {
			continue
		}
		sets = append(sets, set)
	}
	return Union(sets...)
}

// Mount creates the plugin views of the host's current plugins.
func (p *Pipeline) Mount(h Host) {
	if p.mounted {
		p.Destroy()
	}
	for _, pl := range h.State().Plugins() {
		vp, ok := pl.(ViewProvider)
		if !ok {
			continue
		}
		var v PluginView
		if err := p.call(pl.Key(), "view", func() { v = vp.View(h) }); err != nil || v == nil {
			continue
		}
		p.views = append(p.views, mountedView{key: pl.Key(), view: v})
	}
	p.mounted = true
}

// Update tells every plugin view about a state change.
func (p *Pipeline) Update(h Host, prev *state.State) error {
	if !p.mounted {
		return ErrNotMounted
	}
	for _, mv := range p.views {
		_ = p.call(mv.key, "view.update", func() { mv.view.Update(h, prev) })
	}
	return nil
}

// Views returns the number of mounted plugin views.
func (p *Pipeline) Views() int { return len(p.views) }

// Destroy destroys every plugin view. It is safe to call more than once.
func (p *Pipeline) Destroy() {
	for i := len(p.views) - 1; i >= 0; i-- {
		mv := p.views[i]
		_ = p.call(mv.key, "view.destroy", mv.view.Destroy)
	}
	p.views = nil
	p.mounted = false
}
