package view

import (
	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/nodeview"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/state"
)

// DispatchListener is told about every state change, with the
// transactions that produced it. UpdateState passes no transactions.
type DispatchListener func(st *state.State, trs []*state.Transaction)

// View hosts one editor state. It is the single owner of the state cell:
// everything that changes the document goes through Dispatch. A View is not
// safe for concurrent use.
type View struct {
	st        *state.State
	pipeline  *plugin.Pipeline
	nodeViews nodeview.Set
	window    *dom.EventTarget
	layout    Layout
	log       *logging.Logger
	listener  DispatchListener

	editable  bool
	focused   bool
	composing bool
	dragging  bool
	destroyed bool

	tracked map[*TrackedPos]struct{}
	r       *renderer
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *View) {
		v.log = l
	}
}

// WithNodeViews sets the node view constructors. The default is
// nodeview.Defaults over the view's window.
func WithNodeViews(set nodeview.Set) Option {
	return func(v *View) {
		v.nodeViews = set
	}
}

// WithWindow sets the event target standing in for the window.
func WithWindow(w *dom.EventTarget) Option {
	return func(v *View) {
		v.window = w
	}
}

// WithLayout sets the coordinate mapping. The default is a GridLayout.
func WithLayout(l Layout) Option {
	return func(v *View) {
		v.layout = l
	}
}

// WithDispatchListener registers fn to run after every state change.
func WithDispatchListener(fn DispatchListener) Option {
	return func(v *View) {
		v.listener = fn
	}
}

// WithEditable sets whether the view accepts input. Views are editable by
// default.
func WithEditable(editable bool) Option {
	return func(v *View) {
		v.editable = editable
	}
}

// New creates a view over st, renders it and mounts the plugin views.
func New(st *state.State, opts ...Option) *View {
	v := &View{
		st:       st,
		editable: true,
		tracked:  make(map[*TrackedPos]struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.log = logging.OrNop(v.log).WithComponent("view")
	if v.window == nil {
		v.window = dom.NewEventTarget()
	}
	if v.nodeViews == nil {
		v.nodeViews = nodeview.Defaults(v.window)
	}
	if v.layout == nil {
		v.layout = NewGridLayout()
	}
	v.pipeline = plugin.NewPipeline(plugin.WithLogger(v.log))
	v.r = newRenderer(v)
	v.r.draw()
	v.pipeline.Mount(v)
	return v
}

// State returns the current state.
func (v *View) State() *state.State { return v.st }

// Logger returns the view's logger.
func (v *View) Logger() *logging.Logger { return v.log }

// Window returns the window event target.
func (v *View) Window() *dom.EventTarget { return v.window }

// Composing reports whether an IME composition is in progress.
func (v *View) Composing() bool { return v.composing }

// Editable reports whether the view accepts input.
func (v *View) Editable() bool { return v.editable }

// SetEditable changes whether the view accepts input.
func (v *View) SetEditable(editable bool) {
	if v.editable == editable {
		return
	}
	v.editable = editable
	v.r.full()
	v.r.draw()
}

// Focus gives the view input focus.
func (v *View) Focus() { v.focused = true }

// Blur removes input focus.
func (v *View) Blur() { v.focused = false }

// Focused reports whether the view has input focus.
func (v *View) Focused() bool { return v.focused }

// Dispatch applies tr with the full plugin protocol, remaps tracked
// positions and mounted node views through every applied transaction,
// redraws and notifies plugin views. Rejected transactions are logged and
// leave the state unchanged.
func (v *View) Dispatch(tr *state.Transaction) {
	if v.destroyed {
		v.log.Warn("dispatch: %v", ErrDestroyed)
		return
	}
	prev := v.st
	next, trs, err := prev.ApplyTransaction(tr)
	if err != nil {
		v.log.WithError(err).Warn("transaction rejected")
		return
	}
	if len(trs) == 0 {
		v.log.Debug("transaction filtered")
		return
	}
	for _, t := range trs {
		m := t.Mapping()
		for p := range v.tracked {
			p.remap(m)
		}
		v.r.remap(m)
	}
	v.st = next
	v.r.draw()
	if err := v.pipeline.Update(v, prev); err != nil {
		v.log.WithError(err).Warn("plugin view update")
	}
	if v.listener != nil {
		v.listener(next, trs)
	}
}

// UpdateState replaces the state without a transaction, for loading a
// different document. Tracked positions are invalidated and node views
// rebuilt. Plugin views are remounted when the plugin set changed.
func (v *View) UpdateState(st *state.State) {
	if v.destroyed {
		return
	}
	prev := v.st
	v.st = st
	size := st.Doc().Content().Size()
	for p := range v.tracked {
		p.invalidate(size)
	}
	v.r.reset()
	v.r.draw()
	if samePlugins(prev, st) {
		if err := v.pipeline.Update(v, prev); err != nil {
			v.log.WithError(err).Warn("plugin view update")
		}
	} else {
		v.pipeline.Mount(v)
	}
	if v.listener != nil {
		v.listener(st, nil)
	}
}

func samePlugins(a, b *state.State) bool {
	pa, pb := a.Plugins(), b.Plugins()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}

// CoordsAtPos implements plugin.Host.
func (v *View) CoordsAtPos(pos int) (plugin.Rect, error) {
	return v.layout.CoordsAtPos(v.st.Doc(), pos)
}

// PosAtCoords implements plugin.Host.
func (v *View) PosAtCoords(x, y float64) (int, bool) {
	return v.layout.PosAtCoords(v.st.Doc(), x, y)
}

// Decorations returns the plugins' decorations for the current state.
func (v *View) Decorations() plugin.DecorationSet {
	return v.pipeline.Decorations(v.st)
}

// DOM returns the rendered tree. It is redrawn in place after every state
// change.
func (v *View) DOM() *html.Node { return v.r.root }

// HTML returns the rendered tree as markup.
func (v *View) HTML() string { return v.r.html() }

// RenderStats reports how much of the document the last redraw rebuilt.
func (v *View) RenderStats() RenderStats { return v.r.stats }

// Destroy destroys node views and plugin views and releases tracked
// positions. It is safe to call more than once.
func (v *View) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.r.reset()
	v.pipeline.Destroy()
	for p := range v.tracked {
		p.released = true
	}
	clear(v.tracked)
}

// Destroyed reports whether Destroy was called.
func (v *View) Destroyed() bool { return v.destroyed }
