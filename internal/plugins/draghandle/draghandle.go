// Package draghandle lets top-level blocks be reordered by dragging a
// handle rendered beside each of them.
//
// Pressing a handle selects its block and starts a drag. While dragging,
// a drop cursor widget follows the pointer. Dropping moves the block in
// one transaction that deletes it and reinserts the same node value.
package draghandle

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/state"
)

// PluginKey is the draghandle plugin's key.
const PluginKey = "dragHandle"

// HandleClass is the class of rendered handles.
const HandleClass = "drag-handle"

// DropCursorKey keys the drop cursor widget.
const DropCursorKey = "drop-cursor"

// Drag is the plugin state.
type Drag struct {
	Active bool
	// From is the position before the dragged block.
	From int
	// DropPos is the block boundary under the pointer, or -1.
	DropPos int
}

var idle = Drag{DropPos: -1}

type action struct {
	start   bool
	from    int
	dropPos int
	clear   bool
}

// Plugin is the drag handle plugin.
type Plugin struct{}

// New creates the plugin.
func New() *Plugin { return &Plugin{} }

// Key implements state.Plugin.
func (p *Plugin) Key() string { return PluginKey }

// InitState implements state.StateField.
func (p *Plugin) InitState(*state.State) any { return idle }

// ApplyState implements state.StateField.
func (p *Plugin) ApplyState(tr *state.Transaction, value any, _, _ *state.State) any {
	d := value.(Drag)
	if a, ok := tr.Meta(PluginKey).(action); ok {
		switch {
		case a.clear:
			return idle
		case a.start:
			return Drag{Active: true, From: a.from, DropPos: -1}
		default:
			d.DropPos = a.dropPos
			return d
		}
	}
	if !d.Active || !tr.DocChanged() {
		return d
	}
	res := tr.Mapping().MapResult(d.From, 1)
	if res.Deleted() {
		return idle
	}
	d.From = res.Pos
	if d.DropPos >= 0 {
		d.DropPos = tr.Mapping().Map(d.DropPos, -1)
	}
	return d
}

// Get returns the drag state of st.
func Get(st *state.State) Drag {
	d, ok := state.Field[Drag](st, PluginKey)
	if !ok {
		return idle
	}
	return d
}

// Decorations implements plugin.Decorator.
func (p *Plugin) Decorations(st *state.State) plugin.DecorationSet {
	doc := st.Doc()
	decos := make([]plugin.Decoration, 0, 2*doc.ChildCount()+1)
	pos := 0
	for i := range doc.ChildCount() {
		child := doc.Child(i)
		at := pos
		deco := plugin.Widget(at, "handle-"+strconv.Itoa(at), func() *html.Node { return handleElement(at) })
		deco.Side = -1
		decos = append(decos, deco, plugin.NodeDeco(at, at+child.NodeSize(), map[string]string{"draggable": "true"}))
		pos += child.NodeSize()
	}
	if d := Get(st); d.Active && d.DropPos >= 0 {
		deco := plugin.Widget(d.DropPos, DropCursorKey, dropCursorElement)
		deco.Side = 1
		decos = append(decos, deco)
	}
	return plugin.NewDecorationSet(decos...)
}

func handleElement(pos int) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: HandleClass},
			{Key: "contenteditable", Val: "false"},
			{Key: "draggable", Val: "true"},
			{Key: "data-pos", Val: strconv.Itoa(pos)},
		},
	}
}

func dropCursorElement() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "class", Val: DropCursorKey}},
	}
}

// IsHandle reports whether n is a rendered drag handle.
func IsHandle(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "class" && strings.Contains(" "+a.Val+" ", " "+HandleClass+" ") {
			return true
		}
	}
	return false
}

// BlockAt returns the position before the top-level block at pos, or pos
// itself when it already is a boundary between top-level blocks.
func BlockAt(doc *model.Node, pos int) (int, bool) {
	r, err := doc.Resolve(pos)
	if err != nil {
		return 0, false
	}
	if r.Depth == 0 {
		return pos, true
	}
	return r.Before(1), true
}

// HandleDOMEvent implements plugin.DOMEventHandler.
func (p *Plugin) HandleDOMEvent(h plugin.Host, ev *dom.Event) plugin.Result {
	switch ev.Type {
	case dom.PointerDown:
		if !IsHandle(ev.Target) {
			return plugin.NotHandled
		}
		pos, ok := h.PosAtCoords(ev.X, ev.Y)
		if !ok {
			return plugin.NotHandled
		}
		from, ok := BlockAt(h.State().Doc(), pos)
		if !ok || h.State().Doc().NodeAt(from) == nil {
			return plugin.NotHandled
		}
		return plugin.Handled(StartDrag(from))
	case dom.DragOver:
		if !Get(h.State()).Active {
			return plugin.NotHandled
		}
		ev.PreventDefault()
		target, ok := dropTarget(h, ev)
		if !ok || target == Get(h.State()).DropPos {
			return plugin.Handled()
		}
		return plugin.Handled(setMeta(action{dropPos: target}))
	case dom.DragLeave, dom.DragEnd:
		if !Get(h.State()).Active {
			return plugin.NotHandled
		}
		return plugin.Handled(setMeta(action{clear: true}))
	}
	return plugin.NotHandled
}

// HandleDrop implements plugin.DropHandler. Only drags started from a
// handle are handled.
func (p *Plugin) HandleDrop(h plugin.Host, ev *dom.Event, _ model.Slice, _ bool) plugin.Result {
	d := Get(h.State())
	if !d.Active {
		return plugin.NotHandled
	}
	ev.PreventDefault()
	target, ok := dropTarget(h, ev)
	if !ok {
		target = d.DropPos
	}
	if target < 0 {
		return plugin.Handled(setMeta(action{clear: true}))
	}
	return plugin.Handled(MoveBlock(d.From, target))
}

func dropTarget(h plugin.Host, ev *dom.Event) (int, bool) {
	pos, ok := h.PosAtCoords(ev.X, ev.Y)
	if !ok {
		return 0, false
	}
	return BlockAt(h.State().Doc(), pos)
}

// StartDrag selects the block at from and starts dragging it.
func StartDrag(from int) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		sel, err := state.NewNodeSelection(st.Doc(), from)
		if err != nil {
			return false
		}
		if dispatch != nil {
			tr := st.Tr().SetSelection(sel)
			tr.SetMeta(PluginKey, action{start: true, from: from})
			dispatch(tr)
		}
		return true
	}
}

// MoveBlock moves the block at from to the boundary target, both given in
// the current document, and selects it at its new position. Dropping a
// block onto its own edges only ends the drag.
func MoveBlock(from, target int) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		node := st.Doc().NodeAt(from)
		if node == nil {
			return false
		}
		tr := st.Tr()
		tr.SetMeta(PluginKey, action{clear: true})
		if target == from || target == from+node.NodeSize() {
			if dispatch != nil {
				dispatch(tr)
			}
			return true
		}
		if err := tr.Move(from, target); err != nil {
			return false
		}
		sel, err := state.NewNodeSelection(tr.Doc(), tr.Mapping().Map(target, -1))
		if err != nil {
			return false
		}
		if dispatch != nil {
			tr.SetSelection(sel)
			tr.SetMeta(state.MetaInputType, "drop")
			tr.SetMeta(state.MetaPlugin, PluginKey)
			tr.ScrollIntoView()
			dispatch(tr)
		}
		return true
	}
}

func setMeta(a action) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		if dispatch != nil {
			dispatch(st.Tr().SetMeta(PluginKey, a))
		}
		return true
	}
}
