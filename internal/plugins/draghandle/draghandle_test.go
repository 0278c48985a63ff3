package draghandle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/plugintest"
	"github.com/dshills/inkwell/internal/plugins/draghandle"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
)

// Blocks start at 0, 3, 6 and 11. Row y covers block y; row 4 is the end.
func newHost(t *testing.T) *plugintest.Host {
	t.Helper()
	doc := Doc(P("a"), H(2, "b"), Quote(P("c")), P("d"))
	st, err := state.New(state.Config{Doc: doc, Plugins: []state.Plugin{draghandle.New()}})
	require.NoError(t, err)
	h := plugintest.NewHost(st)
	h.Positions = map[float64]int{0: 1, 1: 4, 2: 8, 3: 12, 4: 14}
	return h
}

func handle(t *testing.T, h *plugintest.Host, pos int) *html.Node {
	t.Helper()
	for _, d := range plugin.NewPipeline().Decorations(h.St).Find(pos, pos) {
		if d.Kind == plugin.WidgetDecoration && d.ToDOM != nil {
			if n := d.ToDOM(); draghandle.IsHandle(n) {
				return n
			}
		}
	}
	t.Fatalf("no handle at %d", pos)
	return nil
}

func TestDragMovesBlock(t *testing.T) {
	h := newHost(t)
	p := plugin.NewPipeline()
	old := h.St.Doc()
	from := 6

	require.True(t, p.DOMEvent(h, &dom.Event{Type: dom.PointerDown, Y: 2, Target: handle(t, h, from)}))
	sel, ok := h.St.Selection().(state.NodeSelection)
	require.True(t, ok)
	assert.Equal(t, from, sel.From())
	assert.Same(t, old.Child(2), sel.Node())
	assert.True(t, draghandle.Get(h.St).Active)

	over := &dom.Event{Type: dom.DragOver, Y: 0}
	require.True(t, p.DOMEvent(h, over))
	assert.True(t, over.DefaultPrevented())
	assert.Equal(t, 0, draghandle.Get(h.St).DropPos)
	cursor := p.Decorations(h.St).Find(0, 0)
	assert.True(t, hasKey(cursor, draghandle.DropCursorKey))

	h.Dispatched = nil
	require.True(t, p.Drop(h, &dom.Event{Type: dom.Drop, Y: 0}, model.Slice{}, true))
	require.Len(t, h.Dispatched, 1, "one transaction")

	doc := h.St.Doc()
	require.Equal(t, 4, doc.ChildCount())
	assert.Same(t, old.Child(2), doc.Child(0))
	assert.Same(t, old.Child(0), doc.Child(1))
	assert.Same(t, old.Child(1), doc.Child(2))
	assert.Same(t, old.Child(3), doc.Child(3))

	sel, ok = h.St.Selection().(state.NodeSelection)
	require.True(t, ok)
	assert.Equal(t, 0, sel.From())
	assert.False(t, draghandle.Get(h.St).Active)
	assert.False(t, hasKey(p.Decorations(h.St).All(), draghandle.DropCursorKey))
}

func TestDropAfterLastBlock(t *testing.T) {
	h := newHost(t)
	p := plugin.NewPipeline()
	old := h.St.Doc()

	require.True(t, p.DOMEvent(h, &dom.Event{Type: dom.PointerDown, Y: 0, Target: handle(t, h, 0)}))
	require.True(t, p.Drop(h, &dom.Event{Type: dom.Drop, Y: 4}, model.Slice{}, true))

	doc := h.St.Doc()
	assert.Same(t, old.Child(0), doc.Child(3))
	assert.Same(t, old.Child(1), doc.Child(0))
}

func TestDropOnItselfOnlyEndsDrag(t *testing.T) {
	h := newHost(t)
	p := plugin.NewPipeline()
	old := h.St.Doc()

	require.True(t, p.DOMEvent(h, &dom.Event{Type: dom.PointerDown, Y: 1, Target: handle(t, h, 3)}))
	require.True(t, p.Drop(h, &dom.Event{Type: dom.Drop, Y: 1}, model.Slice{}, true))
	assert.Same(t, old, h.St.Doc())
	assert.False(t, draghandle.Get(h.St).Active)
}

func TestEventsOutsideADrag(t *testing.T) {
	h := newHost(t)
	p := plugin.NewPipeline()

	assert.False(t, p.DOMEvent(h, &dom.Event{Type: dom.PointerDown, Y: 0}), "not on a handle")
	assert.False(t, p.DOMEvent(h, &dom.Event{Type: dom.DragOver, Y: 0}))
	assert.False(t, p.Drop(h, &dom.Event{Type: dom.Drop, Y: 0}, model.Slice{}, false))
	assert.Empty(t, h.Dispatched)
}

func TestDragLeaveClears(t *testing.T) {
	h := newHost(t)
	p := plugin.NewPipeline()

	require.True(t, p.DOMEvent(h, &dom.Event{Type: dom.PointerDown, Y: 3, Target: handle(t, h, 10)}))
	require.True(t, p.DOMEvent(h, &dom.Event{Type: dom.DragOver, Y: 1}))
	assert.Equal(t, 3, draghandle.Get(h.St).DropPos)
	require.True(t, p.DOMEvent(h, &dom.Event{Type: dom.DragLeave}))
	assert.Equal(t, -1, draghandle.Get(h.St).DropPos)
	assert.False(t, draghandle.Get(h.St).Active)
}

func TestEveryBlockGetsAHandle(t *testing.T) {
	h := newHost(t)
	decos := plugin.NewPipeline().Decorations(h.St)
	assert.Len(t, decos.OfKind(plugin.WidgetDecoration), 4)
	assert.Len(t, decos.OfKind(plugin.NodeDecoration), 4)
}

func hasKey(decos []plugin.Decoration, key string) bool {
	for _, d := range decos {
		if d.Key == key {
			return true
		}
	}
	return false
}
