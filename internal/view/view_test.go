package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/commands"
	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/nodeview"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/draghandle"
	"github.com/dshills/inkwell/internal/plugins/imageinput"
	"github.com/dshills/inkwell/internal/plugins/placeholder"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
	"github.com/dshills/inkwell/internal/view"
)

const catURL = "https://example.com/cat.png"

func newView(t *testing.T, doc *model.Node, sel state.Selection, plugins ...state.Plugin) *view.View {
	t.Helper()
	st, err := state.New(state.Config{Doc: doc, Selection: sel, Plugins: plugins})
	require.NoError(t, err)
	v := view.New(st)
	t.Cleanup(v.Destroy)
	return v
}

func findClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && nodeview.GetAttr(n, "class") == class {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func clipboard(mime, data string) *dom.DataTransfer {
	dt := dom.NewDataTransfer()
	dt.SetData(mime, data)
	return dt
}

type decorator struct {
	decos []plugin.Decoration
}

func (decorator) Key() string { return "decorator" }

func (d decorator) Decorations(*state.State) plugin.DecorationSet {
	return plugin.NewDecorationSet(d.decos...)
}

type veto struct{}

func (veto) Key() string { return "veto" }

func (veto) FilterTransaction(*state.Transaction, *state.State) bool { return false }

func TestPlaceholderDisappearsOnTyping(t *testing.T) {
	v := newView(t, Doc(P()), nil, placeholder.New("Start typing"))

	assert.Equal(t,
		`<p><span class="placeholder" contenteditable="false" data-placeholder="Start typing">Start typing</span></p>`,
		v.HTML())

	require.True(t, v.TextInput("x"))
	assert.Equal(t, `<p>x</p>`, v.HTML())
	assert.True(t, plugin.NewPipeline().Decorations(v.State()).Empty())
}

func TestPastedImageMarkdown(t *testing.T) {
	var dispatched []*state.Transaction
	st, err := state.New(state.Config{Doc: Doc(P()), Plugins: []state.Plugin{imageinput.New()}})
	require.NoError(t, err)
	v := view.New(st, view.WithDispatchListener(func(_ *state.State, trs []*state.Transaction) {
		dispatched = append(dispatched, trs...)
	}))
	defer v.Destroy()

	ev := &dom.Event{Type: dom.Paste, Data: clipboard(view.MIMEText, "![cat]("+catURL+") ")}
	require.True(t, v.HandleEvent(ev))

	require.Len(t, dispatched, 1)
	want := Doc(P(Img(catURL, "cat")))
	assert.True(t, v.State().Doc().Eq(want), "got %s", v.State().Doc())
	assert.Equal(t, 1, v.RenderStats().NodeViews)
}

func TestPaste(t *testing.T) {
	tests := []struct {
		name string
		doc  *model.Node
		pos  int
		mime string
		data string
		want *model.Node
	}{
		{"html blocks", Doc(P("ab")), 2, view.MIMEHTML, "<p>one</p><p>two</p>", Doc(P("aone"), P("twob"))},
		{"html images are dropped", Doc(P()), 1, view.MIMEHTML, `<p>x<img src="https://example.com/a.png">y</p>`, Doc(P("xy"))},
		{"plain lines", Doc(P()), 1, view.MIMEText, "x\ny", Doc(P("x"), P("y"))},
		{"plain text in code", Doc(Code("ab")), 2, view.MIMEText, "1\n2", Doc(Code("a1\n2b"))},
		{"single line", Doc(P("ab")), 2, view.MIMEText, "xy", Doc(P("axyb"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newView(t, tt.doc, state.Cursor(tt.pos))
			require.True(t, v.HandleEvent(&dom.Event{Type: dom.Paste, Data: clipboard(tt.mime, tt.data)}))
			assert.True(t, v.State().Doc().Eq(tt.want), "got %s", v.State().Doc())
		})
	}
}

func TestPasteNothing(t *testing.T) {
	v := newView(t, Doc(P("a")), nil)
	before := v.State()
	assert.False(t, v.HandleEvent(&dom.Event{Type: dom.Paste, Data: dom.NewDataTransfer()}))
	assert.Same(t, before, v.State())
}

func TestToggleBoldFromKeyboard(t *testing.T) {
	v := newView(t, Doc(P("hello")), state.NewTextSelection(1, 6), commands.Keymap())
	original := v.State().Doc()

	require.True(t, v.HandleEvent(&dom.Event{Type: dom.KeyDown, Key: "b", Mods: dom.ModCtrl}))
	assert.True(t, v.State().Doc().Eq(Doc(P(Marked("hello", model.Bold)))))
	assert.Equal(t, `<p><strong>hello</strong></p>`, v.HTML())

	require.True(t, v.HandleEvent(&dom.Event{Type: dom.KeyDown, Key: "b", Mods: dom.ModCtrl}))
	assert.True(t, v.State().Doc().Eq(original))
}

func TestDragHandleMovesBlock(t *testing.T) {
	// Grid rows: block i is on row i, 20 units high.
	v := newView(t, Doc(P("a"), H(2, "b"), Quote(P("c")), P("d")), nil, draghandle.New())
	old := v.State().Doc()

	var handle *html.Node
	for c := v.DOM().FirstChild; c != nil; c = c.NextSibling {
		if draghandle.IsHandle(c) && nodeview.GetAttr(c, "data-pos") == "6" {
			handle = c
		}
	}
	require.NotNil(t, handle)

	require.True(t, v.HandleEvent(&dom.Event{Type: dom.PointerDown, Y: 45, Target: handle}))
	v.HandleEvent(&dom.Event{Type: dom.DragStart, Y: 45})
	require.True(t, v.HandleEvent(&dom.Event{Type: dom.DragOver, Y: 5}))
	assert.NotNil(t, findClass(v.DOM(), draghandle.DropCursorKey))
	require.True(t, v.HandleEvent(&dom.Event{Type: dom.Drop, Y: 5}))

	doc := v.State().Doc()
	require.Equal(t, 4, doc.ChildCount())
	assert.Same(t, old.Child(2), doc.Child(0))
	assert.Same(t, old.Child(0), doc.Child(1))
	assert.Same(t, old.Child(1), doc.Child(2))
	assert.Same(t, old.Child(3), doc.Child(3))
	assert.False(t, draghandle.Get(v.State()).Active)
	assert.Nil(t, findClass(v.DOM(), draghandle.DropCursorKey))
}

func TestUnchangedBlocksAreReused(t *testing.T) {
	for name, plugins := range map[string][]state.Plugin{
		"plain":        nil,
		"with handles": {draghandle.New()},
	} {
		t.Run(name, func(t *testing.T) {
			v := newView(t, Doc(P("a"), P("b"), P("c")), nil, plugins...)
			assert.Equal(t, 3, v.RenderStats().Rebuilt)
			second := findText(v.DOM(), "b").Parent

			require.True(t, v.TextInput("x"))
			stats := v.RenderStats()
			assert.Equal(t, 3, stats.Blocks)
			assert.Equal(t, 1, stats.Rebuilt)
			assert.Same(t, second, findText(v.DOM(), "b").Parent)
		})
	}
}

func findText(n *html.Node, text string) *html.Node {
	if n.Type == html.TextNode && n.Data == text {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, text); found != nil {
			return found
		}
	}
	return nil
}

func TestDecorationsRender(t *testing.T) {
	widget := plugin.Widget(3, "w", func() *html.Node {
		return &html.Node{Type: html.ElementNode, Data: "i"}
	})
	tests := []struct {
		name  string
		doc   *model.Node
		decos []plugin.Decoration
		want  string
	}{
		{
			"inline",
			Doc(P("abc")),
			[]plugin.Decoration{plugin.Inline(2, 3, map[string]string{"class": "hl"})},
			`<p>a<span class="hl">b</span>c</p>`,
		},
		{
			"inline inside a mark",
			Doc(P(Marked("abc", model.Bold))),
			[]plugin.Decoration{plugin.Inline(2, 3, map[string]string{"class": "hl"})},
			`<p><strong>a<span class="hl">b</span>c</strong></p>`,
		},
		{
			"overlapping inline",
			Doc(P("abc")),
			[]plugin.Decoration{
				plugin.Inline(1, 3, map[string]string{"class": "one"}),
				plugin.Inline(2, 4, map[string]string{"class": "two"}),
			},
			`<p><span class="one">a</span><span class="one two">b</span><span class="two">c</span></p>`,
		},
		{
			"widget splits text",
			Doc(P("abc")),
			[]plugin.Decoration{widget},
			`<p>ab<i></i>c</p>`,
		},
		{
			"node",
			Doc(P("a"), P("b")),
			[]plugin.Decoration{plugin.NodeDeco(3, 6, map[string]string{"class": "selected"})},
			`<p>a</p><p class="selected">b</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newView(t, tt.doc, nil, decorator{decos: tt.decos})
			assert.Equal(t, tt.want, v.HTML())
		})
	}
}

func TestTrackedPosition(t *testing.T) {
	v := newView(t, Doc(P("abc")), nil)
	tracked := v.Track(3)

	tr := v.State().Tr()
	require.NoError(t, tr.InsertText("xy", 1, 1))
	v.Dispatch(tr)
	assert.Equal(t, 5, tracked.Pos())
	assert.False(t, tracked.Deleted())

	tr = v.State().Tr()
	require.NoError(t, tr.Delete(2, 6))
	v.Dispatch(tr)
	assert.Equal(t, 2, tracked.Pos())
	assert.True(t, tracked.Deleted())

	tracked.Release()
	tr = v.State().Tr()
	require.NoError(t, tr.InsertText("zz", 1, 1))
	v.Dispatch(tr)
	assert.Equal(t, 2, tracked.Pos(), "released positions stay put")
}

func TestUpdateStateInvalidatesTrackedPositions(t *testing.T) {
	v := newView(t, Doc(P("abcdef")), nil)
	tracked := v.Track(6)

	st, err := state.New(state.Config{Doc: Doc(P("a"))})
	require.NoError(t, err)
	v.UpdateState(st)
	assert.True(t, tracked.Deleted())
	assert.Equal(t, 3, tracked.Pos())
	assert.Equal(t, `<p>a</p>`, v.HTML())
}

func TestRejectedTransactions(t *testing.T) {
	calls := 0
	st, err := state.New(state.Config{Doc: Doc(P("a"))})
	require.NoError(t, err)
	v := view.New(st, view.WithDispatchListener(func(*state.State, []*state.Transaction) { calls++ }))
	defer v.Destroy()

	stale := v.State().Tr()
	require.NoError(t, stale.InsertText("x", 1, 1))
	require.True(t, v.TextInput("y"))
	require.Equal(t, 1, calls)

	before := v.State()
	v.Dispatch(stale)
	assert.Same(t, before, v.State())
	assert.Equal(t, 1, calls)
}

func TestFilteredTransactions(t *testing.T) {
	v := newView(t, Doc(P("a")), nil, veto{})
	before := v.State()
	v.TextInput("x")
	assert.Same(t, before, v.State())
}

func TestReadOnly(t *testing.T) {
	st, err := state.New(state.Config{Doc: Doc(P("a")), Plugins: []state.Plugin{commands.Keymap()}})
	require.NoError(t, err)
	v := view.New(st, view.WithEditable(false))
	defer v.Destroy()

	assert.Equal(t, "false", nodeview.GetAttr(v.DOM(), "contenteditable"))
	assert.False(t, v.TextInput("x"))
	assert.False(t, v.HandleEvent(&dom.Event{Type: dom.KeyDown, Key: "a", Mods: dom.ModCtrl}))
	assert.False(t, v.HandleEvent(&dom.Event{Type: dom.Paste, Data: clipboard(view.MIMEText, "x")}))
	assert.Same(t, st, v.State())

	v.SetEditable(true)
	assert.Equal(t, "true", nodeview.GetAttr(v.DOM(), "contenteditable"))
	assert.True(t, v.TextInput("x"))
}

func TestFocusAndComposition(t *testing.T) {
	v := newView(t, Doc(P()), nil)
	v.HandleEvent(&dom.Event{Type: dom.Focus})
	assert.True(t, v.Focused())
	v.HandleEvent(&dom.Event{Type: dom.Blur})
	assert.False(t, v.Focused())

	v.HandleEvent(&dom.Event{Type: dom.CompositionStart})
	assert.True(t, v.Composing())
	v.HandleEvent(&dom.Event{Type: dom.CompositionEnd})
	assert.False(t, v.Composing())

	commands.Chain(v).Focus().Command(commands.InsertText("a")).Run()
	assert.True(t, v.Focused())
}

func TestImageResizeThroughView(t *testing.T) {
	v := newView(t, Doc(P("a", Img(catURL, "cat"))), nil)
	container := findClass(v.DOM(), nodeview.ImageContainerClass)
	require.NotNil(t, container)
	handle := findClass(container, nodeview.ResizeHandleClass)
	require.NotNil(t, handle)

	// The image sits at position 2, one character into the first line.
	require.True(t, v.HandleEvent(&dom.Event{Type: dom.PointerDown, Target: handle}))
	assert.Equal(t, 1, v.Window().ListenerCount(dom.PointerMove))

	v.Window().Dispatch(&dom.Event{Type: dom.PointerMove, X: 208})
	v.Window().Dispatch(&dom.Event{Type: dom.PointerUp})

	assert.Equal(t, 200, v.State().Doc().NodeAt(2).Attr("width"))
	assert.Equal(t, 0, v.Window().ListenerCount(dom.PointerMove))
	assert.Equal(t, 0, v.Window().ListenerCount(dom.PointerUp))
	assert.Same(t, container, findClass(v.DOM(), nodeview.ImageContainerClass), "the view is updated in place")
	assert.Equal(t, "width: 200px", nodeview.GetAttr(container, "style"))
}

func TestNodeViewsFollowTheirNodes(t *testing.T) {
	v := newView(t, Doc(P("a", Img(catURL, ""))), state.Cursor(1))
	container := findClass(v.DOM(), nodeview.ImageContainerClass)

	require.True(t, v.TextInput("xy"))
	assert.Same(t, container, findClass(v.DOM(), nodeview.ImageContainerClass))
	assert.Equal(t, 1, v.RenderStats().NodeViews)

	tr := v.State().Tr()
	require.NoError(t, tr.Delete(4, 5))
	v.Dispatch(tr)
	assert.Equal(t, 0, v.RenderStats().NodeViews)
	assert.Nil(t, findClass(v.DOM(), nodeview.ImageContainerClass))
}

func TestDestroy(t *testing.T) {
	v := newView(t, Doc(P(Img(catURL, ""))), nil)
	v.Destroy()
	assert.True(t, v.Destroyed())
	assert.Equal(t, 0, v.RenderStats().NodeViews)

	before := v.State()
	v.Dispatch(before.Tr())
	assert.Same(t, before, v.State())
	assert.False(t, v.TextInput("x"))
	v.Destroy()
}

func TestGridLayout(t *testing.T) {
	g := view.NewGridLayout()
	doc := Doc(P("ab"), Node(model.HorizontalRule, nil), P("cd"))

	r, err := g.CoordsAtPos(doc, 2)
	require.NoError(t, err)
	assert.Equal(t, plugin.Rect{Left: 8, Top: 0, Right: 8, Bottom: 20}, r)

	r, err = g.CoordsAtPos(doc, 4)
	require.NoError(t, err)
	assert.Equal(t, 20.0, r.Top, "the rule takes the second line")

	r, err = g.CoordsAtPos(doc, 7)
	require.NoError(t, err)
	assert.Equal(t, plugin.Rect{Left: 8, Top: 40, Right: 8, Bottom: 60}, r)

	_, err = g.CoordsAtPos(doc, 99)
	assert.ErrorIs(t, err, model.ErrPositionOutOfRange)

	pos, ok := g.PosAtCoords(doc, 100, 5)
	require.True(t, ok)
	assert.Equal(t, 3, pos, "clamped to the line end")

	pos, ok = g.PosAtCoords(doc, 0, 45)
	require.True(t, ok)
	assert.Equal(t, 6, pos)

	_, ok = g.PosAtCoords(doc, 0, 500)
	assert.False(t, ok)
}
