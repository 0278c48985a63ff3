package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/commands"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin/plugintest"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
)

func newState(t *testing.T, doc *model.Node, sel state.Selection) *state.State {
	t.Helper()
	st, err := state.New(state.Config{Doc: doc, Selection: sel})
	require.NoError(t, err)
	return st
}

// run applies cmd and returns the new state, failing when it does not
// apply.
func run(t *testing.T, st *state.State, cmd state.Command) *state.State {
	t.Helper()
	var tr *state.Transaction
	require.True(t, cmd(st, func(t *state.Transaction) { tr = t }))
	require.NotNil(t, tr)
	next, err := st.Apply(tr)
	require.NoError(t, err)
	return next
}

func TestToggleMarkOnRange(t *testing.T) {
	original := Doc(P("hello"))
	st := newState(t, original, state.NewTextSelection(1, 6))
	bold := commands.ToggleMark(model.Bold, nil)

	st = run(t, st, bold)
	assert.True(t, st.Doc().Eq(Doc(P(Marked("hello", model.Bold)))), "got %s", st.Doc())
	assert.True(t, commands.MarkActive(st, model.Bold))

	st = run(t, st, bold)
	assert.True(t, st.Doc().Eq(original), "got %s", st.Doc())
	assert.False(t, commands.MarkActive(st, model.Bold))
}

func TestToggleMarkCoversOnlySelection(t *testing.T) {
	st := newState(t, Doc(P("say hello now")), state.NewTextSelection(5, 10))
	st = run(t, st, commands.ToggleMark(model.Bold, nil))
	assert.True(t, st.Doc().Eq(Doc(P("say ", Marked("hello", model.Bold), " now"))), "got %s", st.Doc())
}

func TestToggleMarkRemovesWhenPartlyMarked(t *testing.T) {
	st := newState(t, Doc(P("say ", Marked("hello", model.Bold), " now")), state.NewTextSelection(1, 14))
	st = run(t, st, commands.ToggleMark(model.Bold, nil))
	assert.True(t, st.Doc().Eq(Doc(P("say hello now"))), "got %s", st.Doc())
}

func TestToggleMarkOnCursorUsesStoredMarks(t *testing.T) {
	st := newState(t, Doc(P("ab")), state.Cursor(2))
	st = run(t, st, commands.ToggleMark(model.Italic, nil))
	assert.True(t, st.StoredMarks().Has(model.Italic))
	assert.True(t, commands.MarkActive(st, model.Italic))

	st = run(t, st, commands.ToggleMark(model.Italic, nil))
	assert.False(t, st.StoredMarks().Has(model.Italic))
}

func TestStoredMarksClearedWhenCursorMoves(t *testing.T) {
	st := newState(t, Doc(P("abcdef")), state.Cursor(2))
	st = run(t, st, commands.ToggleMark(model.Bold, nil))
	require.True(t, st.StoredMarks().Has(model.Bold))

	st, err := st.Apply(st.Tr().SetSelection(state.Cursor(6)))
	require.NoError(t, err)
	assert.Nil(t, st.StoredMarks())

	st = run(t, st, commands.InsertText("X"))
	assert.True(t, st.Doc().Eq(Doc(P("abcdeXf"))), "got %s", st.Doc())
}

func TestStoredMarksSetAfterSelectionSurvive(t *testing.T) {
	st := newState(t, Doc(P("abcdef")), state.Cursor(2))
	italic, err := st.Schema().Mark(model.Italic, nil)
	require.NoError(t, err)
	tr := st.Tr().SetSelection(state.Cursor(6))
	tr.AddStoredMark(italic)
	st, err = st.Apply(tr)
	require.NoError(t, err)

	st = run(t, st, commands.InsertText("X"))
	assert.True(t, st.Doc().Eq(Doc(P("abcde", Marked("X", model.Italic), "f"))), "got %s", st.Doc())
}

func TestToggleMarkRefusesCode(t *testing.T) {
	st := newState(t, Doc(Code("x := 1")), state.NewTextSelection(1, 3))
	assert.False(t, commands.ToggleMark(model.Bold, nil)(st, nil))
}

func TestSetNodeType(t *testing.T) {
	st := newState(t, Doc(P("title")), state.Cursor(2))
	h2 := commands.SetNodeType(model.Heading, model.Attrs{"level": 2})

	st = run(t, st, h2)
	assert.True(t, st.Doc().Eq(Doc(H(2, "title"))))
	assert.True(t, commands.BlockActive(st, model.Heading, model.Attrs{"level": 2}))
	assert.False(t, commands.BlockActive(st, model.Heading, model.Attrs{"level": 1}))
	assert.False(t, h2(st, nil), "already a level 2 heading")
}

func TestWrapInAndLift(t *testing.T) {
	st := newState(t, Doc(P("a")), state.Cursor(1))

	st = run(t, st, commands.WrapIn(model.BulletList, nil))
	assert.True(t, st.Doc().Eq(Doc(UL(LI(P("a"))))), "got %s", st.Doc())
	assert.True(t, commands.WrappedIn(st, model.BulletList))

	st = newState(t, Doc(Quote(P("a"))), state.Cursor(2))
	st = run(t, st, commands.Lift)
	assert.True(t, st.Doc().Eq(Doc(P("a"))), "got %s", st.Doc())
	assert.False(t, commands.Lift(st, nil), "nothing to lift out of")
}

func TestInsertNode(t *testing.T) {
	st := newState(t, Doc(P("ab")), state.Cursor(2))
	next := run(t, st, commands.InsertNode(model.HardBreak, nil))
	assert.True(t, next.Doc().Eq(Doc(P("a", Node(model.HardBreak, nil), "b"))))

	next = run(t, st, commands.InsertNode(model.HorizontalRule, nil))
	assert.True(t, next.Doc().Eq(Doc(P("a"), Node(model.HorizontalRule, nil), P("b"))), "got %s", next.Doc())

	empty := newState(t, Doc(P()), state.Cursor(1))
	next = run(t, empty, commands.InsertNode(model.HorizontalRule, nil))
	assert.True(t, next.Doc().Eq(Doc(Node(model.HorizontalRule, nil))), "got %s", next.Doc())

	assert.False(t, commands.InsertNode(model.Image, nil)(st, nil), "src is required")
	code := newState(t, Doc(Code("x")), state.Cursor(1))
	assert.False(t, commands.InsertNode(model.HardBreak, nil)(code, nil))
}

func TestSplitBlock(t *testing.T) {
	tests := []struct {
		name   string
		doc    *model.Node
		cursor int
		want   *model.Node
	}{
		{"paragraph", Doc(P("ab")), 2, Doc(P("a"), P("b"))},
		{"end of heading", Doc(H(1, "ab")), 3, Doc(H(1, "ab"), P())},
		{"middle of heading", Doc(H(1, "ab")), 2, Doc(H(1, "a"), H(1, "b"))},
		{"code block", Doc(Code("ab")), 2, Doc(Code("a\nb"))},
		{"list item", Doc(UL(LI(P("ab")))), 4, Doc(UL(LI(P("a")), LI(P("b"))))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := run(t, newState(t, tt.doc, state.Cursor(tt.cursor)), commands.SplitBlock)
			assert.True(t, st.Doc().Eq(tt.want), "got %s", st.Doc())
		})
	}
}

func TestSplitBlockMovesCursorIntoNewBlock(t *testing.T) {
	st := run(t, newState(t, Doc(P("ab")), state.Cursor(2)), commands.SplitBlock)
	assert.Equal(t, 4, st.Selection().Head())
}

func TestDeleteSelection(t *testing.T) {
	st := newState(t, Doc(P("abc")), state.NewTextSelection(1, 3))
	st = run(t, st, commands.DeleteSelection)
	assert.True(t, st.Doc().Eq(Doc(P("c"))))
	assert.False(t, commands.DeleteSelection(st, nil), "empty selection")
}

func TestInsertText(t *testing.T) {
	st := newState(t, Doc(P("ac")), state.Cursor(2))
	st = run(t, st, commands.InsertText("b"))
	assert.True(t, st.Doc().Eq(Doc(P("abc"))))
	assert.Equal(t, 3, st.Selection().Head())
	assert.False(t, commands.InsertText("")(st, nil))
}

func TestSetFloat(t *testing.T) {
	st := newState(t, Doc(Quote(P("x"))), state.Cursor(2))

	st = run(t, st, commands.SetFloat("left"))
	assert.Equal(t, "left", st.Doc().Child(0).Attr("float"))

	st = run(t, st, commands.SetFloat("left"))
	assert.Nil(t, st.Doc().Child(0).Attr("float"), "same value clears")

	assert.False(t, commands.SetFloat("center")(st, nil))
	plain := newState(t, Doc(P("x")), state.Cursor(1))
	assert.False(t, commands.SetFloat("left")(plain, nil))
}

func TestSelectAll(t *testing.T) {
	st := run(t, newState(t, Doc(P("a"), P("b")), state.Cursor(1)), commands.SelectAll)
	_, ok := st.Selection().(state.AllSelection)
	assert.True(t, ok)
}

type focusHost struct {
	*plugintest.Host
	focused int
}

func (h *focusHost) Focus() { h.focused++ }

func TestChainDispatchesOneTransaction(t *testing.T) {
	h := &focusHost{Host: plugintest.NewHost(newState(t, Doc(P("hello")), state.NewTextSelection(1, 6)))}

	ok := commands.Chain(h).Focus().ToggleMark(model.Bold, nil).InsertText("bye").Run()
	require.True(t, ok)
	require.NoError(t, h.Err)
	assert.Len(t, h.Dispatched, 1)
	assert.True(t, h.St.Doc().Eq(Doc(P(Marked("bye", model.Bold)))), "got %s", h.St.Doc())
	assert.Equal(t, 4, h.St.Selection().Head())
	assert.Equal(t, 1, h.focused)
}

func TestChainAbortsOnFirstFailure(t *testing.T) {
	h := &focusHost{Host: plugintest.NewHost(newState(t, Doc(P("hello")), state.NewTextSelection(1, 6)))}
	before := h.St

	chain := commands.Chain(h).Focus().ToggleMark(model.Bold, nil).SetNodeType(model.Paragraph, nil)
	assert.False(t, chain.Can())
	assert.False(t, chain.Run())
	assert.Empty(t, h.Dispatched)
	assert.Same(t, before, h.St)
	assert.Zero(t, h.focused)
}

func TestRegistry(t *testing.T) {
	r := commands.DefaultRegistry()
	assert.True(t, r.Has("bold"))
	assert.True(t, r.Has("heading6"))
	assert.Contains(t, r.List(), "float-half-left")

	st := newState(t, Doc(P("x")), state.Cursor(1))
	assert.False(t, r.Run("nope", st, nil))
	assert.True(t, r.Run("heading1", st, nil))

	r.Unregister("bold")
	assert.False(t, r.Has("bold"))
}
