package terminal

import (
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/commands"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugins/placeholder"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
	"github.com/dshills/inkwell/internal/view"
)

func newHost(t *testing.T, doc *model.Node, sel state.Selection, opts ...Option) (*Host, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 6)

	st, err := state.New(state.Config{
		Doc:       doc,
		Selection: sel,
		Plugins:   []state.Plugin{commands.Keymap(), placeholder.New("Write something...")},
	})
	require.NoError(t, err)
	v := view.New(st, view.WithLayout(Layout()))
	t.Cleanup(v.Destroy)
	v.Focus()

	h := New(screen, v, opts...)
	h.Draw()
	return h, screen
}

func line(s tcell.SimulationScreen, y int) string {
	cells, width, _ := s.GetContents()
	var b strings.Builder
	for x := range width {
		if r := cells[y*width+x].Runes; len(r) > 0 {
			b.WriteRune(r[0])
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func typeText(h *Host, text string) {
	for _, r := range text {
		h.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func TestDrawRows(t *testing.T) {
	doc := Doc(H(2, "Title"), UL(LI(P("one")), LI(P("two"), P("more"))), Code("x := 1"))
	_, s := newHost(t, doc, nil, WithTitle("notes.md"))

	assert.Equal(t, "H2  Title", line(s, 0))
	assert.Equal(t, "•   one", line(s, 1))
	assert.Equal(t, "•   two", line(s, 2))
	assert.Equal(t, "    more", line(s, 3))
	assert.Equal(t, "│   x := 1", line(s, 4))
	status := line(s, 5)
	assert.True(t, strings.HasPrefix(status, "notes.md"), status)
	assert.Contains(t, status, "words")
}

func TestDrawOrderedListAndPlaceholder(t *testing.T) {
	ol := Node(model.OrderedList, model.Attrs{"start": 3}, LI(P("a")), LI(P("b")))
	_, s := newHost(t, Doc(ol), nil)
	assert.Equal(t, "3.  a", line(s, 0))
	assert.Equal(t, "4.  b", line(s, 1))

	_, s = newHost(t, Doc(P()), nil)
	assert.Equal(t, "    Write something...", line(s, 0))
	x, y, visible := s.GetCursor()
	assert.True(t, visible)
	assert.Equal(t, GutterWidth, x)
	assert.Equal(t, 0, y)
}

func TestTyping(t *testing.T) {
	h, s := newHost(t, Doc(P()), state.Cursor(1))
	typeText(h, "hi")
	assert.True(t, h.view.State().Doc().Eq(Doc(P("hi"))))
	assert.True(t, h.Modified())
	assert.Equal(t, "    hi", line(s, 0))
	x, y, _ := s.GetCursor()
	assert.Equal(t, GutterWidth+2, x)
	assert.Equal(t, 0, y)

	h.HandleEvent(key(tcell.KeyBackspace2))
	assert.True(t, h.view.State().Doc().Eq(Doc(P("h"))))

	h.HandleEvent(key(tcell.KeyEnter))
	typeText(h, "x")
	assert.True(t, h.view.State().Doc().Eq(Doc(P("h"), P("x"))))
	_, y, _ = s.GetCursor()
	assert.Equal(t, 1, y)
}

func TestBackspaceStopsAtBlockStart(t *testing.T) {
	h, _ := newHost(t, Doc(P("a"), P("b")), state.Cursor(4))
	before := h.view.State()
	h.HandleEvent(key(tcell.KeyBackspace2))
	assert.Same(t, before, h.view.State())

	h.HandleEvent(key(tcell.KeyDelete))
	assert.True(t, h.view.State().Doc().Eq(Doc(P("a"), P())))
}

func TestCursorMovement(t *testing.T) {
	h, _ := newHost(t, Doc(P("abc"), P("de")), state.Cursor(2))
	head := func() int { return h.view.State().Selection().Head() }

	h.HandleEvent(key(tcell.KeyRight))
	assert.Equal(t, 3, head())
	h.HandleEvent(key(tcell.KeyLeft))
	assert.Equal(t, 2, head())
	h.HandleEvent(key(tcell.KeyEnd))
	assert.Equal(t, 4, head())
	h.HandleEvent(key(tcell.KeyHome))
	assert.Equal(t, 1, head())
	h.HandleEvent(key(tcell.KeyDown))
	assert.Equal(t, 6, head())
	h.HandleEvent(key(tcell.KeyUp))
	assert.Equal(t, 1, head())
}

func TestMouseClick(t *testing.T) {
	h, _ := newHost(t, Doc(P("ab"), P("cd")), state.Cursor(1))
	h.HandleEvent(tcell.NewEventMouse(GutterWidth+1, 1, tcell.Button1, tcell.ModNone))
	assert.Equal(t, 6, h.view.State().Selection().Head())

	h.HandleEvent(tcell.NewEventMouse(GutterWidth, 4, tcell.Button1, tcell.ModNone))
	assert.Equal(t, 6, h.view.State().Selection().Head(), "clicks below the text are ignored")
}

func TestBracketedPaste(t *testing.T) {
	h, _ := newHost(t, Doc(P("ab")), state.Cursor(2))
	h.HandleEvent(tcell.NewEventPaste(true))
	typeText(h, "xy")
	h.HandleEvent(tcell.NewEventPaste(false))
	assert.True(t, h.view.State().Doc().Eq(Doc(P("axyb"))), "got %s", h.view.State().Doc())
}

func TestSave(t *testing.T) {
	var saved *state.State
	h, s := newHost(t, Doc(P("a")), state.Cursor(2), WithSave(func(st *state.State) error {
		saved = st
		return nil
	}))
	typeText(h, "b")
	require.True(t, h.Modified())

	h.HandleEvent(key(tcell.KeyCtrlS))
	require.NotNil(t, saved)
	assert.True(t, saved.Doc().Eq(Doc(P("ab"))))
	assert.False(t, h.Modified())
	assert.Equal(t, "saved", h.Status())
	assert.Contains(t, line(s, 5), "saved")

	h.save = func(*state.State) error { return errors.New("disk full") }
	typeText(h, "c")
	h.HandleEvent(key(tcell.KeyCtrlS))
	assert.Equal(t, "save failed: disk full", h.Status())
	assert.True(t, h.Modified())
}

func TestSaveWithoutTarget(t *testing.T) {
	h, _ := newHost(t, Doc(P("a")), nil)
	h.HandleEvent(key(tcell.KeyCtrlS))
	assert.Equal(t, ErrNoSave.Error(), h.Status())
}

func TestInterruptAndQuit(t *testing.T) {
	h, _ := newHost(t, Doc(P("a")), state.Cursor(2))
	ran := false
	h.HandleEvent(tcell.NewEventInterrupt(func() { ran = true }))
	assert.True(t, ran)

	assert.False(t, h.Quit())
	h.HandleEvent(key(tcell.KeyCtrlQ))
	assert.True(t, h.Quit())
}

func TestKeyEvent(t *testing.T) {
	ev := keyEvent(tcell.NewEventKey(tcell.KeyCtrlB, 0, tcell.ModCtrl))
	assert.Equal(t, "b", ev.Key)
	assert.NotZero(t, ev.Mods)

	ev = keyEvent(tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone))
	assert.Equal(t, "Tab", ev.Key)

	ev = keyEvent(tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone))
	assert.Equal(t, "é", ev.Key)
	assert.Zero(t, ev.Mods)
}
