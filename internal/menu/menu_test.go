package menu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/menu"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin/plugintest"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
)

func states(t *testing.T, b *menu.Bridge, doc *model.Node, sel state.Selection) map[string]menu.ItemState {
	t.Helper()
	st, err := state.New(state.Config{Doc: doc, Selection: sel})
	require.NoError(t, err)
	out := make(map[string]menu.ItemState)
	for _, s := range b.Refresh(st) {
		out[s.Name] = s
	}
	return out
}

func TestRefreshInParagraph(t *testing.T) {
	b := menu.NewBridge(menu.DefaultItems()...)
	got := states(t, b, Doc(P(Marked("hi", model.Bold))), state.NewTextSelection(1, 3))

	assert.True(t, got["bold"].Active)
	assert.True(t, got["bold"].Enabled)
	assert.False(t, got["italic"].Active)
	assert.True(t, got["paragraph"].Active)
	assert.False(t, got["paragraph"].Enabled, "already a paragraph")
	assert.True(t, got["heading1"].Enabled)
	assert.True(t, got["image"].Enabled)
	assert.Equal(t, "Bold", got["bold"].Label)
}

func TestRefreshInCodeBlock(t *testing.T) {
	b := menu.NewBridge(menu.DefaultItems()...)
	got := states(t, b, Doc(Code("x")), state.Cursor(1))

	assert.False(t, got["bold"].Enabled, "code takes no marks")
	assert.False(t, got["image"].Enabled, "code takes no inline nodes")
	assert.True(t, got["paragraph"].Enabled)
}

func TestRefreshInList(t *testing.T) {
	b := menu.NewBridge(menu.DefaultItems()...)
	got := states(t, b, Doc(UL(LI(P("x")))), state.Cursor(3))
	assert.True(t, got["bulletList"].Active)
	assert.False(t, got["orderedList"].Active)
}

func TestRefreshKeepsItemOrder(t *testing.T) {
	items := menu.DefaultItems()
	b := menu.NewBridge(items...)
	st, err := state.New(state.Config{Doc: Doc(P())})
	require.NoError(t, err)
	got := b.Refresh(st)
	require.Len(t, got, len(items))
	for i := range items {
		assert.Equal(t, items[i].Name, got[i].Name)
	}
}

func TestDuplicateNamesReplace(t *testing.T) {
	b := menu.NewBridge(
		menu.MarkItem("x", "Bold", model.Bold),
		menu.MarkItem("x", "Italic", model.Italic),
	)
	require.Len(t, b.Items(), 1)
	it, ok := b.Item("x")
	require.True(t, ok)
	assert.Equal(t, "Italic", it.Label)
}

func TestRun(t *testing.T) {
	b := menu.NewBridge(menu.DefaultItems()...)
	st, err := state.New(state.Config{Doc: Doc(P("hello")), Selection: state.NewTextSelection(1, 6)})
	require.NoError(t, err)
	h := plugintest.NewHost(st)

	require.True(t, b.Run("italic", h))
	assert.True(t, h.St.Doc().Eq(Doc(P(Marked("hello", model.Italic)))))
	assert.False(t, b.Run("image", h), "no command")
	assert.False(t, b.Run("missing", h))
}

func TestHighlightAndLinkItems(t *testing.T) {
	b := menu.NewBridge(menu.DefaultItems()...)
	got := states(t, b, Doc(P(Marked("hi", model.Highlight))), state.NewTextSelection(1, 3))
	assert.True(t, got["highlight"].Active)
	assert.True(t, got["highlight"].Enabled)
	assert.True(t, got["link"].Enabled)
	assert.False(t, got["link"].Active)

	got = states(t, b, Doc(Code("x")), state.NewTextSelection(1, 2))
	assert.False(t, got["link"].Enabled, "code takes no marks")
	assert.False(t, got["highlight"].Enabled)
}

func TestRunLinkItem(t *testing.T) {
	b := menu.NewBridge(menu.DefaultItems()...)
	st, err := state.New(state.Config{Doc: Doc(P("hello")), Selection: state.NewTextSelection(1, 6)})
	require.NoError(t, err)
	h := plugintest.NewHost(st)
	assert.False(t, b.Run("link", h), "the default entry has no href")

	b = menu.NewBridge(append(menu.DefaultItems(), menu.LinkItem("https://example.com"))...)
	require.Len(t, b.Items(), len(menu.DefaultItems()))
	require.True(t, b.Run("link", h))

	text := h.St.Doc().FirstChild().FirstChild()
	require.Equal(t, "hello", text.Text())
	link, ok := text.Marks().Find(model.Link)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", link.Attrs().GetString("href"))

	got := b.Refresh(h.St)
	for _, s := range got {
		if s.Name == "link" {
			assert.True(t, s.Active)
		}
	}

	require.True(t, b.Run("link", h))
	_, ok = h.St.Doc().FirstChild().FirstChild().Marks().Find(model.Link)
	assert.False(t, ok, "running it again unlinks")
}
