package selectionmenu_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/plugintest"
	"github.com/dshills/inkwell/internal/plugins/selectionmenu"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
)

func newHost(t *testing.T, sel state.Selection) (*plugintest.Host, *selectionmenu.Plugin) {
	t.Helper()
	p := selectionmenu.New(nil)
	st, err := state.New(state.Config{
		Doc:       Doc(P(Marked("hello", model.Bold), " world")),
		Selection: sel,
		Plugins:   []state.Plugin{p},
	})
	require.NoError(t, err)
	return plugintest.NewHost(st), p
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, html.Render(&b, n))
	return b.String()
}

func TestHiddenOnCursor(t *testing.T) {
	h, p := newHost(t, state.Cursor(2))
	v := p.View(h).(*selectionmenu.MenuView)

	assert.False(t, v.Visible())
	assert.Empty(t, v.Items())
	assert.Contains(t, render(t, v.DOM()), "hidden")
}

func TestPlacedUnderSelection(t *testing.T) {
	h, p := newHost(t, state.Cursor(2))
	v := p.View(h).(*selectionmenu.MenuView)

	prev := h.St
	h.Dispatch(h.St.Tr().SetSelection(state.NewTextSelection(1, 6)))
	v.Update(h, prev)

	require.True(t, v.Visible())
	left, top := v.Position()
	assert.Equal(t, 35.0, left, "center of [10, 60]")
	assert.Equal(t, 20.0+selectionmenu.DefaultGap, top)

	var bold bool
	for _, it := range v.Items() {
		if it.Name == "bold" {
			bold = it.Active && it.Enabled
		}
	}
	assert.True(t, bold)
	out := render(t, v.DOM())
	assert.Contains(t, out, `data-item="bold" class="active"`)
	assert.NotContains(t, out, "hidden")

	prev = h.St
	h.Dispatch(h.St.Tr().SetSelection(state.Cursor(3)))
	v.Update(h, prev)
	assert.False(t, v.Visible())
}

func TestMultilineSelectionUsesBoundingBox(t *testing.T) {
	h, p := newHost(t, state.NewTextSelection(2, 9))
	h.Coords = map[int]plugin.Rect{
		2: {Left: 40, Top: 0, Right: 40, Bottom: 20},
		9: {Left: 10, Top: 20, Right: 10, Bottom: 40},
	}
	v := p.View(h).(*selectionmenu.MenuView)
	left, top := v.Position()
	assert.Equal(t, 25.0, left)
	assert.Equal(t, 48.0, top)
}

type failingHost struct{ *plugintest.Host }

func (failingHost) CoordsAtPos(int) (plugin.Rect, error) { return plugin.Rect{}, errors.New("not laid out") }

func TestHiddenWhenCoordsFail(t *testing.T) {
	h, p := newHost(t, state.NewTextSelection(1, 6))
	v := p.View(failingHost{h}).(*selectionmenu.MenuView)
	assert.False(t, v.Visible())
}

func TestHiddenWhileComposing(t *testing.T) {
	h, p := newHost(t, state.NewTextSelection(1, 6))
	h.IsComposing = true
	v := p.View(h).(*selectionmenu.MenuView)
	assert.False(t, v.Visible())
}

func TestLifecycleThroughPipeline(t *testing.T) {
	h, _ := newHost(t, state.NewTextSelection(1, 6))
	pipe := plugin.NewPipeline()
	pipe.Mount(h)
	assert.Equal(t, 1, pipe.Views())

	prev := h.St
	h.Dispatch(h.St.Tr().SetSelection(state.Cursor(1)))
	require.NoError(t, pipe.Update(h, prev))

	pipe.Destroy()
	assert.Zero(t, pipe.Views())
}
