package imageinput_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/plugintest"
	"github.com/dshills/inkwell/internal/plugins/imageinput"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
)

func newHost(t *testing.T, doc *model.Node, pos int) *plugintest.Host {
	t.Helper()
	st, err := state.New(state.Config{
		Doc:       doc,
		Selection: state.Cursor(pos),
		Plugins:   []state.Plugin{imageinput.New()},
	})
	require.NoError(t, err)
	return plugintest.NewHost(st)
}

func TestPastedMarkdownBecomesImage(t *testing.T) {
	h := newHost(t, Doc(P()), 1)

	handled := plugin.NewPipeline().TextInput(h, 1, 1, "![cat](https://example.com/cat.png) ")
	require.True(t, handled)
	require.NoError(t, h.Err)
	require.Len(t, h.Dispatched, 1)

	want := Doc(P(Img("https://example.com/cat.png", "cat")))
	assert.True(t, h.St.Doc().Eq(want), "got %s", h.St.Doc())
	assert.Equal(t, "", h.St.Doc().TextContent())
}

func TestTypedClosingSpace(t *testing.T) {
	h := newHost(t, Doc(P("![](https://example.com/a.png)")), 31)

	require.True(t, plugin.NewPipeline().TextInput(h, 31, 31, " "))
	img := h.St.Doc().Child(0).Child(0)
	assert.Equal(t, model.Image, img.Kind())
	assert.Nil(t, img.Attr("title"))
}

func TestNoMatchLeavesStateAlone(t *testing.T) {
	tests := []struct {
		name string
		doc  *model.Node
		pos  int
		text string
	}{
		{"no trailing space", Doc(P()), 1, "![cat](https://example.com/cat.png)"},
		{"not a web url", Doc(P()), 1, "![cat](ftp://example.com/cat.png) "},
		{"relative url", Doc(P()), 1, "![cat](cat.png) "},
		{"text before the image", Doc(P("see ")), 5, "![cat](https://example.com/cat.png) "},
		{"code block", Doc(Code("")), 1, "![cat](https://example.com/cat.png) "},
		{"already converted", Doc(P(Img("https://example.com/cat.png", "cat"))), 2, " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHost(t, tt.doc, tt.pos)
			before := h.St

			assert.False(t, plugin.NewPipeline().TextInput(h, tt.pos, tt.pos, tt.text))
			assert.Empty(t, h.Dispatched)
			assert.Same(t, before, h.St)
		})
	}
}

func TestSkipsWhileComposing(t *testing.T) {
	h := newHost(t, Doc(P()), 1)
	h.IsComposing = true
	assert.False(t, plugin.NewPipeline().TextInput(h, 1, 1, "![cat](https://example.com/cat.png) "))
	assert.Empty(t, h.Dispatched)
}

func TestIsWebURL(t *testing.T) {
	assert.True(t, imageinput.IsWebURL("https://example.com/a.png"))
	assert.True(t, imageinput.IsWebURL("http://example.com"))
	assert.False(t, imageinput.IsWebURL("javascript:alert(1)"))
	assert.False(t, imageinput.IsWebURL("https://"))
	assert.False(t, imageinput.IsWebURL("/a.png"))
}
