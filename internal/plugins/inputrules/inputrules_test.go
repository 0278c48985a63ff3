package inputrules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/plugintest"
	"github.com/dshills/inkwell/internal/plugins/inputrules"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
)

func typeInto(t *testing.T, doc *model.Node, pos int, text string) (*plugintest.Host, bool) {
	t.Helper()
	st, err := state.New(state.Config{
		Doc:       doc,
		Selection: state.Cursor(pos),
		Plugins:   []state.Plugin{inputrules.New(inputrules.Markdown()...)},
	})
	require.NoError(t, err)
	h := plugintest.NewHost(st)
	handled := plugin.NewPipeline().TextInput(h, pos, pos, text)
	require.NoError(t, h.Err)
	return h, handled
}

func TestBlockRules(t *testing.T) {
	tests := []struct {
		name string
		doc  *model.Node
		pos  int
		text string
		want *model.Node
	}{
		{"heading", Doc(P("##")), 3, " ", Doc(H(2))},
		{"blockquote", Doc(P(">")), 2, " ", Doc(Quote(P()))},
		{"bullet list", Doc(P("-")), 2, " ", Doc(UL(LI(P())))},
		{
			"ordered list joins previous",
			Doc(Node(model.OrderedList, nil, LI(P("a"))), P("2.")),
			10, " ",
			Doc(Node(model.OrderedList, model.Attrs{"start": 1}, LI(P("a")), LI(P()))),
		},
		{
			"ordered list with a gap starts a new list",
			Doc(P("3.")),
			3, " ",
			Doc(Node(model.OrderedList, model.Attrs{"start": 3}, LI(P()))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, handled := typeInto(t, tt.doc, tt.pos, tt.text)
			require.True(t, handled)
			assert.True(t, h.St.Doc().Eq(tt.want), "got %s", h.St.Doc())
			require.Len(t, h.Dispatched, 1)
			assert.Equal(t, inputrules.PluginKey, h.Dispatched[0].Meta(state.MetaPlugin))
		})
	}
}

func TestInlineRules(t *testing.T) {
	link := Schema.MustMark(model.Link, model.Attrs{"href": "https://example.com"})
	tests := []struct {
		name string
		doc  *model.Node
		pos  int
		text string
		want *model.Node
	}{
		{"em dash", Doc(P("a-")), 3, "-", Doc(P("a—"))},
		{"ellipsis", Doc(P("wait..")), 7, ".", Doc(P("wait…"))},
		{"code", Doc(P("a `x")), 5, "`", Doc(P("a ", Marked("x", model.Code)))},
		{
			"link",
			Doc(P("see [x](https://example.com")), 28, ")",
			Doc(P("see ", Schema.Text("x", model.NewMarkSet(link)))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, handled := typeInto(t, tt.doc, tt.pos, tt.text)
			require.True(t, handled)
			assert.True(t, h.St.Doc().Eq(tt.want), "got %s", h.St.Doc())
		})
	}
}

func TestMarkRuleDoesNotContinueMark(t *testing.T) {
	h, handled := typeInto(t, Doc(P("a `x")), 5, "`")
	require.True(t, handled)
	assert.NotNil(t, h.St.StoredMarks())
	assert.False(t, h.St.StoredMarks().Has(model.Code))
}

func TestRulesDoNotFire(t *testing.T) {
	t.Run("no match", func(t *testing.T) {
		h, handled := typeInto(t, Doc(P("abc")), 4, " ")
		assert.False(t, handled)
		assert.Empty(t, h.Dispatched)
	})
	t.Run("in code block", func(t *testing.T) {
		_, handled := typeInto(t, Doc(Code("#")), 2, " ")
		assert.False(t, handled)
	})
	t.Run("while composing", func(t *testing.T) {
		st, err := state.New(state.Config{Doc: Doc(P("#")), Selection: state.Cursor(2),
			Plugins: []state.Plugin{inputrules.New(inputrules.Markdown()...)}})
		require.NoError(t, err)
		h := plugintest.NewHost(st)
		h.IsComposing = true
		assert.False(t, plugin.NewPipeline().TextInput(h, 2, 2, " "))
	})
}

func TestTextBefore(t *testing.T) {
	doc := Doc(P("ab", Img("https://example.com/a.png", ""), "c"))
	before, ok := inputrules.TextBefore(doc, 5, "!")
	require.True(t, ok)
	assert.Equal(t, "ab"+inputrules.ObjectReplacement+"c!", before)

	_, ok = inputrules.TextBefore(doc, 0, "!")
	assert.False(t, ok)
}
