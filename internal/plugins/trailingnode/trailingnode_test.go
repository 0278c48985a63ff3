package trailingnode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugins/trailingnode"
	"github.com/dshills/inkwell/internal/state"
	. "github.com/dshills/inkwell/internal/testutil"
)

func TestAppendsParagraphAfterBlock(t *testing.T) {
	st, err := state.New(state.Config{Doc: Doc(P("a")), Plugins: []state.Plugin{trailingnode.New()}})
	require.NoError(t, err)

	tr := st.Tr()
	require.NoError(t, tr.Insert(st.Doc().Content().Size(), Quote(P("q"))))
	next, trs, err := st.ApplyTransaction(tr)
	require.NoError(t, err)

	require.Len(t, trs, 2)
	assert.False(t, trs[1].AddToHistory())
	assert.True(t, next.Doc().Eq(Doc(P("a"), Quote(P("q")), P())), next.Doc().String())
}

func TestLeavesTrailingParagraphAlone(t *testing.T) {
	st, err := state.New(state.Config{Doc: Doc(P("a")), Plugins: []state.Plugin{trailingnode.New()}})
	require.NoError(t, err)

	tr := st.Tr()
	require.NoError(t, tr.InsertText("b", 2, 2))
	_, trs, err := st.ApplyTransaction(tr)
	require.NoError(t, err)
	assert.Len(t, trs, 1)
}

func TestNeeded(t *testing.T) {
	assert.True(t, trailingnode.Needed(Doc(Node(model.HorizontalRule, nil))))
	assert.False(t, trailingnode.Needed(Doc(Code("x"), P())))
}
