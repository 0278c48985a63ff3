// Package trailingnode keeps an empty paragraph at the end of the document
// so the cursor can always be placed after a trailing figure, list or
// quote.
package trailingnode

import (
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

// PluginKey is the trailingnode plugin's key.
const PluginKey = "trailingNode"

// Plugin appends the trailing paragraph.
type Plugin struct{}

// New creates the plugin.
func New() *Plugin { return &Plugin{} }

// Key implements state.Plugin.
func (*Plugin) Key() string { return PluginKey }

// Needed reports whether doc lacks a trailing paragraph.
func Needed(doc *model.Node) bool {
	last := doc.LastChild()
	return last == nil || last.Kind() != model.Paragraph
}

// AppendTransaction implements state.TransactionAppender.
func (*Plugin) AppendTransaction(trs []*state.Transaction, _, next *state.State) *state.Transaction {
	changed := false
	for _, tr := range trs {
		changed = changed || tr.DocChanged()
	}
	doc := next.Doc()
	if !changed || !Needed(doc) {
		return nil
	}
	para, err := next.Schema().Node(model.Paragraph, nil, model.Fragment{}, nil)
	if err != nil {
		return nil
	}
	tr := next.Tr()
	if err := tr.Insert(doc.Content().Size(), para); err != nil {
		return nil
	}
	tr.SetMeta(state.MetaAddToHistory, false)
	tr.SetMeta(state.MetaPlugin, PluginKey)
	return tr
}
