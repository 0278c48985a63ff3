// Package placeholder shows placeholder text in an empty document.
package placeholder

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/state"
)

// PluginKey is the placeholder plugin's key.
const PluginKey = "placeholder"

// DefaultText is shown when no text is configured.
const DefaultText = "Start typing"

// Plugin decorates an empty document with placeholder text.
type Plugin struct {
	text string
}

// New creates the plugin. An empty text selects DefaultText.
func New(text string) *Plugin {
	if text == "" {
		text = DefaultText
	}
	return &Plugin{text: text}
}

// Key implements state.Plugin.
func (p *Plugin) Key() string { return PluginKey }

// Text returns the placeholder text.
func (p *Plugin) Text() string { return p.text }

// IsEmpty reports whether doc is the canonical empty document: exactly one
// empty textblock that does not hold code.
func IsEmpty(doc *model.Node) bool {
	if doc.ChildCount() != 1 {
		return false
	}
	only := doc.Child(0)
	return only.IsTextblock() && only.Content().Size() == 0 && !only.Type().IsCode()
}

// Decorations implements plugin.Decorator.
func (p *Plugin) Decorations(st *state.State) plugin.DecorationSet {
	if !IsEmpty(st.Doc()) {
		return plugin.EmptyDecorations
	}
	return plugin.NewDecorationSet(plugin.Widget(1, PluginKey, p.element))
}

func (p *Plugin) element() *html.Node {
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: "placeholder"},
			{Key: "contenteditable", Val: "false"},
			{Key: "data-placeholder", Val: p.text},
		},
	}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: p.text})
	return span
}
