// Package charcount tracks character and word counts and can enforce a
// character limit.
package charcount

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

// PluginKey is the charcount plugin's key.
const PluginKey = "charCount"

// Counts holds the size of a document's text.
type Counts struct {
	Chars int
	Words int
}

// Count measures doc. Block boundaries separate words; leaf nodes such as
// images do not count.
func Count(doc *model.Node) Counts {
	text := doc.TextBetween(0, doc.Content().Size(), " ", "")
	return Counts{
		Chars: utf8.RuneCountInString(doc.TextContent()),
		Words: len(strings.Fields(text)),
	}
}

// Plugin keeps Counts as a state field. With a limit, it vetoes changes
// that grow the document past the limit.
type Plugin struct {
	limit int
}

// Option configures the plugin.
type Option func(*Plugin)

// WithLimit sets the maximum number of characters. Zero means no limit.
func WithLimit(n int) Option {
	return func(p *Plugin) {
		p.limit = n
	}
}

// New creates the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key implements state.Plugin.
func (p *Plugin) Key() string { return PluginKey }

// Limit returns the character limit, zero when unlimited.
func (p *Plugin) Limit() int { return p.limit }

// InitState implements state.StateField.
func (p *Plugin) InitState(st *state.State) any { return Count(st.Doc()) }

// ApplyState implements state.StateField.
func (p *Plugin) ApplyState(tr *state.Transaction, value any, _, _ *state.State) any {
	if !tr.DocChanged() {
		return value
	}
	return Count(tr.Doc())
}

// FilterTransaction implements state.TransactionFilter. Changes that keep
// or shrink the count always pass, so an over-limit document can still be
// edited down.
func (p *Plugin) FilterTransaction(tr *state.Transaction, st *state.State) bool {
	if p.limit <= 0 || !tr.DocChanged() {
		return true
	}
	next := Count(tr.Doc()).Chars
	return next <= p.limit || next <= Get(st).Chars
}

// Get returns the counts of st, computing them when the plugin is absent.
func Get(st *state.State) Counts {
	if c, ok := state.Field[Counts](st, PluginKey); ok {
		return c
	}
	return Count(st.Doc())
}
