// Package inputrules rewrites text as it is typed: markdown-style block
// shortcuts, inline marks and typographic replacements.
//
// A rule is a regular expression matched against the text before the
// cursor plus the text being typed. The expression must match at the end
// of that string. When it does, the rule's handler builds a transaction
// replacing the matched range and the typed text is not inserted.
package inputrules

import (
	"regexp"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/state"
)

// PluginKey is the inputrules plugin's key.
const PluginKey = "inputRules"

// MaxMatch bounds how far back rules look.
const MaxMatch = 500

// ObjectReplacement stands in for inline leaf nodes in matched text.
const ObjectReplacement = "\ufffc"

// Handler builds the transaction for a match. match holds the full match
// followed by the submatches; [start, end) is the document range the match
// covers, where end is where the typed text would have gone. A nil result
// means the rule does not apply after all.
type Handler func(st *state.State, match []string, start, end int) *state.Transaction

// Rule is a named input rule.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Handler Handler
}

// TextBefore returns the text of the textblock at from, up to MaxMatch
// code points before from, followed by text. It reports false when from is
// not in a textblock or is inside code.
func TextBefore(doc *model.Node, from int, text string) (string, bool) {
	r, err := doc.Resolve(from)
	if err != nil {
		return "", false
	}
	parent := r.Parent()
	if !parent.InlineContent() || parent.Type().IsCode() {
		return "", false
	}
	start := max(0, r.ParentOffset-MaxMatch)
	return parent.TextBetween(start, r.ParentOffset, "", ObjectReplacement) + text, true
}

// MatchStart converts a byte offset into before, the string returned by
// TextBefore, into a document position, given the position from where the
// typed text starts.
func MatchStart(before string, offset int, from int, text string) int {
	tail := utf8.RuneCountInString(before[offset:]) - utf8.RuneCountInString(text)
	return from - tail
}

// Plugin applies rules in order; the first applicable rule wins.
type Plugin struct {
	rules []Rule
}

// New creates the plugin.
func New(rules ...Rule) *Plugin {
	return &Plugin{rules: rules}
}

// Key implements state.Plugin.
func (p *Plugin) Key() string { return PluginKey }

// Rules returns the plugin's rules.
func (p *Plugin) Rules() []Rule { return p.rules }

// HandleTextInput implements plugin.TextInputHandler.
func (p *Plugin) HandleTextInput(h plugin.Host, from, to int, text string) plugin.Result {
	if h.Composing() {
		return plugin.NotHandled
	}
	st := h.State()
	before, ok := TextBefore(st.Doc(), from, text)
	if !ok {
		return plugin.NotHandled
	}
	for _, rule := range p.rules {
		loc := rule.Pattern.FindStringSubmatchIndex(before)
		if loc == nil || loc[1] != len(before) {
			continue
		}
		match := submatches(before, loc)
		start := MatchStart(before, loc[0], from, text)
		if rule.Handler(st, match, start, to) == nil {
			continue
		}
		return plugin.Handled(ruleCommand(rule, match, start, to))
	}
	return plugin.NotHandled
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func ruleCommand(rule Rule, match []string, start, end int) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		tr := rule.Handler(st, match, start, end)
		if tr == nil {
			return false
		}
		if dispatch != nil {
			tr.SetMeta(state.MetaPlugin, PluginKey)
			tr.SetMeta(state.MetaInputType, "insertText")
			dispatch(tr)
		}
		return true
	}
}
