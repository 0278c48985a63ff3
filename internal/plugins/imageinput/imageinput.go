// Package imageinput turns markdown image syntax into an image node as it
// is typed or pasted as plain text.
package imageinput

import (
	"net/url"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugins/inputrules"
	"github.com/dshills/inkwell/internal/state"
)

// PluginKey is the imageinput plugin's key.
const PluginKey = "imageInput"

// Pattern matches ![title](src) followed by whitespace. It must cover the
// whole text before the cursor.
var Pattern = regexp.MustCompile(`^!\[([^\[\]]*?)\]\((.+?)\)\s+$`)

// Plugin is the image input plugin.
type Plugin struct{}

// New creates the plugin.
func New() *Plugin { return &Plugin{} }

// Key implements state.Plugin.
func (p *Plugin) Key() string { return PluginKey }

// Match reports the image to insert for text typed at from, and the
// position where the matched span starts.
func Match(doc *model.Node, from int, text string) (src, title string, start int, ok bool) {
	last, _ := utf8.DecodeLastRuneInString(text)
	if !unicode.IsSpace(last) {
		return "", "", 0, false
	}
	before, ok := inputrules.TextBefore(doc, from, text)
	if !ok {
		return "", "", 0, false
	}
	loc := Pattern.FindStringSubmatchIndex(before)
	if loc == nil {
		return "", "", 0, false
	}
	title = before[loc[2]:loc[3]]
	src = before[loc[4]:loc[5]]
	if !IsWebURL(src) {
		return "", "", 0, false
	}
	return src, title, inputrules.MatchStart(before, loc[0], from, text), true
}

// IsWebURL reports whether s is an absolute http or https URL.
func IsWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// HandleTextInput implements plugin.TextInputHandler.
func (p *Plugin) HandleTextInput(h plugin.Host, from, to int, text string) plugin.Result {
	if h.Composing() {
		return plugin.NotHandled
	}
	src, title, start, ok := Match(h.State().Doc(), from, text)
	if !ok {
		return plugin.NotHandled
	}
	cmd := InsertImage(src, title, start, to)
	if !cmd(h.State(), nil) {
		return plugin.NotHandled
	}
	return plugin.Handled(cmd)
}

// InsertImage replaces [from, to) with an image node.
func InsertImage(src, title string, from, to int) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		attrs := model.Attrs{"src": src}
		if title != "" {
			attrs["title"] = title
		}
		img, err := st.Schema().Node(model.Image, attrs, model.Fragment{}, nil)
		if err != nil {
			return false
		}
		tr := st.Tr()
		if err := tr.ReplaceWith(from, to, img); err != nil {
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
