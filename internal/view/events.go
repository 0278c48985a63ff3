package view

import (
	"strings"

	"github.com/dshills/inkwell/internal/dom"
	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/nodeview"
	"github.com/dshills/inkwell/internal/state"
)

// Clipboard MIME types.
const (
	MIMEHTML = "text/html"
	MIMEText = "text/plain"
)

// TextInput inserts typed text over the selection. Input handlers see it
// first; when none handles it the text is inserted with the stored marks.
// It reports whether the input was consumed.
func (v *View) TextInput(text string) bool {
	if v.destroyed || !v.editable || text == "" {
		return false
	}
	sel := v.st.Selection()
	if v.pipeline.TextInput(v, sel.From(), sel.To(), text) {
		return true
	}
	tr := v.st.Tr()
	if err := tr.InsertText(text, sel.From(), sel.To()); err != nil {
		v.log.WithError(err).Warn("insert text")
		return false
	}
	tr.SetMeta(state.MetaInputType, "insertText")
	if v.composing {
		tr.SetMeta(state.MetaComposing, true)
	}
	v.Dispatch(tr.ScrollIntoView())
	return true
}

// HandleEvent feeds a host event into the view. Events aimed at a node
// view go to it first, then to the plugins' raw event handlers, then to
// the handling for the event's type. It reports whether the event was
// consumed.
func (v *View) HandleEvent(ev *dom.Event) bool {
	if v.destroyed {
		return false
	}
	switch ev.Type {
	case dom.CompositionStart:
		v.composing = true
	case dom.CompositionEnd:
		v.composing = false
	case dom.Focus:
		v.focused = true
	case dom.Blur:
		v.focused = false
	case dom.DragStart:
		v.dragging = true
	}

	if nv, ok := v.r.viewFor(ev.Target); ok {
		if h, ok := nv.(nodeview.EventHandler); ok && h.HandleEvent(ev) {
			return true
		}
	}
	if v.pipeline.DOMEvent(v, ev) {
		return true
	}

	switch ev.Type {
	case dom.KeyDown:
		if !v.editable {
			return false
		}
		return v.pipeline.KeyDown(v, ev)
	case dom.Paste:
		return v.paste(ev)
	case dom.Drop:
		moved := v.dragging
		v.dragging = false
		return v.drop(ev, moved)
	case dom.DragEnd:
		v.dragging = false
	}
	return false
}

func (v *View) paste(ev *dom.Event) bool {
	if !v.editable {
		return false
	}
	slice := v.clipboardSlice(ev.Data)
	if v.pipeline.Paste(v, ev, slice) {
		return true
	}
	// A single line of plain text is typed, so input rules see it.
	if ev.Data.GetData(MIMEHTML) == "" {
		if text := ev.Data.GetData(MIMEText); text != "" && !strings.ContainsAny(text, "\r\n") {
			return v.TextInput(text)
		}
	}
	if slice.Size() == 0 {
		return false
	}
	sel := v.st.Selection()
	tr := v.st.Tr()
	if err := tr.Replace(sel.From(), sel.To(), slice); err != nil {
		v.log.WithError(err).Warn("paste")
		return false
	}
	tr.SetSelection(state.NearPos(tr.Doc(), tr.Mapping().Map(sel.To(), 1), -1))
	tr.SetMeta(state.MetaInputType, "paste")
	v.Dispatch(tr.ScrollIntoView())
	return true
}

func (v *View) drop(ev *dom.Event, moved bool) bool {
	if !v.editable {
		return false
	}
	slice := v.clipboardSlice(ev.Data)
	if v.pipeline.Drop(v, ev, slice, moved) {
		return true
	}
	if slice.Size() == 0 {
		return false
	}
	pos, ok := v.PosAtCoords(ev.X, ev.Y)
	if !ok {
		return false
	}
	tr := v.st.Tr()
	if err := tr.Replace(pos, pos, slice); err != nil {
		v.log.WithError(err).Warn("drop")
		return false
	}
	tr.SetSelection(state.NearPos(tr.Doc(), tr.Mapping().Map(pos, 1), -1))
	tr.SetMeta(state.MetaInputType, "drop")
	v.Dispatch(tr)
	return true
}

// clipboardSlice parses a paste or drop payload. HTML is sanitized and
// parsed with the schema's rules; plain text becomes one paragraph per
// line, or a single text node inside code.
func (v *View) clipboardSlice(data *dom.DataTransfer) model.Slice {
	schema := v.st.Schema()
	if s := data.GetData(MIMEHTML); s != "" {
		slice, err := markup.ParseSlice(schema, markup.Sanitize(s))
		if err == nil {
			return slice
		}
		v.log.WithError(err).Debug("pasted html")
	}
	text := data.GetData(MIMEText)
	if text == "" {
		return model.Slice{}
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if r, err := v.st.Doc().Resolve(v.st.Selection().From()); err == nil && r.Parent().Type().IsCode() {
		return model.NewSlice(model.NewFragment(schema.Text(text, nil)))
	}
	return TextSlice(schema, text)
}

// TextSlice returns plain text as an open slice of paragraphs, one per
// line.
func TextSlice(schema *model.Schema, text string) model.Slice {
	para := schema.NodeType(model.Paragraph)
	var nodes []*model.Node
	for _, line := range strings.Split(text, "\n") {
		var content model.Fragment
		if line != "" {
			content = model.NewFragment(schema.Text(line, nil))
		}
		p, err := para.Create(nil, content, nil)
		if err != nil {
			continue
		}
		nodes = append(nodes, p)
	}
	if len(nodes) == 0 {
		return model.Slice{}
	}
	return model.Slice{Content: model.NewFragment(nodes...), OpenStart: 1, OpenEnd: 1}
}
