package view

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/nodeview"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/transform"
)

// RenderStats describes the last redraw.
type RenderStats struct {
	// Draws counts redraws since the view was created.
	Draws int
	// Blocks is the number of top-level blocks drawn.
	Blocks int
	// Rebuilt is the number of top-level blocks rendered from scratch
	// rather than reused.
	Rebuilt int
	// NodeViews is the number of mounted node views.
	NodeViews int
}

// mounted is a live node view and the position of its node.
type mounted struct {
	view nodeview.NodeView
	pos  int
	gone bool
	seen bool
}

// cached is the rendered element of a top-level block together with the
// signature of the decorations it was drawn with.
type cached struct {
	sig string
	el  *html.Node
}

// renderer keeps the rendered tree in step with the state. Top-level
// blocks whose node and decorations are unchanged keep their elements.
type renderer struct {
	v      *View
	root   *html.Node
	blocks map[*model.Node]cached
	views  []*mounted
	stats  RenderStats
}

func newRenderer(v *View) *renderer {
	return &renderer{v: v, root: markup.Element("div", "class", "inkwell")}
}

// draw brings the tree up to date with the view's state.
func (r *renderer) draw() {
	doc := r.v.st.Doc()
	decos := r.v.pipeline.Decorations(r.v.st).All()

	for _, m := range r.views {
		m.seen = false
	}
	clearChildren(r.root)
	setAttr(r.root, "contenteditable", fmt.Sprint(r.v.editable))

	stats := RenderStats{Draws: r.stats.Draws + 1}
	next := make(map[*model.Node]cached, doc.ChildCount())
	used := make(map[*model.Node]bool, doc.ChildCount())
	pos := 0
	for _, child := range doc.Content().Children() {
		r.widgetsAt(r.root, decos, pos)
		end := pos + child.NodeSize()
		sig, cacheable := signature(decos, pos, end)
		cacheable = cacheable && !used[child]
		var el *html.Node
		if c, ok := r.blocks[child]; ok && cacheable && c.sig == sig {
			el = c.el
			r.markSeen(pos, end)
			detach(el)
		} else {
			el = r.node(child, pos, decos)
			stats.Rebuilt++
		}
		r.root.AppendChild(el)
		if cacheable {
			next[child] = cached{sig: sig, el: el}
		}
		used[child] = true
		stats.Blocks++
		pos = end
	}
	r.widgetsAt(r.root, decos, pos)
	r.blocks = next

	live := r.views[:0]
	for _, m := range r.views {
		if m.seen {
			live = append(live, m)
			continue
		}
		m.gone = true
		m.view.Destroy()
	}
	r.views = live
	stats.NodeViews = len(r.views)
	r.stats = stats
}

// node renders n, which starts at pos.
func (r *renderer) node(n *model.Node, pos int, decos []plugin.Decoration) *html.Node {
	if n.IsText() {
		return markup.Text(n.Text())
	}
	if el, ok := r.nodeView(n, pos); ok {
		return el
	}
	el, content := markup.NodeDOM(n)
	end := pos + n.NodeSize()
	var attrs []map[string]string
	for _, d := range decos {
		if d.Kind == plugin.NodeDecoration && d.From == pos && d.To == end {
			attrs = append(attrs, d.Attrs)
		}
	}
	applyAttrs(el, attrs)
	if content == nil {
		return el
	}
	if n.InlineContent() {
		r.inline(n, pos+1, content, decos)
	} else {
		r.children(n.Content(), pos+1, content, decos)
	}
	return el
}

func (r *renderer) children(content model.Fragment, start int, parent *html.Node, decos []plugin.Decoration) {
	pos := start
	for _, child := range content.Children() {
		r.widgetsAt(parent, decos, pos)
		parent.AppendChild(r.node(child, pos, decos))
		pos += child.NodeSize()
	}
	r.widgetsAt(parent, decos, pos)
}

// inline renders the content of textblock n. Text is split wherever a
// widget sits or an inline decoration starts or ends.
func (r *renderer) inline(n *model.Node, start int, parent *html.Node, decos []plugin.Decoration) {
	end := start + n.Content().Size()
	var widgets, spans []plugin.Decoration
	var cuts []int
	for _, d := range decos {
		switch d.Kind {
		case plugin.WidgetDecoration:
			if d.From >= start && d.From <= end {
				widgets = append(widgets, d)
				cuts = append(cuts, d.From)
			}
		case plugin.InlineDecoration:
			if d.From < end && d.To > start {
				spans = append(spans, d)
				cuts = append(cuts, d.From, d.To)
			}
		}
	}
	slices.Sort(cuts)

	var items []markup.InlineItem
	next := 0
	widgetsUpTo := func(at int) {
		for next < len(widgets) && widgets[next].From <= at {
			items = append(items, markup.InlineItem{Render: widgetDOM(widgets[next])})
			next++
		}
	}
	pos := start
	for _, child := range n.Content().Children() {
		size := child.NodeSize()
		if !child.IsText() {
			widgetsUpTo(pos)
			c, p := child, pos
			items = append(items, markup.InlineItem{
				Marks:  c.Marks(),
				Render: func() *html.Node { return r.node(c, p, decos) },
			})
			pos += size
			continue
		}
		for a := pos; a < pos+size; {
			widgetsUpTo(a)
			b := nextCut(cuts, a, pos+size)
			text := child.Cut(a-pos, b-pos).Text()
			attrs := covering(spans, a, b)
			items = append(items, markup.InlineItem{
				Marks:  child.Marks(),
				Render: func() *html.Node { return textDOM(text, attrs) },
			})
			a = b
		}
		pos += size
	}
	widgetsUpTo(end)
	markup.RenderItems(items, parent)
}

// nodeView returns the element of the node view for n at pos, reusing a
// mounted view when it accepts the node.
func (r *renderer) nodeView(n *model.Node, pos int) (*html.Node, bool) {
	ctor, ok := r.v.nodeViews[n.Kind()]
	if !ok {
		return nil, false
	}
	for i, m := range r.views {
		if m.gone || m.seen || m.pos != pos {
			continue
		}
		if m.view.Update(n) {
			m.seen = true
			el := m.view.DOM()
			detach(el)
			return el, true
		}
		m.gone = true
		m.view.Destroy()
		r.views = slices.Delete(r.views, i, i+1)
		break
	}
	m := &mounted{pos: pos, seen: true}
	m.view = ctor(n, r.v, func() (int, bool) {
		return m.pos, !m.gone
	})
	r.views = append(r.views, m)
	el := m.view.DOM()
	detach(el)
	return el, true
}

// markSeen keeps the node views inside a reused block alive.
func (r *renderer) markSeen(from, to int) {
	for _, m := range r.views {
		if !m.gone && m.pos >= from && m.pos < to {
			m.seen = true
		}
	}
}

// remap moves mounted node views through m. Views whose node was deleted
// lose their position.
func (r *renderer) remap(m transform.Mappable) {
	for _, mv := range r.views {
		if mv.gone {
			continue
		}
		res := m.MapResult(mv.pos, 1)
		mv.pos = res.Pos
		if res.Deleted() {
			mv.gone = true
		}
	}
}

// viewFor returns the mounted view whose element contains target.
func (r *renderer) viewFor(target *html.Node) (nodeview.NodeView, bool) {
	if target == nil {
		return nil, false
	}
	for _, m := range r.views {
		if !m.gone && nodeview.Contains(m.view.DOM(), target) {
			return m.view, true
		}
	}
	return nil, false
}

// full drops the block cache so the next draw rebuilds everything.
func (r *renderer) full() {
	r.blocks = nil
}

// reset destroys every node view and empties the tree.
func (r *renderer) reset() {
	for _, m := range r.views {
		m.gone = true
		m.view.Destroy()
	}
	r.views = nil
	r.blocks = nil
	r.stats.NodeViews = 0
	clearChildren(r.root)
}

func (r *renderer) widgetsAt(parent *html.Node, decos []plugin.Decoration, pos int) {
	for _, d := range decos {
		if d.Kind == plugin.WidgetDecoration && d.From == pos {
			parent.AppendChild(widgetDOM(d)())
		}
	}
}

func (r *renderer) html() string {
	var b strings.Builder
	for c := r.root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// signature describes the decorations drawn inside the block [from, to).
// Widgets without a key cannot be compared, so blocks holding one are
// never reused.
func signature(decos []plugin.Decoration, from, to int) (string, bool) {
	var b strings.Builder
	for _, d := range decos {
		var inside bool
		switch d.Kind {
		case plugin.WidgetDecoration:
			inside = d.From > from && d.From < to
			if inside && d.Key == "" {
				return "", false
			}
		case plugin.InlineDecoration:
			inside = d.From < to && d.To > from
		case plugin.NodeDecoration:
			inside = d.From >= from && d.To <= to
		}
		if !inside {
			continue
		}
		fmt.Fprintf(&b, "%d:%d:%d:%s:%d", d.Kind, d.From-from, d.To-from, d.Key, d.Side)
		for _, k := range slices.Sorted(maps.Keys(d.Attrs)) {
			fmt.Fprintf(&b, ":%s=%s", k, d.Attrs[k])
		}
		b.WriteByte(';')
	}
	return b.String(), true
}

func nextCut(cuts []int, after, limit int) int {
	for _, c := range cuts {
		if c > after && c < limit {
			return c
		}
	}
	return limit
}

func covering(spans []plugin.Decoration, from, to int) []map[string]string {
	var out []map[string]string
	for _, d := range spans {
		if d.From <= from && d.To >= to {
			out = append(out, d.Attrs)
		}
	}
	return out
}

func widgetDOM(d plugin.Decoration) func() *html.Node {
	return func() *html.Node {
		if d.ToDOM == nil {
			return markup.Element("span")
		}
		return d.ToDOM()
	}
}

func textDOM(text string, attrs []map[string]string) *html.Node {
	if len(attrs) == 0 {
		return markup.Text(text)
	}
	span := markup.Element("span")
	applyAttrs(span, attrs)
	span.AppendChild(markup.Text(text))
	return span
}

// applyAttrs sets decoration attributes on el. Classes and styles from
// several decorations are combined; other attributes take the last value.
func applyAttrs(el *html.Node, sets []map[string]string) {
	for _, attrs := range sets {
		for _, k := range slices.Sorted(maps.Keys(attrs)) {
			val := attrs[k]
			if old := nodeview.GetAttr(el, k); old != "" {
				switch k {
				case "class":
					val = old + " " + val
				case "style":
					val = strings.TrimSuffix(old, ";") + ";" + val
				}
			}
			setAttr(el, k, val)
		}
	}
}

func setAttr(el *html.Node, key, val string) {
	for i := range el.Attr {
		if el.Attr[i].Key == key {
			el.Attr[i].Val = val
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
}

func detach(el *html.Node) {
	if el.Parent != nil {
		el.Parent.RemoveChild(el)
	}
}

func clearChildren(el *html.Node) {
	for c := el.FirstChild; c != nil; c = el.FirstChild {
		el.RemoveChild(c)
	}
}
