package markup

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/inkwell/internal/model"
)

// Element creates an element node. attrs alternates keys and values; nil
// values and empty strings are skipped.
func Element(tag string, attrs ...any) *html.Node {
	el := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		key, _ := attrs[i].(string)
		var val string
		switch v := attrs[i+1].(type) {
		case nil:
			continue
		case bool:
			if v {
				el.Attr = append(el.Attr, html.Attribute{Key: key})
			}
			continue
		case string:
			val = v
		case int:
			val = strconv.Itoa(v)
		default:
			val = fmt.Sprint(v)
		}
		if val != "" {
			el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
		}
	}
	return el
}

// Text creates a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// NodeDOM returns the element for a non-text node and the element its
// content goes into. contentDOM is nil for leaves.
func NodeDOM(n *model.Node) (dom, contentDOM *html.Node) {
	a := n.Attrs()
	switch n.Kind() {
	case model.Paragraph:
		dom = Element("p")
	case model.Heading:
		dom = Element("h" + strconv.Itoa(a.GetInt("level")))
	case model.Blockquote:
		dom = Element("blockquote", "data-float", a["float"], "data-type", a["variant"])
	case model.BulletList:
		dom = Element("ul")
	case model.OrderedList:
		var start any
		if s := a.GetInt("start"); s != 1 {
			start = s
		}
		dom = Element("ol", "start", start)
	case model.ListItem:
		dom = Element("li")
	case model.CodeBlock:
		dom = Element("pre", "data-language", a["language"])
		code := Element("code")
		dom.AppendChild(code)
		return dom, code
	case model.HorizontalRule:
		return Element("hr"), nil
	case model.Figure:
		dom = Element("figure", "data-float", a["float"], "data-type", a["type"])
	case model.Figcaption:
		dom = Element("figcaption")
	case model.Embed:
		dom = Element("div", "class", "iframe-wrapper")
		dom.AppendChild(Element("iframe",
			"src", a["src"], "width", a["width"], "height", a["height"],
			"frameborder", "0", "allowfullscreen", true))
		return dom, nil
	case model.Aside:
		dom = Element("article", "data-type", "incut", "data-float", a["float"], "data-bg", a["bg"])
	case model.Image:
		return Element("img",
			"src", a["src"], "alt", a["alt"], "title", a["title"],
			"data-path", a["path"], "width", a["width"]), nil
	case model.HardBreak:
		return Element("br"), nil
	default:
		dom = Element("div")
	}
	return dom, dom
}

// MarkDOM returns the element wrapping text that carries m.
func MarkDOM(m *model.Mark) *html.Node {
	a := m.Attrs()
	switch m.Kind() {
	case model.Link:
		return Element("a", "href", a["href"], "title", a["title"], "target", a["target"])
	case model.Bold:
		return Element("strong")
	case model.Italic:
		return Element("em")
	case model.Underline:
		return Element("u")
	case model.Strike:
		return Element("s")
	case model.Highlight:
		return Element("mark", "data-color", a["color"])
	case model.Code:
		return Element("code")
	default:
		return Element("span")
	}
}

// RenderNode renders n and its content.
func RenderNode(n *model.Node) *html.Node {
	if n.IsText() {
		return Text(n.Text())
	}
	dom, contentDOM := NodeDOM(n)
	if contentDOM != nil {
		RenderContent(n.Content(), n.InlineContent(), contentDOM)
	}
	return dom
}

// RenderContent appends the rendered children of a node to into. Inline
// content shares mark elements between adjacent nodes carrying the same
// marks.
func RenderContent(content model.Fragment, inline bool, into *html.Node) {
	if !inline {
		for _, child := range content.Children() {
			into.AppendChild(RenderNode(child))
		}
		return
	}
	RenderInline(content.Children(), into, RenderNode)
}

// InlineItem is one piece of inline content: something rendered inside
// the elements of its marks.
type InlineItem struct {
	Marks  model.MarkSet
	Render func() *html.Node
}

// RenderInline renders inline nodes into parent, nesting mark elements.
// leaf renders each node once its marks are open.
func RenderInline(nodes []*model.Node, parent *html.Node, leaf func(*model.Node) *html.Node) {
	items := make([]InlineItem, len(nodes))
	for i, n := range nodes {
		items[i] = InlineItem{Marks: n.Marks(), Render: func() *html.Node { return leaf(n) }}
	}
	RenderItems(items, parent)
}

// RenderItems renders items into parent. Adjacent items share the
// elements of the marks they have in common.
func RenderItems(items []InlineItem, parent *html.Node) {
	type open struct {
		mark *model.Mark
		el   *html.Node
	}
	var stack []open
	for _, it := range items {
		marks := it.Marks
		keep := 0
		for keep < len(stack) && keep < len(marks) && stack[keep].mark.Eq(marks[keep]) {
			keep++
		}
		stack = stack[:keep]
		target := parent
		if keep > 0 {
			target = stack[keep-1].el
		}
		for _, m := range marks[keep:] {
			el := MarkDOM(m)
			target.AppendChild(el)
			stack = append(stack, open{mark: m, el: el})
			target = el
		}
		target.AppendChild(it.Render())
	}
}

// WriteHTML writes the HTML of n. A doc is written as its children.
func WriteHTML(w io.Writer, n *model.Node) error {
	var nodes []*html.Node
	if n.Kind() == model.Doc {
		for _, child := range n.Content().Children() {
			nodes = append(nodes, RenderNode(child))
		}
	} else {
		nodes = append(nodes, RenderNode(n))
	}
	for _, el := range nodes {
		if err := html.Render(w, el); err != nil {
			return err
		}
	}
	return nil
}

// SerializeHTML returns the HTML of n.
func SerializeHTML(n *model.Node) string {
	var b strings.Builder
	// strings.Builder writes do not fail.
	_ = WriteHTML(&b, n)
	return b.String()
}

// SerializeFragment returns the HTML of a fragment's nodes.
func SerializeFragment(f model.Fragment) string {
	var b strings.Builder
	for _, child := range f.Children() {
		_ = html.Render(&b, RenderNode(child))
	}
	return b.String()
}
