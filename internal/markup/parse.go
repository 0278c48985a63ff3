package markup

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/inkwell/internal/model"
)

// blockTags are elements without a rule that still separate inline runs.
var blockTags = map[string]bool{
	"div": true, "section": true, "header": true, "footer": true, "main": true,
	"nav": true, "address": true, "center": true, "details": true, "summary": true,
	"dl": true, "dt": true, "dd": true, "table": true, "thead": true, "tbody": true,
	"tfoot": true, "tr": true, "td": true, "th": true, "caption": true, "body": true,
}

var whitespace = regexp.MustCompile(`[ \t\n\r\f]+`)

// piece is a parsed node, or a break between inline runs.
type piece struct {
	node *model.Node
	brk  bool
}

type parser struct {
	schema *model.Schema
}

// ParseHTML parses a full HTML document into a doc node valid in schema.
// Content the schema cannot hold is adapted or dropped; an empty body
// yields an empty document.
func ParseHTML(schema *model.Schema, r io.Reader) (*model.Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	body := findElement(root, atom.Body)
	if body == nil {
		return schema.EmptyDoc(), nil
	}
	return parseBody(schema, body)
}

// ParseString parses an HTML string into a doc node.
func ParseString(schema *model.Schema, s string) (*model.Node, error) {
	return ParseHTML(schema, strings.NewReader(s))
}

// ParseSlice parses an HTML fragment, such as clipboard content, into a
// slice. Textblocks at either end are left open so their inline content
// joins the textblock it is inserted into.
func ParseSlice(schema *model.Schema, s string) (model.Slice, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return model.Slice{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	doc, err := parseBody(schema, body)
	if err != nil {
		return model.Slice{}, err
	}
	from, to := 0, doc.Content().Size()
	if doc.FirstChild().IsTextblock() {
		from = 1
	}
	if doc.LastChild().IsTextblock() {
		to--
	}
	if to < from {
		return model.Slice{}, nil
	}
	return doc.Slice(from, to)
}

func parseBody(schema *model.Schema, body *html.Node) (*model.Node, error) {
	p := &parser{schema: schema}
	doc := p.build(schema.NodeType(model.Doc), nil, p.children(body, nil))
	if doc == nil {
		return schema.EmptyDoc(), nil
	}
	if err := doc.Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return doc, nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// children parses the children of el with marks active.
func (p *parser) children(el *html.Node, marks model.MarkSet) []piece {
	var out []piece
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if c.Data != "" {
				out = append(out, piece{node: p.schema.Text(c.Data, marks)})
			}
		case html.ElementNode:
			if ignoredTags[c.Data] {
				continue
			}
			out = append(out, p.element(c, marks)...)
		}
	}
	return out
}

func (p *parser) element(el *html.Node, marks model.MarkSet) []piece {
	if rule, ok := matchNodeRule(el); ok {
		t := p.schema.NodeType(rule.kind)
		var attrs model.Attrs
		if rule.attrs != nil {
			attrs = cleanNodeAttrs(t, rule.attrs(el))
		}
		switch {
		case t.IsInline():
			n, err := t.Create(attrs, model.Fragment{}, marks)
			if err != nil {
				return nil
			}
			return []piece{{node: n}}
		case t.IsLeaf() || t.IsAtom():
			n, err := t.Create(attrs, model.Fragment{}, nil)
			if err != nil {
				return nil
			}
			return []piece{{brk: true}, {node: n}, {brk: true}}
		default:
			n := p.build(t, attrs, p.children(el, marks))
			if n == nil {
				return nil
			}
			return []piece{{brk: true}, {node: n}, {brk: true}}
		}
	}

	for _, r := range matchMarkRules(el) {
		var attrs model.Attrs
		if r.attrs != nil {
			attrs = cleanMarkAttrs(p.schema.MarkType(r.kind), r.attrs(el))
		}
		if m, err := p.schema.Mark(r.kind, attrs); err == nil {
			marks = m.AddToSet(marks)
		}
	}
	inner := p.children(el, marks)
	if blockTags[el.Data] {
		inner = append([]piece{{brk: true}}, append(inner, piece{brk: true})...)
	}
	return inner
}

// build creates a node of type t from parsed pieces, adapting them to the
// type's content. It returns nil when no valid node can be made.
func (p *parser) build(t *model.NodeType, attrs model.Attrs, pieces []piece) *model.Node {
	switch {
	case t.IsCode():
		return p.buildCode(t, attrs, pieces)
	case t.InlineContent():
		var inline []*model.Node
		for _, pc := range pieces {
			if pc.node != nil {
				inline = append(inline, collectInline(pc.node)...)
			}
		}
		inline = normalizeInline(p.schema, inline)
		if !t.AllowsMarks() {
			inline = stripMarks(inline)
		}
		n, err := t.Create(attrs, model.NewFragment(inline...), nil)
		if err != nil {
			return nil
		}
		return n
	case t.Kind == model.Figure:
		return p.buildFigure(t, attrs, pieces)
	}

	blocks := p.blocks(t, pieces)
	content := p.fit(t, blocks)
	if len(content) == 0 {
		n, err := t.CreateAndFill(attrs)
		if err != nil {
			return nil
		}
		return n
	}
	n, err := t.Create(attrs, model.NewFragment(content...), nil)
	if err != nil {
		return nil
	}
	return n
}

func (p *parser) buildCode(t *model.NodeType, attrs model.Attrs, pieces []piece) *model.Node {
	var b strings.Builder
	for _, pc := range pieces {
		switch {
		case pc.node == nil:
		case pc.node.IsText():
			b.WriteString(pc.node.Text())
		case pc.node.Kind() == model.HardBreak:
			b.WriteByte('\n')
		default:
			b.WriteString(pc.node.TextContent())
		}
	}
	var content model.Fragment
	if b.Len() > 0 {
		content = model.NewFragment(p.schema.Text(b.String(), nil))
	}
	n, err := t.Create(attrs, content, nil)
	if err != nil {
		return nil
	}
	return n
}

// buildFigure picks the first image or embed and the first caption.
func (p *parser) buildFigure(t *model.NodeType, attrs model.Attrs, pieces []piece) *model.Node {
	var media, caption *model.Node
	for _, pc := range pieces {
		if pc.node == nil {
			continue
		}
		for _, n := range flatten(pc.node) {
			switch n.Kind() {
			case model.Image, model.Embed:
				if media == nil {
					media = n.Mark(nil)
				}
			case model.Figcaption:
				if caption == nil {
					caption = n
				}
			}
		}
	}
	if media == nil {
		return nil
	}
	content := []*model.Node{media}
	if caption != nil {
		content = append(content, caption)
	}
	n, err := t.Create(attrs, model.NewFragment(content...), nil)
	if err != nil {
		return nil
	}
	return n
}

// flatten returns n followed by its descendants in document order.
func flatten(n *model.Node) []*model.Node {
	out := []*model.Node{n}
	n.Descendants(func(child *model.Node, _ int, _ *model.Node, _ int) bool {
		out = append(out, child)
		return true
	})
	return out
}

// blocks groups inline runs into the type's default textblock.
func (p *parser) blocks(t *model.NodeType, pieces []piece) []*model.Node {
	var out, run []*model.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		inline := run
		run = nil
		if onlyWhitespace(inline) {
			return
		}
		para := p.schema.NodeType(model.Paragraph)
		if n := p.build(para, nil, asPieces(inline)); n != nil {
			out = append(out, n)
		}
	}
	for _, pc := range pieces {
		switch {
		case pc.brk:
			flush()
		case pc.node.IsInline():
			run = append(run, pc.node)
		default:
			flush()
			out = append(out, pc.node)
		}
	}
	flush()
	return out
}

// fit adapts blocks to what t may contain.
func (p *parser) fit(t *model.NodeType, blocks []*model.Node) []*model.Node {
	item := p.schema.NodeType(model.ListItem)
	para := p.schema.NodeType(model.Paragraph)
	var out []*model.Node
	for _, b := range blocks {
		bt := b.Type()
		switch {
		case t.Kind == model.ListItem && len(out) == 0 && bt != para:
			if empty, err := para.CreateAndFill(nil); err == nil {
				out = append(out, empty)
			}
			if t.ContentMatch().Allows(bt) {
				out = append(out, b)
			}
		case t.ContentMatch().Allows(bt):
			out = append(out, b)
		case t.ContentMatch().Allows(item):
			// A nested list directly inside a list belongs to the previous
			// item.
			if (bt.Kind == model.BulletList || bt.Kind == model.OrderedList) && len(out) > 0 {
				last := out[len(out)-1]
				if n, err := item.Create(last.Attrs(), last.Content().AddToEnd(b), nil); err == nil {
					out[len(out)-1] = n
					continue
				}
			}
			if n := p.build(item, nil, []piece{{node: b}}); n != nil {
				out = append(out, n)
			}
		case bt.Kind == model.ListItem:
			if n, err := p.schema.Node(model.BulletList, nil, model.NewFragment(b), nil); err == nil && t.ContentMatch().Allows(n.Type()) {
				out = append(out, n)
			}
		case bt.InlineContent() && t.ContentMatch().Allows(para):
			if n, err := para.Create(nil, b.Content(), nil); err == nil {
				out = append(out, n)
			}
		}
	}
	return out
}

func asPieces(nodes []*model.Node) []piece {
	out := make([]piece, len(nodes))
	for i, n := range nodes {
		out[i] = piece{node: n}
	}
	return out
}

func onlyWhitespace(nodes []*model.Node) bool {
	for _, n := range nodes {
		if !n.IsText() || strings.TrimSpace(n.Text()) != "" {
			return false
		}
	}
	return true
}

// collectInline returns n when inline, otherwise the inline nodes inside
// it.
func collectInline(n *model.Node) []*model.Node {
	if n.IsInline() {
		return []*model.Node{n}
	}
	var out []*model.Node
	n.Descendants(func(child *model.Node, _ int, _ *model.Node, _ int) bool {
		if child.IsInline() {
			out = append(out, child)
			return false
		}
		return true
	})
	return out
}

// normalizeInline collapses whitespace runs the way a browser renders
// them and trims the ends of the block.
func normalizeInline(schema *model.Schema, nodes []*model.Node) []*model.Node {
	out := make([]*model.Node, 0, len(nodes))
	spaceBefore := true
	for _, n := range nodes {
		if !n.IsText() {
			out = append(out, n)
			spaceBefore = n.Kind() == model.HardBreak
			continue
		}
		s := whitespace.ReplaceAllString(n.Text(), " ")
		if spaceBefore {
			s = strings.TrimPrefix(s, " ")
		}
		if s == "" {
			continue
		}
		spaceBefore = strings.HasSuffix(s, " ")
		out = append(out, schema.Text(s, n.Marks()))
	}
	for len(out) > 0 {
		last := out[len(out)-1]
		if !last.IsText() {
			break
		}
		s := strings.TrimSuffix(last.Text(), " ")
		if s != "" {
			out[len(out)-1] = schema.Text(s, last.Marks())
			break
		}
		out = out[:len(out)-1]
	}
	return out
}

func stripMarks(nodes []*model.Node) []*model.Node {
	out := make([]*model.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Mark(nil)
	}
	return out
}

// cleanNodeAttrs keeps the attributes t accepts, dropping invalid values.
func cleanNodeAttrs(t *model.NodeType, attrs model.Attrs) model.Attrs {
	return cleanAttrs(t.Attrs(), attrs, func(a model.Attrs) error {
		_, err := t.ComputeAttrs(a)
		return err
	})
}

func cleanMarkAttrs(t *model.MarkType, attrs model.Attrs) model.Attrs {
	return cleanAttrs(t.Attrs(), attrs, func(a model.Attrs) error {
		_, err := t.Create(a)
		return err
	})
}

func cleanAttrs(specs []model.AttrSpec, attrs model.Attrs, check func(model.Attrs) error) model.Attrs {
	if attrs == nil {
		return nil
	}
	out := model.Attrs{}
	for _, s := range specs {
		if s.Required {
			out[s.Name] = attrs[s.Name]
		}
	}
	for _, s := range specs {
		v := attrs[s.Name]
		if s.Required || v == nil {
			continue
		}
		if trial := out.With(s.Name, v); check(trial) == nil {
			out = trial
		}
	}
	return out
}
