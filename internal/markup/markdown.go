package markup

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/dshills/inkwell/internal/model"
)

// WriteMarkdown writes doc as markdown. Underline and highlight have no
// markdown form and are written as plain text.
func WriteMarkdown(w io.Writer, doc *model.Node) error {
	if doc.Kind() != model.Doc {
		return fmt.Errorf("%w: %s", ErrNotDocument, doc.Type().Name)
	}
	m := md.NewMarkdown(w)
	writeBlocks(m, doc.Content())
	return m.Build()
}

// Markdown returns doc as markdown.
func Markdown(doc *model.Node) (string, error) {
	var b strings.Builder
	if err := WriteMarkdown(&b, doc); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeBlocks(m *md.Markdown, content model.Fragment) {
	for i, n := range content.Children() {
		if i > 0 {
			m.PlainText("")
		}
		writeBlock(m, n)
	}
}

func writeBlock(m *md.Markdown, n *model.Node) {
	switch n.Kind() {
	case model.Paragraph:
		m.PlainText(inlineMarkdown(n.Content()))
	case model.Heading:
		text := inlineMarkdown(n.Content())
		switch n.Attrs().GetInt("level") {
		case 1:
			m.H1(text)
		case 2:
			m.H2(text)
		case 3:
			m.H3(text)
		case 4:
			m.H4(text)
		case 5:
			m.H5(text)
		default:
			m.H6(text)
		}
	case model.Blockquote, model.Aside:
		m.Blockquote(nestedMarkdown(n.Content()))
	case model.BulletList:
		m.BulletList(listItems(n)...)
	case model.OrderedList:
		start := n.Attrs().GetInt("start")
		if start <= 1 {
			m.OrderedList(listItems(n)...)
			return
		}
		for i, item := range listItems(n) {
			m.PlainText(strconv.Itoa(start+i) + ". " + item)
		}
	case model.CodeBlock:
		m.CodeBlocks(md.SyntaxHighlight(n.Attrs().GetString("language")), n.TextContent())
	case model.HorizontalRule:
		m.HorizontalRule()
	case model.Figure:
		for _, child := range n.Content().Children() {
			switch child.Kind() {
			case model.Image:
				m.PlainText(imageMarkdown(child))
			case model.Embed:
				src := child.Attrs().GetString("src")
				m.PlainText(md.Link(src, src))
			case model.Figcaption:
				if text := inlineMarkdown(child.Content()); text != "" {
					m.PlainText(md.Italic(text))
				}
			}
		}
	case model.Embed:
		src := n.Attrs().GetString("src")
		m.PlainText(md.Link(src, src))
	default:
		m.PlainText(n.TextContent())
	}
}

// nestedMarkdown renders blocks to a string for containers.
func nestedMarkdown(content model.Fragment) string {
	var b strings.Builder
	m := md.NewMarkdown(&b)
	writeBlocks(m, content)
	return strings.TrimRight(m.String(), "\n")
}

// listItems renders each item's first paragraph inline and any further
// blocks indented below it.
func listItems(list *model.Node) []string {
	items := make([]string, 0, list.ChildCount())
	for _, item := range list.Content().Children() {
		var text string
		rest := item.Content()
		if first := item.FirstChild(); first != nil && first.IsTextblock() {
			text = inlineMarkdown(first.Content())
			rest = rest.CutByIndex(1, rest.ChildCount())
		}
		if rest.ChildCount() > 0 {
			nested := nestedMarkdown(rest)
			text += "\n  " + strings.ReplaceAll(nested, "\n", "\n  ")
		}
		items = append(items, text)
	}
	return items
}

func imageMarkdown(n *model.Node) string {
	a := n.Attrs()
	alt := a.GetString("alt")
	if alt == "" {
		alt = a.GetString("title")
	}
	return md.Image(alt, a.GetString("src"))
}

// inlineMarkdown renders inline content with each text node wrapped in
// its marks, innermost first.
func inlineMarkdown(content model.Fragment) string {
	var b strings.Builder
	for _, n := range content.Children() {
		switch {
		case n.IsText():
			b.WriteString(markText(n))
		case n.Kind() == model.Image:
			b.WriteString(imageMarkdown(n))
		case n.Kind() == model.HardBreak:
			b.WriteString("  \n")
		}
	}
	return b.String()
}

func markText(n *model.Node) string {
	text := n.Text()
	marks := n.Marks()
	if marks.Has(model.Code) {
		text = md.Code(text)
	}
	if marks.Has(model.Strike) {
		text = md.Strikethrough(text)
	}
	if marks.Has(model.Italic) {
		text = md.Italic(text)
	}
	if marks.Has(model.Bold) {
		text = md.Bold(text)
	}
	if link, ok := marks.Find(model.Link); ok {
		text = md.Link(text, link.Attrs().GetString("href"))
	}
	return text
}
