// Package testutil provides document builders for tests.
package testutil

import (
	"github.com/dshills/inkwell/internal/model"
)

// Schema is the schema all builders use.
var Schema = model.DefaultSchema()

func must(n *model.Node, err error) *model.Node {
	if err != nil {
		panic(err)
	}
	return n
}

// inline converts strings to text nodes and passes nodes through. Empty
// strings are dropped.
func inline(content []any) model.Fragment {
	nodes := make([]*model.Node, 0, len(content))
	for _, c := range content {
		switch v := c.(type) {
		case string:
			if v != "" {
				nodes = append(nodes, Schema.Text(v, nil))
			}
		case *model.Node:
			nodes = append(nodes, v)
		default:
			panic("testutil: unsupported content")
		}
	}
	return model.NewFragment(nodes...)
}

// Node builds any node kind.
func Node(kind model.NodeKind, attrs model.Attrs, content ...any) *model.Node {
	return must(Schema.Node(kind, attrs, inline(content), nil))
}

// Doc builds a document.
func Doc(children ...*model.Node) *model.Node {
	return must(Schema.Node(model.Doc, nil, model.NewFragment(children...), nil))
}

// P builds a paragraph from strings and inline nodes.
func P(content ...any) *model.Node {
	return Node(model.Paragraph, nil, content...)
}

// H builds a heading.
func H(level int, content ...any) *model.Node {
	return Node(model.Heading, model.Attrs{"level": level}, content...)
}

// Code builds a code block.
func Code(text string) *model.Node {
	return Node(model.CodeBlock, nil, text)
}

// Quote builds a blockquote.
func Quote(children ...*model.Node) *model.Node {
	return must(Schema.Node(model.Blockquote, nil, model.NewFragment(children...), nil))
}

// UL builds a bullet list.
func UL(items ...*model.Node) *model.Node {
	return must(Schema.Node(model.BulletList, nil, model.NewFragment(items...), nil))
}

// LI builds a list item.
func LI(children ...*model.Node) *model.Node {
	return must(Schema.Node(model.ListItem, nil, model.NewFragment(children...), nil))
}

// Img builds an image.
func Img(src, title string) *model.Node {
	attrs := model.Attrs{"src": src}
	if title != "" {
		attrs["title"] = title
	}
	return must(Schema.Node(model.Image, attrs, model.Fragment{}, nil))
}

// Marked builds a text node carrying marks without attributes.
func Marked(text string, kinds ...model.MarkKind) *model.Node {
	marks := make([]*model.Mark, len(kinds))
	for i, k := range kinds {
		marks[i] = Schema.MustMark(k, nil)
	}
	return Schema.Text(text, model.NewMarkSet(marks...))
}
