package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Node is an immutable document node. Nodes are shared freely between
// documents; an unchanged subtree keeps its pointer identity across edits.
type Node struct {
	typ     *NodeType
	attrs   Attrs
	content Fragment
	marks   MarkSet
	text    string
	textLen int
}

// Type returns the node type.
func (n *Node) Type() *NodeType { return n.typ }

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.typ.Kind }

// Attrs returns the attributes. The map must not be modified.
func (n *Node) Attrs() Attrs { return n.attrs }

// Attr returns one attribute value.
func (n *Node) Attr(name string) any { return n.attrs[name] }

// Content returns the children.
func (n *Node) Content() Fragment { return n.content }

// Marks returns the node's marks.
func (n *Node) Marks() MarkSet { return n.marks }

// Text returns the text of a text node.
func (n *Node) Text() string { return n.text }

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.typ.IsText() }

// IsInline reports whether n is inline.
func (n *Node) IsInline() bool { return n.typ.IsInline() }

// IsBlock reports whether n is a block.
func (n *Node) IsBlock() bool { return n.typ.IsBlock() }

// IsLeaf reports whether n's type allows no content.
func (n *Node) IsLeaf() bool { return n.typ.IsLeaf() }

// IsAtom reports whether n is treated as a unit.
func (n *Node) IsAtom() bool { return n.typ.IsAtom() }

// IsTextblock reports whether n is a block with inline content.
func (n *Node) IsTextblock() bool { return n.typ.IsTextblock() }

// InlineContent reports whether n holds inline content.
func (n *Node) InlineContent() bool { return n.typ.InlineContent() }

// NodeSize returns the size of n in the position space.
func (n *Node) NodeSize() int {
	switch {
	case n.IsText():
		return n.textLen
	case n.IsLeaf():
		return 1
	default:
		return n.content.size + 2
	}
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return n.content.ChildCount() }

// Child returns the child at index i.
func (n *Node) Child(i int) *Node { return n.content.Child(i) }

// MaybeChild returns the child at index i, or nil.
func (n *Node) MaybeChild(i int) *Node { return n.content.MaybeChild(i) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.content.FirstChild() }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.content.LastChild() }

// Copy returns a node with the same markup and the given content. Content is
// not validated; see Check.
func (n *Node) Copy(content Fragment) *Node {
	if n.IsText() {
		return n
	}
	return &Node{typ: n.typ, attrs: n.attrs, content: content, marks: n.marks}
}

// Mark returns a copy of n with the given marks.
func (n *Node) Mark(marks MarkSet) *Node {
	if n.marks.Eq(marks) {
		return n
	}
	c := *n
	c.marks = marks
	return &c
}

// WithText returns a text node with the same marks and new text.
func (n *Node) WithText(text string) *Node {
	if text == n.text {
		return n
	}
	return &Node{typ: n.typ, marks: n.marks, text: text, textLen: runeLen(text)}
}

func (n *Node) runeSlice(from, to int) string {
	if from <= 0 && to >= n.textLen {
		return n.text
	}
	if from >= to {
		return ""
	}
	return string([]rune(n.text)[from:to])
}

func (n *Node) cutText(from, to int) *Node {
	if from == 0 && to == n.textLen {
		return n
	}
	return n.WithText(n.runeSlice(from, to))
}

// Cut returns a copy of n holding only the content between from and to.
func (n *Node) Cut(from, to int) *Node {
	if n.IsText() {
		return n.cutText(from, to)
	}
	if from == 0 && to == n.content.size {
		return n
	}
	return n.Copy(n.content.Cut(from, to))
}

// Slice returns the content between from and to as a Slice, with open depths
// set to how deep the endpoints reach past their shared ancestor.
func (n *Node) Slice(from, to int) (Slice, error) {
	if from == to {
		return Slice{}, nil
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return Slice{}, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return Slice{}, err
	}
	depth := rFrom.SharedDepth(to)
	start := rFrom.Start(depth)
	node := rFrom.Node(depth)
	content := node.content.Cut(rFrom.Pos-start, rTo.Pos-start)
	return Slice{Content: content, OpenStart: rFrom.Depth - depth, OpenEnd: rTo.Depth - depth}, nil
}

// Replace replaces the range [from, to) with slice, returning the new node.
// Every node whose content changes is validated against the schema.
func (n *Node) Replace(from, to int, slice Slice) (*Node, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	return replace(rFrom, rTo, slice)
}

// NodeAt returns the node directly after pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.content.FindIndex(pos, 0)
		if err != nil {
			return nil
		}
		child := node.content.MaybeChild(index)
		if child == nil {
			return nil
		}
		if offset == pos || child.IsText() {
			return child
		}
		pos -= offset + 1
		node = child
	}
}

// NodesBetween calls fn for every descendant overlapping [from, to).
func (n *Node) NodesBetween(from, to int, fn func(child *Node, pos int, parent *Node, index int) bool) {
	n.content.NodesBetween(from, to, fn, 0, n)
}

// Descendants calls fn for every descendant.
func (n *Node) Descendants(fn func(child *Node, pos int, parent *Node, index int) bool) {
	n.NodesBetween(0, n.content.size, fn)
}

// TextContent returns all text in n concatenated.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.text
	}
	return n.content.TextBetween(0, n.content.size, "", "")
}

// TextBetween returns the text between from and to inside n.
func (n *Node) TextBetween(from, to int, blockSep, leafText string) string {
	return n.content.TextBetween(from, to, blockSep, leafText)
}

// SameMarkup reports whether o has the same type, attributes and marks.
func (n *Node) SameMarkup(o *Node) bool {
	return n.HasMarkup(o.typ, o.attrs, o.marks)
}

// HasMarkup reports whether n has the given type, attributes and marks.
func (n *Node) HasMarkup(t *NodeType, attrs Attrs, marks MarkSet) bool {
	return n.typ == t && n.attrs.Eq(attrs) && n.marks.Eq(marks)
}

// Eq reports structural equality.
func (n *Node) Eq(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	return n.SameMarkup(o) && n.text == o.text && n.content.Eq(o.content)
}

// Check validates n and all of its descendants against the schema.
func (n *Node) Check() error {
	if n.IsText() {
		if n.textLen == 0 {
			return violation(n.typ.Name, "", "empty text node")
		}
		return nil
	}
	if _, err := n.typ.ComputeAttrs(n.attrs); err != nil {
		return err
	}
	if err := n.typ.CheckContent(n.content); err != nil {
		return err
	}
	for _, child := range n.content.nodes {
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

// CanReplace reports whether replacing children [from, to) with replacement
// leaves valid content.
func (n *Node) CanReplace(from, to int, replacement Fragment) bool {
	types := make([]*NodeType, 0, n.ChildCount()-(to-from)+replacement.ChildCount())
	for i := 0; i < from; i++ {
		types = append(types, n.Child(i).typ)
	}
	for _, c := range replacement.nodes {
		types = append(types, c.typ)
	}
	for i := to; i < n.ChildCount(); i++ {
		types = append(types, n.Child(i).typ)
	}
	return n.typ.match.Valid(types)
}

// CanInsert reports whether a node of kind could be inserted at pos inside
// n. Inline kinds require a parent with inline content; block kinds may be
// inserted at any ancestor boundary the position can be split out to.
func (n *Node) CanInsert(pos int, kind NodeKind) bool {
	r, err := n.Resolve(pos)
	if err != nil {
		return false
	}
	t := n.typ.schema.NodeType(kind)
	probe, err := t.CreateAndFill(nil)
	if err != nil {
		probe = &Node{typ: t}
	}
	frag := NewFragment(probe)
	for d := r.Depth; d >= 0; d-- {
		index := r.Index(d)
		if d < r.Depth {
			index = r.IndexAfter(d)
		}
		if r.Node(d).CanReplace(index, index, frag) {
			return true
		}
		if t.IsInline() {
			return false
		}
	}
	return false
}

// String returns a debug representation, e.g. paragraph("hello").
func (n *Node) String() string {
	if n.IsText() {
		s := fmt.Sprintf("%q", n.text)
		for i := len(n.marks) - 1; i >= 0; i-- {
			s = n.marks[i].String() + "(" + s + ")"
		}
		return s
	}
	var b strings.Builder
	b.WriteString(n.typ.Name)
	if n.content.ChildCount() > 0 {
		b.WriteString("(")
		for i, c := range n.content.nodes {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.String())
		}
		b.WriteString(")")
	}
	return b.String()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
