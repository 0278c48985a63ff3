package state

import (
	"fmt"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/transform"
)

// Selection is a range in the flattened position space of a document.
type Selection interface {
	// Anchor is the side that stays put when the selection is extended.
	Anchor() int
	// Head is the moving side.
	Head() int
	// From is the lower bound.
	From() int
	// To is the upper bound.
	To() int
	// Empty reports whether the selection is a cursor.
	Empty() bool
	// Map maps the selection through m onto doc, the document after the
	// mapped change.
	Map(doc *model.Node, m transform.Mappable) Selection
	// Eq reports equality.
	Eq(o Selection) bool
	// JSON returns the persisted form.
	JSON() SelectionJSON
}

// TextSelection is a cursor or text range. Both ends point into textblocks.
type TextSelection struct {
	anchor, head int
}

// NewTextSelection returns a text selection.
func NewTextSelection(anchor, head int) TextSelection {
	return TextSelection{anchor: anchor, head: head}
}

// Cursor returns an empty text selection at pos.
func Cursor(pos int) TextSelection {
	return TextSelection{anchor: pos, head: pos}
}

func (s TextSelection) Anchor() int { return s.anchor }
func (s TextSelection) Head() int   { return s.head }
func (s TextSelection) From() int   { return min(s.anchor, s.head) }
func (s TextSelection) To() int     { return max(s.anchor, s.head) }
func (s TextSelection) Empty() bool { return s.anchor == s.head }

// Map implements Selection.
func (s TextSelection) Map(doc *model.Node, m transform.Mappable) Selection {
	head, err := doc.Resolve(m.Map(s.head, 1))
	if err != nil {
		return AtStart(doc)
	}
	if !head.Parent().InlineContent() {
		return Near(head, 1)
	}
	anchor, err := doc.Resolve(m.Map(s.anchor, 1))
	if err != nil || !anchor.Parent().InlineContent() {
		return Cursor(head.Pos)
	}
	return TextSelection{anchor: anchor.Pos, head: head.Pos}
}

// Eq implements Selection.
func (s TextSelection) Eq(o Selection) bool {
	t, ok := o.(TextSelection)
	return ok && t == s
}

// JSON implements Selection.
func (s TextSelection) JSON() SelectionJSON {
	return SelectionJSON{Type: "text", Anchor: s.anchor, Head: s.head}
}

func (s TextSelection) String() string {
	return fmt.Sprintf("text(%d, %d)", s.anchor, s.head)
}

// NodeSelection selects a single node.
type NodeSelection struct {
	pos  int
	node *model.Node
}

// NewNodeSelection selects the node after pos.
func NewNodeSelection(doc *model.Node, pos int) (NodeSelection, error) {
	node := doc.NodeAt(pos)
	if node == nil || node.IsText() {
		return NodeSelection{}, fmt.Errorf("%w: no selectable node at %d", ErrInvalidSelection, pos)
	}
	return NodeSelection{pos: pos, node: node}, nil
}

// Node returns the selected node.
func (s NodeSelection) Node() *model.Node { return s.node }

func (s NodeSelection) Anchor() int { return s.pos }
func (s NodeSelection) Head() int   { return s.pos + s.node.NodeSize() }
func (s NodeSelection) From() int   { return s.pos }
func (s NodeSelection) To() int     { return s.pos + s.node.NodeSize() }
func (s NodeSelection) Empty() bool { return false }

// Map implements Selection.
func (s NodeSelection) Map(doc *model.Node, m transform.Mappable) Selection {
	r := m.MapResult(s.pos, 1)
	res, err := doc.Resolve(r.Pos)
	if err != nil {
		return AtStart(doc)
	}
	if r.Deleted() {
		return Near(res, 1)
	}
	sel, err := NewNodeSelection(doc, r.Pos)
	if err != nil {
		return Near(res, 1)
	}
	return sel
}

// Eq implements Selection.
func (s NodeSelection) Eq(o Selection) bool {
	n, ok := o.(NodeSelection)
	return ok && n.pos == s.pos
}

// JSON implements Selection.
func (s NodeSelection) JSON() SelectionJSON {
	return SelectionJSON{Type: "node", Anchor: s.pos, Head: s.pos}
}

func (s NodeSelection) String() string {
	return fmt.Sprintf("node(%d)", s.pos)
}

// AllSelection selects the whole document.
type AllSelection struct {
	size int
}

// NewAllSelection selects all of doc.
func NewAllSelection(doc *model.Node) AllSelection {
	return AllSelection{size: doc.Content().Size()}
}

func (s AllSelection) Anchor() int { return 0 }
func (s AllSelection) Head() int   { return s.size }
func (s AllSelection) From() int   { return 0 }
func (s AllSelection) To() int     { return s.size }
func (s AllSelection) Empty() bool { return s.size == 0 }

// Map implements Selection.
func (s AllSelection) Map(doc *model.Node, _ transform.Mappable) Selection {
	return NewAllSelection(doc)
}

// Eq implements Selection.
func (s AllSelection) Eq(o Selection) bool {
	_, ok := o.(AllSelection)
	return ok
}

// JSON implements Selection.
func (s AllSelection) JSON() SelectionJSON {
	return SelectionJSON{Type: "all"}
}

func (s AllSelection) String() string { return "all" }

// Near returns a valid selection close to pos, searching in direction bias
// first and then the other way. A document without any selectable position
// yields an AllSelection.
func Near(pos *model.ResolvedPos, bias int) Selection {
	if bias == 0 {
		bias = 1
	}
	if sel := FindFrom(pos, bias, false); sel != nil {
		return sel
	}
	if sel := FindFrom(pos, -bias, false); sel != nil {
		return sel
	}
	return NewAllSelection(pos.Doc())
}

// NearPos resolves pos in doc and calls Near. Out of range positions are
// clamped.
func NearPos(doc *model.Node, pos, bias int) Selection {
	pos = max(0, min(pos, doc.Content().Size()))
	return Near(doc.MustResolve(pos), bias)
}

// AtStart returns the first valid selection in doc.
func AtStart(doc *model.Node) Selection {
	if sel := findSelectionIn(doc, doc, 0, 0, 1, false); sel != nil {
		return sel
	}
	return NewAllSelection(doc)
}

// AtEnd returns the last valid selection in doc.
func AtEnd(doc *model.Node) Selection {
	if sel := findSelectionIn(doc, doc, doc.Content().Size(), doc.ChildCount(), -1, false); sel != nil {
		return sel
	}
	return NewAllSelection(doc)
}

// FindFrom looks for a selection starting at pos and moving in dir. With
// textOnly, node selections are not considered. It returns nil when nothing
// is found.
func FindFrom(pos *model.ResolvedPos, dir int, textOnly bool) Selection {
	doc := pos.Doc()
	if pos.Parent().InlineContent() {
		return Cursor(pos.Pos)
	}
	if sel := findSelectionIn(doc, pos.Parent(), pos.Pos, pos.Index(pos.Depth), dir, textOnly); sel != nil {
		return sel
	}
	for d := pos.Depth - 1; d >= 0; d-- {
		var sel Selection
		if dir < 0 {
			sel = findSelectionIn(doc, pos.Node(d), pos.Before(d+1), pos.Index(d), dir, textOnly)
		} else {
			sel = findSelectionIn(doc, pos.Node(d), pos.After(d+1), pos.Index(d)+1, dir, textOnly)
		}
		if sel != nil {
			return sel
		}
	}
	return nil
}

func findSelectionIn(doc, node *model.Node, pos, index, dir int, textOnly bool) Selection {
	if node.InlineContent() {
		return Cursor(pos)
	}
	i := index
	if dir < 0 {
		i--
	}
	for ; i >= 0 && i < node.ChildCount(); i += dir {
		child := node.Child(i)
		if !child.IsAtom() {
			start := 0
			if dir < 0 {
				start = child.ChildCount()
			}
			if sel := findSelectionIn(doc, child, pos+dir, start, dir, textOnly); sel != nil {
				return sel
			}
		} else if !textOnly && !child.IsText() {
			at := pos
			if dir < 0 {
				at -= child.NodeSize()
			}
			if sel, err := NewNodeSelection(doc, at); err == nil {
				return sel
			}
		}
		pos += child.NodeSize() * dir
	}
	return nil
}

// SelectionJSON is the persisted form of a selection.
type SelectionJSON struct {
	Type   string `json:"type"`
	Anchor int    `json:"anchor"`
	Head   int    `json:"head"`
}

// SelectionFromJSON restores a selection, validating it against doc.
func SelectionFromJSON(doc *model.Node, j SelectionJSON) (Selection, error) {
	size := doc.Content().Size()
	inRange := func(p int) bool { return p >= 0 && p <= size }
	switch j.Type {
	case "", "text":
		if !inRange(j.Anchor) || !inRange(j.Head) {
			return nil, fmt.Errorf("%w: text(%d, %d) outside document of size %d", ErrInvalidSelection, j.Anchor, j.Head, size)
		}
		head := doc.MustResolve(j.Head)
		if !head.Parent().InlineContent() {
			return nil, fmt.Errorf("%w: head %d is not in a textblock", ErrInvalidSelection, j.Head)
		}
		return NewTextSelection(j.Anchor, j.Head), nil
	case "node":
		if !inRange(j.Anchor) {
			return nil, fmt.Errorf("%w: node(%d) outside document", ErrInvalidSelection, j.Anchor)
		}
		return NewNodeSelection(doc, j.Anchor)
	case "all":
		return NewAllSelection(doc), nil
	}
	return nil, fmt.Errorf("%w: unknown selection type %q", ErrInvalidSelection, j.Type)
}

// SelectedText returns the text covered by sel.
func SelectedText(doc *model.Node, sel Selection) string {
	return doc.TextBetween(sel.From(), sel.To(), "\n", "")
}
