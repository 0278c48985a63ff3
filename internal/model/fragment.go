package model

import (
	"fmt"
	"strings"
)

// Fragment is an immutable ordered list of child nodes. Adjacent text nodes
// with equal marks are always merged and empty text nodes are dropped.
type Fragment struct {
	nodes []*Node
	size  int
}

// NewFragment builds a fragment from nodes. Nil nodes are skipped.
func NewFragment(nodes ...*Node) Fragment {
	var out []*Node
	size := 0
	for _, n := range nodes {
		if n == nil || (n.IsText() && n.textLen == 0) {
			continue
		}
		out = appendNode(out, n)
	}
	for _, n := range out {
		size += n.NodeSize()
	}
	return Fragment{nodes: out, size: size}
}

func appendNode(nodes []*Node, n *Node) []*Node {
	if last := len(nodes) - 1; last >= 0 && n.IsText() && nodes[last].IsText() && nodes[last].marks.Eq(n.marks) {
		nodes[last] = nodes[last].WithText(nodes[last].text + n.text)
		return nodes
	}
	return append(nodes, n)
}

// Size returns the total size of the children.
func (f Fragment) Size() int { return f.size }

// ChildCount returns the number of children.
func (f Fragment) ChildCount() int { return len(f.nodes) }

// Child returns the child at index i.
func (f Fragment) Child(i int) *Node { return f.nodes[i] }

// MaybeChild returns the child at index i, or nil.
func (f Fragment) MaybeChild(i int) *Node {
	if i >= 0 && i < len(f.nodes) {
		return f.nodes[i]
	}
	return nil
}

// FirstChild returns the first child, or nil.
func (f Fragment) FirstChild() *Node { return f.MaybeChild(0) }

// LastChild returns the last child, or nil.
func (f Fragment) LastChild() *Node { return f.MaybeChild(len(f.nodes) - 1) }

// Children returns a copy of the child list.
func (f Fragment) Children() []*Node {
	out := make([]*Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// Append concatenates other onto f, merging text at the seam.
func (f Fragment) Append(other Fragment) Fragment {
	if other.size == 0 && len(other.nodes) == 0 {
		return f
	}
	if f.size == 0 && len(f.nodes) == 0 {
		return other
	}
	nodes := make([]*Node, len(f.nodes), len(f.nodes)+len(other.nodes))
	copy(nodes, f.nodes)
	for _, n := range other.nodes {
		nodes = appendNode(nodes, n)
	}
	return Fragment{nodes: nodes, size: f.size + other.size}
}

// Cut returns the part of the fragment between from and to.
func (f Fragment) Cut(from, to int) Fragment {
	if from == 0 && to == f.size {
		return f
	}
	var out []*Node
	size := 0
	if to > from {
		pos := 0
		for i := 0; pos < to && i < len(f.nodes); i++ {
			child := f.nodes[i]
			end := pos + child.NodeSize()
			if end > from {
				if pos < from || end > to {
					if child.IsText() {
						child = child.cutText(max(0, from-pos), min(child.textLen, to-pos))
					} else {
						child = child.Cut(max(0, from-pos-1), min(child.content.size, to-pos-1))
					}
				}
				out = append(out, child)
				size += child.NodeSize()
			}
			pos = end
		}
	}
	return Fragment{nodes: out, size: size}
}

// CutByIndex returns the children in [from, to).
func (f Fragment) CutByIndex(from, to int) Fragment {
	if from == 0 && to == len(f.nodes) {
		return f
	}
	return fragmentOf(f.nodes[from:to:to])
}

// ReplaceChild returns a fragment with the child at index replaced by n.
func (f Fragment) ReplaceChild(index int, n *Node) Fragment {
	cur := f.nodes[index]
	if cur == n {
		return f
	}
	nodes := make([]*Node, len(f.nodes))
	copy(nodes, f.nodes)
	nodes[index] = n
	return Fragment{nodes: nodes, size: f.size + n.NodeSize() - cur.NodeSize()}
}

// AddToStart prepends n.
func (f Fragment) AddToStart(n *Node) Fragment {
	return NewFragment(n).Append(f)
}

// AddToEnd appends n.
func (f Fragment) AddToEnd(n *Node) Fragment {
	return f.Append(NewFragment(n))
}

// Eq reports structural equality.
func (f Fragment) Eq(o Fragment) bool {
	if len(f.nodes) != len(o.nodes) {
		return false
	}
	for i := range f.nodes {
		if !f.nodes[i].Eq(o.nodes[i]) {
			return false
		}
	}
	return true
}

// FindIndex returns the index of the child containing pos and the start
// offset of that child. A pos at the end yields (ChildCount, Size). With
// round > 0 a pos at a child boundary resolves to the following child.
func (f Fragment) FindIndex(pos int, round int) (index, offset int, err error) {
	if pos == 0 {
		return 0, 0, nil
	}
	if pos == f.size {
		return len(f.nodes), pos, nil
	}
	if pos > f.size || pos < 0 {
		return 0, 0, fmt.Errorf("%w: %d in fragment of size %d", ErrPositionOutOfRange, pos, f.size)
	}
	cur := 0
	for i, child := range f.nodes {
		end := cur + child.NodeSize()
		if end >= pos {
			if end == pos || round > 0 {
				return i + 1, end, nil
			}
			return i, cur, nil
		}
		cur = end
	}
	return len(f.nodes), f.size, nil
}

// NodesBetween calls fn for every node that overlaps [from, to), depth
// first. nodeStart is the absolute position of the fragment's start. When fn
// returns false the node's children are skipped.
func (f Fragment) NodesBetween(from, to int, fn func(n *Node, pos int, parent *Node, index int) bool, nodeStart int, parent *Node) {
	pos := 0
	for i := 0; pos < to && i < len(f.nodes); i++ {
		child := f.nodes[i]
		end := pos + child.NodeSize()
		if end > from && fn(child, nodeStart+pos, parent, i) && child.content.size > 0 {
			start := pos + 1
			child.content.NodesBetween(max(0, from-start), min(child.content.size, to-start), fn, nodeStart+start, child)
		}
		pos = end
	}
}

// TextBetween returns the text between from and to. blockSep is inserted
// between textblocks and leafText stands in for non-text leaves.
func (f Fragment) TextBetween(from, to int, blockSep, leafText string) string {
	var b strings.Builder
	first := true
	f.NodesBetween(from, to, func(n *Node, pos int, _ *Node, _ int) bool {
		nodeText := ""
		if n.IsText() {
			nodeText = n.runeSlice(max(from, pos)-pos, min(to-pos, n.textLen))
		} else if n.IsLeaf() {
			nodeText = leafText
		}
		if blockSep != "" && n.IsBlock() && ((n.IsLeaf() && nodeText != "") || n.IsTextblock()) {
			if first {
				first = false
			} else {
				b.WriteString(blockSep)
			}
		}
		b.WriteString(nodeText)
		return true
	}, 0, nil)
	return b.String()
}

func (f Fragment) typeList() string {
	names := make([]string, len(f.nodes))
	for i, n := range f.nodes {
		names[i] = n.typ.Name
	}
	return strings.Join(names, " ")
}

// String returns a debug representation.
func (f Fragment) String() string {
	parts := make([]string, len(f.nodes))
	for i, n := range f.nodes {
		parts[i] = n.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
