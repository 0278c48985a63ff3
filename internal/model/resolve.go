package model

import "fmt"

type pathEntry struct {
	node   *Node
	index  int
	offset int
}

// ResolvedPos is a position with information about its ancestors. Depth 0 is
// the root node; Depth is the depth of the innermost node containing Pos.
type ResolvedPos struct {
	Pos   int
	Depth int
	// ParentOffset is the offset of Pos inside its parent's content.
	ParentOffset int

	path []pathEntry
}

// Resolve resolves pos inside n's content.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > n.content.size {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrPositionOutOfRange, pos, n.content.size)
	}
	var path []pathEntry
	start := 0
	parentOffset := pos
	node := n
	for {
		index, offset, err := node.content.FindIndex(parentOffset, 0)
		if err != nil {
			return nil, err
		}
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	return &ResolvedPos{Pos: pos, Depth: len(path) - 1, ParentOffset: parentOffset, path: path}, nil
}

// MustResolve is like Resolve but panics when pos is out of range.
func (n *Node) MustResolve(pos int) *ResolvedPos {
	r, err := n.Resolve(pos)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ResolvedPos) depth(d int) int {
	if d < 0 {
		return r.Depth + d
	}
	return d
}

// Node returns the ancestor at depth d. Negative d counts up from Depth.
func (r *ResolvedPos) Node(d int) *Node { return r.path[r.depth(d)].node }

// Index returns the index into the ancestor at depth d.
func (r *ResolvedPos) Index(d int) int { return r.path[r.depth(d)].index }

// IndexAfter returns the index pointing after this position in the ancestor
// at depth d.
func (r *ResolvedPos) IndexAfter(d int) int {
	d = r.depth(d)
	if d == r.Depth && r.TextOffset() == 0 {
		return r.Index(d)
	}
	return r.Index(d) + 1
}

// Parent returns the innermost node containing the position.
func (r *ResolvedPos) Parent() *Node { return r.Node(r.Depth) }

// Doc returns the root node.
func (r *ResolvedPos) Doc() *Node { return r.Node(0) }

// Start returns the position at the start of the ancestor at depth d.
func (r *ResolvedPos) Start(d int) int {
	d = r.depth(d)
	if d == 0 {
		return 0
	}
	return r.path[d-1].offset + 1
}

// End returns the position at the end of the ancestor at depth d.
func (r *ResolvedPos) End(d int) int {
	d = r.depth(d)
	return r.Start(d) + r.Node(d).content.size
}

// Before returns the position directly before the ancestor at depth d.
func (r *ResolvedPos) Before(d int) int {
	d = r.depth(d)
	if d == 0 {
		return 0
	}
	if d == r.Depth+1 {
		return r.Pos
	}
	return r.path[d-1].offset
}

// After returns the position directly after the ancestor at depth d.
func (r *ResolvedPos) After(d int) int {
	d = r.depth(d)
	if d == 0 {
		return r.Node(0).content.size
	}
	if d == r.Depth+1 {
		return r.Pos
	}
	return r.path[d-1].offset + r.path[d].node.NodeSize()
}

// TextOffset returns the offset into the text node at the position, or 0.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[len(r.path)-1].offset
}

// NodeAfter returns the node directly after the position, or nil.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if off := r.TextOffset(); off > 0 {
		return child.Cut(off, child.textLen)
	}
	return child
}

// NodeBefore returns the node directly before the position, or nil.
func (r *ResolvedPos) NodeBefore() *Node {
	index := r.Index(r.Depth)
	if off := r.TextOffset(); off > 0 {
		return r.Parent().Child(index).Cut(0, off)
	}
	if index == 0 {
		return nil
	}
	return r.Parent().Child(index - 1)
}

// SharedDepth returns the depth of the deepest ancestor that also contains pos.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for d := r.Depth; d > 0; d-- {
		if r.Start(d) <= pos && r.End(d) >= pos {
			return d
		}
	}
	return 0
}

// Marks returns the marks that text inserted at the position would get.
// Non-inclusive marks are not continued past their end.
func (r *ResolvedPos) Marks() MarkSet {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if parent.content.size == 0 {
		return nil
	}
	if r.TextOffset() > 0 {
		return parent.Child(index).marks
	}
	before := parent.MaybeChild(index - 1)
	after := parent.MaybeChild(index)
	if before == nil {
		before, after = after, before
	}
	if before == nil {
		return nil
	}
	marks := before.marks
	for _, m := range before.marks {
		if !m.typ.Inclusive() && (after == nil || !m.IsInSet(after.marks)) {
			marks = m.RemoveFromSet(marks)
		}
	}
	return marks
}

// MarksAcross returns the marks that continue from the position to end, used
// when deleting across text.
func (r *ResolvedPos) MarksAcross(end *ResolvedPos) MarkSet {
	after := r.Parent().MaybeChild(r.Index(r.Depth))
	if after == nil || !after.IsInline() {
		return nil
	}
	marks := after.marks
	next := end.Parent().MaybeChild(end.Index(end.Depth))
	for _, m := range marks {
		if !m.typ.Inclusive() && (next == nil || !m.IsInSet(next.marks)) {
			marks = m.RemoveFromSet(marks)
		}
	}
	return marks
}

// SameParent reports whether o has the same parent node.
func (r *ResolvedPos) SameParent(o *ResolvedPos) bool {
	return r.Pos-r.ParentOffset == o.Pos-o.ParentOffset
}

// BlockRange returns the range of sibling blocks around r and o at the
// deepest depth where they share a parent, optionally filtered by pred.
func (r *ResolvedPos) BlockRange(o *ResolvedPos, pred func(*Node) bool) (NodeRange, bool) {
	if o.Pos < r.Pos {
		return o.BlockRange(r, pred)
	}
	start := r.Depth
	if !r.Parent().InlineContent() && r.Pos != o.Pos {
		start++
	}
	for d := start - 1; d >= 0; d-- {
		if o.Pos <= r.End(d) {
			if pred == nil || pred(r.Node(d)) {
				return NodeRange{From: r, To: o, Depth: d}, true
			}
		}
	}
	return NodeRange{}, false
}

// NodeRange is a flat range of siblings inside the ancestor at Depth.
type NodeRange struct {
	From, To *ResolvedPos
	Depth    int
}

// Parent returns the node holding the range.
func (nr NodeRange) Parent() *Node { return nr.From.Node(nr.Depth) }

// Start returns the position before the first node in the range.
func (nr NodeRange) Start() int { return nr.From.Before(nr.Depth + 1) }

// End returns the position after the last node in the range.
func (nr NodeRange) End() int { return nr.To.After(nr.Depth + 1) }

// StartIndex returns the index of the first node in the range.
func (nr NodeRange) StartIndex() int { return nr.From.Index(nr.Depth) }

// EndIndex returns the index after the last node in the range.
func (nr NodeRange) EndIndex() int { return nr.To.IndexAfter(nr.Depth) }

// String returns a debug representation.
func (r *ResolvedPos) String() string {
	s := ""
	for d := 1; d <= r.Depth; d++ {
		if s != "" {
			s += "/"
		}
		s += fmt.Sprintf("%s_%d", r.Node(d).typ.Name, r.Index(d-1))
	}
	return fmt.Sprintf("%s:%d", s, r.ParentOffset)
}
