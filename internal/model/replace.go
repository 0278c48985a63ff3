package model

import "fmt"

// Slice is a piece of document content cut out of a larger document. The
// open depths say how many levels of the first and last node are open,
// meaning their start or end is not part of the slice.
type Slice struct {
	Content   Fragment
	OpenStart int
	OpenEnd   int
}

// NewSlice returns a closed slice holding content.
func NewSlice(content Fragment) Slice {
	return Slice{Content: content}
}

// Size returns the size the slice adds when inserted.
func (s Slice) Size() int {
	return s.Content.Size() - s.OpenStart - s.OpenEnd
}

// Eq reports structural equality.
func (s Slice) Eq(o Slice) bool {
	return s.OpenStart == o.OpenStart && s.OpenEnd == o.OpenEnd && s.Content.Eq(o.Content)
}

// String returns a debug representation.
func (s Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Content, s.OpenStart, s.OpenEnd)
}

// InsertAt inserts fragment at pos (relative to the slice's open start).
// It reports false when the content does not fit there.
func (s Slice) InsertAt(pos int, f Fragment) (Slice, bool) {
	content, ok := insertInto(s.Content, pos+s.OpenStart, f, nil)
	if !ok {
		return Slice{}, false
	}
	return Slice{Content: content, OpenStart: s.OpenStart, OpenEnd: s.OpenEnd}, true
}

// RemoveBetween removes the flat range [from, to) (relative to the open start).
func (s Slice) RemoveBetween(from, to int) (Slice, error) {
	content, err := removeRange(s.Content, from+s.OpenStart, to+s.OpenStart)
	if err != nil {
		return Slice{}, err
	}
	return Slice{Content: content, OpenStart: s.OpenStart, OpenEnd: s.OpenEnd}, nil
}

func insertInto(content Fragment, dist int, insert Fragment, parent *Node) (Fragment, bool) {
	index, offset, err := content.FindIndex(dist, 0)
	if err != nil {
		return Fragment{}, false
	}
	child := content.MaybeChild(index)
	if offset == dist || (child != nil && child.IsText()) {
		if parent != nil && !parent.CanReplace(index, index, insert) {
			return Fragment{}, false
		}
		return content.Cut(0, dist).Append(insert).Append(content.Cut(dist, content.Size())), true
	}
	inner, ok := insertInto(child.content, dist-offset-1, insert, child)
	if !ok {
		return Fragment{}, false
	}
	return content.ReplaceChild(index, child.Copy(inner)), true
}

func removeRange(content Fragment, from, to int) (Fragment, error) {
	index, offset, err := content.FindIndex(from, 0)
	if err != nil {
		return Fragment{}, err
	}
	child := content.MaybeChild(index)
	indexTo, offsetTo, err := content.FindIndex(to, 0)
	if err != nil {
		return Fragment{}, err
	}
	if offset == from || (child != nil && child.IsText()) {
		if offsetTo != to && !content.Child(indexTo).IsText() {
			return Fragment{}, replaceError("removing non-flat range")
		}
		return content.Cut(0, from).Append(content.Cut(to, content.Size())), nil
	}
	if index != indexTo {
		return Fragment{}, replaceError("removing non-flat range")
	}
	inner, err := removeRange(child.content, from-offset-1, to-offset-1)
	if err != nil {
		return Fragment{}, err
	}
	return content.ReplaceChild(index, child.Copy(inner)), nil
}

// replace implements Node.Replace. The algorithm walks down the shared
// ancestors of from and to, then stitches the left side, the slice and the
// right side together, joining open nodes whose types are compatible and
// validating every node it rebuilds.
func replace(from, to *ResolvedPos, slice Slice) (*Node, error) {
	if slice.OpenStart > from.Depth {
		return nil, replaceError("inserted content deeper than insertion position")
	}
	if from.Depth-slice.OpenStart != to.Depth-slice.OpenEnd {
		return nil, replaceError("inconsistent open depths")
	}
	return replaceOuter(from, to, slice, 0)
}

func replaceOuter(from, to *ResolvedPos, slice Slice, depth int) (*Node, error) {
	index := from.Index(depth)
	node := from.Node(depth)
	if index == to.Index(depth) && depth < from.Depth-slice.OpenStart {
		inner, err := replaceOuter(from, to, slice, depth+1)
		if err != nil {
			return nil, err
		}
		return node.Copy(node.content.ReplaceChild(index, inner)), nil
	}
	if slice.Content.Size() == 0 {
		content, err := replaceTwoWay(from, to, depth)
		if err != nil {
			return nil, err
		}
		return closeNode(node, content)
	}
	if slice.OpenStart == 0 && slice.OpenEnd == 0 && from.Depth == depth && to.Depth == depth {
		parent := from.Parent()
		content := parent.content
		return closeNode(parent, content.Cut(0, from.ParentOffset).Append(slice.Content).Append(content.Cut(to.ParentOffset, content.Size())))
	}
	start, end, err := prepareSliceForReplace(slice, from)
	if err != nil {
		return nil, err
	}
	content, err := replaceThreeWay(from, start, end, to, depth)
	if err != nil {
		return nil, err
	}
	return closeNode(node, content)
}

func checkJoin(main, sub *Node) error {
	if !sub.typ.compatibleContent(main.typ) {
		return replaceError("cannot join %s onto %s", sub.typ.Name, main.typ.Name)
	}
	return nil
}

func joinable(before, after *ResolvedPos, depth int) (*Node, error) {
	node := before.Node(depth)
	if err := checkJoin(node, after.Node(depth)); err != nil {
		return nil, err
	}
	return node, nil
}

func addNode(child *Node, target []*Node) []*Node {
	if last := len(target) - 1; last >= 0 && child.IsText() && child.SameMarkup(target[last]) {
		target[last] = child.WithText(target[last].text + child.text)
		return target
	}
	return append(target, child)
}

func addRange(start, end *ResolvedPos, depth int, target []*Node) []*Node {
	var node *Node
	if end != nil {
		node = end.Node(depth)
	} else {
		node = start.Node(depth)
	}
	startIndex := 0
	endIndex := node.ChildCount()
	if end != nil {
		endIndex = end.Index(depth)
	}
	if start != nil {
		startIndex = start.Index(depth)
		if start.Depth > depth {
			startIndex++
		} else if start.TextOffset() > 0 {
			target = addNode(start.NodeAfter(), target)
			startIndex++
		}
	}
	for i := startIndex; i < endIndex; i++ {
		target = addNode(node.Child(i), target)
	}
	if end != nil && end.Depth == depth && end.TextOffset() > 0 {
		target = addNode(end.NodeBefore(), target)
	}
	return target
}

func closeNode(node *Node, content Fragment) (*Node, error) {
	if err := node.typ.CheckContent(content); err != nil {
		return nil, &ReplaceError{Message: "invalid content for " + node.typ.Name, Err: err}
	}
	return node.Copy(content), nil
}

func fragmentOf(nodes []*Node) Fragment {
	size := 0
	for _, n := range nodes {
		size += n.NodeSize()
	}
	return Fragment{nodes: nodes, size: size}
}

func replaceThreeWay(from, start, end, to *ResolvedPos, depth int) (Fragment, error) {
	var openStart, openEnd *Node
	var err error
	if from.Depth > depth {
		if openStart, err = joinable(from, start, depth+1); err != nil {
			return Fragment{}, err
		}
	}
	if to.Depth > depth {
		if openEnd, err = joinable(end, to, depth+1); err != nil {
			return Fragment{}, err
		}
	}

	var content []*Node
	content = addRange(nil, from, depth, content)
	if openStart != nil && openEnd != nil && start.Index(depth) == end.Index(depth) {
		if err := checkJoin(openStart, openEnd); err != nil {
			return Fragment{}, err
		}
		inner, err := replaceThreeWay(from, start, end, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		closed, err := closeNode(openStart, inner)
		if err != nil {
			return Fragment{}, err
		}
		content = addNode(closed, content)
	} else {
		if openStart != nil {
			inner, err := replaceTwoWay(from, start, depth+1)
			if err != nil {
				return Fragment{}, err
			}
			closed, err := closeNode(openStart, inner)
			if err != nil {
				return Fragment{}, err
			}
			content = addNode(closed, content)
		}
		content = addRange(start, end, depth, content)
		if openEnd != nil {
			inner, err := replaceTwoWay(end, to, depth+1)
			if err != nil {
				return Fragment{}, err
			}
			closed, err := closeNode(openEnd, inner)
			if err != nil {
				return Fragment{}, err
			}
			content = addNode(closed, content)
		}
	}
	content = addRange(to, nil, depth, content)
	return fragmentOf(content), nil
}

func replaceTwoWay(from, to *ResolvedPos, depth int) (Fragment, error) {
	var content []*Node
	content = addRange(nil, from, depth, content)
	if from.Depth > depth {
		typ, err := joinable(from, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		inner, err := replaceTwoWay(from, to, depth+1)
		if err != nil {
			return Fragment{}, err
		}
		closed, err := closeNode(typ, inner)
		if err != nil {
			return Fragment{}, err
		}
		content = addNode(closed, content)
	}
	content = addRange(to, nil, depth, content)
	return fragmentOf(content), nil
}

func prepareSliceForReplace(slice Slice, along *ResolvedPos) (*ResolvedPos, *ResolvedPos, error) {
	extra := along.Depth - slice.OpenStart
	parent := along.Node(extra)
	node := parent.Copy(slice.Content)
	for i := extra - 1; i >= 0; i-- {
		node = along.Node(i).Copy(NewFragment(node))
	}
	start, err := node.Resolve(slice.OpenStart + extra)
	if err != nil {
		return nil, nil, err
	}
	end, err := node.Resolve(node.content.size - slice.OpenEnd - extra)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
