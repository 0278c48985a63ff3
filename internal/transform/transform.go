package transform

import (
	"fmt"

	"github.com/dshills/inkwell/internal/model"
)

// Transform accumulates steps against a starting document.
type Transform struct {
	doc     *model.Node
	docs    []*model.Node
	steps   []Step
	mapping *Mapping
}

// New starts a transform on doc.
func New(doc *model.Node) *Transform {
	return &Transform{doc: doc, mapping: NewMapping()}
}

// Doc returns the current document.
func (t *Transform) Doc() *model.Node { return t.doc }

// Before returns the starting document.
func (t *Transform) Before() *model.Node {
	if len(t.docs) > 0 {
		return t.docs[0]
	}
	return t.doc
}

// Steps returns the recorded steps.
func (t *Transform) Steps() []Step { return t.steps }

// Docs returns the document each step was applied to.
func (t *Transform) Docs() []*model.Node { return t.docs }

// Mapping returns the composed map of every recorded step.
func (t *Transform) Mapping() *Mapping { return t.mapping }

// DocChanged reports whether any step was recorded.
func (t *Transform) DocChanged() bool { return len(t.steps) > 0 }

// Schema returns the schema of the document.
func (t *Transform) Schema() *model.Schema { return t.doc.Type().Schema() }

// Step applies s and records it. A step that fails is not recorded and the
// document is left unchanged. No-op steps are dropped.
func (t *Transform) Step(s Step) error {
	if IsNoop(s) {
		return nil
	}
	out, err := s.Apply(t.doc)
	if err != nil {
		return err
	}
	t.docs = append(t.docs, t.doc)
	t.steps = append(t.steps, s)
	t.mapping.AppendMap(s.Map())
	t.doc = out
	return nil
}

// Replace replaces [from, to) with slice.
func (t *Transform) Replace(from, to int, slice model.Slice) error {
	return t.Step(&ReplaceStep{From: from, To: to, Slice: slice})
}

// ReplaceWith replaces [from, to) with nodes.
func (t *Transform) ReplaceWith(from, to int, nodes ...*model.Node) error {
	return t.Replace(from, to, model.NewSlice(model.NewFragment(nodes...)))
}

// Delete removes [from, to).
func (t *Transform) Delete(from, to int) error {
	return t.Replace(from, to, model.Slice{})
}

// Insert inserts nodes at pos.
func (t *Transform) Insert(pos int, nodes ...*model.Node) error {
	return t.ReplaceWith(pos, pos, nodes...)
}

// InsertText replaces [from, to) with text carrying marks. Empty text
// deletes the range.
func (t *Transform) InsertText(from, to int, text string, marks model.MarkSet) error {
	if text == "" {
		return t.Delete(from, to)
	}
	return t.ReplaceWith(from, to, t.Schema().Text(text, marks))
}

// AddMark adds mark to the inline content in [from, to). Marks of the same
// type are replaced, with explicit remove steps so the change inverts
// exactly.
func (t *Transform) AddMark(from, to int, mark *model.Mark) error {
	var removed, added []*markSpan
	t.doc.NodesBetween(from, to, func(n *model.Node, pos int, parent *model.Node, _ int) bool {
		if !n.IsInline() {
			return true
		}
		if mark.IsInSet(n.Marks()) || !parent.Type().AllowsMarks() {
			return false
		}
		start, end := max(pos, from), min(pos+n.NodeSize(), to)
		next := mark.AddToSet(n.Marks())
		for _, m := range n.Marks() {
			if !m.IsInSet(next) {
				removed = extendSpan(removed, start, end, m)
			}
		}
		added = extendSpan(added, start, end, mark)
		return false
	})
	for _, s := range removed {
		if err := t.Step(&RemoveMarkStep{From: s.from, To: s.to, Mark: s.mark}); err != nil {
			return err
		}
	}
	for _, s := range added {
		if err := t.Step(&AddMarkStep{From: s.from, To: s.to, Mark: s.mark}); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMark removes every mark of kind from the inline content in
// [from, to).
func (t *Transform) RemoveMark(from, to int, kind model.MarkKind) error {
	var removed []*markSpan
	t.doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if !n.IsInline() {
			return true
		}
		if m, ok := n.Marks().Find(kind); ok {
			removed = extendSpan(removed, max(pos, from), min(pos+n.NodeSize(), to), m)
		}
		return false
	})
	for _, s := range removed {
		if err := t.Step(&RemoveMarkStep{From: s.from, To: s.to, Mark: s.mark}); err != nil {
			return err
		}
	}
	return nil
}

type markSpan struct {
	from, to int
	mark     *model.Mark
}

// extendSpan grows the last span when it ends at from with an equal mark.
func extendSpan(spans []*markSpan, from, to int, mark *model.Mark) []*markSpan {
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].to == from && spans[i].mark.Eq(mark) {
			spans[i].to = to
			return spans
		}
	}
	return append(spans, &markSpan{from: from, to: to, mark: mark})
}

// SetNodeMarkup changes the type and attributes of the node at pos.
func (t *Transform) SetNodeMarkup(pos int, kind model.NodeKind, attrs model.Attrs) error {
	return t.Step(&NodeMarkupStep{Pos: pos, Type: kind, Attrs: attrs})
}

// SetNodeAttr sets a single attribute on the node at pos.
func (t *Transform) SetNodeAttr(pos int, name string, value any) error {
	node := t.doc.NodeAt(pos)
	if node == nil {
		return fmt.Errorf("%w: %d", ErrNoTarget, pos)
	}
	return t.SetNodeMarkup(pos, node.Kind(), node.Attrs().With(name, value))
}

// SetBlockType converts every textblock in [from, to) to kind. Blocks that
// already have the markup, or whose content the new type does not accept,
// are left alone.
func (t *Transform) SetBlockType(from, to int, kind model.NodeKind, attrs model.Attrs) error {
	typ := t.Schema().NodeType(kind)
	if !typ.IsTextblock() {
		return fmt.Errorf("%w: %s is not a textblock", ErrInvalidWrap, typ.Name)
	}
	computed, err := typ.ComputeAttrs(attrs)
	if err != nil {
		return err
	}
	var targets []int
	t.doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if !n.IsTextblock() {
			return true
		}
		if !n.HasMarkup(typ, computed, nil) && typ.ValidContent(n.Content()) {
			targets = append(targets, pos)
		}
		return false
	})
	for _, pos := range targets {
		if err := t.SetNodeMarkup(pos, kind, computed); err != nil {
			return err
		}
	}
	return nil
}

// Split splits the node at pos, depth levels deep. typesAfter optionally
// gives the type of the new node created at each level, innermost first.
func (t *Transform) Split(pos, depth int, typesAfter ...model.NodeKind) error {
	r, err := t.doc.Resolve(pos)
	if err != nil {
		return err
	}
	if depth < 1 || depth > r.Depth {
		return fmt.Errorf("%w: cannot split %d levels at depth %d", ErrStepFailed, depth, r.Depth)
	}
	schema := t.Schema()
	before, after := model.Fragment{}, model.Fragment{}
	for d, i := r.Depth, 0; d > r.Depth-depth; d, i = d-1, i+1 {
		before = model.NewFragment(r.Node(d).Copy(before))
		next := r.Node(d).Copy(after)
		if i < len(typesAfter) {
			next, err = schema.NodeType(typesAfter[i]).CreateUnchecked(nil, after, nil)
			if err != nil {
				return err
			}
		}
		after = model.NewFragment(next)
	}
	slice := model.Slice{Content: before.Append(after), OpenStart: depth, OpenEnd: depth}
	return t.Step(&ReplaceStep{From: pos, To: pos, Slice: slice, Structure: true})
}

// Join joins the blocks around pos, depth levels deep.
func (t *Transform) Join(pos, depth int) error {
	return t.Step(&ReplaceStep{From: pos - depth, To: pos + depth, Structure: true})
}

// Wrapper is a node type and attributes used to wrap a range.
type Wrapper struct {
	Kind  model.NodeKind
	Attrs model.Attrs
}

// FindWrapping returns the wrappers needed to wrap rng in a node of kind,
// outermost first, or false when the range cannot be wrapped.
func FindWrapping(rng model.NodeRange, kind model.NodeKind, attrs model.Attrs) ([]Wrapper, bool) {
	parent := rng.Parent()
	typ := parent.Type().Schema().NodeType(kind)
	probe, err := typ.CreateUnchecked(attrs, model.Fragment{}, nil)
	if err != nil {
		return nil, false
	}
	if !parent.CanReplace(rng.StartIndex(), rng.EndIndex(), model.NewFragment(probe)) {
		return nil, false
	}
	inner := parent.Content().CutByIndex(rng.StartIndex(), rng.EndIndex())
	wrappers := []Wrapper{{Kind: kind, Attrs: attrs}}
	if typ.ValidContent(inner) {
		return wrappers, true
	}
	// One intermediate node, as list items between a list and its blocks.
	mid := typ.ContentMatch().DefaultType()
	if mid == nil || !mid.ValidContent(inner) {
		return nil, false
	}
	return append(wrappers, Wrapper{Kind: mid.Kind}), true
}

// Wrap wraps rng in wrappers, outermost first.
func (t *Transform) Wrap(rng model.NodeRange, wrappers []Wrapper) error {
	schema := t.Schema()
	content := model.Fragment{}
	for i := len(wrappers) - 1; i >= 0; i-- {
		typ := schema.NodeType(wrappers[i].Kind)
		if content.Size() > 0 && !typ.ValidContent(content) {
			return fmt.Errorf("%w: %s cannot hold %s", ErrInvalidWrap, typ.Name, content)
		}
		node, err := typ.CreateUnchecked(wrappers[i].Attrs, content, nil)
		if err != nil {
			return err
		}
		content = model.NewFragment(node)
	}
	start, end := rng.Start(), rng.End()
	return t.Step(&ReplaceAroundStep{
		From: start, To: end, GapFrom: start, GapTo: end,
		Slice: model.NewSlice(content), Insert: len(wrappers), Structure: true,
	})
}

// LiftTarget returns the depth rng can be lifted to, or false.
func LiftTarget(rng model.NodeRange) (int, bool) {
	parent := rng.Parent()
	content := parent.Content().CutByIndex(rng.StartIndex(), rng.EndIndex())
	for depth := rng.Depth; ; depth-- {
		node := rng.From.Node(depth)
		index, endIndex := rng.From.Index(depth), rng.To.IndexAfter(depth)
		if depth < rng.Depth && node.CanReplace(index, endIndex, content) {
			return depth, true
		}
		if depth == 0 || !canCut(node, index, endIndex) {
			return 0, false
		}
	}
}

func canCut(node *model.Node, start, end int) bool {
	return (start == 0 || node.CanReplace(start, node.ChildCount(), model.Fragment{})) &&
		(end == node.ChildCount() || node.CanReplace(0, end, model.Fragment{}))
}

// Lift moves rng out of its ancestors up to target depth, splitting
// ancestors that hold content before or after the range.
func (t *Transform) Lift(rng model.NodeRange, target int) error {
	from, to, depth := rng.From, rng.To, rng.Depth
	gapStart, gapEnd := from.Before(depth+1), to.After(depth+1)
	start, end := gapStart, gapEnd

	before, openStart := model.Fragment{}, 0
	splitting := false
	for d := depth; d > target; d-- {
		if splitting || from.Index(d) > 0 {
			splitting = true
			before = model.NewFragment(from.Node(d).Copy(before))
			openStart++
		} else {
			start--
		}
	}
	after, openEnd := model.Fragment{}, 0
	splitting = false
	for d := depth; d > target; d-- {
		if splitting || to.After(d+1) < to.End(d) {
			splitting = true
			after = model.NewFragment(to.Node(d).Copy(after))
			openEnd++
		} else {
			end++
		}
	}
	return t.Step(&ReplaceAroundStep{
		From: start, To: end, GapFrom: gapStart, GapTo: gapEnd,
		Slice:     model.Slice{Content: before.Append(after), OpenStart: openStart, OpenEnd: openEnd},
		Insert:    before.Size() - openStart,
		Structure: true,
	})
}

// Move moves the node at from to target, where target is a position in the
// document before the move. The same node value is reinserted.
func (t *Transform) Move(from, target int) error {
	node := t.doc.NodeAt(from)
	if node == nil {
		return fmt.Errorf("%w: %d", ErrNoTarget, from)
	}
	end := from + node.NodeSize()
	if target > from && target < end {
		return fmt.Errorf("%w: target %d inside moved node", ErrStepFailed, target)
	}
	mapFrom := t.mapping.Len()
	if err := t.Delete(from, end); err != nil {
		return err
	}
	pos := t.mapping.Slice(mapFrom).Map(target, 1)
	if err := t.Insert(pos, node); err != nil {
		return err
	}
	return nil
}
