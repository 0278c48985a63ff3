package commands

import (
	"slices"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
	"github.com/dshills/inkwell/internal/transform"
)

// Floatable lists the node kinds SetFloat applies to.
var Floatable = []model.NodeKind{model.Figure, model.Blockquote, model.Aside}

// RangeHasMark reports whether any inline content in [from, to) carries a
// mark of kind.
func RangeHasMark(doc *model.Node, from, to int, kind model.MarkKind) bool {
	found := false
	doc.NodesBetween(from, to, func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if found {
			return false
		}
		if n.IsInline() {
			found = n.Marks().Has(kind)
			return false
		}
		return true
	})
	return found
}

// CursorMarks returns the marks that typing at the cursor would apply.
func CursorMarks(st *state.State) model.MarkSet {
	if marks := st.StoredMarks(); marks != nil {
		return marks
	}
	r, err := st.Doc().Resolve(st.Selection().Head())
	if err != nil {
		return nil
	}
	return r.Marks()
}

// MarkActive reports whether the selection carries a mark of kind.
func MarkActive(st *state.State, kind model.MarkKind) bool {
	sel := st.Selection()
	if sel.Empty() {
		return CursorMarks(st).Has(kind)
	}
	return RangeHasMark(st.Doc(), sel.From(), sel.To(), kind)
}

// BlockActive reports whether the textblock at the selection start has
// kind and every attribute in attrs.
func BlockActive(st *state.State, kind model.NodeKind, attrs model.Attrs) bool {
	sel := st.Selection()
	if ns, ok := sel.(state.NodeSelection); ok {
		return hasMarkup(ns.Node(), kind, attrs)
	}
	r, err := st.Doc().Resolve(sel.From())
	if err != nil {
		return false
	}
	return sel.To() <= r.End(r.Depth) && hasMarkup(r.Parent(), kind, attrs)
}

// WrappedIn reports whether the selection start is inside a node of kind.
func WrappedIn(st *state.State, kind model.NodeKind) bool {
	r, err := st.Doc().Resolve(st.Selection().From())
	if err != nil {
		return false
	}
	for d := r.Depth; d > 0; d-- {
		if r.Node(d).Kind() == kind {
			return true
		}
	}
	return false
}

func hasMarkup(n *model.Node, kind model.NodeKind, attrs model.Attrs) bool {
	if n.Kind() != kind {
		return false
	}
	for k, v := range attrs {
		if n.Attr(k) != v {
			return false
		}
	}
	return true
}

func markApplies(doc *model.Node, sel state.Selection) bool {
	if sel.Empty() {
		r, err := doc.Resolve(sel.From())
		return err == nil && r.Parent().InlineContent() && r.Parent().Type().AllowsMarks()
	}
	ok := false
	doc.NodesBetween(sel.From(), sel.To(), func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if ok {
			return false
		}
		if n.InlineContent() {
			ok = n.Type().AllowsMarks()
		}
		return !ok
	})
	return ok
}

// ToggleMark adds a mark of kind to the selection, or removes it when the
// selection already carries one. On a cursor it toggles the stored marks.
func ToggleMark(kind model.MarkKind, attrs model.Attrs) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		mark, err := st.Schema().Mark(kind, attrs)
		if err != nil {
			return false
		}
		sel := st.Selection()
		if !markApplies(st.Doc(), sel) {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := st.Tr()
		switch {
		case sel.Empty() && CursorMarks(st).Has(kind):
			tr.RemoveStoredMark(kind)
		case sel.Empty():
			tr.AddStoredMark(mark)
		case RangeHasMark(st.Doc(), sel.From(), sel.To(), kind):
			if err := tr.RemoveMark(sel.From(), sel.To(), kind); err != nil {
				return false
			}
		default:
			if err := tr.AddMark(sel.From(), sel.To(), mark); err != nil {
				return false
			}
		}
		dispatch(tr.ScrollIntoView())
		return true
	}
}

// SetNodeType converts the selected textblocks to kind.
func SetNodeType(kind model.NodeKind, attrs model.Attrs) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		sel := st.Selection()
		tr := st.Tr()
		if err := tr.SetBlockType(sel.From(), sel.To(), kind, attrs); err != nil || !tr.DocChanged() {
			return false
		}
		if dispatch != nil {
			dispatch(tr.ScrollIntoView())
		}
		return true
	}
}

func blockRange(st *state.State) (model.NodeRange, bool) {
	sel := st.Selection()
	from, err := st.Doc().Resolve(sel.From())
	if err != nil {
		return model.NodeRange{}, false
	}
	to, err := st.Doc().Resolve(sel.To())
	if err != nil {
		return model.NodeRange{}, false
	}
	return from.BlockRange(to, nil)
}

// WrapIn wraps the selected blocks in a node of kind, adding any
// intermediate nodes the schema requires.
func WrapIn(kind model.NodeKind, attrs model.Attrs) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		rng, ok := blockRange(st)
		if !ok {
			return false
		}
		wrappers, ok := transform.FindWrapping(rng, kind, attrs)
		if !ok {
			return false
		}
		if dispatch != nil {
			tr := st.Tr()
			if err := tr.Wrap(rng, wrappers); err != nil {
				return false
			}
			dispatch(tr.ScrollIntoView())
		}
		return true
	}
}

// Lift moves the selected blocks out of their enclosing node.
func Lift(st *state.State, dispatch func(*state.Transaction)) bool {
	rng, ok := blockRange(st)
	if !ok {
		return false
	}
	target, ok := transform.LiftTarget(rng)
	if !ok {
		return false
	}
	if dispatch != nil {
		tr := st.Tr()
		if err := tr.Lift(rng, target); err != nil {
			return false
		}
		dispatch(tr.ScrollIntoView())
	}
	return true
}

// InsertNode replaces the selection with a new node of kind. The node gets
// the minimal valid content.
func InsertNode(kind model.NodeKind, attrs model.Attrs) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		if !st.Doc().CanInsert(st.Selection().From(), kind) {
			return false
		}
		node, err := st.Schema().NodeType(kind).CreateAndFill(attrs)
		if err != nil {
			return false
		}
		tr := st.Tr()
		if node.IsInline() {
			err = tr.ReplaceSelectionWith(node)
		} else {
			err = InsertBlock(tr, node)
		}
		if err != nil {
			return false
		}
		if dispatch != nil {
			dispatch(tr.ScrollIntoView())
		}
		return true
	}
}

// InsertBlock places a block node at the selection of tr. An empty
// textblock is replaced; a non-empty one is split when the cursor is inside
// it.
func InsertBlock(tr *state.Transaction, node *model.Node) error {
	if err := tr.DeleteSelection(); err != nil {
		return err
	}
	pos := tr.Selection().From()
	r, err := tr.Doc().Resolve(pos)
	if err != nil {
		return err
	}
	end := pos
	if parent := r.Parent(); parent.IsTextblock() {
		switch size := parent.Content().Size(); {
		case size == 0:
			pos, end = r.Before(r.Depth), r.After(r.Depth)
		case r.ParentOffset == 0:
			pos = r.Before(r.Depth)
			end = pos
		case r.ParentOffset == size:
			pos = r.After(r.Depth)
			end = pos
		default:
			if err := tr.Split(pos, 1); err != nil {
				return err
			}
			pos++
			end = pos
		}
	}
	if err := tr.ReplaceWith(pos, end, node); err != nil {
		return err
	}
	tr.SetSelection(state.NearPos(tr.Doc(), pos+node.NodeSize(), 1))
	return nil
}

// DeleteSelection deletes a non-empty selection.
func DeleteSelection(st *state.State, dispatch func(*state.Transaction)) bool {
	if st.Selection().Empty() {
		return false
	}
	if dispatch != nil {
		tr := st.Tr()
		if err := tr.DeleteSelection(); err != nil {
			return false
		}
		dispatch(tr.SetMeta(state.MetaInputType, "deleteContent").ScrollIntoView())
	}
	return true
}

// InsertText replaces the selection with text.
func InsertText(text string) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		sel := st.Selection()
		r, err := st.Doc().Resolve(sel.From())
		if err != nil || !r.Parent().InlineContent() || text == "" {
			return false
		}
		if dispatch != nil {
			tr := st.Tr()
			if err := tr.InsertText(text, sel.From(), sel.To()); err != nil {
				return false
			}
			dispatch(tr.SetMeta(state.MetaInputType, "insertText").ScrollIntoView())
		}
		return true
	}
}

// SplitBlock splits the textblock at the selection. Inside a code block it
// inserts a newline instead; in an empty list item it leaves the list.
func SplitBlock(st *state.State, dispatch func(*state.Transaction)) bool {
	if ns, ok := st.Selection().(state.NodeSelection); ok && ns.Node().IsBlock() {
		return false
	}
	tr := st.Tr()
	if err := tr.DeleteSelection(); err != nil {
		return false
	}
	pos := tr.Selection().From()
	r, err := tr.Doc().Resolve(pos)
	if err != nil || !r.Parent().IsTextblock() {
		return false
	}
	parent := r.Parent()
	switch {
	case parent.Type().IsCode():
		if err := tr.InsertText("\n", pos, pos); err != nil {
			return false
		}
	case r.Depth >= 2 && r.Node(r.Depth-1).Kind() == model.ListItem && r.Index(r.Depth-1) == 0:
		if parent.Content().Size() == 0 && st.Selection().Empty() {
			return Lift(st, dispatch)
		}
		if err := splitAt(tr, pos, 2, nil); err != nil {
			return false
		}
	default:
		var types []model.NodeKind
		if r.ParentOffset == parent.Content().Size() && parent.Kind() != model.Paragraph {
			types = []model.NodeKind{model.Paragraph}
		}
		if err := splitAt(tr, pos, 1, types); err != nil {
			return false
		}
	}
	if dispatch != nil {
		dispatch(tr.SetMeta(state.MetaInputType, "insertParagraph").ScrollIntoView())
	}
	return true
}

func splitAt(tr *state.Transaction, pos, depth int, types []model.NodeKind) error {
	n := tr.Mapping().Len()
	if err := tr.Split(pos, depth, types...); err != nil {
		return err
	}
	tr.SetSelection(state.Cursor(tr.Mapping().Slice(n).Map(pos, 1)))
	return nil
}

// SetFloat sets the float attribute of the selected or enclosing figure,
// blockquote or aside. Setting the current value clears it.
func SetFloat(value string) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		pos, node, ok := floatTarget(st)
		if !ok {
			return false
		}
		var next any = value
		if node.Attr("float") == value {
			next = nil
		}
		tr := st.Tr()
		if err := tr.SetNodeAttr(pos, "float", next); err != nil {
			return false
		}
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

func floatTarget(st *state.State) (int, *model.Node, bool) {
	if ns, ok := st.Selection().(state.NodeSelection); ok && isFloatable(ns.Node().Kind()) {
		return ns.From(), ns.Node(), true
	}
	r, err := st.Doc().Resolve(st.Selection().From())
	if err != nil {
		return 0, nil, false
	}
	for d := r.Depth; d > 0; d-- {
		if isFloatable(r.Node(d).Kind()) {
			return r.Before(d), r.Node(d), true
		}
	}
	return 0, nil, false
}

func isFloatable(kind model.NodeKind) bool { return slices.Contains(Floatable, kind) }

// SelectAll selects the whole document.
func SelectAll(st *state.State, dispatch func(*state.Transaction)) bool {
	if dispatch != nil {
		dispatch(st.Tr().SetSelection(state.NewAllSelection(st.Doc())))
	}
	return true
}
