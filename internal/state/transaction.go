package state

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/transform"
)

// Well-known metadata keys.
const (
	// MetaAddToHistory set to false keeps a transaction out of undo history.
	MetaAddToHistory = "addToHistory"
	// MetaInputType names the input that produced a transaction, such as
	// "insertText", "deleteContentBackward", "paste" or "drop".
	MetaInputType = "inputType"
	// MetaPlugin names the plugin that produced a transaction.
	MetaPlugin = "plugin"
	// MetaComposing marks transactions produced during IME composition.
	MetaComposing = "composing"
	// MetaAppendedTransaction points at the root transaction of an appended
	// one.
	MetaAppendedTransaction = "appendedTransaction"
	// MetaHistory carries undo/redo markers.
	MetaHistory = "history"
)

// Transaction is a Transform that also tracks the selection, stored marks
// and metadata. Create one with State.Tr.
type Transaction struct {
	*transform.Transform

	id   uuid.UUID
	time time.Time

	sel       Selection
	selAt     int
	selSet    bool
	marks     model.MarkSet
	marksAt   int
	marksSet  bool
	meta      map[string]any
	scrollReq bool
}

func newTransaction(st *State) *Transaction {
	return &Transaction{
		Transform: transform.New(st.doc),
		id:        uuid.New(),
		time:      st.now(),
		sel:       st.selection,
		marks:     st.storedMarks,
	}
}

// ID returns the transaction's unique identifier.
func (tr *Transaction) ID() uuid.UUID { return tr.id }

// Time returns the creation time.
func (tr *Transaction) Time() time.Time { return tr.time }

// SetTime overrides the creation time.
func (tr *Transaction) SetTime(t time.Time) *Transaction {
	tr.time = t
	return tr
}

// Selection returns the selection, mapped through any steps added since it
// was last set.
func (tr *Transaction) Selection() Selection {
	if n := len(tr.Steps()); tr.selAt < n {
		tr.sel = tr.sel.Map(tr.Doc(), tr.Mapping().Slice(tr.selAt))
		tr.selAt = n
	}
	return tr.sel
}

// SetSelection sets the selection explicitly. An explicit selection wins
// over remapping. Stored marks belong to the old cursor and are cleared
// unless SetStoredMarks is called afterwards.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	tr.sel = sel
	tr.selAt = len(tr.Steps())
	tr.selSet = true
	tr.marks = nil
	tr.marksAt = len(tr.Steps())
	tr.marksSet = false
	return tr
}

// SelectionSet reports whether SetSelection was called.
func (tr *Transaction) SelectionSet() bool { return tr.selSet }

// StoredMarks returns the marks applied to the next typed text. A document
// step clears them unless they are set again afterwards.
func (tr *Transaction) StoredMarks() model.MarkSet {
	if tr.marksAt < len(tr.Steps()) {
		return nil
	}
	return tr.marks
}

// SetStoredMarks replaces the stored marks.
func (tr *Transaction) SetStoredMarks(marks model.MarkSet) *Transaction {
	tr.marks = marks
	tr.marksAt = len(tr.Steps())
	tr.marksSet = true
	return tr
}

// StoredMarksSet reports whether SetStoredMarks was called.
func (tr *Transaction) StoredMarksSet() bool { return tr.marksSet }

// AddStoredMark adds mark to the stored marks, starting from the marks at
// the cursor when none are stored.
func (tr *Transaction) AddStoredMark(mark *model.Mark) *Transaction {
	return tr.SetStoredMarks(mark.AddToSet(tr.cursorMarks()))
}

// RemoveStoredMark removes marks of kind from the stored marks.
func (tr *Transaction) RemoveStoredMark(kind model.MarkKind) *Transaction {
	return tr.SetStoredMarks(tr.cursorMarks().RemoveKind(kind))
}

func (tr *Transaction) cursorMarks() model.MarkSet {
	if marks := tr.StoredMarks(); marks != nil {
		return marks
	}
	r, err := tr.Doc().Resolve(tr.Selection().Head())
	if err != nil {
		return nil
	}
	return r.Marks()
}

// SetMeta stores metadata under key.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	if tr.meta == nil {
		tr.meta = make(map[string]any)
	}
	tr.meta[key] = value
	return tr
}

// Meta returns the metadata stored under key.
func (tr *Transaction) Meta(key string) any { return tr.meta[key] }

// Metas returns a copy of all metadata.
func (tr *Transaction) Metas() map[string]any { return maps.Clone(tr.meta) }

// AddToHistory reports whether the transaction should be recorded for
// undo. It defaults to true.
func (tr *Transaction) AddToHistory() bool {
	v, ok := tr.meta[MetaAddToHistory].(bool)
	return !ok || v
}

// InputType returns the MetaInputType value, or "".
func (tr *Transaction) InputType() string {
	s, _ := tr.meta[MetaInputType].(string)
	return s
}

// ScrollIntoView asks the view to scroll the selection into view.
func (tr *Transaction) ScrollIntoView() *Transaction {
	tr.scrollReq = true
	return tr
}

// ScrolledIntoView reports whether ScrollIntoView was called.
func (tr *Transaction) ScrolledIntoView() bool { return tr.scrollReq }

// InsertText replaces [from, to) with text. The text takes the stored marks,
// or the marks at from. When [from, to) is the current selection, the
// selection collapses to a cursor after the text.
func (tr *Transaction) InsertText(text string, from, to int) error {
	sel := tr.Selection()
	collapse := sel.From() == from && sel.To() == to
	marks := tr.StoredMarks()
	if marks == nil {
		r, err := tr.Doc().Resolve(from)
		if err != nil {
			return err
		}
		if from == to {
			marks = r.Marks()
		} else {
			end, err := tr.Doc().Resolve(to)
			if err != nil {
				return err
			}
			marks = r.MarksAcross(end)
		}
	}
	if r, err := tr.Doc().Resolve(from); err == nil && !r.Parent().Type().AllowsMarks() {
		marks = nil
	}
	n := tr.Mapping().Len()
	if err := tr.Transform.InsertText(from, to, text, marks); err != nil {
		return err
	}
	if collapse {
		tr.SetSelection(NearPos(tr.Doc(), tr.mapSince(n, to, 1), -1))
	}
	return nil
}

// DeleteSelection deletes the selected content.
func (tr *Transaction) DeleteSelection() error {
	sel := tr.Selection()
	if sel.Empty() {
		return nil
	}
	from, to := sel.From(), sel.To()
	if _, all := sel.(AllSelection); all {
		empty, err := tr.Schema().NodeType(model.Paragraph).CreateAndFill(nil)
		if err != nil {
			return err
		}
		if err := tr.ReplaceWith(from, to, empty); err != nil {
			return err
		}
		tr.SetSelection(Cursor(1))
		return nil
	}
	n := tr.Mapping().Len()
	if err := tr.Delete(from, to); err != nil {
		return err
	}
	tr.SetSelection(NearPos(tr.Doc(), tr.mapSince(n, from, -1), -1))
	return nil
}

// ReplaceSelectionWith replaces the selection with node. Inline nodes leave
// the cursor after them; block nodes select near the insertion point.
func (tr *Transaction) ReplaceSelectionWith(node *model.Node) error {
	sel := tr.Selection()
	from, to := sel.From(), sel.To()
	n := tr.Mapping().Len()
	if err := tr.ReplaceWith(from, to, node); err != nil {
		return err
	}
	end := tr.mapSince(n, to, 1)
	if node.IsInline() {
		tr.SetSelection(Cursor(end))
	} else {
		tr.SetSelection(NearPos(tr.Doc(), end, 1))
	}
	return nil
}

// mapSince maps pos through the steps added after the first n.
func (tr *Transaction) mapSince(n, pos, assoc int) int {
	return tr.Mapping().Slice(n).Map(pos, assoc)
}
