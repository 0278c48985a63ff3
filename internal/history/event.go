package history

import (
	"time"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
	"github.com/dshills/inkwell/internal/transform"
)

// Event is one undoable unit.
type Event struct {
	// Steps undo the event when applied in order.
	Steps []transform.Step
	// Selection is the selection to restore after undoing.
	Selection state.SelectionJSON
	Time      time.Time
	InputType string
}

func direction(redo bool) string {
	if redo {
		return "redo"
	}
	return "undo"
}

// invertSteps returns the steps undoing tr, in application order.
func invertSteps(tr *transform.Transform) []transform.Step {
	steps := tr.Steps()
	docs := tr.Docs()
	out := make([]transform.Step, len(steps))
	for i, s := range steps {
		out[len(steps)-1-i] = s.Invert(docs[i])
	}
	return out
}

// rebase maps the event's steps over a change described by m, which applies
// to the document the event's first step applies to. It returns the
// rebased event and the mapping for whatever applies after the event.
func (e *Event) rebase(m *transform.Mapping) (*Event, *transform.Mapping) {
	cur := m
	steps := make([]transform.Step, 0, len(e.Steps))
	for _, s := range e.Steps {
		mapped := s.MapThrough(cur)
		next := transform.NewMapping(s.Map().Invert())
		next.AppendMapping(cur)
		next.AppendMap(mapped.Map())
		cur = next
		if !transform.IsNoop(mapped) {
			steps = append(steps, mapped)
		}
	}
	sel := e.Selection
	sel.Anchor = cur.Map(sel.Anchor, 1)
	sel.Head = cur.Map(sel.Head, 1)
	return &Event{Steps: steps, Selection: sel, Time: e.Time, InputType: e.InputType}, cur
}

// restoreSelection returns the event's selection in doc, or the nearest
// valid one when it no longer fits.
func restoreSelection(doc *model.Node, j state.SelectionJSON) state.Selection {
	if sel, err := state.SelectionFromJSON(doc, j); err == nil {
		return sel
	}
	return state.NearPos(doc, j.Head, 1)
}
