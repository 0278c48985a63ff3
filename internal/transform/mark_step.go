package transform

import (
	"github.com/dshills/inkwell/internal/model"
)

// AddMarkStep adds Mark to the inline content in [From, To).
type AddMarkStep struct {
	From, To int
	Mark     *model.Mark
}

// Kind implements Step.
func (s *AddMarkStep) Kind() StepKind { return StepAddMark }

// Apply implements Step.
func (s *AddMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	return applyMarks(doc, s.From, s.To, StepAddMark, func(n *model.Node) *model.Node {
		return n.Mark(s.Mark.AddToSet(n.Marks()))
	})
}

// Map implements Step.
func (s *AddMarkStep) Map() *StepMap { return EmptyMap }

// Invert implements Step.
func (s *AddMarkStep) Invert(*model.Node) Step {
	return &RemoveMarkStep{From: s.From, To: s.To, Mark: s.Mark}
}

// MapThrough implements Step.
func (s *AddMarkStep) MapThrough(m Mappable) Step {
	from := m.MapResult(s.From, 1)
	to := m.MapResult(s.To, -1)
	if (from.Deleted() && to.Deleted()) || from.Pos >= to.Pos {
		return noop(from.Pos)
	}
	return &AddMarkStep{From: from.Pos, To: to.Pos, Mark: s.Mark}
}

// RemoveMarkStep removes Mark from the inline content in [From, To).
type RemoveMarkStep struct {
	From, To int
	Mark     *model.Mark
}

// Kind implements Step.
func (s *RemoveMarkStep) Kind() StepKind { return StepRemoveMark }

// Apply implements Step.
func (s *RemoveMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	return applyMarks(doc, s.From, s.To, StepRemoveMark, func(n *model.Node) *model.Node {
		return n.Mark(s.Mark.RemoveFromSet(n.Marks()))
	})
}

// Map implements Step.
func (s *RemoveMarkStep) Map() *StepMap { return EmptyMap }

// Invert implements Step.
func (s *RemoveMarkStep) Invert(*model.Node) Step {
	return &AddMarkStep{From: s.From, To: s.To, Mark: s.Mark}
}

// MapThrough implements Step.
func (s *RemoveMarkStep) MapThrough(m Mappable) Step {
	from := m.MapResult(s.From, 1)
	to := m.MapResult(s.To, -1)
	if (from.Deleted() && to.Deleted()) || from.Pos >= to.Pos {
		return noop(from.Pos)
	}
	return &RemoveMarkStep{From: from.Pos, To: to.Pos, Mark: s.Mark}
}

// applyMarks rewrites the marks of inline nodes in [from, to) whose parent
// allows marks, then splices the result back into doc.
func applyMarks(doc *model.Node, from, to int, kind StepKind, fn func(*model.Node) *model.Node) (*model.Node, error) {
	if from >= to {
		return doc, nil
	}
	old, err := doc.Slice(from, to)
	if err != nil {
		return nil, stepFailed(kind, err)
	}
	r, err := doc.Resolve(from)
	if err != nil {
		return nil, stepFailed(kind, err)
	}
	parent := r.Node(r.SharedDepth(to))
	content := mapFragment(old.Content, parent, func(n, parent *model.Node) *model.Node {
		if !parent.Type().AllowsMarks() {
			return n
		}
		return fn(n)
	})
	out, err := doc.Replace(from, to, model.Slice{Content: content, OpenStart: old.OpenStart, OpenEnd: old.OpenEnd})
	if err != nil {
		return nil, stepFailed(kind, err)
	}
	return out, nil
}
