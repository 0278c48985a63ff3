package transform

import (
	"errors"
	"fmt"

	"github.com/dshills/inkwell/internal/model"
)

var errStructure = errors.New("structure replace would overwrite content")

// ReplaceStep replaces [From, To) with Slice. A structure step refuses to
// overwrite content and only moves node boundaries.
type ReplaceStep struct {
	From, To  int
	Slice     model.Slice
	Structure bool
}

// NewReplaceStep returns a replace step.
func NewReplaceStep(from, to int, slice model.Slice) *ReplaceStep {
	return &ReplaceStep{From: from, To: to, Slice: slice}
}

// Kind implements Step.
func (s *ReplaceStep) Kind() StepKind { return StepReplace }

// Apply implements Step.
func (s *ReplaceStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.Structure && contentBetween(doc, s.From, s.To) {
		return nil, stepFailed(StepReplace, errStructure)
	}
	if s.From == s.To && s.Slice.Content.Size() == 0 {
		return doc, nil
	}
	out, err := doc.Replace(s.From, s.To, s.Slice)
	if err != nil {
		return nil, stepFailed(StepReplace, err)
	}
	return out, nil
}

// Map implements Step.
func (s *ReplaceStep) Map() *StepMap {
	if s.From == s.To && s.Slice.Size() == 0 {
		return EmptyMap
	}
	return NewStepMap(s.From, s.To-s.From, s.Slice.Size())
}

// Invert implements Step.
func (s *ReplaceStep) Invert(doc *model.Node) Step {
	removed, err := doc.Slice(s.From, s.To)
	if err != nil {
		return noop(s.From)
	}
	return &ReplaceStep{From: s.From, To: s.From + s.Slice.Size(), Slice: removed}
}

// MapThrough implements Step.
func (s *ReplaceStep) MapThrough(m Mappable) Step {
	from := m.MapResult(s.From, 1)
	to := m.MapResult(s.To, -1)
	if from.DeletedAcross() && to.DeletedAcross() {
		return noop(to.Pos)
	}
	return &ReplaceStep{From: from.Pos, To: max(from.Pos, to.Pos), Slice: s.Slice, Structure: s.Structure}
}

// String returns a debug representation.
func (s *ReplaceStep) String() string {
	return fmt.Sprintf("replace(%d, %d, %s)", s.From, s.To, s.Slice)
}

// ReplaceAroundStep replaces [From, To) with Slice while keeping the content
// in [GapFrom, GapTo), which is inserted into the slice at Insert. It wraps
// and unwraps content without touching it.
type ReplaceAroundStep struct {
	From, To       int
	GapFrom, GapTo int
	Slice          model.Slice
	Insert         int
	Structure      bool
}

// Kind implements Step.
func (s *ReplaceAroundStep) Kind() StepKind { return StepReplaceAround }

// Apply implements Step.
func (s *ReplaceAroundStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.Structure && (contentBetween(doc, s.From, s.GapFrom) || contentBetween(doc, s.GapTo, s.To)) {
		return nil, stepFailed(StepReplaceAround, errStructure)
	}
	gap, err := doc.Slice(s.GapFrom, s.GapTo)
	if err != nil {
		return nil, stepFailed(StepReplaceAround, err)
	}
	if gap.OpenStart != 0 || gap.OpenEnd != 0 {
		return nil, stepFailed(StepReplaceAround, errors.New("gap is not a flat range"))
	}
	inserted, ok := s.Slice.InsertAt(s.Insert, gap.Content)
	if !ok {
		return nil, stepFailed(StepReplaceAround, errors.New("content does not fit in gap"))
	}
	out, err := doc.Replace(s.From, s.To, inserted)
	if err != nil {
		return nil, stepFailed(StepReplaceAround, err)
	}
	return out, nil
}

// Map implements Step.
func (s *ReplaceAroundStep) Map() *StepMap {
	return NewStepMap(
		s.From, s.GapFrom-s.From, s.Insert,
		s.GapTo, s.To-s.GapTo, s.Slice.Size()-s.Insert,
	)
}

// Invert implements Step.
func (s *ReplaceAroundStep) Invert(doc *model.Node) Step {
	gap := s.GapTo - s.GapFrom
	removed, err := doc.Slice(s.From, s.To)
	if err != nil {
		return noop(s.From)
	}
	removed, err = removed.RemoveBetween(s.GapFrom-s.From, s.GapTo-s.From)
	if err != nil {
		return noop(s.From)
	}
	return &ReplaceAroundStep{
		From:      s.From,
		To:        s.From + s.Slice.Size() + gap,
		GapFrom:   s.From + s.Insert,
		GapTo:     s.From + s.Insert + gap,
		Slice:     removed,
		Insert:    s.GapFrom - s.From,
		Structure: s.Structure,
	}
}

// MapThrough implements Step.
func (s *ReplaceAroundStep) MapThrough(m Mappable) Step {
	from := m.MapResult(s.From, 1)
	to := m.MapResult(s.To, -1)
	gapFrom := from.Pos
	if s.From != s.GapFrom {
		gapFrom = m.Map(s.GapFrom, -1)
	}
	gapTo := to.Pos
	if s.To != s.GapTo {
		gapTo = m.Map(s.GapTo, 1)
	}
	if (from.DeletedAcross() && to.DeletedAcross()) || gapFrom < from.Pos || gapTo > to.Pos {
		return noop(from.Pos)
	}
	return &ReplaceAroundStep{
		From: from.Pos, To: to.Pos, GapFrom: gapFrom, GapTo: gapTo,
		Slice: s.Slice, Insert: s.Insert, Structure: s.Structure,
	}
}

// contentBetween reports whether [from, to) holds anything other than node
// boundaries.
func contentBetween(doc *model.Node, from, to int) bool {
	r, err := doc.Resolve(from)
	if err != nil {
		return true
	}
	dist := to - from
	depth := r.Depth
	for dist > 0 && depth > 0 && r.IndexAfter(depth) == r.Node(depth).ChildCount() {
		depth--
		dist--
	}
	if dist > 0 {
		next := r.Node(depth).MaybeChild(r.IndexAfter(depth))
		for dist > 0 {
			if next == nil || next.IsLeaf() {
				return true
			}
			next = next.FirstChild()
			dist--
		}
	}
	return false
}
