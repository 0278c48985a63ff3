package transform

import (
	"fmt"

	"github.com/dshills/inkwell/internal/model"
)

// NodeMarkupStep changes the type and attributes of the node at Pos while
// keeping its content and marks. Positions do not move.
type NodeMarkupStep struct {
	Pos   int
	Type  model.NodeKind
	Attrs model.Attrs
}

// Kind implements Step.
func (s *NodeMarkupStep) Kind() StepKind { return StepSetNodeMarkup }

// Apply implements Step.
func (s *NodeMarkupStep) Apply(doc *model.Node) (*model.Node, error) {
	node := doc.NodeAt(s.Pos)
	if node == nil || node.IsText() {
		return nil, stepFailed(StepSetNodeMarkup, fmt.Errorf("%w: %d", ErrNoTarget, s.Pos))
	}
	typ := doc.Type().Schema().NodeType(s.Type)
	updated, err := typ.Create(s.Attrs, node.Content(), node.Marks())
	if err != nil {
		return nil, stepFailed(StepSetNodeMarkup, err)
	}
	out, err := doc.Replace(s.Pos, s.Pos+node.NodeSize(), model.NewSlice(model.NewFragment(updated)))
	if err != nil {
		return nil, stepFailed(StepSetNodeMarkup, err)
	}
	return out, nil
}

// Map implements Step.
func (s *NodeMarkupStep) Map() *StepMap { return EmptyMap }

// Invert implements Step.
func (s *NodeMarkupStep) Invert(doc *model.Node) Step {
	node := doc.NodeAt(s.Pos)
	if node == nil {
		return noop(s.Pos)
	}
	return &NodeMarkupStep{Pos: s.Pos, Type: node.Kind(), Attrs: node.Attrs()}
}

// MapThrough implements Step.
func (s *NodeMarkupStep) MapThrough(m Mappable) Step {
	r := m.MapResult(s.Pos, 1)
	if r.DeletedAfter() {
		return noop(r.Pos)
	}
	return &NodeMarkupStep{Pos: r.Pos, Type: s.Type, Attrs: s.Attrs}
}
