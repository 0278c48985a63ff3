package transform

import (
	"github.com/dshills/inkwell/internal/model"
)

// StepKind identifies a step type.
type StepKind uint8

const (
	StepReplace StepKind = iota
	StepReplaceAround
	StepAddMark
	StepRemoveMark
	StepSetNodeMarkup
)

var stepKindNames = [...]string{
	StepReplace:       "replace",
	StepReplaceAround: "replaceAround",
	StepAddMark:       "addMark",
	StepRemoveMark:    "removeMark",
	StepSetNodeMarkup: "setNodeMarkup",
}

// String returns the step kind name.
func (k StepKind) String() string {
	if int(k) < len(stepKindNames) {
		return stepKindNames[k]
	}
	return "unknown"
}

// Step is an atomic, invertible document change.
type Step interface {
	// Apply applies the step to doc, returning the new document.
	Apply(doc *model.Node) (*model.Node, error)

	// Map returns the position map of the step.
	Map() *StepMap

	// Invert returns the step that undoes this one. doc is the document the
	// step was applied to.
	Invert(doc *model.Node) Step

	// MapThrough rebases the step through m. A step whose target was
	// deleted comes back as a no-op.
	MapThrough(m Mappable) Step

	// Kind identifies the step type.
	Kind() StepKind
}

// IsNoop reports whether s changes nothing.
func IsNoop(s Step) bool {
	switch st := s.(type) {
	case *ReplaceStep:
		return st.From == st.To && st.Slice.Content.Size() == 0
	case *AddMarkStep:
		return st.From >= st.To
	case *RemoveMarkStep:
		return st.From >= st.To
	}
	return false
}

func noop(pos int) Step {
	return &ReplaceStep{From: pos, To: pos}
}

// mapFragment rebuilds f bottom up, applying fn to every inline node.
func mapFragment(f model.Fragment, parent *model.Node, fn func(n, parent *model.Node) *model.Node) model.Fragment {
	mapped := make([]*model.Node, f.ChildCount())
	for i, child := range f.Children() {
		if child.Content().Size() > 0 {
			child = child.Copy(mapFragment(child.Content(), child, fn))
		}
		if child.IsInline() {
			child = fn(child, parent)
		}
		mapped[i] = child
	}
	return model.NewFragment(mapped...)
}
