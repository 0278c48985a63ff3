package model

import (
	"fmt"
	"strings"
)

// Mark is a (type, attrs) pair applied to inline content. Marks are immutable.
type Mark struct {
	typ   *MarkType
	attrs Attrs
}

// Type returns the mark type.
func (m *Mark) Type() *MarkType { return m.typ }

// Kind returns the mark kind.
func (m *Mark) Kind() MarkKind { return m.typ.Kind }

// Attrs returns the attributes. The map must not be modified.
func (m *Mark) Attrs() Attrs { return m.attrs }

// Eq reports whether m and o have the same type and attributes.
func (m *Mark) Eq(o *Mark) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil {
		return false
	}
	return m.typ == o.typ && m.attrs.Eq(o.attrs)
}

// AddToSet returns set with m added. An existing mark of the same type is
// replaced; the result stays in rank order.
func (m *Mark) AddToSet(set MarkSet) MarkSet {
	out := make(MarkSet, 0, len(set)+1)
	placed := false
	for _, other := range set {
		if other.typ == m.typ {
			if !placed {
				out = append(out, m)
				placed = true
			}
			continue
		}
		if !placed && other.typ.Kind > m.typ.Kind {
			out = append(out, m)
			placed = true
		}
		out = append(out, other)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// RemoveFromSet returns set without m.
func (m *Mark) RemoveFromSet(set MarkSet) MarkSet {
	for i, other := range set {
		if other.Eq(m) {
			out := make(MarkSet, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	return set
}

// IsInSet reports whether an equal mark is in set.
func (m *Mark) IsInSet(set MarkSet) bool {
	for _, other := range set {
		if other.Eq(m) {
			return true
		}
	}
	return false
}

// String returns a debug representation.
func (m *Mark) String() string {
	if len(m.attrs) == 0 {
		return m.typ.Name
	}
	var b strings.Builder
	b.WriteString(m.typ.Name)
	b.WriteString("(")
	for i, k := range m.attrs.Keys() {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%s=%v", k, m.attrs[k])
	}
	b.WriteString(")")
	return b.String()
}

// MarkSet is a rank-ordered set of marks with at most one mark per type.
type MarkSet []*Mark

// Eq reports whether both sets hold equal marks.
func (s MarkSet) Eq(o MarkSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Eq(o[i]) {
			return false
		}
	}
	return true
}

// Find returns the mark of kind in the set.
func (s MarkSet) Find(kind MarkKind) (*Mark, bool) {
	for _, m := range s {
		if m.typ.Kind == kind {
			return m, true
		}
	}
	return nil, false
}

// Has reports whether the set holds a mark of kind.
func (s MarkSet) Has(kind MarkKind) bool {
	_, ok := s.Find(kind)
	return ok
}

// RemoveKind returns the set without marks of kind.
func (s MarkSet) RemoveKind(kind MarkKind) MarkSet {
	for i, m := range s {
		if m.typ.Kind == kind {
			out := make(MarkSet, 0, len(s)-1)
			out = append(out, s[:i]...)
			return append(out, s[i+1:]...)
		}
	}
	return s
}

// NewMarkSet sorts and deduplicates marks.
func NewMarkSet(marks ...*Mark) MarkSet {
	var set MarkSet
	for _, m := range marks {
		set = m.AddToSet(set)
	}
	return set
}
