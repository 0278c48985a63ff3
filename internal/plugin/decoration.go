package plugin

import (
	"slices"

	"golang.org/x/net/html"

	"github.com/dshills/inkwell/internal/transform"
)

// DecorationKind identifies what a decoration annotates.
type DecorationKind uint8

const (
	// WidgetDecoration inserts an element at a position.
	WidgetDecoration DecorationKind = iota
	// InlineDecoration adds attributes to the inline content of a range.
	InlineDecoration
	// NodeDecoration adds attributes to a single node.
	NodeDecoration
)

// String returns the kind's name.
func (k DecorationKind) String() string {
	switch k {
	case WidgetDecoration:
		return "widget"
	case InlineDecoration:
		return "inline"
	case NodeDecoration:
		return "node"
	default:
		return "unknown"
	}
}

// Decoration is a visual annotation computed from the state. It never
// changes the document.
type Decoration struct {
	Kind DecorationKind
	From int
	To   int
	// Attrs are the DOM attributes for inline and node decorations.
	Attrs map[string]string
	// ToDOM builds a widget's element.
	ToDOM func() *html.Node
	// Key identifies a widget so the renderer can reuse its element.
	Key string
	// Side orders widgets at the same position: negative goes before
	// content, positive after.
	Side int
}

// Widget returns a widget decoration at pos.
func Widget(pos int, key string, toDOM func() *html.Node) Decoration {
	return Decoration{Kind: WidgetDecoration, From: pos, To: pos, Key: key, ToDOM: toDOM}
}

// Inline returns an inline decoration over [from, to).
func Inline(from, to int, attrs map[string]string) Decoration {
	return Decoration{Kind: InlineDecoration, From: from, To: to, Attrs: attrs}
}

// NodeDeco returns a node decoration for the node spanning [from, to).
func NodeDeco(from, to int, attrs map[string]string) Decoration {
	return Decoration{Kind: NodeDecoration, From: from, To: to, Attrs: attrs}
}

// DecorationSet is an immutable set of decorations ordered by position.
type DecorationSet struct {
	decos []Decoration
}

// EmptyDecorations is the empty set.
var EmptyDecorations = DecorationSet{}

// NewDecorationSet returns a set holding decos.
func NewDecorationSet(decos ...Decoration) DecorationSet {
	if len(decos) == 0 {
		return EmptyDecorations
	}
	sorted := slices.Clone(decos)
	slices.SortStableFunc(sorted, compareDecorations)
	return DecorationSet{decos: sorted}
}

func compareDecorations(a, b Decoration) int {
	if a.From != b.From {
		return a.From - b.From
	}
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	return a.Side - b.Side
}

// Len returns the number of decorations.
func (s DecorationSet) Len() int { return len(s.decos) }

// Empty reports whether the set holds nothing.
func (s DecorationSet) Empty() bool { return len(s.decos) == 0 }

// All returns the decorations in order. The slice must not be modified.
func (s DecorationSet) All() []Decoration { return s.decos }

// Find returns the decorations touching [from, to]. Widgets match when
// their position is inside the range, including its ends.
func (s DecorationSet) Find(from, to int) []Decoration {
	var out []Decoration
	for _, d := range s.decos {
		if d.From > to {
			break
		}
		if d.To >= from {
			out = append(out, d)
		}
	}
	return out
}

// OfKind returns the decorations of kind k.
func (s DecorationSet) OfKind(k DecorationKind) []Decoration {
	var out []Decoration
	for _, d := range s.decos {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Map moves the set through m. Inline and node decorations whose content
// was deleted are dropped, as are widgets whose position was deleted
// across.
func (s DecorationSet) Map(m transform.Mappable) DecorationSet {
	var out []Decoration
	for _, d := range s.decos {
		switch d.Kind {
		case WidgetDecoration:
			r := m.MapResult(d.From, d.Side)
			if r.DeletedAcross() {
				continue
			}
			d.From, d.To = r.Pos, r.Pos
		default:
			from := m.Map(d.From, 1)
			to := m.Map(d.To, -1)
			if from >= to {
				continue
			}
			d.From, d.To = from, to
		}
		out = append(out, d)
	}
	return NewDecorationSet(out...)
}

// Union merges sets into one.
func Union(sets ...DecorationSet) DecorationSet {
	var all []Decoration
	for _, s := range sets {
		all = append(all, s.decos...)
	}
	return NewDecorationSet(all...)
}
