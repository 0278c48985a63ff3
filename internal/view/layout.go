package view

import (
	"fmt"
	"math"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/plugin"
)

// Layout maps between document positions and viewport coordinates. Hosts
// that measure real rendered output supply their own.
type Layout interface {
	CoordsAtPos(doc *model.Node, pos int) (plugin.Rect, error)
	PosAtCoords(doc *model.Node, x, y float64) (int, bool)
}

// Default grid metrics.
const (
	DefaultCharWidth  = 8
	DefaultLineHeight = 20
)

// GridLayout lays the document out as fixed-size cells: every textblock
// and every leaf block takes one line, and every position inside a
// textblock is one character wide.
type GridLayout struct {
	CharWidth  float64
	LineHeight float64
}

// NewGridLayout returns a grid layout with the default metrics.
func NewGridLayout() *GridLayout {
	return &GridLayout{CharWidth: DefaultCharWidth, LineHeight: DefaultLineHeight}
}

// line is the position range one layout line covers.
type line struct {
	start, end int
}

func lines(doc *model.Node) []line {
	var out []line
	doc.Descendants(func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		switch {
		case n.IsTextblock():
			out = append(out, line{start: pos + 1, end: pos + 1 + n.Content().Size()})
			return false
		case n.IsLeaf():
			out = append(out, line{start: pos, end: pos})
			return false
		}
		return true
	})
	return out
}

// CoordsAtPos implements Layout. A position between blocks takes the line
// of the block after it.
func (g *GridLayout) CoordsAtPos(doc *model.Node, pos int) (plugin.Rect, error) {
	if pos < 0 || pos > doc.Content().Size() {
		return plugin.Rect{}, fmt.Errorf("%w: %d", model.ErrPositionOutOfRange, pos)
	}
	ls := lines(doc)
	i := 0
	for i < len(ls)-1 && pos > ls[i].end {
		i++
	}
	var x float64
	if len(ls) > 0 && pos > ls[i].start {
		x = float64(min(pos, ls[i].end)-ls[i].start) * g.CharWidth
	}
	top := float64(i) * g.LineHeight
	return plugin.Rect{Left: x, Top: top, Right: x, Bottom: top + g.LineHeight}, nil
}

// PosAtCoords implements Layout. Points left of or beyond a line clamp to
// its ends; points above or below the document miss.
func (g *GridLayout) PosAtCoords(doc *model.Node, x, y float64) (int, bool) {
	if y < 0 {
		return 0, false
	}
	ls := lines(doc)
	i := int(y / g.LineHeight)
	if i >= len(ls) {
		return 0, false
	}
	l := ls[i]
	col := int(math.Round(x / g.CharWidth))
	return l.start + max(0, min(col, l.end-l.start)), true
}
