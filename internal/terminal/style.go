package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkwell/internal/model"
)

var (
	styleText        = tcell.StyleDefault
	styleGutter      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCode        = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLeaf        = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	stylePlaceholder = tcell.StyleDefault.Foreground(tcell.ColorGray).Italic(true)
	styleStatus      = tcell.StyleDefault.Reverse(true)
)

// markStyle applies marks on top of base.
func markStyle(base tcell.Style, marks model.MarkSet) tcell.Style {
	s := base
	for _, m := range marks {
		switch m.Kind() {
		case model.Bold:
			s = s.Bold(true)
		case model.Italic:
			s = s.Italic(true)
		case model.Underline:
			s = s.Underline(true)
		case model.Strike:
			s = s.StrikeThrough(true)
		case model.Code:
			s = s.Foreground(tcell.ColorGreen)
		case model.Highlight:
			s = s.Background(tcell.ColorOlive)
		case model.Link:
			s = s.Foreground(tcell.ColorBlue).Underline(true)
		}
	}
	return s
}

// blockStyle is the base style of a row.
func blockStyle(r row) tcell.Style {
	switch {
	case r.code:
		return styleCode
	case r.node.Kind() == model.Heading:
		return styleText.Bold(true)
	case r.node.Kind() == model.Figcaption:
		return styleText.Italic(true)
	}
	return styleText
}
