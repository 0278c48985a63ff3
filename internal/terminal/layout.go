package terminal

import (
	"strconv"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/view"
)

// GutterWidth is the number of cells left of the text.
const GutterWidth = 4

// Layout returns the view layout matching the terminal grid.
func Layout() *view.GridLayout {
	return &view.GridLayout{CharWidth: 1, LineHeight: 1}
}

// row is one screen line: a textblock's content or a leaf block.
type row struct {
	node   *model.Node
	start  int
	marker string
	code   bool
}

// rows lists the document's lines in the order GridLayout counts them.
func rows(doc *model.Node) []row {
	var out []row
	var walk func(n *model.Node, contentStart int, marker string, code bool)
	walk = func(n *model.Node, contentStart int, marker string, code bool) {
		pos := contentStart
		for i, child := range n.Content().Children() {
			m, c := childMarker(n, child, i, marker), code || child.Kind() == model.CodeBlock
			switch {
			case child.IsTextblock():
				out = append(out, row{node: child, start: pos + 1, marker: m, code: c})
			case child.IsLeaf():
				out = append(out, row{node: child, start: pos, marker: m})
			default:
				walk(child, pos+1, m, c)
			}
			pos += child.NodeSize()
		}
	}
	walk(doc, 0, "", false)
	return out
}

// childMarker picks the gutter text for child. Only the first line of a
// list item carries its bullet.
func childMarker(parent, child *model.Node, index int, inherited string) string {
	switch child.Kind() {
	case model.Heading:
		return "H" + strconv.Itoa(child.Attrs().GetInt("level"))
	case model.CodeBlock:
		return "│"
	case model.Blockquote, model.Aside:
		return ">"
	case model.ListItem:
		if parent.Kind() == model.OrderedList {
			return strconv.Itoa(parent.Attrs().GetInt("start")+index) + "."
		}
		return "•"
	}
	if parent.Kind() == model.ListItem && index > 0 {
		return ""
	}
	return inherited
}
