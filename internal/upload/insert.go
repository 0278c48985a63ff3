package upload

import (
	"github.com/dshills/inkwell/internal/commands"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

// Position is a document position kept current while an upload runs,
// normally a *view.TrackedPos.
type Position interface {
	Pos() int
	Deleted() bool
}

// FigureType is the figure type of uploaded images.
const FigureType = "image"

// Figure builds the figure for an uploaded image: the image followed by a
// caption holding the original file name.
func Figure(schema *model.Schema, res Result) (*model.Node, error) {
	img, err := schema.Node(model.Image, model.Attrs{"src": res.URL}, model.Fragment{}, nil)
	if err != nil {
		return nil, err
	}
	content := []*model.Node{img}
	if res.OriginalFilename != "" {
		caption, err := schema.Node(model.Figcaption, nil,
			model.NewFragment(schema.Text(res.OriginalFilename, nil)), nil)
		if err != nil {
			return nil, err
		}
		content = append(content, caption)
	}
	return schema.Node(model.Figure, model.Attrs{"type": FigureType}, model.NewFragment(content...), nil)
}

// InsertCommand inserts the figure for res at pos. A position that was
// deleted while the upload ran falls back to the nearest valid one.
func InsertCommand(pos Position, res Result) state.Command {
	return func(st *state.State, dispatch func(*state.Transaction)) bool {
		fig, err := Figure(st.Schema(), res)
		if err != nil {
			return false
		}
		doc := st.Doc()
		at := max(0, min(pos.Pos(), doc.Content().Size()))
		bias := 1
		if pos.Deleted() {
			bias = -1
		}
		tr := st.Tr()
		tr.SetSelection(state.NearPos(doc, at, bias))
		if err := commands.InsertBlock(tr, fig); err != nil {
			return false
		}
		if dispatch != nil {
			dispatch(tr.SetMeta(state.MetaInputType, "insertFromUpload").ScrollIntoView())
		}
		return true
	}
}
