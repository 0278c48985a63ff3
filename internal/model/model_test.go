package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/model"
	. "github.com/dshills/inkwell/internal/testutil"
)

func TestSchemaRejectsInvalidContent(t *testing.T) {
	s := model.DefaultSchema()

	_, err := s.Node(model.Doc, nil, model.Fragment{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrSchemaViolation))

	var sv *model.SchemaViolation
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, "doc", sv.Type)

	_, err = s.Node(model.BulletList, nil, model.NewFragment(P("x")), nil)
	assert.ErrorIs(t, err, model.ErrSchemaViolation)

	_, err = s.Node(model.Paragraph, nil, model.NewFragment(P("nested")), nil)
	assert.ErrorIs(t, err, model.ErrSchemaViolation)
}

func TestSchemaRejectsInvalidAttrs(t *testing.T) {
	s := model.DefaultSchema()
	tests := []struct {
		name  string
		kind  model.NodeKind
		attrs model.Attrs
	}{
		{"heading level too high", model.Heading, model.Attrs{"level": 9}},
		{"heading level wrong type", model.Heading, model.Attrs{"level": "2"}},
		{"unknown attribute", model.Paragraph, model.Attrs{"color": "red"}},
		{"image without src", model.Image, model.Attrs{"title": "x"}},
		{"image with empty src", model.Image, model.Attrs{"src": ""}},
		{"float outside enum", model.Aside, model.Attrs{"float": "center"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := model.Fragment{}
			if tt.kind == model.Aside {
				content = model.NewFragment(P("x"))
			}
			_, err := s.Node(tt.kind, tt.attrs, content, nil)
			assert.ErrorIs(t, err, model.ErrSchemaViolation)
		})
	}
}

func TestDefaultsAreFilled(t *testing.T) {
	h := H(2, "title")
	assert.Equal(t, 2, h.Attrs().GetInt("level"))

	ol, err := model.DefaultSchema().Node(model.OrderedList, nil, model.NewFragment(LI(P("a"))), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ol.Attr("start"))
}

func TestEmptyDoc(t *testing.T) {
	doc := model.DefaultSchema().EmptyDoc()
	require.Equal(t, 1, doc.ChildCount())
	assert.Equal(t, model.Paragraph, doc.Child(0).Kind())
	assert.Equal(t, 2, doc.Content().Size())
}

func TestResolve(t *testing.T) {
	doc := Doc(P("ab"), P("cd"))
	require.Equal(t, 8, doc.Content().Size())

	r, err := doc.Resolve(2)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Depth)
	assert.Equal(t, model.Paragraph, r.Parent().Kind())
	assert.Equal(t, 1, r.ParentOffset)
	assert.Equal(t, 1, r.TextOffset())
	assert.Equal(t, 1, r.Start(1))
	assert.Equal(t, 3, r.End(1))
	assert.Equal(t, 0, r.Before(1))
	assert.Equal(t, 4, r.After(1))
	assert.Equal(t, "a", r.NodeBefore().Text())
	assert.Equal(t, "b", r.NodeAfter().Text())

	r, err = doc.Resolve(4)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Depth)
	assert.Equal(t, 1, r.Index(0))
	assert.Equal(t, model.Paragraph, r.NodeAfter().Kind())

	_, err = doc.Resolve(9)
	assert.ErrorIs(t, err, model.ErrPositionOutOfRange)
}

func TestNodeAt(t *testing.T) {
	img := Img("https://example.com/a.png", "")
	doc := Doc(P("a", img), P("b"))
	assert.Equal(t, model.Paragraph, doc.NodeAt(0).Kind())
	assert.Same(t, img, doc.NodeAt(2))
	assert.Equal(t, "b", doc.NodeAt(5).Text())
	assert.Nil(t, doc.NodeAt(doc.Content().Size()))
}

func TestReplaceJoinsParagraphs(t *testing.T) {
	doc := Doc(P("ab"), P("cd"))
	out, err := doc.Replace(2, 6, model.Slice{})
	require.NoError(t, err)
	assert.True(t, out.Eq(Doc(P("ad"))), out.String())

	// The original is untouched.
	assert.True(t, doc.Eq(Doc(P("ab"), P("cd"))))
}

func TestReplaceInsertsText(t *testing.T) {
	doc := Doc(P("ac"))
	out, err := doc.Replace(2, 2, model.NewSlice(model.NewFragment(Schema.Text("b", nil))))
	require.NoError(t, err)
	assert.True(t, out.Eq(Doc(P("abc"))))
	assert.Equal(t, 1, out.Child(0).ChildCount(), "adjacent text is merged")
}

func TestReplaceRejectsInvalidStructure(t *testing.T) {
	doc := Doc(P("a"))
	_, err := doc.Replace(0, 0, model.NewSlice(model.NewFragment(LI(P("x")))))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidReplace)
	assert.ErrorIs(t, err, model.ErrSchemaViolation)

	_, err = doc.Replace(0, 3, model.Slice{})
	assert.ErrorIs(t, err, model.ErrSchemaViolation, "doc cannot become empty")
}

func TestSliceRoundTrip(t *testing.T) {
	doc := Doc(P("hello"), P("world"))
	slice, err := doc.Slice(3, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, slice.OpenStart)
	assert.Equal(t, 1, slice.OpenEnd)

	out, err := doc.Replace(3, 10, slice)
	require.NoError(t, err)
	assert.True(t, out.Eq(doc))
}

func TestCanInsert(t *testing.T) {
	doc := Doc(P("ab"), Code("x := 1"))
	assert.True(t, doc.CanInsert(2, model.Image))
	assert.True(t, doc.CanInsert(2, model.HorizontalRule), "blocks split out of the paragraph")
	assert.False(t, doc.CanInsert(6, model.Image), "no inline nodes in code")
	assert.False(t, doc.CanInsert(0, model.ListItem))
	assert.True(t, doc.CanInsert(4, model.BulletList))
}

func TestMarkSetDeduplicatesByType(t *testing.T) {
	s := model.DefaultSchema()
	a := s.MustMark(model.Link, model.Attrs{"href": "https://a.example"})
	b := s.MustMark(model.Link, model.Attrs{"href": "https://b.example"})
	bold := s.MustMark(model.Bold, nil)

	set := bold.AddToSet(nil)
	set = a.AddToSet(set)
	set = b.AddToSet(set)
	require.Len(t, set, 2)
	assert.Equal(t, model.Link, set[0].Kind(), "marks are kept in rank order")
	assert.Equal(t, "https://b.example", set[0].Attrs().GetString("href"))
	assert.True(t, bold.IsInSet(set))
	assert.Len(t, bold.RemoveFromSet(set), 1)
}

func TestTextBetween(t *testing.T) {
	doc := Doc(P("one"), P("two", Img("https://example.com/x.png", "")))
	assert.Equal(t, "one\ntwo", doc.TextBetween(0, 10, "\n", ""))
	assert.Equal(t, "ne\ntwo*", doc.TextBetween(2, doc.Content().Size(), "\n", "*"))
	assert.Equal(t, "onetwo", doc.TextContent())
}

func TestJSONRejectsUnknownTypes(t *testing.T) {
	s := model.DefaultSchema()
	_, err := s.ParseJSON([]byte(`{"type":"doc","content":[{"type":"marquee"}]}`))
	assert.ErrorIs(t, err, model.ErrUnknownType)

	_, err = s.ParseJSON([]byte(`{"type":"doc","content":[{"type":"paragraph","attrs":{"x":1}}]}`))
	assert.ErrorIs(t, err, model.ErrSchemaViolation)

	_, err = s.ParseJSON([]byte(`{"type":"doc","content":[{"type":"heading","attrs":{"level":2.5}}]}`))
	assert.ErrorIs(t, err, model.ErrSchemaViolation)
}

func TestJSONRoundTripAllKinds(t *testing.T) {
	s := model.DefaultSchema()
	link := s.MustMark(model.Link, model.Attrs{"href": "https://example.com", "title": "t", "target": "_blank"})
	hl := s.MustMark(model.Highlight, model.Attrs{"color": "#ff0"})
	allMarks := model.NewMarkSet(link, hl,
		s.MustMark(model.Bold, nil), s.MustMark(model.Italic, nil),
		s.MustMark(model.Underline, nil), s.MustMark(model.Strike, nil))

	fullImage := Node(model.Image, model.Attrs{
		"src": "https://example.com/cat.png", "alt": "cat", "title": "Cat",
		"path": "uploads/cat.png", "width": 320,
	})
	embed := Node(model.Embed, model.Attrs{"src": "https://video.example/v", "width": 640, "height": 360})

	docs := map[string]*model.Node{
		"full": Doc(
			H(3, "Title"),
			P(Schema.Text("styled", allMarks), Node(model.HardBreak, nil), Marked("code", model.Code), fullImage),
			Node(model.Blockquote, model.Attrs{"float": "left", "variant": "punchline"}, P("q")),
			Node(model.OrderedList, model.Attrs{"start": 3}, LI(P("one"), UL(LI(P("nested"))))),
			Node(model.CodeBlock, model.Attrs{"language": "go"}, "x := 1"),
			Node(model.HorizontalRule, nil),
			Node(model.Figure, model.Attrs{"float": "right", "type": "photo"}, fullImage, Node(model.Figcaption, nil, "caption")),
			Node(model.Figure, nil, embed),
			Node(model.Aside, model.Attrs{"float": "half-left", "bg": "grey"}, P("aside")),
		),
		"required only": Doc(
			H(1),
			P(Img("https://example.com/a.png", "")),
			Quote(P("q")),
			UL(LI(P("i"))),
			Code(""),
			Node(model.Figure, nil, Node(model.Embed, model.Attrs{"src": "https://e.example"})),
			Node(model.Aside, nil, P("a")),
		),
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, doc.Check())
			data, err := json.Marshal(doc)
			require.NoError(t, err)
			back, err := s.ParseJSON(data)
			require.NoError(t, err)
			assert.True(t, back.Eq(doc), "got %s\nwant %s", back, doc)
		})
	}
}
