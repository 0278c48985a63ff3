package model

// NodeKind enumerates the node types known to the editor.
type NodeKind uint8

// Node kinds.
const (
	Doc NodeKind = iota
	Paragraph
	Heading
	Blockquote
	BulletList
	OrderedList
	ListItem
	CodeBlock
	HorizontalRule
	Figure
	Figcaption
	Embed
	Aside
	Image
	HardBreak
	Text

	numNodeKinds
)

var nodeKindNames = [numNodeKinds]string{
	Doc:            "doc",
	Paragraph:      "paragraph",
	Heading:        "heading",
	Blockquote:     "blockquote",
	BulletList:     "bulletList",
	OrderedList:    "orderedList",
	ListItem:       "listItem",
	CodeBlock:      "codeBlock",
	HorizontalRule: "horizontalRule",
	Figure:         "figure",
	Figcaption:     "figcaption",
	Embed:          "embed",
	Aside:          "aside",
	Image:          "image",
	HardBreak:      "hardBreak",
	Text:           "text",
}

// String returns the persisted name of the kind.
func (k NodeKind) String() string {
	if k < numNodeKinds {
		return nodeKindNames[k]
	}
	return "unknown"
}

// ParseNodeKind maps a persisted name back to its kind.
func ParseNodeKind(name string) (NodeKind, bool) {
	for k, n := range nodeKindNames {
		if n == name {
			return NodeKind(k), true
		}
	}
	return 0, false
}

// NodeKinds returns every node kind in declaration order.
func NodeKinds() []NodeKind {
	kinds := make([]NodeKind, numNodeKinds)
	for i := range kinds {
		kinds[i] = NodeKind(i)
	}
	return kinds
}

// MarkKind enumerates the mark types known to the editor. The declaration
// order is the rank order used to sort mark sets.
type MarkKind uint8

// Mark kinds.
const (
	Link MarkKind = iota
	Bold
	Italic
	Underline
	Strike
	Highlight
	Code

	numMarkKinds
)

var markKindNames = [numMarkKinds]string{
	Link:      "link",
	Bold:      "bold",
	Italic:    "italic",
	Underline: "underline",
	Strike:    "strike",
	Highlight: "highlight",
	Code:      "code",
}

// String returns the persisted name of the kind.
func (k MarkKind) String() string {
	if k < numMarkKinds {
		return markKindNames[k]
	}
	return "unknown"
}

// ParseMarkKind maps a persisted name back to its kind.
func ParseMarkKind(name string) (MarkKind, bool) {
	for k, n := range markKindNames {
		if n == name {
			return MarkKind(k), true
		}
	}
	return 0, false
}

// MarkKinds returns every mark kind in rank order.
func MarkKinds() []MarkKind {
	kinds := make([]MarkKind, numMarkKinds)
	for i := range kinds {
		kinds[i] = MarkKind(i)
	}
	return kinds
}
