package model

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// NodeSpec declares a node type.
type NodeSpec struct {
	// Content is the content expression, e.g. "block+". Empty for leaves.
	Content string
	// Group lists the space separated groups the type belongs to.
	Group string
	// Inline marks inline node types.
	Inline bool
	// Atom nodes are treated as a single unit even when they have content.
	Atom bool
	// Code marks code content (no marks, input rules disabled).
	Code bool
	// NoMarks disallows marks on the type's inline children.
	NoMarks bool
	// Defining nodes are kept when their content is replaced wholesale.
	Defining bool
	// Draggable nodes may be moved with the drag handle.
	Draggable bool
	// Attrs declares the attributes.
	Attrs []AttrSpec
}

// MarkSpec declares a mark type.
type MarkSpec struct {
	Attrs []AttrSpec
	// Inclusive marks extend to text typed at their end.
	Inclusive bool
}

// SchemaSpec is the full set of declarations a Schema is built from.
type SchemaSpec struct {
	Nodes [numNodeKinds]NodeSpec
	Marks [numMarkKinds]MarkSpec
}

// SchemaOption customizes a SchemaSpec before the schema is compiled.
type SchemaOption func(*SchemaSpec)

// WithNodeSpec applies fn to the spec of kind.
func WithNodeSpec(kind NodeKind, fn func(*NodeSpec)) SchemaOption {
	return func(s *SchemaSpec) {
		fn(&s.Nodes[kind])
	}
}

// WithMarkSpec applies fn to the spec of kind.
func WithMarkSpec(kind MarkKind, fn func(*MarkSpec)) SchemaOption {
	return func(s *SchemaSpec) {
		fn(&s.Marks[kind])
	}
}

// Float values shared by floatable blocks.
var floatValues = []string{"left", "right", "half-left", "half-right"}

// DefaultSchemaSpec returns the built-in declarations.
func DefaultSchemaSpec() *SchemaSpec {
	s := &SchemaSpec{}
	s.Nodes[Doc] = NodeSpec{Content: "block+"}
	s.Nodes[Paragraph] = NodeSpec{Content: "inline*", Group: "block"}
	s.Nodes[Heading] = NodeSpec{
		Content:  "inline*",
		Group:    "block",
		Defining: true,
		Attrs:    []AttrSpec{{Name: "level", Type: AttrInt, Default: 1, Min: 1, Max: 6}},
	}
	s.Nodes[Blockquote] = NodeSpec{
		Content:   "block+",
		Group:     "block",
		Defining:  true,
		Draggable: true,
		Attrs: []AttrSpec{
			{Name: "float", Type: AttrString, Enum: floatValues},
			{Name: "variant", Type: AttrString, Enum: []string{"quote", "punchline"}},
		},
	}
	s.Nodes[BulletList] = NodeSpec{Content: "listItem+", Group: "block"}
	s.Nodes[OrderedList] = NodeSpec{
		Content: "listItem+",
		Group:   "block",
		Attrs:   []AttrSpec{{Name: "start", Type: AttrInt, Default: 1}},
	}
	s.Nodes[ListItem] = NodeSpec{Content: "paragraph block*", Defining: true}
	s.Nodes[CodeBlock] = NodeSpec{
		Content:  "text*",
		Group:    "block",
		Code:     true,
		NoMarks:  true,
		Defining: true,
		Attrs:    []AttrSpec{{Name: "language", Type: AttrString}},
	}
	s.Nodes[HorizontalRule] = NodeSpec{Group: "block"}
	s.Nodes[Figure] = NodeSpec{
		Content:   "(image | embed) figcaption?",
		Group:     "block",
		NoMarks:   true,
		Draggable: true,
		Attrs: []AttrSpec{
			{Name: "float", Type: AttrString, Enum: floatValues},
			{Name: "type", Type: AttrString},
		},
	}
	s.Nodes[Figcaption] = NodeSpec{Content: "inline*"}
	s.Nodes[Embed] = NodeSpec{
		Group:     "block",
		Atom:      true,
		Draggable: true,
		Attrs: []AttrSpec{
			{Name: "src", Type: AttrString, Required: true},
			{Name: "width", Type: AttrInt},
			{Name: "height", Type: AttrInt},
		},
	}
	s.Nodes[Aside] = NodeSpec{
		Content:   "block+",
		Group:     "block",
		Defining:  true,
		Draggable: true,
		Attrs: []AttrSpec{
			{Name: "float", Type: AttrString, Enum: floatValues},
			{Name: "bg", Type: AttrString},
		},
	}
	s.Nodes[Image] = NodeSpec{
		Group:     "inline",
		Inline:    true,
		Draggable: true,
		Attrs: []AttrSpec{
			{Name: "src", Type: AttrString, Required: true},
			{Name: "alt", Type: AttrString},
			{Name: "title", Type: AttrString},
			{Name: "path", Type: AttrString},
			{Name: "width", Type: AttrInt},
		},
	}
	s.Nodes[HardBreak] = NodeSpec{Group: "inline", Inline: true}
	s.Nodes[Text] = NodeSpec{Group: "inline", Inline: true}

	s.Marks[Link] = MarkSpec{Attrs: []AttrSpec{
		{Name: "href", Type: AttrString, Required: true},
		{Name: "title", Type: AttrString},
		{Name: "target", Type: AttrString},
	}}
	s.Marks[Bold] = MarkSpec{Inclusive: true}
	s.Marks[Italic] = MarkSpec{Inclusive: true}
	s.Marks[Underline] = MarkSpec{Inclusive: true}
	s.Marks[Strike] = MarkSpec{Inclusive: true}
	s.Marks[Highlight] = MarkSpec{Inclusive: true, Attrs: []AttrSpec{{Name: "color", Type: AttrString}}}
	s.Marks[Code] = MarkSpec{Inclusive: true}
	return s
}

// NodeType is a compiled node declaration.
type NodeType struct {
	Kind NodeKind
	Name string

	spec          NodeSpec
	groups        []string
	schema        *Schema
	match         *ContentMatch
	inlineContent bool
}

// Schema returns the schema the type belongs to.
func (t *NodeType) Schema() *Schema { return t.schema }

// Spec returns the declaration the type was compiled from.
func (t *NodeType) Spec() NodeSpec { return t.spec }

// ContentMatch returns the compiled content expression.
func (t *NodeType) ContentMatch() *ContentMatch { return t.match }

// InGroup reports group membership.
func (t *NodeType) InGroup(group string) bool { return slices.Contains(t.groups, group) }

// IsText reports whether t is the text type.
func (t *NodeType) IsText() bool { return t.Kind == Text }

// IsInline reports whether t is inline.
func (t *NodeType) IsInline() bool { return t.spec.Inline }

// IsBlock reports whether t is a block type.
func (t *NodeType) IsBlock() bool { return !t.spec.Inline && t.Kind != Doc }

// IsLeaf reports whether t allows no content.
func (t *NodeType) IsLeaf() bool { return t.match.expr == nil }

// IsAtom reports whether t is a leaf or declared atomic.
func (t *NodeType) IsAtom() bool { return t.IsLeaf() || t.spec.Atom }

// InlineContent reports whether t holds inline content.
func (t *NodeType) InlineContent() bool { return t.inlineContent }

// IsTextblock reports whether t is a block with inline content.
func (t *NodeType) IsTextblock() bool { return t.IsBlock() && t.inlineContent }

// IsCode reports whether t holds code.
func (t *NodeType) IsCode() bool { return t.spec.Code }

// AllowsMarks reports whether inline children of t may carry marks.
func (t *NodeType) AllowsMarks() bool { return !t.spec.NoMarks }

// Attrs returns the attribute declarations.
func (t *NodeType) Attrs() []AttrSpec { return t.spec.Attrs }

func (t *NodeType) hasRequiredAttrs() bool {
	for _, a := range t.spec.Attrs {
		if a.Required {
			return true
		}
	}
	return false
}

// ComputeAttrs validates attrs and fills in defaults.
func (t *NodeType) ComputeAttrs(attrs Attrs) (Attrs, error) {
	return computeAttrs(t.Name, t.spec.Attrs, attrs)
}

// Create builds a node of this type, validating attributes and content.
func (t *NodeType) Create(attrs Attrs, content Fragment, marks MarkSet) (*Node, error) {
	if t.IsText() {
		return nil, violation(t.Name, "", "text nodes are created with Schema.Text")
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	if len(marks) > 0 && !t.IsInline() {
		return nil, violation(t.Name, "", "only inline nodes carry marks")
	}
	if err := t.CheckContent(content); err != nil {
		return nil, err
	}
	return &Node{typ: t, attrs: computed, content: content, marks: marks}, nil
}

// CreateUnchecked builds a node validating only its attributes. It is used
// for wrapper nodes whose content is filled in by a later replace, which
// validates the result.
func (t *NodeType) CreateUnchecked(attrs Attrs, content Fragment, marks MarkSet) (*Node, error) {
	if t.IsText() {
		return nil, violation(t.Name, "", "text nodes are created with Schema.Text")
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	return &Node{typ: t, attrs: computed, content: content, marks: marks}, nil
}

// CreateAndFill builds a node of this type with the minimal valid content.
func (t *NodeType) CreateAndFill(attrs Attrs) (*Node, error) {
	content, err := t.fill(0)
	if err != nil {
		return nil, err
	}
	return t.Create(attrs, content, nil)
}

func (t *NodeType) fill(depth int) (Fragment, error) {
	if t.match.Valid(nil) {
		return Fragment{}, nil
	}
	if depth > 8 {
		return Fragment{}, violation(t.Name, "", "cannot fill content %q", t.match)
	}
	def := t.match.DefaultType()
	if def == nil {
		return Fragment{}, violation(t.Name, "", "no default content for %q", t.match)
	}
	inner, err := def.fill(depth + 1)
	if err != nil {
		return Fragment{}, err
	}
	child, err := def.Create(nil, inner, nil)
	if err != nil {
		return Fragment{}, err
	}
	f := NewFragment(child)
	if !t.match.ValidFragment(f) {
		return Fragment{}, violation(t.Name, "", "cannot fill content %q", t.match)
	}
	return f, nil
}

// CheckContent returns a *SchemaViolation when content is not valid for t.
func (t *NodeType) CheckContent(content Fragment) error {
	if !t.match.ValidFragment(content) {
		return violation(t.Name, "", "invalid content [%s] for %q", content.typeList(), t.match)
	}
	if t.spec.NoMarks {
		for _, child := range content.nodes {
			if len(child.marks) > 0 {
				return violation(t.Name, "", "marks are not allowed on children")
			}
		}
	}
	return nil
}

// ValidContent reports whether content satisfies t.
func (t *NodeType) ValidContent(content Fragment) bool {
	return t.CheckContent(content) == nil
}

// compatibleContent reports whether content of o may be joined into t.
func (t *NodeType) compatibleContent(o *NodeType) bool {
	if t == o {
		return true
	}
	if t.IsLeaf() || o.IsLeaf() {
		return false
	}
	for _, a := range t.match.First() {
		if slices.Contains(o.match.First(), a) {
			return true
		}
	}
	return false
}

// MarkType is a compiled mark declaration.
type MarkType struct {
	Kind MarkKind
	Name string

	spec   MarkSpec
	schema *Schema
}

// Attrs returns the attribute declarations.
func (t *MarkType) Attrs() []AttrSpec { return t.spec.Attrs }

// Inclusive reports whether the mark extends to text typed at its end.
func (t *MarkType) Inclusive() bool { return t.spec.Inclusive }

// Create builds a mark with validated attributes.
func (t *MarkType) Create(attrs Attrs) (*Mark, error) {
	computed, err := computeAttrs(t.Name, t.spec.Attrs, attrs)
	if err != nil {
		return nil, err
	}
	return &Mark{typ: t, attrs: computed}, nil
}

// Schema holds the compiled node and mark types.
type Schema struct {
	nodes [numNodeKinds]*NodeType
	marks [numMarkKinds]*MarkType
}

// NewSchema compiles the default declarations with opts applied.
func NewSchema(opts ...SchemaOption) (*Schema, error) {
	spec := DefaultSchemaSpec()
	for _, opt := range opts {
		opt(spec)
	}
	return NewSchemaFromSpec(spec)
}

// NewSchemaFromSpec compiles spec.
func NewSchemaFromSpec(spec *SchemaSpec) (*Schema, error) {
	s := &Schema{}
	for k := range numNodeKinds {
		ns := spec.Nodes[k]
		s.nodes[k] = &NodeType{
			Kind:   k,
			Name:   k.String(),
			spec:   ns,
			groups: strings.Fields(ns.Group),
			schema: s,
		}
	}
	for k := range numMarkKinds {
		s.marks[k] = &MarkType{Kind: k, Name: k.String(), spec: spec.Marks[k], schema: s}
	}

	for _, t := range s.nodes {
		m, err := compileContent(t.spec.Content, s.lookup)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", t.Name, err)
		}
		t.match = m
	}
	for _, t := range s.nodes {
		if t.match.expr == nil {
			continue
		}
		var all []*NodeType
		t.match.expr.allTypes(&all)
		inline := 0
		for _, c := range all {
			if c.IsInline() {
				inline++
			}
		}
		if inline > 0 && inline == len(all) {
			t.inlineContent = true
		}
	}

	if s.nodes[Doc].IsInline() || s.nodes[Doc].IsLeaf() {
		return nil, fmt.Errorf("doc must be a non-leaf block node")
	}
	if !s.nodes[Text].IsInline() || !s.nodes[Text].IsLeaf() {
		return nil, fmt.Errorf("text must be an inline leaf node")
	}
	for _, t := range s.nodes {
		for _, a := range t.spec.Attrs {
			if a.Default == nil {
				continue
			}
			if err := checkAttrValue(t.Name, a, a.Default); err != nil {
				return nil, fmt.Errorf("default value: %w", err)
			}
		}
	}
	return s, nil
}

var defaultSchema = sync.OnceValue(func() *Schema {
	s, err := NewSchema()
	if err != nil {
		panic(err)
	}
	return s
})

// DefaultSchema returns the shared schema built from DefaultSchemaSpec.
func DefaultSchema() *Schema {
	return defaultSchema()
}

// lookup resolves a content expression name to a type or a group.
func (s *Schema) lookup(name string) []*NodeType {
	if k, ok := ParseNodeKind(name); ok {
		return []*NodeType{s.nodes[k]}
	}
	var out []*NodeType
	for _, t := range s.nodes {
		if t.InGroup(name) {
			out = append(out, t)
		}
	}
	return out
}

// NodeType returns the type for kind.
func (s *Schema) NodeType(kind NodeKind) *NodeType {
	return s.nodes[kind]
}

// MarkType returns the type for kind.
func (s *Schema) MarkType(kind MarkKind) *MarkType {
	return s.marks[kind]
}

// NodeTypeByName looks up a node type by its persisted name.
func (s *Schema) NodeTypeByName(name string) (*NodeType, error) {
	k, ok := ParseNodeKind(name)
	if !ok {
		return nil, fmt.Errorf("%w: node %q", ErrUnknownType, name)
	}
	return s.nodes[k], nil
}

// MarkTypeByName looks up a mark type by its persisted name.
func (s *Schema) MarkTypeByName(name string) (*MarkType, error) {
	k, ok := ParseMarkKind(name)
	if !ok {
		return nil, fmt.Errorf("%w: mark %q", ErrUnknownType, name)
	}
	return s.marks[k], nil
}

// Node creates a node of kind. See NodeType.Create.
func (s *Schema) Node(kind NodeKind, attrs Attrs, content Fragment, marks MarkSet) (*Node, error) {
	return s.nodes[kind].Create(attrs, content, marks)
}

// Text creates a text node. Empty text yields nil.
func (s *Schema) Text(text string, marks MarkSet) *Node {
	if text == "" {
		return nil
	}
	return &Node{typ: s.nodes[Text], text: text, textLen: runeLen(text), marks: marks}
}

// Mark creates a mark of kind.
func (s *Schema) Mark(kind MarkKind, attrs Attrs) (*Mark, error) {
	return s.marks[kind].Create(attrs)
}

// MustMark is like Mark but panics on invalid attributes.
func (s *Schema) MustMark(kind MarkKind, attrs Attrs) *Mark {
	m, err := s.Mark(kind, attrs)
	if err != nil {
		panic(err)
	}
	return m
}

// EmptyDoc returns a document holding a single empty paragraph.
func (s *Schema) EmptyDoc() *Node {
	doc, err := s.nodes[Doc].CreateAndFill(nil)
	if err != nil {
		panic(err)
	}
	return doc
}
