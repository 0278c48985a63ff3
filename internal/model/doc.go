// Package model provides the document model for the inkwell editor core.
//
// A document is an immutable tree of typed nodes. Every node has a kind from
// a closed enumeration (NodeKind), a complete attribute set validated against
// the kind's attribute specs, and either block content, inline content, or no
// content at all (leaf nodes). Text is stored in text nodes which carry a set
// of marks (MarkKind).
//
// # Schema
//
// The Schema is built once with NewSchema. Content expressions such as
// "block+" or "inline*" are compiled at that point, and every node created
// through the schema is checked against them. A node that does not satisfy
// its expression, or that carries invalid attributes, is rejected with a
// *SchemaViolation:
//
//	s := model.DefaultSchema()
//	p, err := s.Node(model.Paragraph, nil, model.NewFragment(s.Text("hello", nil)), nil)
//	doc, err := s.Node(model.Doc, nil, model.NewFragment(p), nil)
//
// # Positions
//
// Positions are integer offsets into a flattened view of the tree. Entering
// or leaving a non-leaf node counts as one position, as does every character
// (code point) and every leaf node. Position 0 is the start of the document's
// content. Resolve turns a position into a *ResolvedPos which knows the
// ancestors of the position and the offsets inside each of them.
//
// # Persistence
//
// ToJSON and Schema.NodeFromJSON convert between nodes and the
// {type, attrs, content, marks, text} persistence format.
package model
