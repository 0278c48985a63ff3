package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// NodeJSON is the persisted form of a node.
type NodeJSON struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*NodeJSON    `json:"content,omitempty"`
	Marks   []*MarkJSON    `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// MarkJSON is the persisted form of a mark.
type MarkJSON struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// ToJSON converts n to its persisted form. Null attributes are omitted.
func ToJSON(n *Node) *NodeJSON {
	out := &NodeJSON{Type: n.typ.Name, Attrs: attrsJSON(n.attrs)}
	if n.IsText() {
		out.Text = n.text
	}
	for _, child := range n.content.nodes {
		out.Content = append(out.Content, ToJSON(child))
	}
	for _, m := range n.marks {
		out.Marks = append(out.Marks, &MarkJSON{Type: m.typ.Name, Attrs: attrsJSON(m.attrs)})
	}
	return out
}

func attrsJSON(attrs Attrs) map[string]any {
	var out map[string]any
	for k, v := range attrs {
		if v == nil {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(attrs))
		}
		out[k] = v
	}
	return out
}

// MarshalJSON encodes n in the persisted form.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToJSON(n))
}

// ParseJSON decodes and validates a persisted document or node.
func (s *Schema) ParseJSON(data []byte) (*Node, error) {
	var raw NodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return s.NodeFromJSON(&raw)
}

// NodeFromJSON converts a persisted node back into a validated node. Unknown
// types and attributes are rejected, never dropped.
func (s *Schema) NodeFromJSON(raw *NodeJSON) (*Node, error) {
	if raw == nil {
		return nil, violation("", "", "null node")
	}
	t, err := s.NodeTypeByName(raw.Type)
	if err != nil {
		return nil, err
	}
	var marks MarkSet
	for _, rm := range raw.Marks {
		m, err := s.MarkFromJSON(rm)
		if err != nil {
			return nil, err
		}
		if marks.Has(m.Kind()) {
			return nil, violation(t.Name, "", "duplicate %s mark", m.typ.Name)
		}
		marks = m.AddToSet(marks)
	}
	if t.IsText() {
		if raw.Text == "" {
			return nil, violation(t.Name, "", "empty text node")
		}
		if len(raw.Content) > 0 || len(raw.Attrs) > 0 {
			return nil, violation(t.Name, "", "text nodes carry no attrs or content")
		}
		return s.Text(raw.Text, marks), nil
	}
	attrs, err := normalizeAttrs(t.Name, t.spec.Attrs, raw.Attrs)
	if err != nil {
		return nil, err
	}
	children := make([]*Node, 0, len(raw.Content))
	for _, rc := range raw.Content {
		child, err := s.NodeFromJSON(rc)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return t.Create(attrs, NewFragment(children...), marks)
}

// MarkFromJSON converts a persisted mark.
func (s *Schema) MarkFromJSON(raw *MarkJSON) (*Mark, error) {
	if raw == nil {
		return nil, violation("", "", "null mark")
	}
	t, err := s.MarkTypeByName(raw.Type)
	if err != nil {
		return nil, err
	}
	attrs, err := normalizeAttrs(t.Name, t.spec.Attrs, raw.Attrs)
	if err != nil {
		return nil, err
	}
	return t.Create(attrs)
}

// normalizeAttrs converts decoded JSON numbers to ints for int attributes.
// Non-integral numbers are left alone so that validation rejects them.
func normalizeAttrs(typeName string, specs []AttrSpec, raw map[string]any) (Attrs, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(Attrs, len(raw))
	for k, v := range raw {
		spec, ok := findAttr(specs, k)
		if !ok {
			return nil, violation(typeName, k, "unknown attribute")
		}
		if spec.Type == AttrInt {
			switch n := v.(type) {
			case float64:
				if n == math.Trunc(n) && !math.IsInf(n, 0) {
					v = int(n)
				}
			case json.Number:
				if i, err := n.Int64(); err == nil {
					v = int(i)
				}
			}
		}
		out[k] = v
	}
	return out, nil
}
