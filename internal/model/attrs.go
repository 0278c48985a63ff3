package model

import (
	"maps"
	"slices"
	"sort"
)

// AttrType is the value type of an attribute.
type AttrType uint8

// Attribute value types.
const (
	AttrString AttrType = iota
	AttrInt
	AttrBool
)

// String returns the type name.
func (t AttrType) String() string {
	switch t {
	case AttrString:
		return "string"
	case AttrInt:
		return "int"
	case AttrBool:
		return "bool"
	default:
		return "unknown"
	}
}

// AttrSpec declares one attribute of a node or mark type.
type AttrSpec struct {
	Name string
	Type AttrType

	// Default is used when the attribute is absent. A nil default means the
	// attribute is null unless Required is set.
	Default any

	// Required attributes must be given a non-null value.
	Required bool

	// Enum restricts string values to the listed set.
	Enum []string

	// Min and Max bound int values when Max > Min.
	Min, Max int
}

// Attrs is an attribute map. Values are string, int, bool or nil.
// Attrs held by nodes and marks must be treated as read-only.
type Attrs map[string]any

// GetString returns the string value of name, or "".
func (a Attrs) GetString(name string) string {
	s, _ := a[name].(string)
	return s
}

// GetInt returns the int value of name, or 0.
func (a Attrs) GetInt(name string) int {
	n, _ := a[name].(int)
	return n
}

// GetBool returns the bool value of name.
func (a Attrs) GetBool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// With returns a copy of a with name set to value.
func (a Attrs) With(name string, value any) Attrs {
	out := make(Attrs, len(a)+1)
	maps.Copy(out, a)
	out[name] = value
	return out
}

// Clone returns a shallow copy.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// Eq reports whether a and b hold the same values. A missing key and a nil
// value are equivalent.
func (a Attrs) Eq(b Attrs) bool {
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	for k, v := range b {
		if a[k] != v {
			return false
		}
	}
	return true
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := slices.Collect(maps.Keys(a))
	sort.Strings(keys)
	return keys
}

// computeAttrs builds the complete attribute set for a type from the given
// values, applying defaults and rejecting unknown or ill-typed values.
func computeAttrs(typeName string, specs []AttrSpec, given Attrs) (Attrs, error) {
	for name := range given {
		if !hasAttr(specs, name) {
			return nil, violation(typeName, name, "unknown attribute")
		}
	}
	if len(specs) == 0 {
		return nil, nil
	}

	out := make(Attrs, len(specs))
	for _, spec := range specs {
		v, ok := given[spec.Name]
		if !ok || v == nil {
			if spec.Required {
				return nil, violation(typeName, spec.Name, "missing required attribute")
			}
			out[spec.Name] = spec.Default
			continue
		}
		if err := checkAttrValue(typeName, spec, v); err != nil {
			return nil, err
		}
		out[spec.Name] = v
	}
	return out, nil
}

func checkAttrValue(typeName string, spec AttrSpec, v any) error {
	switch spec.Type {
	case AttrString:
		s, ok := v.(string)
		if !ok {
			return violation(typeName, spec.Name, "expected string, got %T", v)
		}
		if len(spec.Enum) > 0 && !slices.Contains(spec.Enum, s) {
			return violation(typeName, spec.Name, "value %q not in %v", s, spec.Enum)
		}
		if spec.Required && s == "" {
			return violation(typeName, spec.Name, "required attribute is empty")
		}
	case AttrInt:
		n, ok := v.(int)
		if !ok {
			return violation(typeName, spec.Name, "expected int, got %T", v)
		}
		if spec.Max > spec.Min && (n < spec.Min || n > spec.Max) {
			return violation(typeName, spec.Name, "value %d outside [%d, %d]", n, spec.Min, spec.Max)
		}
	case AttrBool:
		if _, ok := v.(bool); !ok {
			return violation(typeName, spec.Name, "expected bool, got %T", v)
		}
	}
	return nil
}

func hasAttr(specs []AttrSpec, name string) bool {
	for _, s := range specs {
		if s.Name == name {
			return true
		}
	}
	return false
}

func findAttr(specs []AttrSpec, name string) (AttrSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return AttrSpec{}, false
}
