// Package transform implements invertible document steps and the Transform
// builder that accumulates them.
//
// # Steps
//
// A Step is an atomic document change: replace a range with a slice,
// replace around a gap (used to wrap and lift), add or remove a mark over a
// range, or change the type and attributes of one node. Applying a step
// never mutates its input document; unchanged subtrees are shared by
// pointer with the result.
//
// Every step produces a StepMap describing how positions move, and can be
// inverted against the document it was applied to. Undo history stores
// inverted steps.
//
// # Mapping
//
// A Mapping is an ordered list of step maps. Positions are mapped through it
// with an association (-1 or +1) deciding which side of an insertion they
// stick to. Steps are rebased through a mapping with MapThrough; a step
// whose range has been deleted becomes a zero-length no-op rather than an
// error.
//
// # Transform
//
// Transform records steps against a starting document. Builder methods such
// as Delete, Insert, AddMark, Wrap, Lift and Split validate each step when
// it is added: a failing step returns an error and is not recorded. Builders
// that add several steps may have recorded some of them when a later one
// fails; callers discard the transform on error.
package transform
