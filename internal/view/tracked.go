package view

import "github.com/dshills/inkwell/internal/transform"

// TrackedPos is a document position kept current across transactions. Work
// that finishes after later edits, such as an upload, resolves its target
// through one.
type TrackedPos struct {
	v        *View
	pos      int
	deleted  bool
	released bool
}

// Track starts tracking pos. Call Release when done.
func (v *View) Track(pos int) *TrackedPos {
	t := &TrackedPos{v: v, pos: pos}
	v.tracked[t] = struct{}{}
	return t
}

// Pos returns the current position.
func (t *TrackedPos) Pos() int { return t.pos }

// Deleted reports whether the content on both sides of the position was
// deleted at some point. The position then points at where the deletion
// happened.
func (t *TrackedPos) Deleted() bool { return t.deleted }

// Release stops tracking.
func (t *TrackedPos) Release() {
	if t.released {
		return
	}
	t.released = true
	delete(t.v.tracked, t)
}

func (t *TrackedPos) remap(m transform.Mappable) {
	r := m.MapResult(t.pos, 1)
	t.pos = r.Pos
	if r.DeletedAcross() {
		t.deleted = true
	}
}

// invalidate marks the position deleted after a state replacement that
// carries no mapping.
func (t *TrackedPos) invalidate(size int) {
	t.pos = min(t.pos, size)
	t.deleted = true
}
