package transform

import "fmt"

const (
	delBefore = 1 << iota
	delAfter
	delAcross
	delSide
)

// MapResult is the outcome of mapping a position.
type MapResult struct {
	// Pos is the mapped position.
	Pos int

	del uint8
}

// Deleted reports whether the content on the side the position was
// associated with has been deleted.
func (r MapResult) Deleted() bool { return r.del&delSide != 0 }

// DeletedBefore reports whether the token before the position was deleted.
func (r MapResult) DeletedBefore() bool { return r.del&(delBefore|delAcross) != 0 }

// DeletedAfter reports whether the token after the position was deleted.
func (r MapResult) DeletedAfter() bool { return r.del&(delAfter|delAcross) != 0 }

// DeletedAcross reports whether the position sat inside a deleted range.
func (r MapResult) DeletedAcross() bool { return r.del&delAcross != 0 }

// Mappable maps positions.
type Mappable interface {
	Map(pos, assoc int) int
	MapResult(pos, assoc int) MapResult
}

// StepMap records the ranges a step replaced, as triples of start, old size
// and new size.
type StepMap struct {
	ranges   []int
	inverted bool
}

// EmptyMap maps every position to itself.
var EmptyMap = &StepMap{}

// NewStepMap returns a map over the given range triples.
func NewStepMap(ranges ...int) *StepMap {
	if len(ranges) == 0 {
		return EmptyMap
	}
	if len(ranges)%3 != 0 {
		panic("transform: step map ranges must be triples")
	}
	return &StepMap{ranges: ranges}
}

// Offset returns a map that shifts every position by n.
func Offset(n int) *StepMap {
	if n == 0 {
		return EmptyMap
	}
	if n < 0 {
		return NewStepMap(0, -n, 0)
	}
	return NewStepMap(0, 0, n)
}

func (m *StepMap) sizes() (oldIndex, newIndex int) {
	if m.inverted {
		return 2, 1
	}
	return 1, 2
}

// Map maps pos with the given association.
func (m *StepMap) Map(pos, assoc int) int {
	return m.mapResult(pos, assoc, true).Pos
}

// MapResult maps pos and reports what was deleted around it.
func (m *StepMap) MapResult(pos, assoc int) MapResult {
	return m.mapResult(pos, assoc, false)
}

func (m *StepMap) mapResult(pos, assoc int, simple bool) MapResult {
	diff := 0
	oldIndex, newIndex := m.sizes()
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		if m.inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			side := assoc
			if oldSize > 0 && pos == start {
				side = -1
			} else if oldSize > 0 && pos == end {
				side = 1
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			if simple || oldSize == 0 {
				return MapResult{Pos: result}
			}
			var del uint8
			switch pos {
			case start:
				del = delAfter
			case end:
				del = delBefore
			default:
				del = delAcross
			}
			if (assoc < 0 && pos != start) || (assoc >= 0 && pos != end) {
				del |= delSide
			}
			return MapResult{Pos: result, del: del}
		}
		diff += newSize - oldSize
	}
	return MapResult{Pos: pos + diff}
}

// ForEach calls fn for every changed range.
func (m *StepMap) ForEach(fn func(oldStart, oldEnd, newStart, newEnd int)) {
	oldIndex, newIndex := m.sizes()
	diff := 0
	for i := 0; i < len(m.ranges); i += 3 {
		start := m.ranges[i]
		oldStart := start
		if m.inverted {
			oldStart = start - diff
		}
		newStart := start
		if !m.inverted {
			newStart = start + diff
		}
		oldSize, newSize := m.ranges[i+oldIndex], m.ranges[i+newIndex]
		fn(oldStart, oldStart+oldSize, newStart, newStart+newSize)
		diff += newSize - oldSize
	}
}

// Invert returns the map from the step's output back to its input.
func (m *StepMap) Invert() *StepMap {
	if len(m.ranges) == 0 {
		return m
	}
	return &StepMap{ranges: m.ranges, inverted: !m.inverted}
}

// String returns a debug representation.
func (m *StepMap) String() string {
	if m.inverted {
		return fmt.Sprintf("-%v", m.ranges)
	}
	return fmt.Sprint(m.ranges)
}

// Mapping is an ordered pipeline of step maps.
type Mapping struct {
	maps []*StepMap
}

// NewMapping returns a mapping over maps.
func NewMapping(maps ...*StepMap) *Mapping {
	return &Mapping{maps: append([]*StepMap(nil), maps...)}
}

// Maps returns the step maps in order.
func (m *Mapping) Maps() []*StepMap { return m.maps }

// Len returns the number of maps.
func (m *Mapping) Len() int { return len(m.maps) }

// AppendMap adds a step map to the end of the mapping.
func (m *Mapping) AppendMap(sm *StepMap) {
	m.maps = append(m.maps, sm)
}

// AppendMapping adds all maps of o.
func (m *Mapping) AppendMapping(o *Mapping) {
	m.maps = append(m.maps, o.maps...)
}

// Slice returns the maps from index from onwards as a new mapping.
func (m *Mapping) Slice(from int) *Mapping {
	return NewMapping(m.maps[from:]...)
}

// Invert returns a mapping running the inverted maps in reverse order.
func (m *Mapping) Invert() *Mapping {
	out := &Mapping{maps: make([]*StepMap, len(m.maps))}
	for i, sm := range m.maps {
		out.maps[len(m.maps)-1-i] = sm.Invert()
	}
	return out
}

// Map maps pos through every step map.
func (m *Mapping) Map(pos, assoc int) int {
	for _, sm := range m.maps {
		pos = sm.Map(pos, assoc)
	}
	return pos
}

// MapResult maps pos and accumulates deletion information.
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	var del uint8
	for _, sm := range m.maps {
		r := sm.MapResult(pos, assoc)
		del |= r.del
		pos = r.Pos
	}
	return MapResult{Pos: pos, del: del}
}
