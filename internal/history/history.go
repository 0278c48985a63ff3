package history

import (
	"slices"
	"time"

	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/state"
	"github.com/dshills/inkwell/internal/transform"
)

// Defaults.
const (
	DefaultDepth         = 100
	DefaultNewGroupDelay = 500 * time.Millisecond
)

// PluginKey is the key of the history plugin.
const PluginKey = "history"

const metaClose = "history.close"

// MetaDroppedSteps is set on undo and redo transactions to the number of
// rebased steps that no longer applied and were left out.
const MetaDroppedSteps = "history.droppedSteps"

// Stacks is the immutable state of the history plugin.
type Stacks struct {
	Done   []*Event
	Undone []*Event

	prevTime      time.Time
	prevInputType string
	prevRanges    []int
}

// UndoDepth returns the number of undoable events.
func (s *Stacks) UndoDepth() int { return len(s.Done) }

// RedoDepth returns the number of redoable events.
func (s *Stacks) RedoDepth() int { return len(s.Undone) }

// History is the history plugin.
type History struct {
	depth         int
	newGroupDelay time.Duration
	log           *logging.Logger
}

// Option configures History.
type Option func(*History)

// WithDepth sets the maximum number of undo events.
func WithDepth(n int) Option {
	return func(h *History) {
		h.depth = n
	}
}

// WithNewGroupDelay sets how long after an edit a matching edit still joins
// its event.
func WithNewGroupDelay(d time.Duration) Option {
	return func(h *History) {
		h.newGroupDelay = d
	}
}

// WithLogger sets the logger that reports undo steps dropped after a
// rebase.
func WithLogger(l *logging.Logger) Option {
	return func(h *History) {
		h.log = l
	}
}

// New creates the history plugin.
func New(opts ...Option) *History {
	h := &History{depth: DefaultDepth, newGroupDelay: DefaultNewGroupDelay}
	for _, opt := range opts {
		opt(h)
	}
	if h.depth <= 0 {
		h.depth = DefaultDepth
	}
	h.log = logging.OrNop(h.log).WithComponent("history")
	return h
}

// Key implements state.Plugin.
func (h *History) Key() string { return PluginKey }

// InitState implements state.StateField.
func (h *History) InitState(*state.State) any { return &Stacks{} }

// ApplyState implements state.StateField.
func (h *History) ApplyState(tr *state.Transaction, value any, old, _ *state.State) any {
	cur, _ := value.(*Stacks)
	if cur == nil {
		cur = &Stacks{}
	}
	if next, ok := tr.Meta(state.MetaHistory).(*Stacks); ok {
		return next
	}
	if tr.Meta(metaClose) != nil {
		closed := *cur
		closed.prevTime = time.Time{}
		cur = &closed
	}
	if !tr.DocChanged() {
		return cur
	}

	root, _ := tr.Meta(state.MetaAppendedTransaction).(*state.Transaction)
	if !tr.AddToHistory() || (root != nil && (root.Meta(state.MetaHistory) != nil || !root.AddToHistory())) {
		return cur.remap(tr.Mapping())
	}

	ev := &Event{
		Steps:     invertSteps(tr.Transform),
		Selection: old.Selection().JSON(),
		Time:      tr.Time(),
		InputType: tr.InputType(),
	}
	next := &Stacks{
		prevTime:      tr.Time(),
		prevInputType: ev.InputType,
		prevRanges:    rangesFor(tr.Mapping().Maps()),
	}
	if len(cur.Done) > 0 && (root != nil || h.joins(cur, tr)) {
		last := cur.Done[len(cur.Done)-1]
		merged := &Event{
			Steps:     append(slices.Clip(ev.Steps), last.Steps...),
			Selection: last.Selection,
			Time:      ev.Time,
			InputType: last.InputType,
		}
		next.Done = append(slices.Clip(cur.Done[:len(cur.Done)-1]), merged)
	} else {
		next.Done = append(slices.Clip(cur.Done), ev)
	}
	if over := len(next.Done) - h.depth; over > 0 {
		next.Done = next.Done[over:]
	}
	return next
}

// joins reports whether tr extends the most recent event.
func (h *History) joins(cur *Stacks, tr *state.Transaction) bool {
	if cur.prevTime.IsZero() || tr.InputType() == "" || tr.InputType() != cur.prevInputType {
		return false
	}
	if tr.Time().Sub(cur.prevTime) > h.newGroupDelay {
		return false
	}
	return adjacent(tr.Mapping().Maps(), cur.prevRanges)
}

// adjacent reports whether the first change of maps touches one of ranges.
func adjacent(maps []*transform.StepMap, ranges []int) bool {
	if len(maps) == 0 {
		return true
	}
	touches := false
	maps[0].ForEach(func(start, end, _, _ int) {
		for i := 0; i+1 < len(ranges); i += 2 {
			if start <= ranges[i+1] && end >= ranges[i] {
				touches = true
			}
		}
	})
	return touches
}

// rangesFor returns the changed ranges of the last map that changed
// anything, in its output coordinates.
func rangesFor(maps []*transform.StepMap) []int {
	var out []int
	for i := len(maps) - 1; i >= 0 && len(out) == 0; i-- {
		maps[i].ForEach(func(_, _, start, end int) {
			out = append(out, start, end)
		})
	}
	return out
}

// remap rebases both stacks over a change that is not recorded.
func (s *Stacks) remap(m *transform.Mapping) *Stacks {
	next := &Stacks{
		Done:          remapEvents(s.Done, m),
		Undone:        remapEvents(s.Undone, m),
		prevTime:      s.prevTime,
		prevInputType: s.prevInputType,
	}
	for _, p := range s.prevRanges {
		next.prevRanges = append(next.prevRanges, m.Map(p, 1))
	}
	return next
}

// remapEvents rebases a stack, newest event first.
func remapEvents(events []*Event, m *transform.Mapping) []*Event {
	out := make([]*Event, len(events))
	cur := m
	for i := len(events) - 1; i >= 0; i-- {
		out[i], cur = events[i].rebase(cur)
	}
	return slices.DeleteFunc(out, func(e *Event) bool { return len(e.Steps) == 0 })
}

// pluginOf returns the history plugin installed in st.
func pluginOf(st *state.State) *History {
	for _, p := range st.Plugins() {
		if h, ok := p.(*History); ok {
			return h
		}
	}
	return nil
}

// stacksOf returns the history state of st.
func stacksOf(st *state.State) (*Stacks, bool) {
	return state.Field[*Stacks](st, PluginKey)
}

// UndoDepth returns the number of undoable events in st.
func UndoDepth(st *state.State) int {
	if s, ok := stacksOf(st); ok {
		return s.UndoDepth()
	}
	return 0
}

// RedoDepth returns the number of redoable events in st.
func RedoDepth(st *state.State) int {
	if s, ok := stacksOf(st); ok {
		return s.RedoDepth()
	}
	return 0
}

// CloseHistory marks tr so that the next recorded transaction starts a new
// event.
func CloseHistory(tr *state.Transaction) *state.Transaction {
	return tr.SetMeta(metaClose, true)
}

// Undo undoes the last event.
func Undo(st *state.State, dispatch func(*state.Transaction)) bool {
	return histCommand(st, dispatch, false)
}

// Redo redoes the last undone event.
func Redo(st *state.State, dispatch func(*state.Transaction)) bool {
	return histCommand(st, dispatch, true)
}

// UndoTransaction builds the transaction Undo would dispatch.
func UndoTransaction(st *state.State) (*state.Transaction, error) {
	tr, ok := buildHistTransaction(st, false)
	if !ok {
		return nil, ErrNothingToUndo
	}
	return tr, nil
}

// RedoTransaction builds the transaction Redo would dispatch.
func RedoTransaction(st *state.State) (*state.Transaction, error) {
	tr, ok := buildHistTransaction(st, true)
	if !ok {
		return nil, ErrNothingToRedo
	}
	return tr, nil
}

func histCommand(st *state.State, dispatch func(*state.Transaction), redo bool) bool {
	s, ok := stacksOf(st)
	if !ok {
		return false
	}
	if (redo && len(s.Undone) == 0) || (!redo && len(s.Done) == 0) {
		return false
	}
	if dispatch != nil {
		tr, _ := buildHistTransaction(st, redo)
		dispatch(tr)
	}
	return true
}

func buildHistTransaction(st *state.State, redo bool) (*state.Transaction, bool) {
	s, ok := stacksOf(st)
	if !ok {
		return nil, false
	}
	from, to := s.Done, s.Undone
	if redo {
		from, to = s.Undone, s.Done
	}
	if len(from) == 0 {
		return nil, false
	}
	ev := from[len(from)-1]
	tr := st.Tr()
	dropped := 0
	for _, step := range ev.Steps {
		// A step that fails here was invalidated by an approximate rebase.
		// The rest of the event still applies.
		if err := tr.Step(step); err != nil {
			dropped++
			if h := pluginOf(st); h != nil {
				h.log.WithError(err).Warn("dropped %s step that no longer applies", direction(redo))
			}
		}
	}
	if dropped > 0 {
		tr.SetMeta(MetaDroppedSteps, dropped)
	}
	tr.SetSelection(restoreSelection(tr.Doc(), ev.Selection))

	back := &Event{
		Steps:     invertSteps(tr.Transform),
		Selection: st.Selection().JSON(),
		Time:      tr.Time(),
		InputType: ev.InputType,
	}
	next := &Stacks{}
	from = slices.Clip(from[:len(from)-1])
	to = append(slices.Clip(to), back)
	if redo {
		next.Done, next.Undone = to, from
	} else {
		next.Done, next.Undone = from, to
	}
	tr.SetMeta(state.MetaHistory, next)
	tr.SetMeta(state.MetaAddToHistory, false)
	tr.ScrollIntoView()
	return tr, true
}

// Keymap returns the standard history key bindings.
func Keymap(opts ...plugin.KeymapOption) *plugin.Keymap {
	return plugin.NewKeymap("history-keymap", map[string]state.Command{
		"Mod-z":       Undo,
		"Mod-Shift-z": Redo,
		"Mod-y":       Redo,
	}, opts...)
}
