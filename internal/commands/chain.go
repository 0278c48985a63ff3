package commands

import (
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

// Host is what a chain runs against.
type Host interface {
	State() *state.State
	Dispatch(tr *state.Transaction)
}

// Focuser is implemented by hosts that can take input focus.
type Focuser interface {
	Focus()
}

// ChainBuilder collects commands to run as one transaction.
type ChainBuilder struct {
	host  Host
	cmds  []state.Command
	focus bool
}

// Chain starts a command chain on host.
func Chain(host Host) *ChainBuilder {
	return &ChainBuilder{host: host}
}

// Command appends an arbitrary command.
func (c *ChainBuilder) Command(cmd state.Command) *ChainBuilder {
	c.cmds = append(c.cmds, cmd)
	return c
}

// Focus focuses the host when the chain runs successfully.
func (c *ChainBuilder) Focus() *ChainBuilder {
	c.focus = true
	return c
}

// ToggleMark appends ToggleMark.
func (c *ChainBuilder) ToggleMark(kind model.MarkKind, attrs model.Attrs) *ChainBuilder {
	return c.Command(ToggleMark(kind, attrs))
}

// SetNodeType appends SetNodeType.
func (c *ChainBuilder) SetNodeType(kind model.NodeKind, attrs model.Attrs) *ChainBuilder {
	return c.Command(SetNodeType(kind, attrs))
}

// WrapIn appends WrapIn.
func (c *ChainBuilder) WrapIn(kind model.NodeKind, attrs model.Attrs) *ChainBuilder {
	return c.Command(WrapIn(kind, attrs))
}

// InsertNode appends InsertNode.
func (c *ChainBuilder) InsertNode(kind model.NodeKind, attrs model.Attrs) *ChainBuilder {
	return c.Command(InsertNode(kind, attrs))
}

// InsertText appends InsertText.
func (c *ChainBuilder) InsertText(text string) *ChainBuilder {
	return c.Command(InsertText(text))
}

// Lift appends Lift.
func (c *ChainBuilder) Lift() *ChainBuilder { return c.Command(Lift) }

// SplitBlock appends SplitBlock.
func (c *ChainBuilder) SplitBlock() *ChainBuilder { return c.Command(SplitBlock) }

// DeleteSelection appends DeleteSelection.
func (c *ChainBuilder) DeleteSelection() *ChainBuilder { return c.Command(DeleteSelection) }

// SetFloat appends SetFloat.
func (c *ChainBuilder) SetFloat(value string) *ChainBuilder { return c.Command(SetFloat(value)) }

// SelectAll appends SelectAll.
func (c *ChainBuilder) SelectAll() *ChainBuilder { return c.Command(SelectAll) }

// Can reports whether every command in the chain would apply, without
// dispatching.
func (c *ChainBuilder) Can() bool {
	_, ok := c.build()
	return ok
}

// Run executes the chain. Each command sees the state produced by the
// previous ones. The first command that does not apply aborts the chain
// and nothing is dispatched; otherwise the host receives one transaction
// holding every change.
func (c *ChainBuilder) Run() bool {
	tr, ok := c.build()
	if !ok {
		return false
	}
	c.host.Dispatch(tr)
	if f, ok := c.host.(Focuser); ok && c.focus {
		f.Focus()
	}
	return true
}

func (c *ChainBuilder) build() (*state.Transaction, bool) {
	start := c.host.State()
	merged := start.Tr()
	scratch := start
	for _, cmd := range c.cmds {
		var got *state.Transaction
		if !cmd(scratch, func(tr *state.Transaction) { got = tr }) {
			return nil, false
		}
		if got == nil {
			continue
		}
		next, err := scratch.Apply(got)
		if err != nil {
			return nil, false
		}
		if !merge(merged, got, next) {
			return nil, false
		}
		scratch = next
	}
	return merged, true
}

// merge folds tr, applied to produce next, into merged.
func merge(merged, tr *state.Transaction, next *state.State) bool {
	for _, step := range tr.Steps() {
		if err := merged.Step(step); err != nil {
			return false
		}
	}
	if tr.SelectionSet() || tr.DocChanged() {
		merged.SetSelection(next.Selection())
	}
	if tr.StoredMarksSet() {
		merged.SetStoredMarks(tr.StoredMarks())
	}
	for k, v := range tr.Metas() {
		merged.SetMeta(k, v)
	}
	if tr.ScrolledIntoView() {
		merged.ScrollIntoView()
	}
	return true
}
