package commands

import (
	"sort"
	"strconv"
	"sync"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

// Registry maps command names to commands. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]state.Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]state.Command)}
}

// DefaultRegistry returns a registry holding the standard commands.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("bold", ToggleMark(model.Bold, nil))
	r.Register("italic", ToggleMark(model.Italic, nil))
	r.Register("underline", ToggleMark(model.Underline, nil))
	r.Register("strike", ToggleMark(model.Strike, nil))
	r.Register("code", ToggleMark(model.Code, nil))
	r.Register("highlight", ToggleMark(model.Highlight, nil))
	r.Register("paragraph", SetNodeType(model.Paragraph, nil))
	for level := 1; level <= 6; level++ {
		r.Register("heading"+strconv.Itoa(level), SetNodeType(model.Heading, model.Attrs{"level": level}))
	}
	r.Register("codeBlock", SetNodeType(model.CodeBlock, nil))
	r.Register("blockquote", WrapIn(model.Blockquote, nil))
	r.Register("bulletList", WrapIn(model.BulletList, nil))
	r.Register("orderedList", WrapIn(model.OrderedList, nil))
	r.Register("aside", WrapIn(model.Aside, nil))
	r.Register("horizontalRule", InsertNode(model.HorizontalRule, nil))
	r.Register("hardBreak", InsertNode(model.HardBreak, nil))
	r.Register("lift", Lift)
	r.Register("splitBlock", SplitBlock)
	r.Register("deleteSelection", DeleteSelection)
	r.Register("selectAll", SelectAll)
	for _, f := range []string{"left", "right", "half-left", "half-right"} {
		r.Register("float-"+f, SetFloat(f))
	}
	return r
}

// Register binds name to cmd, replacing any previous binding.
func (r *Registry) Register(name string, cmd state.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = cmd
}

// Unregister removes name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get returns the command bound to name.
func (r *Registry) Get(name string) (state.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Has reports whether name is bound.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns the bound names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run runs the command bound to name. It reports false for unknown names.
func (r *Registry) Run(name string, st *state.State, dispatch func(*state.Transaction)) bool {
	cmd, ok := r.Get(name)
	if !ok {
		return false
	}
	return cmd(st, dispatch)
}
