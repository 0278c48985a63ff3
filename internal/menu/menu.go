// Package menu bridges editor state to a toolbar or menu. Each item wraps
// a command; the bridge computes whether the item is enabled by running
// the command without dispatch, and whether it is active from a predicate.
package menu

import (
	"github.com/dshills/inkwell/internal/commands"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

// Item is one menu entry.
type Item struct {
	Name    string
	Label   string
	Command state.Command
	// Active reports whether the item's formatting is in effect. Nil means
	// never active.
	Active func(st *state.State) bool
	// Enabled overrides the dry run of Command when set.
	Enabled func(st *state.State) bool
}

// ItemState is an item's computed state.
type ItemState struct {
	Name    string
	Label   string
	Active  bool
	Enabled bool
}

// Bridge computes item states. It holds no editor state of its own.
type Bridge struct {
	items []Item
	index map[string]int
}

// NewBridge creates a bridge over items. Later items with a duplicate name
// replace earlier ones.
func NewBridge(items ...Item) *Bridge {
	b := &Bridge{index: make(map[string]int, len(items))}
	for _, it := range items {
		if i, ok := b.index[it.Name]; ok {
			b.items[i] = it
			continue
		}
		b.index[it.Name] = len(b.items)
		b.items = append(b.items, it)
	}
	return b
}

// Items returns the items in order.
func (b *Bridge) Items() []Item { return b.items }

// Item returns the item called name.
func (b *Bridge) Item(name string) (Item, bool) {
	i, ok := b.index[name]
	if !ok {
		return Item{}, false
	}
	return b.items[i], true
}

// Refresh computes the state of every item against st.
func (b *Bridge) Refresh(st *state.State) []ItemState {
	out := make([]ItemState, len(b.items))
	for i, it := range b.items {
		out[i] = ItemState{Name: it.Name, Label: it.Label, Enabled: enabled(it, st)}
		if it.Active != nil {
			out[i].Active = it.Active(st)
		}
	}
	return out
}

func enabled(it Item, st *state.State) bool {
	if it.Enabled != nil {
		return it.Enabled(st)
	}
	return it.Command != nil && it.Command(st, nil)
}

// Run runs the item called name on host as a focused chain. It reports
// false for unknown items and items that do not apply.
func (b *Bridge) Run(name string, host commands.Host) bool {
	it, ok := b.Item(name)
	if !ok || it.Command == nil {
		return false
	}
	return commands.Chain(host).Focus().Command(it.Command).Run()
}

func dryRun(cmd state.Command) func(*state.State) bool {
	return func(st *state.State) bool { return cmd(st, nil) }
}

// CanInsert reports whether a node of kind fits at the selection.
func CanInsert(kind model.NodeKind) func(*state.State) bool {
	return func(st *state.State) bool {
		return st.Doc().CanInsert(st.Selection().From(), kind)
	}
}

// MarkItem toggles a mark.
func MarkItem(name, label string, kind model.MarkKind) Item {
	return Item{
		Name:    name,
		Label:   label,
		Command: commands.ToggleMark(kind, nil),
		Active:  func(st *state.State) bool { return commands.MarkActive(st, kind) },
	}
}

// BlockItem converts textblocks.
func BlockItem(name, label string, kind model.NodeKind, attrs model.Attrs) Item {
	return Item{
		Name:    name,
		Label:   label,
		Command: commands.SetNodeType(kind, attrs),
		Active:  func(st *state.State) bool { return commands.BlockActive(st, kind, attrs) },
	}
}

// WrapItem wraps blocks.
func WrapItem(name, label string, kind model.NodeKind) Item {
	return Item{
		Name:    name,
		Label:   label,
		Command: commands.WrapIn(kind, nil),
		Active:  func(st *state.State) bool { return commands.WrappedIn(st, kind) },
	}
}

// LinkItem links the selection to href, or unlinks it when part of the
// selection is linked already. Hosts that have asked for a URL add it to
// the bridge, where it replaces the default "link" entry.
func LinkItem(href string) Item {
	return Item{
		Name:    "link",
		Label:   "Link",
		Command: commands.ToggleMark(model.Link, model.Attrs{"href": href}),
		Active:  func(st *state.State) bool { return commands.MarkActive(st, model.Link) },
	}
}

// DefaultItems returns the standard toolbar.
func DefaultItems() []Item {
	return []Item{
		MarkItem("bold", "Bold", model.Bold),
		MarkItem("italic", "Italic", model.Italic),
		MarkItem("underline", "Underline", model.Underline),
		MarkItem("strike", "Strikethrough", model.Strike),
		MarkItem("code", "Code", model.Code),
		MarkItem("highlight", "Highlight", model.Highlight),
		// The host supplies href through LinkItem.
		{
			Name:    "link",
			Label:   "Link",
			Active:  LinkItem("").Active,
			Enabled: dryRun(LinkItem("#").Command),
		},
		BlockItem("paragraph", "Paragraph", model.Paragraph, nil),
		BlockItem("heading1", "Heading 1", model.Heading, model.Attrs{"level": 1}),
		BlockItem("heading2", "Heading 2", model.Heading, model.Attrs{"level": 2}),
		BlockItem("heading3", "Heading 3", model.Heading, model.Attrs{"level": 3}),
		WrapItem("blockquote", "Quote", model.Blockquote),
		WrapItem("bulletList", "Bullet list", model.BulletList),
		WrapItem("orderedList", "Numbered list", model.OrderedList),
		{Name: "horizontalRule", Label: "Divider", Command: commands.InsertNode(model.HorizontalRule, nil)},
		// Images come from a file picker or upload; the host supplies src.
		{Name: "image", Label: "Image", Enabled: CanInsert(model.Image)},
	}
}
