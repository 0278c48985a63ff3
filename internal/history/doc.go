// Package history provides undo and redo for editor states.
//
// History is a plugin whose state field holds two stacks of events. An
// event is a group of inverted steps plus the selection to restore:
//
//	st, _ := state.New(state.Config{
//	    Doc:     doc,
//	    Plugins: []state.Plugin{history.New(), history.Keymap()},
//	})
//
//	// Later, from a toolbar or key binding:
//	history.Undo(st, dispatch)
//
// # Grouping
//
// A transaction joins the previous event instead of starting a new one when
// it carries the same non-empty input type, arrives within the group delay
// (500ms by default) and touches the range the previous one changed.
// Transactions appended by plugins always join the event of their root.
//
// # Remapping
//
// Transactions kept out of history (MetaAddToHistory false) still change the
// document. The stored events are rebased over them so that undo keeps
// applying to the right content. Steps that no longer apply are dropped.
//
// # Depth
//
// The undo stack holds at most Depth events (100 by default); the oldest are
// discarded first.
package history
