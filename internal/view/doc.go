// Package view hosts an editor state for an embedding application.
//
// A View owns the only mutable reference to the current state. Hosts feed
// input through TextInput and HandleEvent; plugins and commands change the
// document by dispatching transactions back through the view, which applies
// them, redraws, and tells plugin views.
//
// # Rendering
//
// The rendered tree is an x/net/html node tree kept in step with the state.
// Decorations from the plugins are drawn into it: widgets as elements at
// their position, inline decorations as spans, node decorations as extra
// attributes. Top-level blocks whose node and decorations did not change
// keep their elements between redraws. Nodes with a registered node view
// are drawn by it; node views survive redraws for as long as their node
// does and are destroyed when it goes away.
//
// # Positions
//
// Work that completes later, such as an upload, holds a TrackedPos. The
// view maps every tracked position through each transaction it applies, so
// the position is valid against the state at the time it is used.
package view
