// Package state holds the immutable editor state and the transactions that
// move it forward.
//
// A State bundles a document, a Selection, stored marks and the fields of
// its plugins. States are never modified: Apply and ApplyTransaction return
// new states, sharing unchanged document subtrees with the old one.
//
// A Transaction is a transform.Transform that also tracks the selection,
// stored marks and metadata. The selection is remapped through every step
// unless it is set explicitly. Stored marks are cleared by document steps
// unless they are set again afterwards.
//
// Plugins participate at the state level through optional interfaces:
// StateField keeps a value alongside the document, TransactionFilter can
// veto a transaction and TransactionAppender can follow one with its own.
package state
