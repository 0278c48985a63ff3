// Package terminal runs an editor view in a terminal using tcell.
//
// The terminal shows one row per textblock and per leaf block, the same
// grid the view's GridLayout uses with one-cell metrics, so document
// positions and screen cells convert with the view's own CoordsAtPos and
// PosAtCoords. A narrow gutter on the left marks headings, quotes, list
// items and code. The bottom row is a status line.
//
// Keys go to the view's keymap first. Keys nothing handles fall back to
// basic editing: typing, deleting, and moving the cursor. Bracketed
// pastes are delivered as paste events, and Post runs work from other
// goroutines on the event loop, which the upload plugin uses to insert
// finished uploads.
package terminal
