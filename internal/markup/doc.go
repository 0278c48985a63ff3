// Package markup converts documents to and from HTML and exports them as
// markdown.
//
// Parsing follows per-kind DOM rules: a tag, optional attribute
// predicates and inline style checks decide which node or mark an element
// becomes. Elements no rule matches are transparent: their children are
// parsed in place. Serializing is the inverse, so a document survives an
// HTML round trip unchanged apart from whitespace runs, which collapse.
//
// Pasted HTML goes through Sanitize before it is parsed. Sanitize keeps
// only the markup the rules understand and drops images, which arrive
// through the upload path instead.
package markup
