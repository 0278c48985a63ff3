// Package store persists editor documents.
//
// A Snapshot is the persisted form of an editor state: the document as
// JSON, the selection, and a rendered HTML copy for readers that do not
// load the schema. Stores implement DocumentStore:
//
//   - MemoryStore keeps snapshots in a map, for tests and scratch sessions.
//   - SQLiteStore keeps them in a SQLite database file.
//   - CachedStore wraps another store with an expiring read cache.
//
// Every store is safe for concurrent use.
package store
