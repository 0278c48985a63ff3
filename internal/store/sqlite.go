package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/dshills/inkwell/internal/logging"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	doc TEXT NOT NULL,
	selection TEXT NOT NULL,
	html TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);`

// SQLiteStore keeps snapshots in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	log    *logging.Logger
	closed atomic.Bool
}

// OpenSQLite opens or creates the database at path. Use ":memory:" for a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string, log *logging.Logger) (*SQLiteStore, error) {
	log = logging.OrNop(log).WithComponent("store.sqlite")
	dsn := "file:" + path
	log.Debug("opening database %s", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each connection would get its own database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	log.Info("connected to database %s", path)
	return &SQLiteStore{db: db, path: path, log: log}, nil
}

// Close closes the database. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Save implements DocumentStore.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.ID == "" {
		return ErrInvalidID
	}
	if s.closed.Load() {
		return ErrClosed
	}
	sel, err := json.Marshal(snap.Selection)
	if err != nil {
		return fmt.Errorf("save %s: %w", snap.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, doc, selection, html, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc = excluded.doc,
			selection = excluded.selection,
			html = excluded.html,
			updated_at = excluded.updated_at`,
		snap.ID, string(snap.Doc), string(sel), snap.HTML, snap.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.log.WithError(err).Error("save %s failed", snap.ID)
		return fmt.Errorf("save %s: %w", snap.ID, err)
	}
	return nil
}

// Load implements DocumentStore.
func (s *SQLiteStore) Load(ctx context.Context, id string) (Snapshot, error) {
	if s.closed.Load() {
		return Snapshot{}, ErrClosed
	}
	var doc, sel, updated string
	snap := Snapshot{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT doc, selection, html, updated_at FROM documents WHERE id = ?`, id).
		Scan(&doc, &sel, &snap.HTML, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", id, err)
	}
	snap.Doc = json.RawMessage(doc)
	if err := json.Unmarshal([]byte(sel), &snap.Selection); err != nil {
		return Snapshot{}, fmt.Errorf("load %s: selection: %w", id, err)
	}
	if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Snapshot{}, fmt.Errorf("load %s: updated_at: %w", id, err)
	}
	return snap, nil
}

// Delete implements DocumentStore.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List implements DocumentStore.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
