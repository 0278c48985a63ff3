package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/state"
)

// DocumentStore saves and loads snapshots by ID.
type DocumentStore interface {
	// Save creates or replaces the snapshot with s.ID.
	Save(ctx context.Context, s Snapshot) error
	// Load returns ErrNotFound for an unknown ID.
	Load(ctx context.Context, id string) (Snapshot, error)
	// Delete returns ErrNotFound for an unknown ID.
	Delete(ctx context.Context, id string) error
	// List returns the stored IDs in ascending order.
	List(ctx context.Context) ([]string, error)
}

// Snapshot is a persisted editor state.
type Snapshot struct {
	ID        string              `json:"id"`
	Doc       json.RawMessage     `json:"doc"`
	Selection state.SelectionJSON `json:"selection"`
	HTML      string              `json:"html"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// NewID returns a fresh document ID.
func NewID() string {
	return uuid.NewString()
}

// FromState captures st under id. UpdatedAt is taken from now.
func FromState(id string, st *state.State, now time.Time) (Snapshot, error) {
	if id == "" {
		return Snapshot{}, ErrInvalidID
	}
	doc, err := json.Marshal(st.Doc())
	if err != nil {
		return Snapshot{}, fmt.Errorf("encoding %s: %w", id, err)
	}
	return Snapshot{
		ID:        id,
		Doc:       doc,
		Selection: st.Selection().JSON(),
		HTML:      markup.SerializeHTML(st.Doc()),
		UpdatedAt: now.UTC(),
	}, nil
}

// State restores the snapshot. cfg supplies the schema and plugins.
func (s Snapshot) State(cfg state.Config) (*state.State, error) {
	data, err := json.Marshal(struct {
		Doc       json.RawMessage     `json:"doc"`
		Selection state.SelectionJSON `json:"selection"`
	}{s.Doc, s.Selection})
	if err != nil {
		return nil, err
	}
	st, err := state.FromJSON(cfg, data)
	if err != nil {
		return nil, fmt.Errorf("restoring %s: %w", s.ID, err)
	}
	return st, nil
}

func (s Snapshot) clone() Snapshot {
	s.Doc = append(json.RawMessage(nil), s.Doc...)
	return s
}
