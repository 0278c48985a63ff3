package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps snapshots in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Snapshot
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Snapshot)}
}

// Save implements DocumentStore.
func (m *MemoryStore) Save(ctx context.Context, s Snapshot) error {
	if s.ID == "" {
		return ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[s.ID] = s.clone()
	return nil
}

// Load implements DocumentStore.
func (m *MemoryStore) Load(ctx context.Context, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.docs[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return s.clone(), nil
}

// Delete implements DocumentStore.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// List implements DocumentStore.
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
