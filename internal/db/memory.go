package db

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/engine"
)

// MemoryStore keeps encoded snapshots in memory. Snapshots are stored
// encoded so callers never share state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	snapshots   map[string][]byte
	customTypes []energy.TypeDefinition
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

// Load returns the snapshot for key or ErrNotFound.
func (m *MemoryStore) Load(ctx context.Context, key string) (*engine.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.snapshots[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("loading %q: %w", key, ErrNotFound)
	}
	return engine.DecodeSnapshot(data)
}

// Save stores snap under key, replacing any previous snapshot.
func (m *MemoryStore) Save(ctx context.Context, key string, snap *engine.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("saving %q: %w", key, err)
	}
	m.mu.Lock()
	m.snapshots[key] = data
	m.mu.Unlock()
	return nil
}

// Delete removes the snapshot for key. Missing keys are not an error.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.snapshots, key)
	m.mu.Unlock()
	return nil
}

// SaveCustomType upserts a custom energy type.
func (m *MemoryStore) SaveCustomType(ctx context.Context, def energy.TypeDefinition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	def.Capacity = nil
	if i := slices.IndexFunc(m.customTypes, func(d energy.TypeDefinition) bool { return d.ID == def.ID }); i >= 0 {
		m.customTypes[i] = def
		return nil
	}
	m.customTypes = append(m.customTypes, def)
	return nil
}

// LoadCustomTypes implements energy.CustomTypeSource.
func (m *MemoryStore) LoadCustomTypes(ctx context.Context) ([]energy.TypeDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.customTypes), nil
}

// DeleteCustomType removes a custom energy type.
func (m *MemoryStore) DeleteCustomType(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customTypes = slices.DeleteFunc(m.customTypes, func(d energy.TypeDefinition) bool { return d.ID == id })
	return nil
}
