// Package db persists engine snapshots and custom energy types.
package db

import (
	"context"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/engine"
)

// ErrNotFound is returned by Load when no snapshot exists for the key.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore persists engine snapshots under opaque per-user keys.
type SnapshotStore interface {
	Load(ctx context.Context, key string) (*engine.Snapshot, error)
	Save(ctx context.Context, key string, snap *engine.Snapshot) error
	Delete(ctx context.Context, key string) error
}

// ProfileKey derives the opaque storage key for a user identifier.
func ProfileKey(userID string) string {
	sum := blake2b.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// CustomTypeStore persists user-defined energy types.
type CustomTypeStore interface {
	energy.CustomTypeSource
	SaveCustomType(ctx context.Context, def energy.TypeDefinition) error
	DeleteCustomType(ctx context.Context, id string) error
}

var (
	_ SnapshotStore   = (*MemoryStore)(nil)
	_ SnapshotStore   = (*SQLiteStore)(nil)
	_ SnapshotStore   = (*SnapshotRepository)(nil)
	_ CustomTypeStore = (*MemoryStore)(nil)
	_ CustomTypeStore = (*SQLiteStore)(nil)
	_ CustomTypeStore = (*EnergyTypeRepository)(nil)
)
