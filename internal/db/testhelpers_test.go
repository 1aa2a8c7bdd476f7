package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/engine"
	"github.com/udisondev/powerlevel/internal/model"
	"github.com/udisondev/powerlevel/internal/testutil"
)

// sampleSnapshot builds a snapshot through a real engine.
func sampleSnapshot(tb testing.TB) *engine.Snapshot {
	tb.Helper()

	e := engine.New(nil, engine.DefaultOptions())
	require.NoError(tb, e.SetStats(model.CharacterStats{
		BaseHealth: 120, Vitality: 10, SoulPower: 5, SoulHP: 5, BaseMultiplier: 1.5,
	}))
	require.NoError(tb, e.SetSlider(energy.TypeKi, 25))
	require.NoError(tb, e.AddModifier(model.Modifier{Name: "rage", Value: 2, Kind: model.ModifierMultiplicative}))
	e.SetBaseDamage(40)
	e.Refresh()
	e.Calculate()

	snap, err := e.Gather()
	require.NoError(tb, err)
	return snap
}

// openTestSQLite opens a store in a temp dir closed at test end.
func openTestSQLite(tb testing.TB) *SQLiteStore {
	tb.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(tb.TempDir(), "powerlevel.db"))
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// testSnapshotStore runs the SnapshotStore contract against store.
func testSnapshotStore(t *testing.T, store SnapshotStore) {
	t.Helper()
	ctx := testutil.ContextWithTimeout(t, 10*time.Second)
	key := ProfileKey("user-" + t.Name())

	_, err := store.Load(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	snap := sampleSnapshot(t)
	require.NoError(t, store.Save(ctx, key, snap))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	snap.Statistics.AttackCount = 99
	require.NoError(t, store.Save(ctx, key, snap))
	got, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 99, got.Statistics.AttackCount, "save overwrites")

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Load(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
}

// testCustomTypeStore runs the CustomTypeStore contract against store.
func testCustomTypeStore(t *testing.T, store CustomTypeStore) {
	t.Helper()
	ctx := testutil.ContextWithTimeout(t, 10*time.Second)

	require.NoError(t, store.SaveCustomType(ctx, energy.TypeDefinition{ID: "spirit", Name: "Spirit", Formula: "soulHp * 2"}))
	require.NoError(t, store.SaveCustomType(ctx, energy.TypeDefinition{ID: "void", Name: "Void", Color: "#000000", Formula: "vitality"}))
	require.NoError(t, store.SaveCustomType(ctx, energy.TypeDefinition{ID: "spirit", Name: "Spirit", Formula: "soulHp * 3"}))

	defs, err := store.LoadCustomTypes(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	byID := make(map[string]energy.TypeDefinition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	assert.Equal(t, "soulHp * 3", byID["spirit"].Formula)
	assert.Equal(t, "#000000", byID["void"].Color)

	require.NoError(t, store.DeleteCustomType(ctx, "spirit"))
	defs, err = store.LoadCustomTypes(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "void", defs[0].ID)
}
