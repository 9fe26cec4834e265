package results

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

func openStores(t *testing.T) map[string]ports.SnapshotStore {
	t.Helper()

	jsonStore, err := NewJSONStore(filepath.Join(t.TempDir(), "snapshots"))
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]ports.SnapshotStore{
		"json":   jsonStore,
		"sqlite": sqliteStore,
	}
}

func TestSnapshotStores_RoundTripIsExact(t *testing.T) {
	// An awkward box volume exercises float persistence: 0.1*0.2*0.3
	// has no short decimal representation.
	snap := workedSnapshot()
	snap.BoxVolume = 0.1 * 0.2 * 0.3

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, snap))

			loaded, err := store.Load(ctx, snap.SessionID)
			require.NoError(t, err)

			assert.Equal(t, snap.SessionID, loaded.SessionID)
			assert.Equal(t, snap.TotalSamples, loaded.TotalSamples)
			assert.Equal(t, snap.Partial, loaded.Partial)
			assert.Equal(t, snap.Counts, loaded.Counts)

			// Bit-identical reconstruction: every derived quantity
			// matches exactly, not within a tolerance.
			for _, want := range snap.Estimates() {
				got, ok := loaded.Estimate(want.Domain)
				require.True(t, ok)
				assert.Equal(t, want.Volume(), got.Volume())
				assert.Equal(t, want.Variance(), got.Variance())
				assert.Equal(t, want.StdDev(), got.StdDev())
			}
		})
	}
}

func TestSnapshotStores_Overwrite(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			snap := workedSnapshot()
			require.NoError(t, store.Save(ctx, snap))

			snap.TotalSamples = 2_000_000
			snap.Counts = []domain.DomainCount{
				{Domain: 1, Hits: 250_000},
				{Domain: 2, Hits: 1_750_000},
			}
			require.NoError(t, store.Save(ctx, snap))

			loaded, err := store.Load(ctx, snap.SessionID)
			require.NoError(t, err)
			assert.Equal(t, uint64(2_000_000), loaded.TotalSamples)
			assert.Equal(t, snap.Counts, loaded.Counts)
		})
	}
}

func TestSnapshotStores_NotFound(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(context.Background(), "no-such-session")
			assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
		})
	}
}

func TestSnapshotStores_RejectInvalidSnapshot(t *testing.T) {
	bad := workedSnapshot()
	bad.SessionID = ""

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Save(context.Background(), bad)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	ctx := context.Background()
	snap := workedSnapshot()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, snap))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, snap.Counts, loaded.Counts)
}
