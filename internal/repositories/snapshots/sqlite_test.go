package snapshots

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdav/tabdav/internal/migrations"
	"github.com/tabdav/tabdav/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(db))
	return db
}

func TestSnapshotLifecycle(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, found, err := r.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, found, "fresh store has no baseline")

	require.NoError(t, r.SaveSnapshot(ctx, []byte(`{"version":1}`), 100))
	require.NoError(t, r.SaveSnapshot(ctx, []byte(`{"version":1,"updatedAt":2}`), 200))

	data, found, err := r.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"version":1,"updatedAt":2}`, string(data))

	require.NoError(t, r.DeleteSnapshot(ctx))
	_, found, err = r.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMetadata(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	md, err := r.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateIdle, md.State)
	assert.Zero(t, md.LastSyncTime)

	want := &models.SyncMetadata{
		LastSyncTime: 123,
		LocalVersion: 7,
		State:        models.SyncStateError,
		ErrorMessage: "remote unreachable",
	}
	require.NoError(t, r.SaveMetadata(ctx, want))

	got, err := r.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
