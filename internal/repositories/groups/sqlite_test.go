package groups

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

func newGroup(id, name string) *models.Group {
	return &models.Group{ID: id, Name: name, CreatedAt: 10, UpdatedAt: 10}
}

func TestCreateOrUpdate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	g := newGroup("g1", "reading")
	g.Color = "#F44336"
	require.NoError(t, r.CreateOrUpdate(ctx, g))

	got, err := r.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, g, got)

	g.Name = "reading list"
	g.UpdatedAt = 20
	require.NoError(t, r.CreateOrUpdate(ctx, g))

	got, err = r.GetByName(ctx, "reading list")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.ID)
	assert.Equal(t, int64(20), got.UpdatedAt)
}

func TestCreateOrUpdate_DuplicateName(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, newGroup("g1", "reading")))
	err := r.CreateOrUpdate(ctx, newGroup("g2", "reading"))
	assert.ErrorIs(t, err, models.ErrDuplicateName)
}

func TestGetAll_OrderedByName(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, newGroup("g1", "zeta")))
	require.NoError(t, r.CreateOrUpdate(ctx, newGroup("g2", "alpha")))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[1].Name)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, newGroup("g1", "a")))
	require.NoError(t, r.CreateOrUpdate(ctx, newGroup("g2", "b")))
	require.NoError(t, r.CreateOrUpdate(ctx, newGroup("g3", "c")))

	require.NoError(t, r.DeleteByID(ctx, "g1"))
	assert.ErrorIs(t, r.DeleteByID(ctx, "g1"), models.ErrNotFound)

	require.NoError(t, r.DeleteByIDs(ctx, []string{"g2", "g3"}))
	require.NoError(t, r.DeleteByIDs(ctx, nil))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRefreshTabCounts(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, newGroup("g1", "a")))
	require.NoError(t, r.CreateOrUpdate(ctx, newGroup("g2", "b")))

	insert := `INSERT INTO tabs (id, url, url_key, group_id, deleted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(insert, "t1", "https://a.example", "https://a.example", "g1", nil, 1, 1)
	require.NoError(t, err)
	_, err = db.Exec(insert, "t2", "https://b.example", "https://b.example", "g1", nil, 1, 1)
	require.NoError(t, err)
	// Archived tabs do not count.
	_, err = db.Exec(insert, "t3", "https://c.example", "https://c.example", "g1", 5, 1, 1)
	require.NoError(t, err)

	require.NoError(t, r.RefreshTabCounts(ctx))

	g1, err := r.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, g1.TabCount)

	g2, err := r.GetByID(ctx, "g2")
	require.NoError(t, err)
	assert.Zero(t, g2.TabCount)
}
