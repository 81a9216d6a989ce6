package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdav/tabdav/internal/models"
)

func TestTabAdd(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		tab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "  https://go.dev  "})
		require.NoError(t, err)
		assert.NotEmpty(t, tab.ID)
		assert.Equal(t, "https://go.dev", tab.URL)
		assert.Equal(t, "https://go.dev", tab.Title, "title falls back to the URL")
		assert.Equal(t, models.SyncStatusPending, tab.SyncStatus)
		assert.NotNil(t, tab.InboxAt, "ungrouped tabs land in the inbox")
	})

	t.Run("empty url rejected", func(t *testing.T) {
		_, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "   "})
		assert.Error(t, err)
	})

	t.Run("unknown group rejected", func(t *testing.T) {
		_, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://x.example", GroupID: "nope"})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("same URL updates in place", func(t *testing.T) {
		first, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://blog.example", Title: "v1"})
		require.NoError(t, err)

		second, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "HTTPS://BLOG.EXAMPLE", Title: "v2"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID, "case-insensitive dedupe keeps one row")
		assert.Equal(t, "v2", second.Title)
		assert.Greater(t, second.UpdatedAt, first.UpdatedAt)

		all, err := d.tabs.List(ctx, models.TabFilters{})
		require.NoError(t, err)
		assert.Len(t, listByURL(all, "blog.example"), 1)
	})

	t.Run("re-adding an archived tab restores it", func(t *testing.T) {
		tab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://old.example"})
		require.NoError(t, err)
		_, err = d.tabs.Archive(ctx, tab.ID)
		require.NoError(t, err)

		restored, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://old.example"})
		require.NoError(t, err)
		assert.Equal(t, tab.ID, restored.ID)
		assert.False(t, restored.Archived())
	})
}

func listByURL(all []models.Tab, substr string) []models.Tab {
	var out []models.Tab
	for _, tab := range all {
		if strings.Contains(tab.URL, substr) {
			out = append(out, tab)
		}
	}
	return out
}

func TestTabUpdateAndMove(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	group, err := d.group.Create(ctx, models.CreateGroupInput{Name: "work"})
	require.NoError(t, err)
	tab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev"})
	require.NoError(t, err)

	title := "Go docs"
	note := "read later"
	updated, err := d.tabs.Update(ctx, models.UpdateTabInput{ID: tab.ID, Title: &title, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "Go docs", updated.Title)
	assert.Equal(t, "read later", updated.Note)
	assert.Greater(t, updated.UpdatedAt, tab.UpdatedAt, "edits advance the logical clock")

	moved, err := d.tabs.Move(ctx, tab.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, moved.GroupID)
	assert.Nil(t, moved.InboxAt)

	got, err := d.group.Get(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TabCount)

	back, err := d.tabs.Move(ctx, tab.ID, "")
	require.NoError(t, err)
	assert.Empty(t, back.GroupID)
	assert.NotNil(t, back.InboxAt)

	_, err = d.tabs.Move(ctx, tab.ID, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTabArchiveRestore(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	group, err := d.group.Create(ctx, models.CreateGroupInput{Name: "work"})
	require.NoError(t, err)
	tab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", GroupID: group.ID})
	require.NoError(t, err)

	archived, err := d.tabs.Archive(ctx, tab.ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived())
	assert.Empty(t, archived.GroupID)
	assert.Equal(t, group.ID, archived.OriginalGroupID)

	// Archived tabs disappear from the default listing.
	visible, err := d.tabs.List(ctx, models.TabFilters{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	// Archiving twice is a no-op.
	again, err := d.tabs.Archive(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, archived.DeletedAt, again.DeletedAt)

	restored, err := d.tabs.Restore(ctx, tab.ID)
	require.NoError(t, err)
	assert.False(t, restored.Archived())
	assert.Equal(t, group.ID, restored.GroupID, "restore puts the tab back in its group")
	assert.Empty(t, restored.OriginalGroupID)
}

func TestTabRestoreIntoDeletedGroup(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	group, err := d.group.Create(ctx, models.CreateGroupInput{Name: "gone"})
	require.NoError(t, err)
	tab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", GroupID: group.ID})
	require.NoError(t, err)

	_, err = d.tabs.Archive(ctx, tab.ID)
	require.NoError(t, err)
	require.NoError(t, d.group.Delete(ctx, group.ID, false))

	restored, err := d.tabs.Restore(ctx, tab.ID)
	require.NoError(t, err)
	assert.Empty(t, restored.GroupID, "vanished group falls back to the inbox")
	assert.NotNil(t, restored.InboxAt)
}

func TestTabCleanup(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	oldTab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://old.example"})
	require.NoError(t, err)
	_, err = d.tabs.Archive(ctx, oldTab.ID)
	require.NoError(t, err)

	// Let time pass, then archive a fresh one.
	d.clock += time.Hour.Milliseconds()
	freshTab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://fresh.example"})
	require.NoError(t, err)
	_, err = d.tabs.Archive(ctx, freshTab.ID)
	require.NoError(t, err)

	purged, err := d.tabs.Cleanup(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	all, err := d.tabs.List(ctx, models.TabFilters{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "https://fresh.example", all[0].URL)

	purged, err = d.tabs.Cleanup(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, purged, "zero max age disables the purge")
}

func TestTabStats(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	group, err := d.group.Create(ctx, models.CreateGroupInput{Name: "work"})
	require.NoError(t, err)
	_, err = d.tabs.Add(ctx, models.CreateTabInput{URL: "https://a.example", GroupID: group.ID})
	require.NoError(t, err)
	_, err = d.tabs.Add(ctx, models.CreateTabInput{URL: "https://b.example"})
	require.NoError(t, err)

	stats, err := d.tabs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, map[string]int{group.ID: 1, "": 1}, stats.ByGroup)
}
