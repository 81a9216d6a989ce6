package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdav/tabdav/internal/models"
)

func TestGroupCreate(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	first, err := d.group.Create(ctx, models.CreateGroupInput{Name: "  reading  "})
	require.NoError(t, err)
	assert.Equal(t, "reading", first.Name)
	assert.Equal(t, models.GroupColors[0], first.Color, "palette colors are assigned in order")

	second, err := d.group.Create(ctx, models.CreateGroupInput{Name: "work", Color: "#123456"})
	require.NoError(t, err)
	assert.Equal(t, "#123456", second.Color, "an explicit color is kept")

	third, err := d.group.Create(ctx, models.CreateGroupInput{Name: "later"})
	require.NoError(t, err)
	assert.Equal(t, models.GroupColors[2], third.Color)

	_, err = d.group.Create(ctx, models.CreateGroupInput{Name: "reading"})
	assert.ErrorIs(t, err, models.ErrDuplicateName)

	_, err = d.group.Create(ctx, models.CreateGroupInput{Name: "   "})
	assert.Error(t, err)
}

func TestGroupUpdate(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	group, err := d.group.Create(ctx, models.CreateGroupInput{Name: "reading"})
	require.NoError(t, err)

	name := "reading list"
	color := "#000000"
	updated, err := d.group.Update(ctx, models.UpdateGroupInput{ID: group.ID, Name: &name, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "reading list", updated.Name)
	assert.Equal(t, "#000000", updated.Color)
	assert.Greater(t, updated.UpdatedAt, group.UpdatedAt)

	got, err := d.group.GetByName(ctx, "reading list")
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.ID)

	_, err = d.group.Update(ctx, models.UpdateGroupInput{ID: "missing", Name: &name})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGroupDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("tabs move to the inbox", func(t *testing.T) {
		d := newDevice(t, newFakeStore())
		group, err := d.group.Create(ctx, models.CreateGroupInput{Name: "work"})
		require.NoError(t, err)
		tab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", GroupID: group.ID})
		require.NoError(t, err)

		require.NoError(t, d.group.Delete(ctx, group.ID, false))

		got, err := d.tabs.Get(ctx, tab.ID)
		require.NoError(t, err)
		assert.Empty(t, got.GroupID)
		assert.NotNil(t, got.InboxAt)
		assert.Equal(t, models.SyncStatusPending, got.SyncStatus)
	})

	t.Run("cascade removes tabs", func(t *testing.T) {
		d := newDevice(t, newFakeStore())
		group, err := d.group.Create(ctx, models.CreateGroupInput{Name: "work"})
		require.NoError(t, err)
		tab, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", GroupID: group.ID})
		require.NoError(t, err)
		kept, err := d.tabs.Add(ctx, models.CreateTabInput{URL: "https://keep.example"})
		require.NoError(t, err)

		require.NoError(t, d.group.Delete(ctx, group.ID, true))

		_, err = d.tabs.Get(ctx, tab.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = d.tabs.Get(ctx, kept.ID)
		assert.NoError(t, err, "tabs outside the group survive")
	})

	t.Run("unknown group", func(t *testing.T) {
		d := newDevice(t, newFakeStore())
		assert.ErrorIs(t, d.group.Delete(ctx, "missing", false), models.ErrNotFound)
	})
}

func TestGroupList(t *testing.T) {
	d := newDevice(t, newFakeStore())
	ctx := context.Background()

	work, err := d.group.Create(ctx, models.CreateGroupInput{Name: "work"})
	require.NoError(t, err)
	_, err = d.group.Create(ctx, models.CreateGroupInput{Name: "archive"})
	require.NoError(t, err)
	_, err = d.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", GroupID: work.ID})
	require.NoError(t, err)

	list, err := d.group.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "archive", list[0].Name, "ordered by name")
	assert.Equal(t, "work", list[1].Name)
	assert.Equal(t, 1, list[1].TabCount)
}
