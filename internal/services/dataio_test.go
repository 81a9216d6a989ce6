package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdav/tabdav/internal/logging"
	"github.com/tabdav/tabdav/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()

	src := newDevice(t, newFakeStore())
	group, err := src.group.Create(ctx, models.CreateGroupInput{Name: "work"})
	require.NoError(t, err)
	_, err = src.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", Title: "Go", GroupID: group.ID})
	require.NoError(t, err)
	archivedTab, err := src.tabs.Add(ctx, models.CreateTabInput{URL: "https://old.example"})
	require.NoError(t, err)
	_, err = src.tabs.Archive(ctx, archivedTab.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	exporter := NewDataIO(src.db, logging.Nop())
	require.NoError(t, exporter.Export(ctx, &buf))

	dst := newDevice(t, newFakeStore())
	importer := NewDataIO(dst.db, logging.Nop())
	tabsImported, groupsImported, err := importer.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, tabsImported)
	assert.Equal(t, 1, groupsImported)

	all, err := dst.tabs.List(ctx, models.TabFilters{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, tab := range all {
		assert.Equal(t, models.SyncStatusPending, tab.SyncStatus,
			"imported rows are pushed on the next sync")
	}

	got, err := dst.group.Get(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "work", got.Name)
	assert.Equal(t, 1, got.TabCount)
}

func TestImportKeepsNewerLocalRows(t *testing.T) {
	ctx := context.Background()

	src := newDevice(t, newFakeStore())
	_, err := src.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", Title: "stale"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewDataIO(src.db, logging.Nop()).Export(ctx, &buf))

	dst := newDevice(t, newFakeStore())
	dst.clock = 1000
	local, err := dst.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", Title: "fresh"})
	require.NoError(t, err)

	importer := NewDataIO(dst.db, logging.Nop())
	tabsImported, _, err := importer.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Zero(t, tabsImported, "older import must not clobber a newer row")

	got, err := dst.tabs.Get(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Title)
}

func TestImportMalformed(t *testing.T) {
	d := newDevice(t, newFakeStore())
	importer := NewDataIO(d.db, logging.Nop())

	_, _, err := importer.Import(context.Background(), strings.NewReader(`{"tabs": nope`))
	assert.ErrorContains(t, err, "failed to parse document")
}
