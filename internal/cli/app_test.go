package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdav/tabdav/internal/config"
	"github.com/tabdav/tabdav/internal/models"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DBPath = ":memory:"

	app, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	out := &bytes.Buffer{}
	app.out = out
	return app, out
}

func TestCmdAddAndList(t *testing.T) {
	app, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.dispatch(ctx, "add", []string{"https://go.dev", "Go", "homepage"}))
	assert.Contains(t, out.String(), "Saved Go homepage")

	out.Reset()
	require.NoError(t, app.dispatch(ctx, "list", nil))
	assert.Contains(t, out.String(), "https://go.dev")
	assert.Contains(t, out.String(), "inbox")

	out.Reset()
	require.NoError(t, app.dispatch(ctx, "list", []string{"no-such-thing"}))
	assert.Contains(t, out.String(), "No tabs.")

	assert.Error(t, app.dispatch(ctx, "add", nil), "add requires a url")
}

func TestCmdGroupFlow(t *testing.T) {
	app, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.dispatch(ctx, "group", []string{"add", "work"}))
	assert.Contains(t, out.String(), "Created group work")

	tab, err := app.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev"})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, app.dispatch(ctx, "move", []string{shortID(tab.ID), "work"}))
	assert.Contains(t, out.String(), "Moved")

	out.Reset()
	require.NoError(t, app.dispatch(ctx, "groups", nil))
	assert.Contains(t, out.String(), "work")
	assert.Contains(t, out.String(), "1 tab(s)")

	out.Reset()
	require.NoError(t, app.dispatch(ctx, "list", []string{"-g", "work"}))
	assert.Contains(t, out.String(), "https://go.dev")

	require.NoError(t, app.dispatch(ctx, "group", []string{"rename", "work", "job"}))
	_, err = app.groups.GetByName(ctx, "job")
	assert.NoError(t, err)

	require.NoError(t, app.dispatch(ctx, "group", []string{"rm", "job"}))
	got, err := app.tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Empty(t, got.GroupID, "tabs fall back to the inbox")

	assert.Error(t, app.dispatch(ctx, "group", []string{"rm", "job"}), "group is gone")
}

func TestCmdArchiveRestoreRemove(t *testing.T) {
	app, out := newTestApp(t)
	ctx := context.Background()

	tab, err := app.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", Title: "Go"})
	require.NoError(t, err)

	// Handlers accept unique id prefixes.
	require.NoError(t, app.dispatch(ctx, "archive", []string{tab.ID[:8]}))
	assert.Contains(t, out.String(), "Archived Go")

	out.Reset()
	require.NoError(t, app.dispatch(ctx, "restore", []string{tab.ID[:8]}))
	assert.Contains(t, out.String(), "Restored Go")

	require.NoError(t, app.dispatch(ctx, "rm", []string{tab.ID}))
	_, err = app.tabs.Get(ctx, tab.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = app.dispatch(ctx, "archive", []string{"deadbeef"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCmdSyncNotConfigured(t *testing.T) {
	app, _ := newTestApp(t)

	assert.ErrorIs(t, app.dispatch(context.Background(), "sync", nil), models.ErrNotConfigured)
	assert.ErrorIs(t, app.dispatch(context.Background(), "watch", nil), models.ErrNotConfigured)
}

func TestCmdStatus(t *testing.T) {
	app, out := newTestApp(t)

	require.NoError(t, app.dispatch(context.Background(), "status", nil))
	assert.Contains(t, out.String(), "not configured")
	assert.Contains(t, out.String(), "Last sync:  never")
}

func TestCmdUnknown(t *testing.T) {
	app, _ := newTestApp(t)
	assert.ErrorContains(t, app.dispatch(context.Background(), "frobnicate", nil), "unknown command")
}

func TestCmdExportImport(t *testing.T) {
	app, out := newTestApp(t)
	ctx := context.Background()

	_, err := app.tabs.Add(ctx, models.CreateTabInput{URL: "https://go.dev", Title: "Go"})
	require.NoError(t, err)

	path := t.TempDir() + "/export.json"
	require.NoError(t, app.dispatch(ctx, "export", []string{path}))
	assert.Contains(t, out.String(), "Exported to")

	other, out2 := newTestApp(t)
	require.NoError(t, other.dispatch(ctx, "import", []string{path}))
	assert.Contains(t, out2.String(), "Imported 1 tab(s)")

	all, err := other.tabs.List(ctx, models.TabFilters{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Go", all[0].Title)
}

func TestREPL(t *testing.T) {
	app, out := newTestApp(t)

	input := "add https://go.dev Go\nlist\nbogus\n\nexit\n"
	scanner := bufio.NewScanner(strings.NewReader(input))

	runREPL(context.Background(), app, scanner, out)

	s := out.String()
	assert.Contains(t, s, "Saved Go")
	assert.Contains(t, s, "https://go.dev")
	assert.Contains(t, s, "Error: unknown command: bogus")
	assert.Contains(t, s, "Bye!")
}

func TestREPLStopsOnEOF(t *testing.T) {
	app, out := newTestApp(t)
	scanner := bufio.NewScanner(strings.NewReader("help\n"))

	runREPL(context.Background(), app, scanner, out)
	assert.Contains(t, out.String(), "Commands:")
}
