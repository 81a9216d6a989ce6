package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/tabdav/tabdav/internal/models"
)

func (a *App) cmdAdd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: add <url> [title...]")
	}

	tab, err := a.tabs.Add(ctx, models.CreateTabInput{
		URL:   args[0],
		Title: strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved %s (%s)\n", tab.Title, shortID(tab.ID))
	return nil
}

func (a *App) cmdList(ctx context.Context, args []string) error {
	filters := models.TabFilters{}
	var terms []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-a", "--all":
			filters.IncludeArchived = true
		case "-g", "--group":
			if i+1 >= len(args) {
				return fmt.Errorf("usage: list -g <group>")
			}
			i++
			if args[i] == "inbox" {
				filters.InboxOnly = true
				continue
			}
			group, err := a.groups.GetByName(ctx, args[i])
			if err != nil {
				return fmt.Errorf("group %q: %w", args[i], err)
			}
			filters.GroupID = group.ID
		default:
			terms = append(terms, args[i])
		}
	}
	filters.Query = strings.Join(terms, " ")

	tabs, err := a.tabs.List(ctx, filters)
	if err != nil {
		return err
	}
	if len(tabs) == 0 {
		fmt.Fprintln(a.out, "No tabs.")
		return nil
	}

	groupNames, err := a.groupNames(ctx)
	if err != nil {
		return err
	}

	for _, tab := range tabs {
		marker := " "
		if tab.Archived() {
			marker = "x"
		}
		location := "inbox"
		if name, ok := groupNames[tab.GroupID]; ok {
			location = name
		}
		fmt.Fprintf(a.out, "[%s] %s  %s  %s  (%s)\n",
			marker, shortID(tab.ID), tab.Title, tab.URL, location)
	}
	return nil
}

func (a *App) cmdMove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: move <id> <group|inbox>")
	}

	tab, err := a.resolveTab(ctx, args[0])
	if err != nil {
		return err
	}

	groupID := ""
	if args[1] != "inbox" {
		group, err := a.groups.GetByName(ctx, args[1])
		if err != nil {
			return fmt.Errorf("group %q: %w", args[1], err)
		}
		groupID = group.ID
	}

	if _, err := a.tabs.Move(ctx, tab.ID, groupID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved %s to %s\n", tab.Title, args[1])
	return nil
}

func (a *App) cmdArchive(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: archive <id>")
	}
	tab, err := a.resolveTab(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := a.tabs.Archive(ctx, tab.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Archived %s\n", tab.Title)
	return nil
}

func (a *App) cmdRestore(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: restore <id>")
	}
	tab, err := a.resolveTab(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := a.tabs.Restore(ctx, tab.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored %s\n", tab.Title)
	return nil
}

func (a *App) cmdRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <id>")
	}
	tab, err := a.resolveTab(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.tabs.Delete(ctx, tab.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", tab.Title)
	return nil
}

func (a *App) cmdCleanup(ctx context.Context) error {
	purged, err := a.tabs.Cleanup(ctx, a.cfg.CleanupMaxAge)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Purged %d archived tab(s) older than %s\n", purged, a.cfg.CleanupMaxAge)
	return nil
}

// resolveTab finds a tab by id or unique id prefix, so users can paste the
// short ids the list command prints.
func (a *App) resolveTab(ctx context.Context, idOrPrefix string) (*models.Tab, error) {
	tab, err := a.tabs.Get(ctx, idOrPrefix)
	if err == nil {
		return tab, nil
	}

	all, err := a.tabs.List(ctx, models.TabFilters{IncludeArchived: true})
	if err != nil {
		return nil, err
	}

	var matches []models.Tab
	for _, t := range all {
		if strings.HasPrefix(t.ID, idOrPrefix) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("tab %q: %w", idOrPrefix, models.ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("tab id %q is ambiguous (%d matches)", idOrPrefix, len(matches))
	}
}

func (a *App) groupNames(ctx context.Context) (map[string]string, error) {
	groups, err := a.groups.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
