package cli

import (
	"context"
	"fmt"

	"github.com/tabdav/tabdav/internal/models"
)

func (a *App) cmdGroups(ctx context.Context) error {
	groups, err := a.groups.List(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(a.out, "No groups.")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintf(a.out, "%-20s %3d tab(s)  %s\n", g.Name, g.TabCount, g.Color)
	}
	return nil
}

func (a *App) cmdGroup(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: group add|rename|rm ...")
	}

	switch args[0] {
	case "add", "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: group add <name> [color]")
		}
		in := models.CreateGroupInput{Name: args[1]}
		if len(args) > 2 {
			in.Color = args[2]
		}
		group, err := a.groups.Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created group %s (%s)\n", group.Name, group.Color)
		return nil

	case "rename":
		if len(args) != 3 {
			return fmt.Errorf("usage: group rename <name> <new-name>")
		}
		group, err := a.groups.GetByName(ctx, args[1])
		if err != nil {
			return fmt.Errorf("group %q: %w", args[1], err)
		}
		if _, err := a.groups.Update(ctx, models.UpdateGroupInput{ID: group.ID, Name: &args[2]}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Renamed %s to %s\n", args[1], args[2])
		return nil

	case "rm", "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: group rm <name> [-cascade]")
		}
		cascade := len(args) > 2 && (args[2] == "-cascade" || args[2] == "--cascade")
		group, err := a.groups.GetByName(ctx, args[1])
		if err != nil {
			return fmt.Errorf("group %q: %w", args[1], err)
		}
		if err := a.groups.Delete(ctx, group.ID, cascade); err != nil {
			return err
		}
		if cascade {
			fmt.Fprintf(a.out, "Deleted group %s and its tabs\n", group.Name)
		} else {
			fmt.Fprintf(a.out, "Deleted group %s, its tabs moved to the inbox\n", group.Name)
		}
		return nil

	default:
		return fmt.Errorf("unknown group subcommand: %s", args[0])
	}
}
