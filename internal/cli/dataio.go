package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) cmdExport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.dataIO.Export(ctx, a.out)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := a.dataIO.Export(ctx, f); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported to %s\n", args[0])
	return nil
}

func (a *App) cmdImport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: import <file>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	tabs, groups, err := a.dataIO.Import(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d tab(s) and %d group(s)\n", tabs, groups)
	return nil
}
