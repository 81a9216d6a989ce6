package cli

import (
	"context"
	"fmt"
)

// dispatch routes one command, shared by the one-shot mode and the REPL.
func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		a.printHelp()
		return nil
	case "add":
		return a.cmdAdd(ctx, args)
	case "l", "list":
		return a.cmdList(ctx, args)
	case "move":
		return a.cmdMove(ctx, args)
	case "archive":
		return a.cmdArchive(ctx, args)
	case "restore":
		return a.cmdRestore(ctx, args)
	case "rm":
		return a.cmdRemove(ctx, args)
	case "cleanup":
		return a.cmdCleanup(ctx)
	case "groups":
		return a.cmdGroups(ctx)
	case "group":
		return a.cmdGroup(ctx, args)
	case "sync":
		return a.cmdSync(ctx)
	case "status":
		return a.cmdStatus(ctx)
	case "test":
		return a.cmdTestConnection(ctx)
	case "watch":
		return a.cmdWatch(ctx)
	case "export":
		return a.cmdExport(ctx, args)
	case "import":
		return a.cmdImport(ctx, args)
	case "configure":
		return a.cmdConfigure(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s (try 'help')", cmd)
	}
}

func (a *App) printHelp() {
	fmt.Fprint(a.out, `Commands:
  add <url> [title...]          save a tab
  list [-a] [-g group] [query]  list tabs (-a with archived, -g inbox for ungrouped)
  move <id> <group|inbox>       assign a tab to a group
  archive <id>                  move a tab to history
  restore <id>                  bring an archived tab back
  rm <id>                       delete a tab for good
  cleanup                       purge old archived tabs
  groups                        list groups
  group add <name> [color]      create a group
  group rename <name> <new>     rename a group
  group rm <name> [-cascade]    delete a group (tabs go to the inbox)
  sync                          synchronize with the remote
  status                        show sync state and tab counts
  test                          test the remote connection
  watch                         sync periodically until interrupted
  export [file]                 write all data as JSON (stdout by default)
  import <file>                 load data from a JSON export
  configure [file]              interactively write a config file
  exit                          leave the interactive mode
`)
}
