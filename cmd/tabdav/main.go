package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tabdav/tabdav/internal/cli"
	"github.com/tabdav/tabdav/internal/config"
	"github.com/tabdav/tabdav/internal/flagx"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	args := flagx.CommandArgs(os.Args[1:])
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
