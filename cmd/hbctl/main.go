// Command hbctl is the command-line client for the household ledger.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"housebudget/internal/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
