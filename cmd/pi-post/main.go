// ABOUTME: CLI entry point for pi-post
// ABOUTME: Cancels the command context on SIGINT/SIGTERM so the TUI and dev server shut down cleanly

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mauromedda/pi-post-go/internal/cli"
	// Applies PI_POST_THEME before any style renders.
	_ "github.com/mauromedda/pi-post-go/internal/termfix"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(fmt.Sprintf("%s (%s) built %s", version, commit, date))
	if err := cli.Execute(ctx, root); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
