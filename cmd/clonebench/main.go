// Package main provides clonebench, a command that deep copies random fixture
// graphs and reports how long it takes.
//
// Every flag can also be set through the environment, prefixed with
// CLONEBENCH_ ("--log-level" is CLONEBENCH_LOG_LEVEL).
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(goBenchRunner{}).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
