// Package main is the entry point for the reqmail CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/danielolaszy/reqmail/cmd"
	"github.com/danielolaszy/reqmail/internal/logging"
)

var version = "dev"

// main executes the root command and exits non-zero when a notification
// could not be built.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.Debug("starting reqmail", "version", version)

	if err := cmd.Execute(ctx); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
