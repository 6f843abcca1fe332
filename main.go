// Package main is the entry point for the rh-issue CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielolaszy/rh-issue/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
