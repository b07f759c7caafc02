package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"idpclient/internal/cli"
)

// main wires the command tree to the process: signals cancel in-flight
// requests and errors become exit codes.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
