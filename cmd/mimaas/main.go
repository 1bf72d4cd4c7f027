// Command mimaas is the command line client for the MIMaaS evaluation service
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mimaas/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
