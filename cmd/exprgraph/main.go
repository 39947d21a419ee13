// Command exprgraph traces scalar expression documents and renders their
// computation graphs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/exprgraph/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	c := cli.New(os.Stderr, cli.LogInfo)
	c.InstallHooks()
	code := c.Run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
