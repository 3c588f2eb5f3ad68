// Command footprint records everyday activities and reports their carbon
// footprint and badge progress.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Embedded zone data so tracking.timezone works on hosts without tzdata.
	_ "time/tzdata"

	"github.com/rshade/footprint/internal/cli"
	"github.com/rshade/footprint/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCode(err)
	}
	return 0
}
