package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	carbonanalyzer "github.com/menta2k/carbon-analyzer"
	"github.com/menta2k/carbon-analyzer/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(carbonanalyzer.GetVersion()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
