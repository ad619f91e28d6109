package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/aacflow/internal/cli"
)

func main() {
	ctx, stop := cli.WithInterrupt(context.Background())
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err = cli.HandleExecutionError(err); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if sig := cli.Interrupted(ctx); sig != nil {
		fmt.Fprintf(os.Stderr, "\n>>> Stopped by %v\n", sig)
	}
}
