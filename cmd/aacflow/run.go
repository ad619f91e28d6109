package main

import (
	"os"

	"github.com/aretw0/aacflow"
	"github.com/aretw0/aacflow/internal/cli"
	"github.com/aretw0/aacflow/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newRunCmd() *cobra.Command {
	var opts cli.RunOptions

	cmd := &cobra.Command{
		Use:   "run <user-id> [user-id...]",
		Short: "Compose a sentence from each user's recent phrases",
		Long: `Runs the workflow for one or more users and prints the final sentence.
Several users run as a batch, at most --concurrency at a time.
With --tokens the phrase store is skipped and the given tokens are composed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stack, err := setupStack(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			opts.UserIDs = args
			if !opts.JSON && term.IsTerminal(int(os.Stdout.Fd())) {
				tui.PrintBanner(cmd.ErrOrStderr(), aacflow.Version)
			}
			return cli.Execute(cmd.Context(), stack.Engine, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Tokens, "tokens", "t", nil, "Compose from these tokens instead of the phrase store")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", 4, "Maximum concurrent runs in a batch (0 is unbounded)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "Render the per-step trace")
	cmd.Flags().BoolVar(&opts.Graph, "graph", false, "Print the graph with the visited path highlighted")
	return cmd
}
