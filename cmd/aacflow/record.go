package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/aacflow/internal/cli"
	"github.com/spf13/cobra"
)

func newRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <user-id> [token...]",
		Short: "Append recognised tokens to a user's phrase list",
		Long: `Appends tokens to the user's phrase list in the configured store.
When no tokens are given as arguments they are read from stdin, one per line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, tokens := args[0], args[1:]
			if len(tokens) == 0 {
				piped, err := cli.PipedTokens(os.Stdin)
				if err != nil {
					return err
				}
				tokens = piped
			}
			if len(tokens) == 0 {
				return errors.New("no tokens given")
			}

			_, stack, err := setupStack(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			if err := stack.Engine.Record(cmd.Context(), userID, tokens...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), ">>> Recorded %d token(s) for '%s'.\n", len(tokens), userID)
			return nil
		},
	}
}
