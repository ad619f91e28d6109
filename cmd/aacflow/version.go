package main

import (
	"fmt"

	"github.com/aretw0/aacflow"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of aacflow",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aacflow version %s\n", aacflow.Version)
		},
	}
}
