package main

import (
	"github.com/aretw0/aacflow"
	"github.com/aretw0/aacflow/internal/cli"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Exposes the workflow as a JSON API over HTTP:

  POST /v1/users/{userID}/sentence   compose (optional body {"tokens": [...]})
  POST /v1/users/{userID}/phrases    record  (body {"tokens": [...]})
  GET  /v1/graph                     workflow definition (?format=mermaid)
  GET  /v1/events                    engine events (SSE, ?run_id=...)
  GET  /healthz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, stack, err := setupStack(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			return cli.Serve(cmd.Context(), stack, cfg.HTTP, aacflow.Version)
		},
	}

	cmd.Flags().String("http-addr", "", "Address to listen on (default :8080)")
	return cmd
}
