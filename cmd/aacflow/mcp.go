package main

import (
	"fmt"

	"github.com/aretw0/aacflow"
	"github.com/aretw0/aacflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts the engine as an MCP Server, exposing the compose_sentence,
record_phrase and get_graph tools to AI agents.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stack, err := setupStack(cmd)
			if err != nil {
				return err
			}
			defer stack.Close()

			srv := mcp.NewServer(stack.Engine, aacflow.Version, stack.Logger)

			switch transport {
			case "stdio":
				stack.Logger.Info("Starting MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				return srv.ServeSSE(cmd.Context(), addr)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio or sse")
	cmd.Flags().StringVar(&addr, "mcp-addr", ":8081", "Address to listen on for the sse transport")
	return cmd
}
