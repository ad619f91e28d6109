package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/aacflow"
	"github.com/aretw0/aacflow/internal/presentation/graph"
	"github.com/aretw0/aacflow/pkg/adapters/memory"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newGraphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the workflow graph",
		Long:  `Outputs the workflow graph as a Mermaid diagram (graph TD), JSON or YAML.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The graph's shape does not depend on the store or providers.
			p := memory.NewScriptedProvider()
			engine, err := aacflow.New(memory.NewStore(), p, p)
			if err != nil {
				return err
			}
			g := engine.Graph()
			out := cmd.OutOrStdout()

			switch format {
			case "mermaid":
				fmt.Fprint(out, graph.GenerateMermaid(g, nil))
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(g.Describe())
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(g.Describe())
			default:
				return fmt.Errorf("unknown format %q (want mermaid, json or yaml)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "Output format: mermaid, json or yaml")
	return cmd
}
