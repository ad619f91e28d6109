package main

import (
	"fmt"
	"os"

	"github.com/aretw0/aacflow/internal/cli"
	"github.com/aretw0/aacflow/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aacflow",
		Short: "aacflow turns gesture phrases into polite, verified sentences",
		Long: `aacflow reads the phrase tokens recognised from a user's gestures, classifies
their intent and drafts one polite sentence with a generator model, checking it
with a verifier model under a bounded retry budget.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands). Every one of them can also
	// be set in aacflow.yaml or through AACFLOW_* environment variables.
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default ./"+config.DefaultFile+")")
	pf.String("store", "", "Phrase store driver: redis or memory")
	pf.String("redis-addr", "", "Redis address")
	pf.String("redis-password", "", "Redis password")
	pf.Int("redis-db", 0, "Redis database")
	pf.String("key-prefix", "", "Prefix of the per-user phrase list key")
	pf.Int("window", 0, "How many recent phrases a run reads")
	pf.Int("max-attempts", 0, "Verification attempts before falling back to best effort")
	pf.Int("max-steps", 0, "Ceiling on node invocations per run")
	pf.String("language", "", "Language the sentence is written in")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		newRunCmd(),
		newRecordCmd(),
		newGraphCmd(),
		newServeCmd(),
		newMCPCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig resolves the configuration for cmd from file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

// setupStack loads the configuration and wires the engine. Logs go to stderr
// so stdout stays clean for results and the MCP stdio transport.
func setupStack(cmd *cobra.Command) (*config.Config, *cli.Stack, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log configuration: %w", err)
	}
	stack, err := cli.NewStack(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, stack, nil
}
