package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long:  `Resolves defaults, the config file, AACFLOW_* variables and flags, and prints the result with secrets redacted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Store.Password != "" {
				cfg.Store.Password = redacted
			}
			if cfg.Store.EncryptionKey != "" {
				cfg.Store.EncryptionKey = redacted
			}
			for i := range cfg.Store.FallbackKeys {
				cfg.Store.FallbackKeys[i] = redacted
			}
			if cfg.Generator.APIKey != "" {
				cfg.Generator.APIKey = redacted
			}
			if cfg.Verifier.APIKey != "" {
				cfg.Verifier.APIKey = redacted
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}
