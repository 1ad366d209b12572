package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nikcli-go/nikcli/internal/config"
	"github.com/nikcli-go/nikcli/internal/corerr"
)

func buildInitCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}

			if _, err := os.Stat(path); err == nil && !overwrite {
				return corerr.Validation("%s already exists; pass --overwrite to replace it", path)
			}

			// Loading a path that doesn't exist returns a Config with every
			// section's defaults already applied.
			cfg, err := config.Load(filepath.Join(os.TempDir(), "nikcli-init-does-not-exist.yaml"))
			if err != nil {
				return err
			}

			payload, err := yaml.Marshal(cfg)
			if err != nil {
				return corerr.Internal("marshal default config: %v", err)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return corerr.Io(err)
			}
			if err := os.WriteFile(path, payload, 0o644); err != nil {
				return corerr.Io(err)
			}
			if err := os.MkdirAll(cfg.Session.Root, 0o755); err != nil {
				return corerr.Io(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "session storage: %s\n", cfg.Session.Root)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}
