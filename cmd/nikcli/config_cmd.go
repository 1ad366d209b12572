package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nikcli-go/nikcli/internal/config"
	"github.com/nikcli-go/nikcli/internal/corerr"
)

func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the nikcli configuration file",
	}
	cmd.AddCommand(buildConfigShowCmd(), buildConfigGetCmd(), buildConfigSetCmd())
	return cmd
}

func buildConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return corerr.Internal("marshal config: %v", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func buildConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <dotted.key>",
		Short: "Print a single configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := loadRawConfigFile()
			if err != nil {
				return err
			}
			value, ok := lookupDotted(raw, strings.Split(args[0], "."))
			if !ok {
				return corerr.NotFound("config key %q is not set", args[0])
			}
			out, err := yaml.Marshal(value)
			if err != nil {
				return corerr.Internal("marshal value: %v", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func buildConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <dotted.key> <value>",
		Short: "Set a single configuration value and persist the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := loadRawConfigFile()
			if err != nil {
				return err
			}
			setDotted(raw, strings.Split(args[0], "."), args[1])

			// Round-trip through Config to reject an invalid edit before
			// it's written to disk.
			payload, err := yaml.Marshal(raw)
			if err != nil {
				return corerr.Internal("marshal config: %v", err)
			}
			if err := validateConfigPayload(payload); err != nil {
				return corerr.Validation("invalid configuration after edit: %v", err)
			}

			path := configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return corerr.Io(err)
			}
			if err := os.WriteFile(path, payload, 0o644); err != nil {
				return corerr.Io(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "set %s\n", args[0])
			return nil
		},
	}
}

func loadRawConfigFile() (map[string]any, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	return config.LoadRaw(path)
}

func lookupDotted(m map[string]any, keys []string) (any, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	value, ok := m[keys[0]]
	if !ok {
		return nil, false
	}
	if len(keys) == 1 {
		return value, true
	}
	nested, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	return lookupDotted(nested, keys[1:])
}

func setDotted(m map[string]any, keys []string, value string) {
	if len(keys) == 1 {
		m[keys[0]] = value
		return
	}
	nested, ok := m[keys[0]].(map[string]any)
	if !ok {
		nested = map[string]any{}
	}
	setDotted(nested, keys[1:], value)
	m[keys[0]] = nested
}

// validateConfigPayload writes payload to a scratch file and runs it
// through the full config.Load validation path, so a bad `config set`
// edit is rejected before it overwrites the real file.
func validateConfigPayload(payload []byte) error {
	f, err := os.CreateTemp("", "nikcli-config-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	_, err = config.Load(f.Name())
	return err
}
