// Package config loads and validates nikcli's configuration: model
// routing strategy overrides, provider connection settings, session
// storage location, tool/sandbox policy, and observability exporters.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is where Load looks when no --config flag is given.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nikcli/config.yaml"
	}
	return filepath.Join(home, ".nikcli", "config.yaml")
}

// Config is the root configuration object, decoded from YAML.
type Config struct {
	Version       int                 `yaml:"version"`
	Model         ModelConfig         `yaml:"model"`
	Providers     ProviderConfig      `yaml:"providers"`
	Session       SessionConfig       `yaml:"session"`
	Tools         ToolsConfig         `yaml:"tools"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ConfigValidationError aggregates every validation issue found in a
// single Load call, so a user fixes the whole file in one pass instead
// of one error at a time.
type ConfigValidationError struct {
	Issues []string
}

func (e *ConfigValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "invalid configuration"
	}
	msg := fmt.Sprintf("invalid configuration (%d issue(s)):", len(e.Issues))
	for _, issue := range e.Issues {
		msg += "\n  - " + issue
	}
	return msg
}

// Load reads, merges, and validates the config file at path. An empty
// path resolves to DefaultConfigPath. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := &Config{Version: CurrentVersion}
		applyDefaults(cfg)
		return cfg, nil
	}

	raw, err := LoadRaw(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if err := ValidateVersion(cfg.Version); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if issues := validateConfig(cfg); len(issues) > 0 {
		return nil, &ConfigValidationError{Issues: issues}
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyModelDefaults(&cfg.Model)
	applyProviderDefaults(&cfg.Providers)
	applySessionDefaults(&cfg.Session)
	applyToolsDefaults(&cfg.Tools)
	applyObservabilityDefaults(&cfg.Observability)
}

func validateConfig(cfg *Config) []string {
	var issues []string
	issues = append(issues, validateProviders(cfg.Providers)...)
	issues = append(issues, validateSession(cfg.Session)...)
	issues = append(issues, validateTools(cfg.Tools)...)
	issues = append(issues, validateObservability(cfg.Observability)...)
	issues = append(issues, pluginValidationIssues(cfg)...)
	return issues
}
