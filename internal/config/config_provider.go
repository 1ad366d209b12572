package config

import (
	"fmt"
	"time"

	"github.com/nikcli-go/nikcli/internal/models"
)

// ProviderEntry holds the connection settings for a single LLM provider.
type ProviderEntry struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	DefaultModel string        `yaml:"default_model"`
	AWSRegion    string        `yaml:"aws_region,omitempty"`
	AWSProfile   string        `yaml:"aws_profile,omitempty"`
}

// ProviderConfig holds per-provider connection settings keyed by
// provider id ("anthropic", "openai", "bedrock", ...).
type ProviderConfig struct {
	Providers map[models.Provider]ProviderEntry `yaml:"providers"`
}

const defaultProviderTimeout = 60 * time.Second

func applyProviderDefaults(cfg *ProviderConfig) {
	if cfg.Providers == nil {
		cfg.Providers = map[models.Provider]ProviderEntry{}
	}
	for id, entry := range cfg.Providers {
		if entry.Timeout == 0 {
			entry.Timeout = defaultProviderTimeout
		}
		cfg.Providers[id] = entry
	}
}

func validateProviders(cfg ProviderConfig) []string {
	var issues []string
	for id, entry := range cfg.Providers {
		if id == "" {
			issues = append(issues, "providers: entry has an empty provider id")
			continue
		}
		if entry.Timeout < 0 {
			issues = append(issues, fmt.Sprintf("providers.%s.timeout must not be negative", id))
		}
	}
	return issues
}
