package config

import "github.com/nikcli-go/nikcli/pkg/models"

// ModelConfig carries per-scope model strategy overrides applied on top
// of the router's built-in defaults. Only scopes present in
// ScopeOverrides are changed; everything else keeps the router's
// default table. Live-reloaded by Watch when the config file changes.
type ModelConfig struct {
	ScopeOverrides map[models.ModelScope]models.ModelStrategy `yaml:"scope_overrides"`
}

func applyModelDefaults(cfg *ModelConfig) {
	if cfg.ScopeOverrides == nil {
		cfg.ScopeOverrides = map[models.ModelScope]models.ModelStrategy{}
	}
}
