// Package modelrouter maps a task's model scope to a concrete model
// strategy: primary model, ordered fallbacks, token cap, temperature, and
// whether extended reasoning should be requested.
//
// The router is a pure map with no I/O, by design: scope is its only
// external input, so experimenting with model choice touches only the
// strategy table, never provider mechanics.
package modelrouter

import (
	"sync"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 8192
)

// Router resolves a models.ModelScope to a models.ModelStrategy.
type Router struct {
	mu         sync.RWMutex
	strategies map[models.ModelScope]models.ModelStrategy
}

// New constructs a Router pre-populated with the default strategy table.
func New() *Router {
	r := &Router{strategies: make(map[models.ModelScope]models.ModelStrategy, 8)}
	for scope, strategy := range defaultTable() {
		r.strategies[scope] = strategy
	}
	return r
}

func defaultTable() map[models.ModelScope]models.ModelStrategy {
	return map[models.ModelScope]models.ModelStrategy{
		models.ScopeChatDefault: {
			Primary:          "anthropic/claude-3-5-sonnet",
			Fallbacks:        []string{"openai/gpt-4o", "google/gemini-2.0-flash-exp"},
			MaxTokens:        8192,
			Temperature:      0.7,
			ReasoningEnabled: true,
		},
		models.ScopePlanning: {
			Primary:          "openai/gpt-4o",
			Fallbacks:        []string{"anthropic/claude-3-5-sonnet", "deepseek/deepseek-chat"},
			MaxTokens:        16384,
			Temperature:      0.5,
			ReasoningEnabled: true,
		},
		models.ScopeCodeGen: {
			Primary:          "anthropic/claude-3-5-sonnet",
			Fallbacks:        []string{"openai/gpt-4o", "deepseek/deepseek-chat"},
			MaxTokens:        8192,
			Temperature:      0.3,
			ReasoningEnabled: false,
		},
		models.ScopeToolLight: {
			Primary:          "google/gemini-2.0-flash-exp",
			Fallbacks:        []string{"openai/gpt-4o-mini", "anthropic/claude-3-haiku"},
			MaxTokens:        4096,
			Temperature:      0.5,
			ReasoningEnabled: false,
		},
		models.ScopeToolHeavy: {
			Primary:          "openai/gpt-4o",
			Fallbacks:        []string{"anthropic/claude-3-5-sonnet"},
			MaxTokens:        16384,
			Temperature:      0.5,
			ReasoningEnabled: true,
		},
		models.ScopeVision: {
			Primary:          "openai/gpt-4o",
			Fallbacks:        []string{"google/gemini-2.0-flash-exp", "anthropic/claude-3-5-sonnet"},
			MaxTokens:        4096,
			Temperature:      0.7,
			ReasoningEnabled: false,
		},
		models.ScopeResearch: {
			Primary:          "anthropic/claude-3-opus",
			Fallbacks:        []string{"openai/o1", "deepseek/deepseek-chat"},
			MaxTokens:        4096,
			Temperature:      0.6,
			ReasoningEnabled: true,
		},
		models.ScopeQuick: {
			Primary:          "google/gemini-2.0-flash-exp",
			Fallbacks:        []string{"openai/gpt-4o-mini"},
			MaxTokens:        2048,
			Temperature:      0.7,
			ReasoningEnabled: false,
		},
	}
}

// GetStrategy returns the strategy registered for scope, or nil if none is
// registered.
func (r *Router) GetStrategy(scope models.ModelScope) *models.ModelStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[scope]
	if !ok {
		return nil
	}
	cp := s
	return &cp
}

// SelectModel returns the primary model for scope, or "" if unregistered.
func (r *Router) SelectModel(scope models.ModelScope) string {
	if s := r.GetStrategy(scope); s != nil {
		return s.Primary
	}
	return ""
}

// GetFallbacks returns the ordered fallback models for scope.
func (r *Router) GetFallbacks(scope models.ModelScope) []string {
	if s := r.GetStrategy(scope); s != nil {
		return append([]string(nil), s.Fallbacks...)
	}
	return nil
}

// Temperature returns scope's temperature, or the documented default 0.7.
func (r *Router) Temperature(scope models.ModelScope) float32 {
	if s := r.GetStrategy(scope); s != nil {
		return s.Temperature
	}
	return defaultTemperature
}

// MaxTokens returns scope's max tokens, or the documented default 8192.
func (r *Router) MaxTokens(scope models.ModelScope) int {
	if s := r.GetStrategy(scope); s != nil {
		return s.MaxTokens
	}
	return defaultMaxTokens
}

// ReasoningEnabled returns whether scope requests extended reasoning, or
// the documented default false.
func (r *Router) ReasoningEnabled(scope models.ModelScope) bool {
	if s := r.GetStrategy(scope); s != nil {
		return s.ReasoningEnabled
	}
	return false
}

// UpdateStrategy registers or overwrites the strategy for scope. Temperature
// must fall in [0,2]; a non-positive MaxTokens is rejected rather than
// silently clamped, matching the router's role as a pure validated map.
func (r *Router) UpdateStrategy(scope models.ModelScope, strategy models.ModelStrategy) error {
	if strategy.Temperature < 0 || strategy.Temperature > 2 {
		return corerr.Validation("temperature %.2f out of range [0,2]", strategy.Temperature)
	}
	if strategy.MaxTokens <= 0 {
		return corerr.Validation("max_tokens must be positive, got %d", strategy.MaxTokens)
	}
	if strategy.Primary == "" {
		return corerr.Validation("primary model must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[scope] = strategy
	return nil
}
