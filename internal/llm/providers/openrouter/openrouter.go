// Package openrouter adapts OpenRouter's model aggregation API to the
// llm.Provider interface via its OpenAI-compatible chat-completions
// endpoint.
package openrouter

import (
	"github.com/nikcli-go/nikcli/internal/llm/providers/openai"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const baseURL = "https://openrouter.ai/api/v1"

var catalog = []models.ModelInfo{
	{ID: "openrouter/anthropic/claude-3-5-sonnet", Name: "Claude 3.5 Sonnet (via OpenRouter)", ContextSize: 200000, SupportsVision: true},
	{ID: "openrouter/meta-llama/llama-3.1-405b-instruct", Name: "Llama 3.1 405B (via OpenRouter)", ContextSize: 131072, SupportsVision: false},
	{ID: "openrouter/mistralai/mixtral-8x22b-instruct", Name: "Mixtral 8x22B (via OpenRouter)", ContextSize: 65536, SupportsVision: false},
}

// Provider wraps the OpenAI-compatible adapter pointed at OpenRouter.
type Provider struct {
	*openai.Provider
}

// New constructs an OpenRouter provider.
func New(apiKey string) *Provider {
	return &Provider{Provider: openai.NewCompatible("openrouter", apiKey, baseURL)}
}

// Models returns OpenRouter's aggregated catalog entries this gateway is
// configured to expose; the live /models endpoint lists thousands more.
func (p *Provider) Models() []models.ModelInfo { return catalog }
