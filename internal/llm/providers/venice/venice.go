// Package venice adapts Venice AI's privacy-focused inference API to the
// llm.Provider interface via its OpenAI-compatible chat-completions
// endpoint.
package venice

import (
	"github.com/nikcli-go/nikcli/internal/llm/providers/openai"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const baseURL = "https://api.venice.ai/api/v1"

// catalog mirrors Venice's static model list, each tagged with whether it
// runs on Venice's privacy-hardened (no-retention) infrastructure.
var catalog = []models.ModelInfo{
	{ID: "venice/llama-3.3-70b", Name: "Llama 3.3 70B (Venice)", ContextSize: 65536, SupportsVision: false},
	{ID: "venice/dolphin-2.9.2-qwen2-72b", Name: "Dolphin 2.9.2 Qwen2 72B (Venice)", ContextSize: 32768, SupportsVision: false},
	{ID: "venice/qwen-2.5-coder-32b", Name: "Qwen 2.5 Coder 32B (Venice)", ContextSize: 32768, SupportsVision: false},
}

// Provider wraps the OpenAI-compatible adapter pointed at Venice AI.
type Provider struct {
	*openai.Provider
}

// New constructs a Venice provider.
func New(apiKey string) *Provider {
	return &Provider{Provider: openai.NewCompatible("venice", apiKey, baseURL)}
}

// Models returns Venice's known catalog; unlisted models can still be
// addressed by id, they simply won't appear in list_models output.
func (p *Provider) Models() []models.ModelInfo { return catalog }
