// Package ollama adapts a local Ollama server to the llm.Provider
// interface via its OpenAI-compatible chat-completions endpoint.
package ollama

import (
	"github.com/nikcli-go/nikcli/internal/llm/providers/openai"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const defaultBaseURL = "http://localhost:11434/v1"

var catalog = []models.ModelInfo{
	{ID: "ollama/llama3", Name: "Llama 3 (local)", ContextSize: 8192, SupportsVision: false},
	{ID: "ollama/qwen2.5-coder", Name: "Qwen 2.5 Coder (local)", ContextSize: 32768, SupportsVision: false},
}

// Provider wraps the OpenAI-compatible adapter pointed at a local Ollama
// server. Ollama requires no API key; the field is accepted for servers
// that sit behind a reverse proxy requiring one.
type Provider struct {
	*openai.Provider
}

// New constructs an Ollama provider. baseURL defaults to Ollama's standard
// local OpenAI-compatible endpoint when empty.
func New(baseURL, apiKey string) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if apiKey == "" {
		apiKey = "ollama"
	}
	return &Provider{Provider: openai.NewCompatible("ollama", apiKey, baseURL)}
}

// Models returns the locally configured model set; Ollama has no fixed
// catalog since it serves whatever has been pulled onto the host.
func (p *Provider) Models() []models.ModelInfo { return catalog }
