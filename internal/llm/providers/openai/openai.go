// Package openai adapts the OpenAI chat-completions API (and any
// OpenAI-compatible endpoint, via BaseURL) to the llm.Provider interface.
package openai

import (
	"context"
	"fmt"
	"io"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/llm"
	"github.com/nikcli-go/nikcli/pkg/models"
	openai "github.com/sashabaranov/go-openai"
)

var catalog = []models.ModelInfo{
	{ID: "openai/gpt-4o", Name: "GPT-4o", ContextSize: 128000, SupportsVision: true},
	{ID: "openai/gpt-4o-mini", Name: "GPT-4o mini", ContextSize: 128000, SupportsVision: true},
	{ID: "openai/o1", Name: "o1", ContextSize: 200000, SupportsVision: false},
}

// Provider implements llm.Provider over the OpenAI chat-completions API.
type Provider struct {
	client *openai.Client
	name   string
}

// New constructs a provider using the default OpenAI base URL.
func New(apiKey string) *Provider {
	return &Provider{client: openai.NewClient(apiKey), name: "openai"}
}

// NewCompatible constructs a provider pointed at an OpenAI-compatible base
// URL, used for Ollama and OpenRouter via the same wire protocol.
func NewCompatible(name, apiKey, baseURL string) *Provider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Provider{client: openai.NewClientWithConfig(cfg), name: name}
}

func (p *Provider) Name() string       { return p.name }
func (p *Provider) SupportsTools() bool { return true }

func (p *Provider) Models() []models.ModelInfo {
	if p.name != "openai" {
		return nil
	}
	return catalog
}

func stripPrefix(model string) string {
	for i := 0; i < len(model); i++ {
		if model[i] == '/' {
			return model[i+1:]
		}
	}
	return model
}

func toOpenAIMessages(req *models.GenerateRequest) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		out = append(out, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

func buildRequest(req *models.GenerateRequest, model string) openai.ChatCompletionRequest {
	r := openai.ChatCompletionRequest{
		Model:    stripPrefix(model),
		Messages: toOpenAIMessages(req),
	}
	if req.MaxTokens != nil {
		r.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		r.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		r.TopP = *req.TopP
	}
	if req.FrequencyPenalty != nil {
		r.FrequencyPenalty = *req.FrequencyPenalty
	}
	if req.PresencePenalty != nil {
		r.PresencePenalty = *req.PresencePenalty
	}
	if len(req.Stop) > 0 {
		r.Stop = req.Stop
	}
	return r
}

// Generate performs one blocking completion.
func (p *Provider) Generate(ctx context.Context, req *models.GenerateRequest, model string) (*models.ModelResponse, error) {
	r := buildRequest(req, model)
	resp, err := p.client.CreateChatCompletion(ctx, r)
	if err != nil {
		return nil, classify(p.name, err)
	}
	if len(resp.Choices) == 0 {
		return &models.ModelResponse{Model: model}, nil
	}
	return &models.ModelResponse{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Model:        model,
		Usage: &models.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// GenerateStream performs a streaming completion.
func (p *Provider) GenerateStream(ctx context.Context, req *models.GenerateRequest, model string) (<-chan models.TextDelta, error) {
	r := buildRequest(req, model)
	r.Stream = true

	stream, err := p.client.CreateChatCompletionStream(ctx, r)
	if err != nil {
		return nil, classify(p.name, err)
	}

	out := make(chan models.TextDelta)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			chunk, err := stream.Recv()
			if err != nil {
				if err == io.EOF {
					out <- models.TextDelta{Done: true}
					return
				}
				select {
				case out <- models.TextDelta{Done: true, Err: classify(p.name, err)}:
				case <-ctx.Done():
				}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				select {
				case out <- models.TextDelta{Text: delta}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func classify(provider string, err error) error {
	recoverable := llm.IsRecoverable(err)
	return corerr.NewProviderError(fmt.Errorf("%s: %w", provider, err), recoverable)
}
