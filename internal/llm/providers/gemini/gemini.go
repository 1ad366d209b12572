// Package gemini adapts Google's Gemini API (via google.golang.org/genai)
// to the llm.Provider interface.
package gemini

import (
	"context"
	"fmt"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/llm"
	"github.com/nikcli-go/nikcli/pkg/models"
	"google.golang.org/genai"
)

var catalog = []models.ModelInfo{
	{ID: "google/gemini-2.0-flash-exp", Name: "Gemini 2.0 Flash", ContextSize: 1000000, SupportsVision: true},
	{ID: "google/gemini-1.5-pro", Name: "Gemini 1.5 Pro", ContextSize: 2000000, SupportsVision: true},
}

// Provider implements llm.Provider over the Gemini API.
type Provider struct {
	client *genai.Client
}

// New constructs a Gemini provider. apiKey is read from GEMINI_API_KEY by
// the SDK if empty.
func New(ctx context.Context, apiKey string) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() string              { return "google" }
func (p *Provider) Models() []models.ModelInfo { return catalog }
func (p *Provider) SupportsTools() bool        { return true }

func stripPrefix(model string) string {
	for i := 0; i < len(model); i++ {
		if model[i] == '/' {
			return model[i+1:]
		}
	}
	return model
}

func toContents(req *models.GenerateRequest) []*genai.Content {
	out := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == models.RoleSystem {
			continue
		}
		role := genai.RoleUser
		if m.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

func systemInstruction(req *models.GenerateRequest) *genai.Content {
	for _, m := range req.Messages {
		if m.Role == models.RoleSystem {
			return genai.NewContentFromText(m.Content, genai.RoleUser)
		}
	}
	return nil
}

func genConfig(req *models.GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{SystemInstruction: systemInstruction(req)}
	if req.Temperature != nil {
		t := *req.Temperature
		cfg.Temperature = &t
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		mt := int32(*req.MaxTokens)
		cfg.MaxOutputTokens = mt
	}
	if req.TopP != nil {
		tp := *req.TopP
		cfg.TopP = &tp
	}
	return cfg
}

// Generate performs one blocking completion.
func (p *Provider) Generate(ctx context.Context, req *models.GenerateRequest, model string) (*models.ModelResponse, error) {
	resp, err := p.client.Models.GenerateContent(ctx, stripPrefix(model), toContents(req), genConfig(req))
	if err != nil {
		return nil, classify(err)
	}

	out := &models.ModelResponse{Text: resp.Text(), Model: model}
	if resp.UsageMetadata != nil {
		out.Usage = &models.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	return out, nil
}

// GenerateStream performs a streaming completion.
func (p *Provider) GenerateStream(ctx context.Context, req *models.GenerateRequest, model string) (<-chan models.TextDelta, error) {
	out := make(chan models.TextDelta)
	go func() {
		defer close(out)
		var promptTokens, completionTokens int
		for chunk, err := range p.client.Models.GenerateContentStream(ctx, stripPrefix(model), toContents(req), genConfig(req)) {
			if err != nil {
				select {
				case out <- models.TextDelta{Done: true, Err: classify(err)}:
				case <-ctx.Done():
				}
				return
			}
			if text := chunk.Text(); text != "" {
				select {
				case out <- models.TextDelta{Text: text}:
				case <-ctx.Done():
					return
				}
			}
			if chunk.UsageMetadata != nil {
				promptTokens = int(chunk.UsageMetadata.PromptTokenCount)
				completionTokens = int(chunk.UsageMetadata.CandidatesTokenCount)
			}
		}
		out <- models.TextDelta{
			Done: true,
			Usage: &models.Usage{
				PromptTokens:     promptTokens,
				CompletionTokens: completionTokens,
				TotalTokens:      promptTokens + completionTokens,
			},
		}
	}()
	return out, nil
}

func classify(err error) error {
	recoverable := llm.IsRecoverable(err, "resource exhausted")
	return corerr.NewProviderError(fmt.Errorf("gemini: %w", err), recoverable)
}
