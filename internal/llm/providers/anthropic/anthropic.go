// Package anthropic adapts the Anthropic Messages API to the llm.Provider
// interface using the official anthropic-sdk-go client.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/llm"
	"github.com/nikcli-go/nikcli/pkg/models"
)

var catalog = []models.ModelInfo{
	{ID: "anthropic/claude-3-5-sonnet", Name: "Claude 3.5 Sonnet", ContextSize: 200000, SupportsVision: true},
	{ID: "anthropic/claude-3-opus", Name: "Claude 3 Opus", ContextSize: 200000, SupportsVision: true},
	{ID: "anthropic/claude-3-haiku", Name: "Claude 3 Haiku", ContextSize: 200000, SupportsVision: true},
}

// Provider implements llm.Provider over Anthropic's Messages API.
type Provider struct {
	client *anthropic.Client
}

// New constructs an Anthropic provider. apiKey is read from
// ANTHROPIC_API_KEY by the SDK if empty.
func New(apiKey string) *Provider {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Provider{client: &client}
}

func (p *Provider) Name() string              { return "anthropic" }
func (p *Provider) Models() []models.ModelInfo { return catalog }
func (p *Provider) SupportsTools() bool        { return true }

func stripPrefix(model string) string {
	// Strategy table entries are namespaced ("anthropic/claude-3-5-sonnet");
	// the wire API wants the bare model id.
	for i := 0; i < len(model); i++ {
		if model[i] == '/' {
			return model[i+1:]
		}
	}
	return model
}

func toAnthropicMessages(req *models.GenerateRequest) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == models.RoleSystem {
			continue
		}
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == models.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

func systemPrompt(req *models.GenerateRequest) string {
	for _, m := range req.Messages {
		if m.Role == models.RoleSystem {
			return m.Content
		}
	}
	return ""
}

func maxTokens(req *models.GenerateRequest) int64 {
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		return int64(*req.MaxTokens)
	}
	return 4096
}

func temperature(req *models.GenerateRequest) float64 {
	if req.Temperature != nil {
		return float64(*req.Temperature)
	}
	return 0.7
}

// Generate performs one blocking completion.
func (p *Provider) Generate(ctx context.Context, req *models.GenerateRequest, model string) (*models.ModelResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(stripPrefix(model)),
		MaxTokens: maxTokens(req),
		Messages:  toAnthropicMessages(req),
	}
	if sp := systemPrompt(req); sp != "" {
		params.System = []anthropic.TextBlockParam{{Text: sp}}
	}
	temp := temperature(req)
	params.Temperature = anthropic.Float(temp)

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &models.ModelResponse{
		Text:         text,
		FinishReason: string(msg.StopReason),
		Model:        model,
		Usage: &models.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// GenerateStream performs a streaming completion, forwarding incremental
// text deltas in source order and a terminal Done delta with usage totals.
func (p *Provider) GenerateStream(ctx context.Context, req *models.GenerateRequest, model string) (<-chan models.TextDelta, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(stripPrefix(model)),
		MaxTokens: maxTokens(req),
		Messages:  toAnthropicMessages(req),
	}
	if sp := systemPrompt(req); sp != "" {
		params.System = []anthropic.TextBlockParam{{Text: sp}}
	}
	params.Temperature = anthropic.Float(temperature(req))

	stream := p.client.Messages.NewStreaming(ctx, params)

	out := make(chan models.TextDelta)
	go func() {
		defer close(out)
		var inputTokens, outputTokens int
		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if ev.Delta.Text != "" {
					select {
					case out <- models.TextDelta{Text: ev.Delta.Text}:
					case <-ctx.Done():
						return
					}
				}
			case anthropic.MessageDeltaEvent:
				outputTokens = int(ev.Usage.OutputTokens)
			case anthropic.MessageStartEvent:
				inputTokens = int(ev.Message.Usage.InputTokens)
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case out <- models.TextDelta{Done: true, Err: classify(err)}:
			case <-ctx.Done():
			}
			return
		}
		out <- models.TextDelta{
			Done: true,
			Usage: &models.Usage{
				PromptTokens:     inputTokens,
				CompletionTokens: outputTokens,
				TotalTokens:      inputTokens + outputTokens,
			},
		}
	}()
	return out, nil
}

func classify(err error) error {
	recoverable := llm.IsRecoverable(err, "overloaded")
	return corerr.NewProviderError(fmt.Errorf("anthropic: %w", err), recoverable)
}
