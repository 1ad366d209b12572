// Package bedrock adapts AWS Bedrock's Converse API to the llm.Provider
// interface, covering Anthropic, Titan, Llama, Mistral, and Cohere models
// hosted on Bedrock.
package bedrock

import (
	"context"
	"fmt"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/llm"
	"github.com/nikcli-go/nikcli/pkg/models"
)

var catalog = []models.ModelInfo{
	{ID: "bedrock/anthropic.claude-3-opus-20240229-v1:0", Name: "Claude 3 Opus (Bedrock)", ContextSize: 200000, SupportsVision: true},
	{ID: "bedrock/anthropic.claude-3-sonnet-20240229-v1:0", Name: "Claude 3 Sonnet (Bedrock)", ContextSize: 200000, SupportsVision: true},
	{ID: "bedrock/anthropic.claude-3-haiku-20240307-v1:0", Name: "Claude 3 Haiku (Bedrock)", ContextSize: 200000, SupportsVision: true},
	{ID: "bedrock/amazon.titan-text-express-v1", Name: "Titan Text Express", ContextSize: 8192, SupportsVision: false},
	{ID: "bedrock/meta.llama3-70b-instruct-v1:0", Name: "Llama 3 70B (Bedrock)", ContextSize: 8192, SupportsVision: false},
}

// Provider implements llm.Provider over AWS Bedrock's Converse API.
type Provider struct {
	client *bedrockruntime.Client
	region string
}

// New loads AWS credentials via the default chain (env, shared config, IAM
// role) and constructs a Bedrock provider for the given region.
func New(ctx context.Context, region string) (*Provider, error) {
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: failed to load AWS config: %w", err)
	}
	return &Provider{client: bedrockruntime.NewFromConfig(cfg), region: region}, nil
}

func (p *Provider) Name() string              { return "bedrock" }
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

func toBedrockMessages(req *models.GenerateRequest) []types.Message {
	out := make([]types.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == models.RoleSystem {
			continue
		}
		role := types.ConversationRoleUser
		if m.Role == models.RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		out = append(out, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}
	return out
}

func systemBlocks(req *models.GenerateRequest) []types.SystemContentBlock {
	for _, m := range req.Messages {
		if m.Role == models.RoleSystem {
			return []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: m.Content}}
		}
	}
	return nil
}

func inferenceConfig(req *models.GenerateRequest) *types.InferenceConfiguration {
	cfg := &types.InferenceConfiguration{}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		mt := int32(*req.MaxTokens)
		cfg.MaxTokens = &mt
	}
	if req.Temperature != nil {
		t := *req.Temperature
		cfg.Temperature = &t
	}
	return cfg
}

// Generate performs one blocking completion via Converse.
func (p *Provider) Generate(ctx context.Context, req *models.GenerateRequest, model string) (*models.ModelResponse, error) {
	modelID := stripPrefix(model)
	out, err := p.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         &modelID,
		Messages:        toBedrockMessages(req),
		System:          systemBlocks(req),
		InferenceConfig: inferenceConfig(req),
	})
	if err != nil {
		return nil, classify(err)
	}

	var text string
	if msgOut, ok := out.Output.(*types.ConverseOutputMemberMessage); ok {
		for _, block := range msgOut.Value.Content {
			if tb, ok := block.(*types.ContentBlockMemberText); ok {
				text += tb.Value
			}
		}
	}

	resp := &models.ModelResponse{
		Text:         text,
		FinishReason: string(out.StopReason),
		Model:        model,
	}
	if out.Usage != nil {
		resp.Usage = &models.Usage{
			PromptTokens:     int(*out.Usage.InputTokens),
			CompletionTokens: int(*out.Usage.OutputTokens),
			TotalTokens:      int(*out.Usage.TotalTokens),
		}
	}
	return resp, nil
}

// GenerateStream performs a streaming completion via ConverseStream.
func (p *Provider) GenerateStream(ctx context.Context, req *models.GenerateRequest, model string) (<-chan models.TextDelta, error) {
	modelID := stripPrefix(model)
	stream, err := p.client.ConverseStream(ctx, &bedrockruntime.ConverseStreamInput{
		ModelId:         &modelID,
		Messages:        toBedrockMessages(req),
		System:          systemBlocks(req),
		InferenceConfig: inferenceConfig(req),
	})
	if err != nil {
		return nil, classify(err)
	}

	out := make(chan models.TextDelta)
	go func() {
		defer close(out)
		eventStream := stream.GetStream()
		defer eventStream.Close()

		var inputTokens, outputTokens int
		events := eventStream.Events()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					if err := eventStream.Err(); err != nil {
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
					return
				}
				switch ev := event.(type) {
				case *types.ConverseStreamOutputMemberContentBlockDelta:
					if textDelta, ok := ev.Value.Delta.(*types.ContentBlockDeltaMemberText); ok && textDelta.Value != "" {
						select {
						case out <- models.TextDelta{Text: textDelta.Value}:
						case <-ctx.Done():
							return
						}
					}
				case *types.ConverseStreamOutputMemberMetadata:
					if ev.Value.Usage != nil {
						inputTokens = int(*ev.Value.Usage.InputTokens)
						outputTokens = int(*ev.Value.Usage.OutputTokens)
					}
				case *types.ConverseStreamOutputMemberMessageStop:
					out <- models.TextDelta{
						Done: true,
						Usage: &models.Usage{
							PromptTokens:     inputTokens,
							CompletionTokens: outputTokens,
							TotalTokens:      inputTokens + outputTokens,
						},
					}
					return
				}
			}
		}
	}()
	return out, nil
}

func classify(err error) error {
	recoverable := llm.IsRecoverable(err, "throttl", "serviceunavailable")
	return corerr.NewProviderError(fmt.Errorf("bedrock: %w", err), recoverable)
}
