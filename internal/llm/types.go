// Package llm defines the provider-gateway abstraction: a single
// chat-completion interface over N upstream providers, with blocking and
// streaming calls and serialized model switching.
package llm

import (
	"context"

	"github.com/nikcli-go/nikcli/pkg/models"
)

// Provider is the interface every upstream LLM backend implements.
// Implementations must be safe for concurrent use: multiple goroutines may
// call Generate/GenerateStream simultaneously for different requests.
type Provider interface {
	// Name returns the provider identifier ("anthropic", "openai", ...).
	Name() string

	// Models lists the models this provider exposes.
	Models() []models.ModelInfo

	// SupportsTools reports whether this provider accepts tool/function
	// definitions in a request.
	SupportsTools() bool

	// Generate performs one blocking chat completion.
	Generate(ctx context.Context, req *models.GenerateRequest, model string) (*models.ModelResponse, error)

	// GenerateStream performs a streaming chat completion. The returned
	// channel is closed after a terminal models.TextDelta{Done: true} (or
	// an error) is sent.
	GenerateStream(ctx context.Context, req *models.GenerateRequest, model string) (<-chan models.TextDelta, error)
}
