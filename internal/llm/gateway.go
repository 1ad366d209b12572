package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// Gateway is the single chat-completion entrypoint over N registered
// providers. Model switching is writer-exclusive: two concurrent Generate
// calls see the same current model at dispatch time, and a SwitchModel
// completes before later reads observe the change.
type Gateway struct {
	mu           sync.RWMutex
	providers    map[string]Provider
	currentModel string
	modelOwner   string // provider name that owns currentModel
}

// NewGateway constructs a Gateway with no providers registered.
func NewGateway() *Gateway {
	return &Gateway{providers: make(map[string]Provider)}
}

// Register adds a provider under its Name(). The first registered provider
// becomes the initial current model source.
func (g *Gateway) Register(p Provider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.providers[p.Name()] = p
	if g.modelOwner == "" {
		if ms := p.Models(); len(ms) > 0 {
			g.currentModel = ms[0].ID
			g.modelOwner = p.Name()
		}
	}
}

// ListModels returns every model exposed by every registered provider.
func (g *Gateway) ListModels() []models.ModelInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []models.ModelInfo
	for _, p := range g.providers {
		out = append(out, p.Models()...)
	}
	return out
}

// CurrentModel returns the model that dispatch will use absent an explicit
// per-request override.
func (g *Gateway) CurrentModel() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentModel
}

// SwitchModel serializes a write to the gateway's current model. It
// completes (and the new model is visible to subsequent reads) before it
// returns.
func (g *Gateway) SwitchModel(model string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner := g.providerForModel(model)
	if owner == "" {
		return corerr.NotFound("model %q is not offered by any registered provider", model)
	}
	g.currentModel = model
	g.modelOwner = owner
	return nil
}

// providerForModel must be called with mu held.
func (g *Gateway) providerForModel(model string) string {
	for name, p := range g.providers {
		for _, m := range p.Models() {
			if m.ID == model {
				return name
			}
		}
	}
	return ""
}

func (g *Gateway) resolve(explicitModel string) (Provider, string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	model := explicitModel
	owner := g.modelOwner
	if model == "" {
		model = g.currentModel
	} else if o := g.providerForModel(model); o != "" {
		owner = o
	}

	p, ok := g.providers[owner]
	if !ok || model == "" {
		return nil, "", corerr.NotFound("no provider available for model %q", model)
	}
	return p, model, nil
}

// Generate performs one blocking completion, using req.scope's model if the
// caller resolved one into model, the gateway's current model otherwise.
// Provider failures are normalized to a single error kind.
func (g *Gateway) Generate(ctx context.Context, req *models.GenerateRequest, model string) (*models.ModelResponse, error) {
	p, resolvedModel, err := g.resolve(model)
	if err != nil {
		return nil, err
	}
	resp, err := p.Generate(ctx, req, resolvedModel)
	if err != nil {
		return nil, normalizeProviderErr(err)
	}
	return resp, nil
}

// GenerateStream performs a streaming completion. Chunks are delivered in
// source order; the final chunk (or an error) closes the channel.
func (g *Gateway) GenerateStream(ctx context.Context, req *models.GenerateRequest, model string) (<-chan models.TextDelta, error) {
	p, resolvedModel, err := g.resolve(model)
	if err != nil {
		return nil, err
	}
	ch, err := p.GenerateStream(ctx, req, resolvedModel)
	if err != nil {
		return nil, normalizeProviderErr(err)
	}
	return ch, nil
}

func normalizeProviderErr(err error) error {
	if err == nil {
		return nil
	}
	if corerr.IsCancelled(err) {
		return err
	}
	// Providers that already classify recoverability pass their error
	// through untouched; anything else is treated as non-recoverable so
	// callers don't retry unknown failure modes.
	var pe *corerr.ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return corerr.NewProviderError(fmt.Errorf("%w", err), false)
}
