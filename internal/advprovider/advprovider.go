// Package advprovider composes the model router (C1), provider gateway
// (C2), and response cache (C3) into a single entrypoint with retry and
// caching policy (C4).
package advprovider

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nikcli-go/nikcli/internal/cache"
	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/infra"
	"github.com/nikcli-go/nikcli/internal/llm"
	catalog "github.com/nikcli-go/nikcli/internal/models"
	"github.com/nikcli-go/nikcli/internal/modelrouter"
	"github.com/nikcli-go/nikcli/internal/observability"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const (
	defaultCacheTTL   = time.Hour
	defaultMaxRetries = 3

	// defaultProviderRate/defaultProviderBurst bound outbound request rate
	// per provider: 10 req/s sustained with bursts up to 20, generous enough
	// to stay invisible under normal chat/agent traffic while still smoothing
	// a runaway retry storm against a single provider.
	defaultProviderRate  = 10.0
	defaultProviderBurst = 20
)

// AdvancedRequest extends GenerateRequest with the caching/retry policy
// knobs a single call can override; nil fields fall back to the
// AdvancedProvider's instance-level defaults.
type AdvancedRequest struct {
	models.GenerateRequest

	UseCache     *bool
	CacheTTLSecs *int
	EnableRetry  *bool
	MaxRetries   *int
}

// AdvancedProvider is the composed entrypoint spec.md calls C4: it applies
// scope-based routing, cache lookups, and retry-with-backoff around the
// raw provider gateway.
type AdvancedProvider struct {
	router   *modelrouter.Router
	gateway  *llm.Gateway
	cache    *cache.ResponseCache
	tracer   *observability.Tracer
	metrics  *observability.Metrics
	breakers *infra.CircuitBreakerRegistry
	limiters *infra.RateLimiterRegistry

	cacheOn     bool
	cacheTTL    time.Duration
	retryOn     bool
	maxRetries  int
}

// SetObservability attaches a tracer and metrics recorder; either may be
// nil. Every dispatched model call afterward is wrapped in an llm.<provider>
// span and records request duration/status.
func (p *AdvancedProvider) SetObservability(tracer *observability.Tracer, metrics *observability.Metrics) {
	p.tracer = tracer
	p.metrics = metrics
}

// New constructs an AdvancedProvider with cache on, 1h TTL, retry on, and
// up to 3 retries as instance-level defaults.
func New(router *modelrouter.Router, gateway *llm.Gateway, respCache *cache.ResponseCache) *AdvancedProvider {
	return &AdvancedProvider{
		router:  router,
		gateway: gateway,
		cache:   respCache,
		breakers: infra.NewCircuitBreakerRegistry(infra.CircuitBreakerConfig{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
		}),
		limiters: infra.NewRateLimiterRegistry(func(key string) infra.RateLimiter {
			return infra.NewTokenBucket(defaultProviderRate, defaultProviderBurst)
		}),
		cacheOn:    true,
		cacheTTL:   defaultCacheTTL,
		retryOn:    true,
		maxRetries: defaultMaxRetries,
	}
}

func (p *AdvancedProvider) useCache(req *AdvancedRequest) bool {
	if req.UseCache != nil {
		return *req.UseCache
	}
	return p.cacheOn
}

func (p *AdvancedProvider) cacheTTLFor(req *AdvancedRequest) time.Duration {
	if req.CacheTTLSecs != nil {
		return time.Duration(*req.CacheTTLSecs) * time.Second
	}
	return p.cacheTTL
}

func (p *AdvancedProvider) retryEnabled(req *AdvancedRequest) bool {
	if req.EnableRetry != nil {
		return *req.EnableRetry
	}
	return p.retryOn
}

func (p *AdvancedProvider) maxRetriesFor(req *AdvancedRequest) int {
	if req.MaxRetries != nil {
		return *req.MaxRetries
	}
	return p.maxRetries
}

// applyScope switches the gateway's current model to the scope's primary
// strategy, best-effort: failure to switch does not abort the request and
// is never counted against the retry budget.
func (p *AdvancedProvider) applyScope(req *AdvancedRequest) {
	if req.Scope == "" {
		return
	}
	strategy := p.router.GetStrategy(req.Scope)
	if strategy == nil {
		return
	}
	_ = p.gateway.SwitchModel(strategy.Primary)
}

// backoffDelay implements the documented retry schedule exactly:
// 100ms * 2^(attempt-1), no jitter. attempt is 1-indexed.
func backoffDelay(attempt int) time.Duration {
	return 100 * time.Millisecond * time.Duration(1<<uint(attempt-1))
}

// Generate resolves scope routing, attempts a cache hit, and otherwise
// dispatches through the gateway with retry-on-recoverable-error.
func (p *AdvancedProvider) Generate(ctx context.Context, req *AdvancedRequest) (*models.ModelResponse, error) {
	p.applyScope(req)

	if p.useCache(req) {
		key := cache.Fingerprint(&req.GenerateRequest)
		resp, err, _ := p.cache.GetOrGenerate(key, p.cacheTTLFor(req), func() (models.ModelResponse, error) {
			return p.dispatchWithRetry(ctx, req)
		})
		if err != nil {
			return nil, err
		}
		return &resp, nil
	}

	return p.dispatchWithRetryPtr(ctx, req)
}

func (p *AdvancedProvider) dispatchWithRetry(ctx context.Context, req *AdvancedRequest) (models.ModelResponse, error) {
	resp, err := p.dispatchWithRetryPtr(ctx, req)
	if err != nil {
		return models.ModelResponse{}, err
	}
	return *resp, nil
}

// dispatchWithRetryPtr retries the primary model with backoff, then falls
// through the scope strategy's ordered fallback models (spec.md's
// ModelStrategy.Fallbacks) on a recoverable failure, via the generic
// multi-candidate runner in internal/models.
func (p *AdvancedProvider) dispatchWithRetryPtr(ctx context.Context, req *AdvancedRequest) (*models.ModelResponse, error) {
	primary := p.gateway.CurrentModel()
	if req.Scope != "" {
		if strategy := p.router.GetStrategy(req.Scope); strategy != nil && strategy.Primary != "" {
			primary = strategy.Primary
		}
	}

	primaryCandidate := catalog.ParseModelRef(primary, "")
	if primaryCandidate == nil {
		return nil, corerr.NotFound("no model resolved for request")
	}

	var fallbacks []string
	if req.Scope != "" {
		fallbacks = p.router.GetFallbacks(req.Scope)
	}

	cfg := &catalog.FallbackConfig{
		PrimaryProvider: primaryCandidate.Provider,
		PrimaryModel:    primaryCandidate.Model,
		Fallbacks:       fallbacks,
	}

	result, err := catalog.RunWithModelFallback(ctx, cfg, func(ctx context.Context, provider, model string) (models.ModelResponse, error) {
		return p.dispatchModelWithRetry(ctx, req, provider, model)
	}, nil)
	if err != nil {
		if corerr.IsCancelled(err) {
			return nil, err
		}
		// Every candidate failed: surface it as a ProviderError so
		// cmd/nikcli's exit-code classification treats it as a tool
		// failure rather than falling through to the generic default.
		return nil, corerr.NewProviderError(err, false)
	}
	return &result.Result, nil
}

// dispatchModelWithRetry retries a single resolved model with the
// documented backoff schedule, stopping as soon as an error is classified
// non-recoverable so RunWithModelFallback can move on to the next
// candidate without wasting the retry budget on a permanent failure.
func (p *AdvancedProvider) dispatchModelWithRetry(ctx context.Context, req *AdvancedRequest, provider, model string) (models.ModelResponse, error) {
	resolvedModel := model
	if provider != "" {
		resolvedModel = provider + "/" + model
	}

	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.TraceLLMRequest(ctx, provider, model)
		defer span.End()
	}
	breakerName := provider
	if breakerName == "" {
		breakerName = "default"
	}
	cb := p.breakers.Get(breakerName)

	if err := p.limiters.Get(breakerName).Wait(ctx); err != nil {
		if p.tracer != nil {
			p.tracer.RecordError(trace.SpanFromContext(ctx), err)
		}
		return models.ModelResponse{}, err
	}

	start := time.Now()
	resp, err := infra.ExecuteWithResult(cb, ctx, func(ctx context.Context) (models.ModelResponse, error) {
		return p.dispatchModelAttempts(ctx, req, provider, model, resolvedModel)
	})
	if err != nil && errors.Is(err, infra.ErrCircuitOpen) {
		err = catalog.NewFailoverError(err, provider, model, catalog.ReasonUnavailable)
	}
	if p.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		p.metrics.RecordLLMRequest(provider, model, status, time.Since(start).Seconds(), 0, 0)
	}
	if err != nil && p.tracer != nil {
		p.tracer.RecordError(trace.SpanFromContext(ctx), err)
	}
	return resp, err
}

// dispatchModelAttempts runs the initial attempt plus up to maxRetriesFor
// retries — max_retries=2 means 3 total provider invocations, matching
// spec.md §4.4/§8 S2 and the original implementation's
// `while attempt <= max_retries`.
func (p *AdvancedProvider) dispatchModelAttempts(ctx context.Context, req *AdvancedRequest, provider, model, resolvedModel string) (models.ModelResponse, error) {
	retries := 0
	if p.retryEnabled(req) {
		retries = p.maxRetriesFor(req)
		if retries < 0 {
			retries = 0
		}
	}
	totalAttempts := retries + 1

	var lastErr error
	for attempt := 1; attempt <= totalAttempts; attempt++ {
		resp, err := p.gateway.Generate(ctx, &req.GenerateRequest, resolvedModel)
		if err == nil {
			return *resp, nil
		}
		lastErr = err

		if corerr.IsCancelled(err) {
			return models.ModelResponse{}, err
		}
		if !corerr.IsRecoverable(err) {
			return models.ModelResponse{}, catalog.NewFailoverError(err, provider, model, catalog.ReasonUnavailable)
		}
		if attempt == totalAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return models.ModelResponse{}, ctx.Err()
		case <-time.After(backoffDelay(attempt)):
		}
	}
	return models.ModelResponse{}, catalog.NewFailoverError(lastErr, provider, model, catalog.ReasonServerError)
}

// GenerateStream dispatches a streaming completion directly through the
// gateway. Streams are never cached and errors are never retried
// mid-stream; a stream error surfaces verbatim to the caller.
func (p *AdvancedProvider) GenerateStream(ctx context.Context, req *AdvancedRequest) (<-chan models.TextDelta, error) {
	p.applyScope(req)
	return p.gateway.GenerateStream(ctx, &req.GenerateRequest, "")
}
