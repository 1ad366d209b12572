package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikcli-go/nikcli/internal/advprovider"
	"github.com/nikcli-go/nikcli/internal/agentsvc"
	"github.com/nikcli-go/nikcli/internal/cache"
	"github.com/nikcli-go/nikcli/internal/config"
	"github.com/nikcli-go/nikcli/internal/infra"
	"github.com/nikcli-go/nikcli/internal/llm"
	"github.com/nikcli-go/nikcli/internal/llm/providers/anthropic"
	"github.com/nikcli-go/nikcli/internal/llm/providers/bedrock"
	"github.com/nikcli-go/nikcli/internal/llm/providers/gemini"
	"github.com/nikcli-go/nikcli/internal/llm/providers/ollama"
	"github.com/nikcli-go/nikcli/internal/llm/providers/openai"
	"github.com/nikcli-go/nikcli/internal/llm/providers/openrouter"
	"github.com/nikcli-go/nikcli/internal/llm/providers/venice"
	catalog "github.com/nikcli-go/nikcli/internal/models"
	"github.com/nikcli-go/nikcli/internal/modelrouter"
	"github.com/nikcli-go/nikcli/internal/observability"
	"github.com/nikcli-go/nikcli/internal/planning"
	"github.com/nikcli-go/nikcli/internal/sessions"
	"github.com/nikcli-go/nikcli/internal/streaming"
	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/internal/tools/builtin"
)

// app bundles every component wired together for a single CLI invocation.
// Built once per command run by newApp; nothing here is shared across
// invocations.
type app struct {
	cfg      *config.Config
	router   *modelrouter.Router
	gateway  *llm.Gateway
	cache    *cache.ResponseCache
	advanced *advprovider.AdvancedProvider
	registry *tools.Registry
	executor *tools.Executor
	agents   *agentsvc.Service
	planner  *planning.Engine
	store    sessions.Store
	arbiter  *streaming.Arbiter
	shutdown *infra.ShutdownCoordinator
}

// Close runs every registered shutdown handler in phase order (streaming
// arbiter drained first so in-flight output isn't cut off mid-write, then
// the tracer's exporter flushed last so it captures everything up to and
// including the arbiter shutdown itself). Each subcommand defers a single
// call to this instead of reaching into individual components.
func (a *app) Close(ctx context.Context) {
	results := a.shutdown.Shutdown(ctx)
	for _, r := range results {
		if r.Error != nil {
			slog.Warn("shutdown handler failed", "name", r.Name, "phase", r.Phase, "error", r.Error)
		}
	}
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyProxyEnv()

	router := modelrouter.New()
	for scope, strategy := range cfg.Model.ScopeOverrides {
		if err := router.UpdateStrategy(scope, strategy); err != nil {
			return nil, fmt.Errorf("apply model override for %s: %w", scope, err)
		}
	}

	gateway := llm.NewGateway()
	registerProviders(gateway, cfg)

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.LogLevel,
		Format: "text",
	})
	slog.SetDefault(logger.Slog())

	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName: cfg.Observability.ServiceName,
		Endpoint:    cfg.Observability.OTLPEndpoint,
	})
	metrics := observability.NewMetrics()

	respCache := cache.NewResponseCache()
	advanced := advprovider.New(router, gateway, respCache)
	advanced.SetObservability(tracer, metrics)

	registry := tools.NewRegistry()
	if err := builtin.RegisterAll(registry); err != nil {
		return nil, fmt.Errorf("register builtin tools: %w", err)
	}
	executor := tools.NewExecutor(registry)
	executor.SetObservability(tracer, metrics)

	agents := agentsvc.New()
	planner := planning.New(executor)

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	var writer streaming.Writer = streaming.PlainWriter{Out: os.Stdout}
	if flagStructuredUI {
		writer = streaming.JSONWriter{Out: os.Stdout}
	}
	arbiter := streaming.NewArbiter(writer)
	arbiter.Start()

	shutdown := infra.NewShutdownCoordinator(10*time.Second, slog.Default())
	shutdown.RegisterService("streaming_arbiter", func(ctx context.Context) error {
		arbiter.Shutdown(ctx)
		return nil
	})
	shutdown.RegisterConnection("tracer", shutdownTracer)

	if os.Getenv("NIKCLI_QUIET_STARTUP") == "" {
		slog.Info("nikcli ready", "models", len(gateway.ListModels()), "session_root", cfg.Session.Root)
	}

	return &app{
		cfg:      cfg,
		router:   router,
		gateway:  gateway,
		cache:    respCache,
		advanced: advanced,
		registry: registry,
		executor: executor,
		agents:   agents,
		planner:  planner,
		store:    store,
		arbiter:  arbiter,
		shutdown: shutdown,
	}, nil
}

// registerProviders wires up every provider the pack knows how to build,
// sourcing credentials from the config file and falling back to the
// environment variables spec.md §6 names. A provider with no credentials
// anywhere is silently skipped; the gateway simply won't offer its models.
func registerProviders(gateway *llm.Gateway, cfg *config.Config) {
	entry := func(key catalog.Provider) config.ProviderEntry {
		return cfg.Providers.Providers[key]
	}

	if key := firstNonEmpty(entry(catalog.ProviderAnthropic).APIKey, os.Getenv("ANTHROPIC_API_KEY")); key != "" {
		gateway.Register(anthropic.New(key))
	}
	if key := firstNonEmpty(entry(catalog.ProviderOpenAI).APIKey, os.Getenv("OPENAI_API_KEY")); key != "" {
		gateway.Register(openai.New(key))
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		gateway.Register(openrouter.New(key))
	}
	if key := os.Getenv("VENICE_API_KEY"); key != "" {
		gateway.Register(venice.New(key))
	}
	if azureEntry := entry(catalog.ProviderAzure); azureEntry.APIKey != "" && azureEntry.BaseURL != "" {
		gateway.Register(openai.NewCompatible("azure", azureEntry.APIKey, azureEntry.BaseURL))
	} else if key, base := os.Getenv("AZURE_OPENAI_API_KEY"), os.Getenv("AZURE_OPENAI_ENDPOINT"); key != "" && base != "" {
		gateway.Register(openai.NewCompatible("azure", key, base))
	}
	if key := firstNonEmpty(entry(catalog.ProviderGoogle).APIKey, os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY")); key != "" {
		if provider, err := gemini.New(context.Background(), key); err == nil {
			gateway.Register(provider)
		} else {
			slog.Warn("gemini provider unavailable", "error", err)
		}
	}
	if region := firstNonEmpty(entry(catalog.ProviderBedrock).AWSRegion, os.Getenv("AWS_REGION")); region != "" {
		if provider, err := bedrock.New(context.Background(), region); err == nil {
			gateway.Register(provider)
		} else {
			slog.Warn("bedrock provider unavailable", "error", err)
		}
	}

	// Ollama has no API key requirement; it's registered whenever a base
	// URL is configured or reachable at the documented default.
	ollamaEntry := entry(catalog.ProviderOllama)
	baseURL := firstNonEmpty(ollamaEntry.BaseURL, os.Getenv("OLLAMA_BASE_URL"), "http://localhost:11434")
	gateway.Register(ollama.New(baseURL, ollamaEntry.APIKey))
}

// applyProxyEnv honors AI_PROXY_URL by seeding the standard proxy
// environment variables, which Go's net/http (and every provider SDK
// built on it) reads via http.ProxyFromEnvironment.
func applyProxyEnv() {
	proxy := os.Getenv("AI_PROXY_URL")
	if proxy == "" {
		return
	}
	if os.Getenv("HTTPS_PROXY") == "" {
		os.Setenv("HTTPS_PROXY", proxy)
	}
	if os.Getenv("HTTP_PROXY") == "" {
		os.Setenv("HTTP_PROXY", proxy)
	}
}

// requestTimeout resolves AI_TIMEOUT_SECS, defaulting to 120s.
func requestTimeout() time.Duration {
	raw := os.Getenv("AI_TIMEOUT_SECS")
	if raw == "" {
		return 120 * time.Second
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(secs) * time.Second
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var mirror *sessions.RemoteMirror

	redisURL := os.Getenv("REDIS_URL")
	switch {
	case redisURL != "":
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		mirror = sessions.NewRemoteMirror(redis.NewClient(opts), cfg.Session.Remote.TTL, slog.Default())
	case cfg.Session.Remote.Enabled && cfg.Session.Remote.URL != "":
		opts, err := redis.ParseURL(cfg.Session.Remote.URL)
		if err != nil {
			return nil, fmt.Errorf("parse session.remote.url: %w", err)
		}
		mirror = sessions.NewRemoteMirror(redis.NewClient(opts), cfg.Session.Remote.TTL, slog.Default())
	case os.Getenv("SUPABASE_URL") != "" || os.Getenv("SUPABASE_KEY") != "":
		slog.Warn("SUPABASE_URL/SUPABASE_KEY set but no Supabase-backed session mirror is built into this binary; falling back to local-only sessions")
	}

	return sessions.NewFileStore(cfg.Session.Root, mirror)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
