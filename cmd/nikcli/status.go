package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikcli-go/nikcli/internal/infra"
)

func buildStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show provider, cache, agent, and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			out := cmd.OutOrStdout()

			osSummary := infra.ResolveOSSummary()
			fmt.Fprintf(out, "host: %s\n", osSummary.Label)

			health := buildHealthRegistry(a)
			report := health.CheckAll(cmd.Context())
			fmt.Fprintf(out, "health: %s\n", report.Status)
			for _, check := range report.FailedChecks() {
				fmt.Fprintf(out, "  - %s: %s (%s)\n", check.Name, check.Status, check.Message)
			}

			models := a.gateway.ListModels()
			fmt.Fprintf(out, "providers: %d model(s) registered\n", len(models))
			if current := a.gateway.CurrentModel(); current != "" {
				fmt.Fprintf(out, "current model: %s\n", current)
			}

			stats := a.cache.Stats()
			fmt.Fprintf(out, "cache: %d entries, %d hits, %d misses (%.1f%% hit rate)\n",
				stats.Entries, stats.Hits, stats.Misses, stats.HitRate*100)

			agents := a.agents.ListAgents()
			fmt.Fprintf(out, "agents: %d registered\n", len(agents))

			sessions, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "sessions: %d persisted at %s\n", len(sessions), a.cfg.Session.Root)

			return nil
		},
	}
}

// buildHealthRegistry wires a fresh health-check registry around the given
// app's components: a provider with at least one registered model counts as
// healthy, and the session store is checked by listing sessions.
func buildHealthRegistry(a *app) *infra.HealthCheckRegistry {
	registry := infra.NewHealthCheckRegistry()

	registry.RegisterSimple("providers", func(ctx context.Context) error {
		if len(a.gateway.ListModels()) == 0 {
			return fmt.Errorf("no models registered")
		}
		return nil
	})

	registry.RegisterSimple("session_store", func(ctx context.Context) error {
		_, err := a.store.List(ctx)
		return err
	})

	return registry
}
