// Package main provides the CLI entry point for nikcli, an interactive
// agent-oriented developer assistant: model-routed chat, tool execution,
// multi-agent task dispatch, and reversible file edits from the terminal.
//
// # Basic usage
//
//	nikcli chat
//	nikcli plan "add retry logic to the http client"
//	nikcli agent reviewer "look over the diff in this branch"
//	nikcli status
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string

	flagModel        string
	flagAgent        string
	flagAuto         bool
	flagPlan         bool
	flagStructuredUI bool
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("NIKCLI_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(exitCodeFor(err))
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nikcli",
		Short: "nikcli - an agentic developer CLI assistant",
		Long: `nikcli routes chat, planning, and agent tasks to the right model,
executes tools under a permission-gated registry, and keeps every edit
reversible through per-session undo/redo history.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", os.Getenv("NIKCLI_MODEL"), "Override the model id for this invocation")
	rootCmd.PersistentFlags().StringVar(&flagAgent, "agent", "", "Route this invocation through a named agent")
	rootCmd.PersistentFlags().BoolVar(&flagAuto, "auto", false, "Run without interactive confirmation prompts")
	rootCmd.PersistentFlags().BoolVar(&flagPlan, "plan", false, "Generate and execute a plan instead of a single completion")
	rootCmd.PersistentFlags().BoolVar(&flagStructuredUI, "structured-ui", false, "Emit structured (line-oriented) output instead of a TTY prompt")

	rootCmd.AddCommand(
		buildChatCmd(),
		buildPlanCmd(),
		buildAgentCmd(),
		buildConfigCmd(),
		buildStatusCmd(),
		buildAgentsCmd(),
		buildModelsCmd(),
		buildInitCmd(),
	)

	return rootCmd
}
