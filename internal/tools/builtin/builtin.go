package builtin

import (
	"log/slog"

	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/internal/tools/sandbox"
)

// RegisterAll registers the fixed set of builtin tools spec.md names —
// read_file, write_file, run_command, git_status, and grep — plus
// execute_code, a dangerous sandboxed-execution tool backed by
// internal/tools/sandbox.
func RegisterAll(registry *tools.Registry) error {
	builtinTools := []tools.Tool{
		NewReadFileTool(),
		NewWriteFileTool(),
		NewRunCommandTool(),
		NewGitStatusTool(),
		NewGrepTool(),
	}
	for _, tool := range builtinTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	sandboxExecutor, err := sandbox.NewExecutor()
	if err != nil {
		// The sandbox pool pre-warms lazily and doesn't error just because
		// a backend (e.g. Docker) isn't reachable at startup; a non-nil
		// error here means the executor itself is misconfigured, not that
		// the runtime is unavailable. Skip registration rather than fail
		// every CLI invocation over a tool nothing has to use.
		slog.Warn("execute_code tool unavailable", "error", err)
		return nil
	}
	return registry.Register(sandbox.NewTool(sandboxExecutor))
}
