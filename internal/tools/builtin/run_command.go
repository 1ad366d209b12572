package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	osexec "os/exec"
	"strings"
	"time"

	execsafety "github.com/nikcli-go/nikcli/internal/exec"
	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const (
	// defaultCommandTimeout is the per-tool-step default (spec.md §5); the
	// provider-call default documented in C4 is a separate 120s figure.
	defaultCommandTimeout = 60 * time.Second
	maxCommandTimeout     = 600 * time.Second
)

// RunCommandTool implements run_command: executes a binary with arguments
// directly (no shell interpolation) in the caller's working directory.
// Dangerous per definition, so the executor enforces the dangerous_tools
// permission before Execute is ever invoked.
type RunCommandTool struct{}

// NewRunCommandTool constructs a run_command tool.
func NewRunCommandTool() *RunCommandTool {
	return &RunCommandTool{}
}

// SelfTimed reports that run_command enforces its own deadline (via
// timeout_seconds, up to maxCommandTimeout), so the executor's default 60s
// step timeout must not also be applied — it would cap every run to 60s
// regardless of what the caller requested.
func (t *RunCommandTool) SelfTimed() bool { return true }

func (t *RunCommandTool) Definition() models.ToolDefinition {
	return models.ToolDefinition{
		Name:        "run_command",
		Description: "Runs a command with arguments in the working directory and returns its stdout/stderr.",
		Category:    models.ToolCategorySystem,
		Dangerous:   true,
		ParametersSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"command": {"type": "string"},
				"args": {"type": "array", "items": {"type": "string"}},
				"timeout_seconds": {"type": "integer", "minimum": 1, "maximum": 600}
			},
			"required": ["command"]
		}`),
	}
}

type runCommandParams struct {
	Command        string   `json:"command"`
	Args           []string `json:"args"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

func (t *RunCommandTool) Execute(ctx context.Context, tc tools.Context, input json.RawMessage) (*models.ToolResult, error) {
	var params runCommandParams
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, corerr.Validation("invalid run_command arguments: %v", err)
	}

	command, err := execsafety.SanitizeExecutableValue(params.Command)
	if err != nil {
		return nil, corerr.Validation("unsafe command: %v", err)
	}
	args := make([]string, len(params.Args))
	for i, a := range params.Args {
		if err := sanitizeArg(a); err != nil {
			return nil, corerr.Validation("unsafe argument %q: %v", a, err)
		}
		args[i] = a
	}

	timeout := defaultCommandTimeout
	if params.TimeoutSeconds > 0 {
		timeout = time.Duration(params.TimeoutSeconds) * time.Second
		if timeout > maxCommandTimeout {
			timeout = maxCommandTimeout
		}
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := osexec.CommandContext(runCtx, command, args...)
	if tc.WorkingDirectory != "" {
		cmd.Dir = tc.WorkingDirectory
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, corerr.Timeout(fmt.Errorf("command timed out after %s", timeout))
		}
		if _, ok := runErr.(*osexec.ExitError); !ok {
			return nil, corerr.Io(runErr)
		}
		return &models.ToolResult{
			Content: strings.TrimSpace(stderr.String()),
			IsError: true,
		}, nil
	}

	return &models.ToolResult{Content: stdout.String()}, nil
}

// sanitizeArg applies a lighter check than SanitizeExecutableValue: args
// legitimately start with "-" (flags), and since the command is exec'd
// directly with no shell, metacharacters in an argument value are inert —
// only null bytes and control characters are rejected.
func sanitizeArg(value string) error {
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("contains null byte")
	}
	if execsafety.ControlChars.MatchString(value) {
		return fmt.Errorf("contains control characters")
	}
	return nil
}
