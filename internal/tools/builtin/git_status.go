package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	osexec "os/exec"
	"strings"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// GitStatusTool implements git_status: runs `git status --short` in the
// working directory. Not dangerous — it has no side effects.
type GitStatusTool struct{}

// NewGitStatusTool constructs a git_status tool.
func NewGitStatusTool() *GitStatusTool {
	return &GitStatusTool{}
}

func (t *GitStatusTool) Definition() models.ToolDefinition {
	return models.ToolDefinition{
		Name:             "git_status",
		Description:      "Runs git status --short in the working directory.",
		Category:         models.ToolCategoryGit,
		ParametersSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}
}

func (t *GitStatusTool) Execute(ctx context.Context, tc tools.Context, input json.RawMessage) (*models.ToolResult, error) {
	cmd := osexec.CommandContext(ctx, "git", "status", "--short")
	if tc.WorkingDirectory != "" {
		cmd.Dir = tc.WorkingDirectory
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*osexec.ExitError); !ok {
			return nil, corerr.Io(err)
		}
		return &models.ToolResult{Content: strings.TrimSpace(stderr.String()), IsError: true}, nil
	}

	return &models.ToolResult{Content: stdout.String()}, nil
}
