// Package builtin implements the fixed set of tools spec.md names: file
// read/write, command execution, git status, and recursive grep. Each tool
// is grounded on the teacher's internal/tools/files and internal/tools/exec
// packages, adapted to the tools.Tool interface and corerr's error kinds.
package builtin

import (
	"context"
	"encoding/json"
	"os"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/internal/tools/files"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const defaultMaxReadBytes = 2 << 20 // 2MiB

// ReadFileTool implements read_file: reads the UTF-8 contents of a file
// confined to the caller's working directory.
type ReadFileTool struct {
	maxBytes int
}

// NewReadFileTool constructs a read_file tool.
func NewReadFileTool() *ReadFileTool {
	return &ReadFileTool{maxBytes: defaultMaxReadBytes}
}

func (t *ReadFileTool) Definition() models.ToolDefinition {
	return models.ToolDefinition{
		Name:        "read_file",
		Description: "Reads the UTF-8 contents of a file within the working directory.",
		Category:    models.ToolCategoryFile,
		ParametersSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "Path relative to the working directory, or absolute within it."}
			},
			"required": ["path"]
		}`),
	}
}

type readFileParams struct {
	Path string `json:"path"`
}

func (t *ReadFileTool) Execute(ctx context.Context, tc tools.Context, input json.RawMessage) (*models.ToolResult, error) {
	var params readFileParams
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, corerr.Validation("invalid read_file arguments: %v", err)
	}
	if params.Path == "" {
		return nil, corerr.Validation("path is required")
	}

	resolver := files.Resolver{Root: tc.WorkingDirectory}
	resolved, err := resolver.Resolve(params.Path)
	if err != nil {
		return nil, corerr.Validation("%v", err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, corerr.NotFound("file %q not found", params.Path)
		}
		return nil, corerr.Io(err)
	}
	if t.maxBytes > 0 && len(data) > t.maxBytes {
		data = data[:t.maxBytes]
	}

	return &models.ToolResult{Content: string(data)}, nil
}
