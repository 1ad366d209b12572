package builtin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/internal/tools/files"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// WriteFileTool implements write_file: overwrites (or appends to) a file
// confined to the caller's working directory. The executor does not block
// on confirmation itself; it records RequiresConfirmation on the
// definition so the caller's policy layer can enforce it.
type WriteFileTool struct{}

// NewWriteFileTool constructs a write_file tool.
func NewWriteFileTool() *WriteFileTool {
	return &WriteFileTool{}
}

func (t *WriteFileTool) Definition() models.ToolDefinition {
	return models.ToolDefinition{
		Name:                 "write_file",
		Description:          "Writes content to a file within the working directory, overwriting it by default.",
		Category:             models.ToolCategoryFile,
		RequiresConfirmation: true,
		ParametersSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string"},
				"content": {"type": "string"},
				"append": {"type": "boolean", "default": false}
			},
			"required": ["path", "content"]
		}`),
	}
}

type writeFileParams struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Append  bool   `json:"append"`
}

func (t *WriteFileTool) Execute(ctx context.Context, tc tools.Context, input json.RawMessage) (*models.ToolResult, error) {
	var params writeFileParams
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, corerr.Validation("invalid write_file arguments: %v", err)
	}
	if params.Path == "" {
		return nil, corerr.Validation("path is required")
	}

	resolver := files.Resolver{Root: tc.WorkingDirectory}
	resolved, err := resolver.Resolve(params.Path)
	if err != nil {
		return nil, corerr.Validation("%v", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, corerr.Io(err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if params.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(resolved, flags, 0o644)
	if err != nil {
		return nil, corerr.Io(err)
	}
	defer f.Close()

	n, err := f.WriteString(params.Content)
	if err != nil {
		return nil, corerr.Io(err)
	}

	out, _ := json.Marshal(map[string]any{
		"path":          params.Path,
		"bytes_written": n,
		"append":        params.Append,
	})
	return &models.ToolResult{Content: string(out)}, nil
}
