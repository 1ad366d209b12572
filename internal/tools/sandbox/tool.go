package sandbox

import (
	"context"
	"encoding/json"

	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// Tool adapts Executor to the tools.Tool interface so execute_code can be
// registered into the same registry as the builtin tools. It is dangerous
// by definition: running arbitrary code requires the dangerous_tools
// permission regardless of the sandbox's own isolation.
type Tool struct {
	executor *Executor
}

// NewTool wraps executor for registration.
func NewTool(executor *Executor) *Tool {
	return &Tool{executor: executor}
}

func (t *Tool) Definition() models.ToolDefinition {
	return models.ToolDefinition{
		Name:             t.executor.Name(),
		Description:      t.executor.Description(),
		Category:         models.ToolCategorySystem,
		Dangerous:        true,
		ParametersSchema: t.executor.Schema(),
	}
}

func (t *Tool) Execute(ctx context.Context, tc tools.Context, input json.RawMessage) (*models.ToolResult, error) {
	return t.executor.Execute(ctx, input)
}
