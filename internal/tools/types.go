// Package tools implements the tool registry and executor (C5): a
// name-addressed catalog of capabilities an agent or plan step can invoke,
// and the executor that enforces permissions and times each invocation.
package tools

import (
	"context"
	"encoding/json"

	"github.com/nikcli-go/nikcli/pkg/models"
)

// DangerousToolsPermission is the permission token a ToolContext must carry
// for the executor to run a tool whose definition sets Dangerous.
const DangerousToolsPermission = "dangerous_tools"

// Context is the caller-supplied environment a tool executes under.
type Context struct {
	WorkingDirectory string
	Permissions      map[string]bool
	SessionID        string
	UserID           string
}

// Has reports whether permission is present in the context.
func (c Context) Has(permission string) bool {
	return c.Permissions[permission]
}

// Tool is a single registered capability. Implementations receive their
// raw JSON arguments and are responsible for validating them; the executor
// only enforces registration and permission concerns common to every tool.
type Tool interface {
	Definition() models.ToolDefinition
	Execute(ctx context.Context, tc Context, input json.RawMessage) (*models.ToolResult, error)
}
