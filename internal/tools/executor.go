package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/observability"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// defaultStepTimeout is the per-tool-step timeout applied unless a tool
// manages its own deadline (see SelfTimed). A var, not a const, so tests can
// shrink it rather than waiting out the real 60s.
var defaultStepTimeout = 60 * time.Second

// SelfTimed is implemented by tools that enforce their own execution
// deadline (run_command's configurable timeout_seconds, capped at 600s).
// Execute skips the default step timeout for these so a tool's own,
// potentially longer, timeout isn't silently capped to 60s.
type SelfTimed interface {
	SelfTimed() bool
}

// Executor dispatches ToolCalls against a Registry, enforcing permissions
// before any tool runs and timing every invocation.
type Executor struct {
	registry *Registry
	tracer   *observability.Tracer
	metrics  *observability.Metrics
}

// NewExecutor constructs an Executor bound to registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// SetObservability attaches a tracer and metrics recorder; either may be
// nil. Every Execute call afterward is wrapped in a tool.<name> span and
// records tool execution duration/status.
func (e *Executor) SetObservability(tracer *observability.Tracer, metrics *observability.Metrics) {
	e.tracer = tracer
	e.metrics = metrics
}

// Execute looks up call.Name, checks permissions, and runs the tool.
//
// An unknown tool name returns corerr.ErrNotImplemented. A dangerous tool
// invoked without the dangerous_tools permission returns
// corerr.ErrPermissionDenied before the tool's Execute is ever called.
// Execution time is measured with the monotonic clock and recorded on the
// result regardless of outcome.
func (e *Executor) Execute(ctx context.Context, call models.ToolCall, tc Context) (*models.ToolResult, error) {
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		return nil, corerr.NotImplemented("tool %q is not registered", call.Name)
	}

	def := tool.Definition()
	if def.Dangerous && !tc.Has(DangerousToolsPermission) {
		return nil, corerr.PermissionDenied("tool %q requires the dangerous_tools permission", call.Name)
	}

	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.TraceToolExecution(ctx, call.Name)
		defer span.End()
	}

	execCtx := ctx
	if st, ok := tool.(SelfTimed); !ok || !st.SelfTimed() {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, defaultStepTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := tool.Execute(execCtx, tc, call.Input)
	elapsed := time.Since(start)
	elapsedMs := elapsed.Milliseconds()

	if err != nil && execCtx.Err() == context.DeadlineExceeded && !errors.Is(err, corerr.ErrTimeout) {
		err = corerr.Timeout(fmt.Errorf("tool %q exceeded its %s step timeout", call.Name, defaultStepTimeout))
	}

	if e.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordToolExecution(call.Name, status, elapsed.Seconds())
	}

	if err != nil {
		if e.tracer != nil {
			e.tracer.RecordError(trace.SpanFromContext(ctx), err)
		}
		return &models.ToolResult{
			ToolCallID:      call.ID,
			Content:         err.Error(),
			IsError:         true,
			ExecutionTimeMs: elapsedMs,
		}, err
	}

	result.ToolCallID = call.ID
	result.ExecutionTimeMs = elapsedMs
	return result, nil
}
