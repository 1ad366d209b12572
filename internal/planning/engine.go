package planning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// Engine generates and executes plans against a tool executor.
type Engine struct {
	executor *tools.Executor
}

// New constructs an Engine bound to executor.
func New(executor *tools.Executor) *Engine {
	return &Engine{executor: executor}
}

// GeneratePlan materializes a skeleton plan for taskDescription: a unique
// id, a title derived from the description, status pending, and no steps.
// Steps are filled in later by an agent or LLM; this engine only guarantees
// the plan is well-formed and retrievable afterwards.
func (e *Engine) GeneratePlan(taskDescription string) *models.Plan {
	return &models.Plan{
		ID:     uuid.NewString(),
		Title:  deriveTitle(taskDescription),
		Steps:  nil,
		Status: models.PlanPending,
		Timestamps: models.PlanTimestamps{
			Created: time.Now(),
		},
	}
}

func deriveTitle(taskDescription string) string {
	title := strings.TrimSpace(taskDescription)
	if title == "" {
		return "untitled plan"
	}
	const maxLen = 72
	if len(title) > maxLen {
		title = strings.TrimSpace(title[:maxLen]) + "..."
	}
	return title
}

// ExecutePlan runs plan's steps in declared order. Each step's tool calls
// run sequentially; the first failing call aborts the remaining calls in
// that step, but execution continues to the next step — a failed step does
// not by itself fail the plan. Events are emitted in the exact sequence
// spec'd for §4.7: plan_start, then per step step_start / (tool_complete |
// tool_failed)* / step_complete, then plan_complete.
//
// If ctx is cancelled, execution stops at the next safe point between tool
// calls; the in-flight step is closed out with step_complete(false) and the
// plan is marked failed.
func (e *Engine) ExecutePlan(ctx context.Context, plan *models.Plan, tc tools.Context, sink Sink) *models.PlanExecutionResult {
	if sink == nil {
		sink = NopSink{}
	}

	now := time.Now()
	plan.Status = models.PlanRunning
	plan.Timestamps.Started = &now
	sink.Emit(ctx, Event{Kind: EventPlanStart, PlanID: plan.ID, Timestamp: time.Now()})

	summary := models.ExecutionSummary{TotalSteps: len(plan.Steps)}
	planSucceeded := true

	for i := range plan.Steps {
		step := &plan.Steps[i]

		if ctx.Err() != nil {
			summary.Skipped += len(plan.Steps) - i
			planSucceeded = false
			break
		}

		stepSucceeded := e.executeStep(ctx, plan.ID, step, tc, sink)
		if stepSucceeded {
			summary.Successful++
		} else {
			summary.Failed++
			planSucceeded = false
		}
	}

	completed := time.Now()
	plan.Timestamps.Completed = &completed
	if planSucceeded {
		plan.Status = models.PlanCompleted
	} else {
		plan.Status = models.PlanFailed
	}

	sink.Emit(ctx, Event{
		Kind:      EventPlanComplete,
		PlanID:    plan.ID,
		Success:   boolPtr(planSucceeded),
		Timestamp: time.Now(),
	})

	return &models.PlanExecutionResult{
		PlanID:  plan.ID,
		Success: planSucceeded,
		Summary: summary,
	}
}

// executeStep runs step's tool calls sequentially, aborting on the first
// failure, and returns whether every call succeeded.
func (e *Engine) executeStep(ctx context.Context, planID string, step *models.PlanStep, tc tools.Context, sink Sink) bool {
	sink.Emit(ctx, Event{Kind: EventStepStart, PlanID: planID, StepID: step.ID, Timestamp: time.Now()})

	succeeded := true
	for _, call := range step.ToolCalls {
		if ctx.Err() != nil {
			succeeded = false
			break
		}

		start := time.Now()
		result, err := e.executor.Execute(ctx, call, tc)
		elapsed := time.Since(start)

		if err != nil || (result != nil && result.IsError) {
			msg := errorMessage(err, result)
			step.ExecutionLog = append(step.ExecutionLog, fmt.Sprintf("%s failed after %s: %s", call.Name, elapsed.Round(time.Millisecond), msg))
			sink.Emit(ctx, Event{
				Kind:       EventToolFailed,
				PlanID:     planID,
				StepID:     step.ID,
				ToolCallID: call.ID,
				Message:    msg,
				Timestamp:  time.Now(),
			})
			succeeded = false
			break
		}

		step.ExecutionLog = append(step.ExecutionLog, fmt.Sprintf("%s completed in %s", call.Name, elapsed.Round(time.Millisecond)))
		sink.Emit(ctx, Event{
			Kind:       EventToolComplete,
			PlanID:     planID,
			StepID:     step.ID,
			ToolCallID: call.ID,
			Timestamp:  time.Now(),
		})
	}

	sink.Emit(ctx, Event{
		Kind:      EventStepComplete,
		PlanID:    planID,
		StepID:    step.ID,
		Success:   boolPtr(succeeded),
		Timestamp: time.Now(),
	})
	return succeeded
}

func errorMessage(err error, result *models.ToolResult) string {
	if err != nil {
		return err.Error()
	}
	if result != nil {
		return result.Content
	}
	return "unknown error"
}
