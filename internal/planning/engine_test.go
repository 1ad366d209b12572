package planning

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// fakeTool succeeds unless its name is in failNames.
type fakeTool struct {
	name      string
	failNames map[string]bool
}

func (t fakeTool) Definition() models.ToolDefinition {
	return models.ToolDefinition{Name: t.name, Category: models.ToolCategoryCustom}
}

func (t fakeTool) Execute(_ context.Context, _ tools.Context, _ json.RawMessage) (*models.ToolResult, error) {
	if t.failNames[t.name] {
		return &models.ToolResult{Content: "boom", IsError: true}, nil
	}
	return &models.ToolResult{Content: "ok"}, nil
}

func newTestExecutor(t *testing.T, failNames map[string]bool, names ...string) *tools.Executor {
	t.Helper()
	reg := tools.NewRegistry()
	for _, n := range names {
		if err := reg.Register(fakeTool{name: n, failNames: failNames}); err != nil {
			t.Fatal(err)
		}
	}
	return tools.NewExecutor(reg)
}

func call(id, name string) models.ToolCall {
	return models.ToolCall{ID: id, Name: name}
}

// TestExecutePlan_S3 mirrors spec.md's S3 scenario: a three-step plan where
// step 2's first tool call fails. Expected: plan_start, step_start(1),
// tool_complete(1.1), step_complete(1,true), step_start(2), tool_failed(2.1),
// step_complete(2,false), step_start(3), ..., step_complete(3,true),
// plan_complete(false). Summary: successful=2, failed=1, skipped=0.
func TestExecutePlan_S3(t *testing.T) {
	executor := newTestExecutor(t, map[string]bool{"fail_tool": true}, "ok_tool", "fail_tool")

	plan := &models.Plan{
		ID:     "plan-1",
		Status: models.PlanPending,
		Steps: []models.PlanStep{
			{ID: "1", ToolCalls: []models.ToolCall{call("1.1", "ok_tool")}},
			{ID: "2", ToolCalls: []models.ToolCall{call("2.1", "fail_tool"), call("2.2", "ok_tool")}},
			{ID: "3", ToolCalls: []models.ToolCall{call("3.1", "ok_tool")}},
		},
	}

	var events []Event
	sink := NewCallbackSink(func(_ context.Context, e Event) {
		events = append(events, e)
	})

	engine := New(executor)
	result := engine.ExecutePlan(context.Background(), plan, tools.Context{}, sink)

	if result.Success {
		t.Fatal("expected plan to fail")
	}
	if result.Summary != (models.ExecutionSummary{TotalSteps: 3, Successful: 2, Failed: 1, Skipped: 0}) {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}

	wantKinds := []EventKind{
		EventPlanStart,
		EventStepStart, EventToolComplete, EventStepComplete,
		EventStepStart, EventToolFailed, EventStepComplete,
		EventStepStart, EventToolComplete, EventStepComplete,
		EventPlanComplete,
	}
	if len(events) != len(wantKinds) {
		t.Fatalf("expected %d events, got %d: %+v", len(wantKinds), len(events), events)
	}
	for i, want := range wantKinds {
		if events[i].Kind != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, events[i].Kind)
		}
	}

	// step 2's tool call 2.2 must never run: it isn't in ok_tool's
	// execution log, and no tool_complete references it.
	for _, e := range events {
		if e.ToolCallID == "2.2" {
			t.Fatalf("tool call 2.2 should have been skipped after 2.1 failed, got event %+v", e)
		}
	}

	if plan.Status != models.PlanFailed {
		t.Fatalf("expected plan status failed, got %s", plan.Status)
	}
}

func TestExecutePlan_AllStepsSucceed(t *testing.T) {
	executor := newTestExecutor(t, nil, "ok_tool")
	plan := &models.Plan{
		ID: "plan-2",
		Steps: []models.PlanStep{
			{ID: "1", ToolCalls: []models.ToolCall{call("1.1", "ok_tool")}},
			{ID: "2", ToolCalls: []models.ToolCall{call("2.1", "ok_tool")}},
		},
	}

	engine := New(executor)
	result := engine.ExecutePlan(context.Background(), plan, tools.Context{}, nil)

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Summary.Successful != 2 || result.Summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if plan.Status != models.PlanCompleted {
		t.Fatalf("expected plan completed, got %s", plan.Status)
	}
}

func TestGeneratePlan_SkeletonIsWellFormed(t *testing.T) {
	engine := New(tools.NewExecutor(tools.NewRegistry()))
	plan := engine.GeneratePlan("refactor the auth module to use context.Context consistently")

	if plan.ID == "" {
		t.Fatal("expected a non-empty plan id")
	}
	if plan.Status != models.PlanPending {
		t.Fatalf("expected status pending, got %s", plan.Status)
	}
	if len(plan.Steps) != 0 {
		t.Fatalf("expected an empty skeleton plan, got %d steps", len(plan.Steps))
	}
	if plan.Title == "" {
		t.Fatal("expected a derived title")
	}
}

func TestGeneratePlan_EmptyDescriptionGetsPlaceholderTitle(t *testing.T) {
	engine := New(tools.NewExecutor(tools.NewRegistry()))
	plan := engine.GeneratePlan("   ")
	if plan.Title != "untitled plan" {
		t.Fatalf("expected placeholder title, got %q", plan.Title)
	}
}

// TestExecutePlan_CancelledContextSkipsRemainingSteps verifies that a
// cancelled context stops execution at the next safe point between tool
// calls rather than mid-call, leaving later steps skipped and the plan
// failed.
func TestExecutePlan_CancelledContextSkipsRemainingSteps(t *testing.T) {
	executor := newTestExecutor(t, nil, "ok_tool")
	plan := &models.Plan{
		ID: "plan-3",
		Steps: []models.PlanStep{
			{ID: "1", ToolCalls: []models.ToolCall{call("1.1", "ok_tool")}},
			{ID: "2", ToolCalls: []models.ToolCall{call("2.1", "ok_tool")}},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := New(executor)
	result := engine.ExecutePlan(ctx, plan, tools.Context{}, nil)

	if result.Success {
		t.Fatal("expected cancellation to fail the plan")
	}
	if result.Summary.Skipped != 2 {
		t.Fatalf("expected both steps skipped, got %+v", result.Summary)
	}
	if plan.Status != models.PlanFailed {
		t.Fatalf("expected plan status failed, got %s", plan.Status)
	}
}
