package main

import (
	"testing"

	"github.com/nikcli-go/nikcli/internal/planning"
)

func TestParsePlanSteps(t *testing.T) {
	text := "```json\n" + `[
		{"title": "read the file", "tool_calls": [{"name": "read_file", "input": {"path": "a.go"}}]},
		{"title": "summarize", "tool_calls": []}
	]` + "\n```"

	steps, err := parsePlanSteps(text)
	if err != nil {
		t.Fatalf("parsePlanSteps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Title != "read the file" {
		t.Fatalf("unexpected title: %q", steps[0].Title)
	}
	if len(steps[0].ToolCalls) != 1 || steps[0].ToolCalls[0].ID != "1.1" {
		t.Fatalf("expected generated tool call id 1.1, got %+v", steps[0].ToolCalls)
	}
}

func TestParsePlanStepsRejectsInvalidJSON(t *testing.T) {
	if _, err := parsePlanSteps("not json"); err == nil {
		t.Fatal("expected an error for invalid plan JSON")
	}
}

func TestBoolValue(t *testing.T) {
	if boolValue(nil) != false {
		t.Fatal("boolValue(nil) should be false")
	}
	v := true
	if boolValue(&v) != true {
		t.Fatal("boolValue(&true) should be true")
	}
}

func TestDescribeEventCoversKnownKinds(t *testing.T) {
	success := true
	cases := []planning.Event{
		{Kind: planning.EventStepStart, StepID: "1"},
		{Kind: planning.EventStepComplete, StepID: "1", Success: &success},
		{Kind: planning.EventToolComplete, StepID: "1", ToolCallID: "1.1"},
		{Kind: planning.EventToolFailed, StepID: "1", ToolCallID: "1.1", Message: "boom"},
		{Kind: planning.EventPlanComplete, PlanID: "p1", Success: &success},
	}
	for _, e := range cases {
		if describeEvent(e) == "" {
			t.Fatalf("describeEvent(%+v) returned empty string", e)
		}
	}
}
