package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikcli-go/nikcli/internal/advprovider"
	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/planning"
	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/pkg/models"
)

func buildPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <task>",
		Short: "Generate and execute a plan for a task description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			ctx := cmd.Context()
			task := args[0]

			plan := a.planner.GeneratePlan(task)
			a.arbiter.Enqueue(models.StreamMessage{
				Type:    models.StreamSystem,
				Content: fmt.Sprintf("plan %s generated: %s", plan.ID, plan.Title),
			})

			steps, err := generateSteps(ctx, a, task)
			if err != nil {
				a.arbiter.Enqueue(models.StreamMessage{Type: models.StreamError, Content: err.Error()})
				return err
			}
			plan.Steps = steps

			sink := planning.NewCallbackSink(func(_ context.Context, e planning.Event) {
				a.arbiter.Enqueue(models.StreamMessage{Type: models.StreamSystem, Content: describeEvent(e)})
			})

			tc := tools.Context{
				WorkingDirectory: ".",
				Permissions:      map[string]bool{},
			}
			if flagAuto {
				tc.Permissions[tools.DangerousToolsPermission] = true
			}

			result := a.planner.ExecutePlan(ctx, plan, tc, sink)
			fmt.Fprintf(cmd.OutOrStdout(), "plan %s: %d/%d steps succeeded\n",
				result.PlanID, result.Summary.Successful, result.Summary.TotalSteps)

			if !result.Success {
				return corerr.Internal("plan %s did not complete successfully", result.PlanID)
			}
			return nil
		},
	}
}

// generateSteps asks the model to turn a task description into a concrete
// sequence of tool calls against the registered tool catalog, since the
// planning engine itself only produces an empty skeleton (spec.md leaves
// step synthesis to whatever drives it).
func generateSteps(ctx context.Context, a *app, task string) ([]models.PlanStep, error) {
	var toolLines []string
	for _, def := range a.registry.List() {
		toolLines = append(toolLines, fmt.Sprintf("- %s: %s", def.Name, def.Description))
	}

	system := models.ChatMessage{
		Role: models.RoleSystem,
		Content: "You turn a task description into a JSON plan. Respond with only a JSON array " +
			`of steps shaped like [{"title": "...", "tool_calls": [{"name": "tool_name", "input": {}}]}]. ` +
			"Use only these tools:\n" + strings.Join(toolLines, "\n"),
	}
	req := &advprovider.AdvancedRequest{
		GenerateRequest: models.GenerateRequest{
			Messages: []models.ChatMessage{system, {Role: models.RoleUser, Content: task}},
			Scope:    models.ScopePlanning,
		},
	}

	resp, err := a.advanced.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return parsePlanSteps(resp.Text)
}

func parsePlanSteps(text string) ([]models.PlanStep, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw []struct {
		Title     string           `json:"title"`
		ToolCalls []models.ToolCall `json:"tool_calls"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, corerr.Validation("model did not return a valid plan: %v", err)
	}

	steps := make([]models.PlanStep, 0, len(raw))
	for i, r := range raw {
		for j := range r.ToolCalls {
			if r.ToolCalls[j].ID == "" {
				r.ToolCalls[j].ID = fmt.Sprintf("%d.%d", i+1, j+1)
			}
		}
		steps = append(steps, models.PlanStep{
			ID:        fmt.Sprintf("%d", i+1),
			Title:     r.Title,
			ToolCalls: r.ToolCalls,
		})
	}
	return steps, nil
}

func describeEvent(e planning.Event) string {
	switch e.Kind {
	case planning.EventStepStart:
		return fmt.Sprintf("step %s: started", e.StepID)
	case planning.EventStepComplete:
		return fmt.Sprintf("step %s: complete (success=%v)", e.StepID, boolValue(e.Success))
	case planning.EventToolComplete:
		return fmt.Sprintf("step %s: tool %s complete", e.StepID, e.ToolCallID)
	case planning.EventToolFailed:
		return fmt.Sprintf("step %s: tool %s failed: %s", e.StepID, e.ToolCallID, e.Message)
	case planning.EventPlanComplete:
		return fmt.Sprintf("plan %s: complete (success=%v)", e.PlanID, boolValue(e.Success))
	default:
		return string(e.Kind)
	}
}

func boolValue(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

// generatePlannedReply is chat.go's --plan path: instead of a single
// completion, the latest user turn is expanded into a plan and executed,
// with the plan summary returned as the turn's reply.
func generatePlannedReply(ctx context.Context, a *app, session *models.WorkSession) (string, error) {
	task := session.Messages[len(session.Messages)-1].Content

	plan := a.planner.GeneratePlan(task)
	steps, err := generateSteps(ctx, a, task)
	if err != nil {
		return "", err
	}
	plan.Steps = steps

	sink := planning.NewCallbackSink(func(_ context.Context, e planning.Event) {
		a.arbiter.Enqueue(models.StreamMessage{Type: models.StreamSystem, Content: describeEvent(e)})
	})

	tc := tools.Context{WorkingDirectory: ".", Permissions: map[string]bool{}}
	if flagAuto {
		tc.Permissions[tools.DangerousToolsPermission] = true
	}

	result := a.planner.ExecutePlan(ctx, plan, tc, sink)
	return fmt.Sprintf("plan %s: %d/%d steps succeeded", result.PlanID, result.Summary.Successful, result.Summary.TotalSteps), nil
}
