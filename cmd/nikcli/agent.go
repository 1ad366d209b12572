package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikcli-go/nikcli/internal/advprovider"
	"github.com/nikcli-go/nikcli/internal/agentsvc"
	"github.com/nikcli-go/nikcli/pkg/models"
)

func buildAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent <name> <task>",
		Short: "Dispatch a task to a named agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			name, description := args[0], args[1]
			agent := findOrCreateAgent(a.agents, name)

			taskID, err := a.agents.AssignTask(models.AgentTask{Description: description})
			if err != nil {
				return err
			}
			a.arbiter.Enqueue(models.StreamMessage{
				Type:    models.StreamSystem,
				Content: fmt.Sprintf("agent %s: task %s assigned", agent.Name, taskID),
				AgentID: agent.ID,
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
			defer cancel()

			req := &advprovider.AdvancedRequest{
				GenerateRequest: models.GenerateRequest{
					Messages: []models.ChatMessage{
						{Role: models.RoleSystem, Content: fmt.Sprintf("You are the %q agent.", agent.Specialization)},
						{Role: models.RoleUser, Content: description},
					},
					Scope: models.ScopeToolHeavy,
				},
			}

			resp, genErr := a.advanced.Generate(ctx, req)
			if genErr != nil {
				a.agents.CompleteTask(taskID, models.TaskResult{TaskID: taskID, Success: false, Error: genErr.Error()})
				a.arbiter.Enqueue(models.StreamMessage{Type: models.StreamError, Content: genErr.Error(), AgentID: agent.ID})
				return genErr
			}

			a.agents.CompleteTask(taskID, models.TaskResult{TaskID: taskID, Success: true, Output: resp.Text})
			a.arbiter.Enqueue(models.StreamMessage{Type: models.StreamAgent, Content: resp.Text, AgentID: agent.ID})
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		},
	}
}

// findOrCreateAgent looks up name among the registered agents, creating a
// generalist agent with that name on first use.
func findOrCreateAgent(svc *agentsvc.Service, name string) *models.Agent {
	for _, a := range svc.ListAgents() {
		if a.Name == name {
			cp := a
			return &cp
		}
	}
	return svc.CreateAgent(agentsvc.AgentConfig{
		Name:               name,
		Specialization:     name,
		MaxConcurrentTasks: 1,
	})
}
