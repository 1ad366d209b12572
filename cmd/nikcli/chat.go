package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikcli-go/nikcli/internal/advprovider"
	"github.com/nikcli-go/nikcli/internal/streaming"
	"github.com/nikcli-go/nikcli/pkg/models"
)

func buildChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())
			a.arbiter.SetChatMode(true)

			session := &models.WorkSession{Name: "chat"}
			if err := a.store.Create(cmd.Context(), session); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runChatLoop(ctx, a, session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChatLoop(ctx context.Context, a *app, session *models.WorkSession, in io.Reader, out io.Writer) error {
	reader := bufio.NewReaderSize(in, 64*1024)

	for {
		fmt.Fprint(out, "> ")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		input, err := readTurn(reader)
		if err != nil {
			return err
		}
		input = strings.TrimRight(input, "\n")
		if strings.TrimSpace(input) == "" {
			continue
		}
		if strings.TrimSpace(input) == "/exit" || strings.TrimSpace(input) == "/quit" {
			return nil
		}

		a.arbiter.Enqueue(models.StreamMessage{Type: models.StreamUser, Content: input})

		userMsg := models.ChatMessage{Role: models.RoleUser, Content: input}
		if err := a.store.AppendMessage(ctx, session.ID, userMsg); err != nil {
			return err
		}
		session.Messages = append(session.Messages, userMsg)

		replyFn := generateReply
		if flagPlan {
			replyFn = generatePlannedReply
		}
		reply, err := replyFn(ctx, a, session)
		if err != nil {
			a.arbiter.Enqueue(models.StreamMessage{Type: models.StreamError, Content: err.Error()})
			return err
		}

		a.arbiter.Enqueue(models.StreamMessage{Type: models.StreamAgent, Content: reply})
		assistantMsg := models.ChatMessage{Role: models.RoleAssistant, Content: reply}
		if err := a.store.AppendMessage(ctx, session.ID, assistantMsg); err != nil {
			return err
		}
		session.Messages = append(session.Messages, assistantMsg)
	}
}

func generateReply(ctx context.Context, a *app, session *models.WorkSession) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout())
	defer cancel()

	req := &advprovider.AdvancedRequest{
		GenerateRequest: models.GenerateRequest{
			Messages: session.Messages,
			Scope:    models.ScopeChatDefault,
		},
	}
	if flagModel != "" {
		// A pinned model overrides scope-based routing entirely; leaving
		// Scope set would let applyScope switch back away from it.
		if err := a.gateway.SwitchModel(flagModel); err != nil {
			return "", err
		}
		req.GenerateRequest.Scope = ""
	}

	if flagAgent == "" {
		resp, err := a.advanced.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	}
	return generateReplyViaAgent(ctx, a, req)
}

// generateReplyViaAgent routes the turn through the named agent's
// assign/complete bookkeeping instead of calling the advanced provider
// directly, so --agent turns are reflected in `nikcli agents`/`status`.
func generateReplyViaAgent(ctx context.Context, a *app, req *advprovider.AdvancedRequest) (string, error) {
	findOrCreateAgent(a.agents, flagAgent)

	taskID, err := a.agents.AssignTask(models.AgentTask{Description: "chat turn"})
	if err != nil {
		return "", err
	}

	resp, err := a.advanced.Generate(ctx, req)
	if err != nil {
		a.agents.CompleteTask(taskID, models.TaskResult{TaskID: taskID, Success: false, Error: err.Error()})
		return "", err
	}

	a.agents.CompleteTask(taskID, models.TaskResult{TaskID: taskID, Success: true, Output: resp.Text})
	return resp.Text, nil
}

// readTurn reads one chat turn from reader. A pasted block arrives on the
// underlying connection faster than a human types it, so once the first
// line is in hand it keeps draining whatever is already buffered instead
// of returning line-by-line; streaming.IsPaste classifies the result only
// to decide whether it's worth flagging, since it's already read whole
// either way.
func readTurn(reader *bufio.Reader) (string, error) {
	first, err := reader.ReadString('\n')
	if err != nil && first == "" {
		return "", err
	}

	turn := first
	for reader.Buffered() > 0 {
		more, readErr := reader.ReadString('\n')
		turn += more
		if readErr != nil {
			break
		}
	}
	if streaming.IsPaste(turn) {
		slog.Debug("chat: treating buffered input as a pasted block", "bytes", len(turn))
	}
	return turn, nil
}
