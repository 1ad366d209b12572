// Package sessions implements C8: durable work sessions with reversible
// edit history. Each session is one JSON file under a per-user root
// directory, written atomically (write-to-temp-then-rename); concurrent
// access to the same session is serialized per session ID. An optional
// remote mirror write-through keeps a best-effort copy in a key-value
// store for recovery across machines.
package sessions

import (
	"context"

	"github.com/nikcli-go/nikcli/pkg/models"
)

// Store persists WorkSessions.
type Store interface {
	Create(ctx context.Context, session *models.WorkSession) error
	Get(ctx context.Context, id string) (*models.WorkSession, error)
	Update(ctx context.Context, session *models.WorkSession) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.WorkSession, error)

	// AppendMessage appends msg to session id's transcript and updates
	// last_accessed.
	AppendMessage(ctx context.Context, id string, msg models.ChatMessage) error
}

func cloneWorkSession(s *models.WorkSession) *models.WorkSession {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Messages = append([]models.ChatMessage(nil), s.Messages...)
	clone.UndoStack = append([]models.FileOperation(nil), s.UndoStack...)
	clone.RedoStack = append([]models.FileOperation(nil), s.RedoStack...)
	clone.Tags = append([]string(nil), s.Tags...)
	if s.Metadata != nil {
		clone.Metadata = deepCloneMap(s.Metadata)
	}
	return &clone
}

// deepCloneMap recursively copies a map[string]any so stored sessions never
// share backing arrays/maps with a caller's copy.
func deepCloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	clone := make(map[string]any, len(m))
	for k, v := range m {
		clone[k] = deepCloneValue(v)
	}
	return clone
}

func deepCloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCloneMap(val)
	case []any:
		cloned := make([]any, len(val))
		for i, item := range val {
			cloned[i] = deepCloneValue(item)
		}
		return cloned
	default:
		return v
	}
}
