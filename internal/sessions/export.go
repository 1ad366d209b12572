package sessions

import (
	"encoding/json"
	"fmt"

	"github.com/nikcli-go/nikcli/pkg/models"
)

// Export serializes session to the same self-describing JSON object format
// used on disk (spec.md §6): id, name, created_at, last_accessed_at,
// messages, edit_history{undo,redo}, metadata, tags.
func Export(session *models.WorkSession) ([]byte, error) {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export session: %w", err)
	}
	return data, nil
}

// Import decodes data produced by Export (or a FileStore's on-disk format)
// back into a WorkSession, preserving message order, timestamps, and
// edit-history structure.
func Import(data []byte) (*models.WorkSession, error) {
	var session models.WorkSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("import session: %w", err)
	}
	return &session, nil
}
