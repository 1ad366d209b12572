package sessions

import (
	"testing"
	"time"

	"github.com/nikcli-go/nikcli/pkg/models"
)

func TestExportImport_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	original := &models.WorkSession{
		ID:           "s1",
		Name:         "demo",
		CreatedAt:    now,
		LastAccessed: now,
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "hello"},
			{Role: models.RoleAssistant, Content: "hi there"},
		},
		UndoStack: []models.FileOperation{
			{Kind: models.FileOpCreate, Path: "a.txt", New: "v1", Timestamp: now},
		},
		RedoStack: []models.FileOperation{},
		Tags:      []string{"demo", "test"},
	}

	data, err := Export(original)
	if err != nil {
		t.Fatal(err)
	}

	imported, err := Import(data)
	if err != nil {
		t.Fatal(err)
	}

	if imported.ID != original.ID || imported.Name != original.Name {
		t.Fatalf("identity fields did not round-trip: %+v", imported)
	}
	if !imported.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("created_at did not round-trip: %v vs %v", imported.CreatedAt, original.CreatedAt)
	}
	if len(imported.Messages) != len(original.Messages) {
		t.Fatalf("message count mismatch: %d vs %d", len(imported.Messages), len(original.Messages))
	}
	for i := range original.Messages {
		if imported.Messages[i] != original.Messages[i] {
			t.Fatalf("message %d did not round-trip in order: %+v vs %+v", i, imported.Messages[i], original.Messages[i])
		}
	}
	if len(imported.UndoStack) != 1 || imported.UndoStack[0].Path != "a.txt" {
		t.Fatalf("undo stack did not round-trip: %+v", imported.UndoStack)
	}
	if len(imported.Tags) != 2 {
		t.Fatalf("tags did not round-trip: %+v", imported.Tags)
	}
}
