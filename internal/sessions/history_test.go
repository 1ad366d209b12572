package sessions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikcli-go/nikcli/pkg/models"
)

// TestEditHistory_S5 mirrors spec.md's S5 scenario: create a.txt with "v1",
// modify to "v2", modify to "v3". undo(2) restores "v1" with undo_count=1,
// redo_count=2. redo(2) restores "v3" with undo_count=3, redo_count=0.
func TestEditHistory_S5(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	session := &models.WorkSession{}
	h := NewEditHistory(session, DefaultMaxHistory)

	write := func(content string) {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("v1")
	h.Record(NewFileOperation(models.FileOpCreate, path, "", "v1"))
	write("v2")
	h.Record(NewFileOperation(models.FileOpModify, path, "v1", "v2"))
	write("v3")
	h.Record(NewFileOperation(models.FileOpModify, path, "v2", "v3"))

	if err := h.Undo(2); err != nil {
		t.Fatal(err)
	}
	assertContent(t, path, "v1")
	if h.UndoCount() != 1 {
		t.Fatalf("expected undo_count=1, got %d", h.UndoCount())
	}
	if h.RedoCount() != 2 {
		t.Fatalf("expected redo_count=2, got %d", h.RedoCount())
	}

	if err := h.Redo(2); err != nil {
		t.Fatal(err)
	}
	assertContent(t, path, "v3")
	if h.UndoCount() != 3 {
		t.Fatalf("expected undo_count=3, got %d", h.UndoCount())
	}
	if h.RedoCount() != 0 {
		t.Fatalf("expected redo_count=0, got %d", h.RedoCount())
	}
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Fatalf("expected content %q, got %q", want, string(got))
	}
}

func TestEditHistory_RecordClearsRedoStack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.txt")
	session := &models.WorkSession{}
	h := NewEditHistory(session, DefaultMaxHistory)

	os.WriteFile(path, []byte("v1"), 0o644)
	h.Record(NewFileOperation(models.FileOpCreate, path, "", "v1"))
	os.WriteFile(path, []byte("v2"), 0o644)
	h.Record(NewFileOperation(models.FileOpModify, path, "v1", "v2"))

	if err := h.Undo(1); err != nil {
		t.Fatal(err)
	}
	if h.RedoCount() != 1 {
		t.Fatalf("expected redo_count=1 before new edit, got %d", h.RedoCount())
	}

	os.WriteFile(path, []byte("v2-again"), 0o644)
	h.Record(NewFileOperation(models.FileOpModify, path, "v1", "v2-again"))

	if h.RedoCount() != 0 {
		t.Fatalf("expected a new record to clear the redo stack, got %d", h.RedoCount())
	}
}

func TestEditHistory_BoundedAtMaxHistory(t *testing.T) {
	session := &models.WorkSession{}
	h := NewEditHistory(session, 3)

	for i := 0; i < 5; i++ {
		h.Record(NewFileOperation(models.FileOpCreate, "/tmp/unused", "", "x"))
	}
	if h.UndoCount() != 3 {
		t.Fatalf("expected undo stack capped at 3, got %d", h.UndoCount())
	}
}

func TestEditHistory_UndoMoreThanAvailableIsANoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.txt")
	session := &models.WorkSession{}
	h := NewEditHistory(session, DefaultMaxHistory)

	os.WriteFile(path, []byte("v1"), 0o644)
	h.Record(NewFileOperation(models.FileOpCreate, path, "", "v1"))

	if err := h.Undo(5); err != nil {
		t.Fatal(err)
	}
	if h.UndoCount() != 0 {
		t.Fatalf("expected undo stack drained, got %d", h.UndoCount())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected a.txt removed after undoing its create, err=%v", err)
	}
}
