package sessions

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nikcli-go/nikcli/pkg/models"
)

// DefaultMaxHistory is the default bound on a session's undo stack (spec.md
// §4.8).
const DefaultMaxHistory = 100

// EditHistory wraps a session's undo/redo stacks and applies or reverses
// FileOperations against the real filesystem. It mutates the WorkSession it
// is constructed with in place; callers persist the session afterwards.
type EditHistory struct {
	session    *models.WorkSession
	maxHistory int
}

// NewEditHistory wraps session. maxHistory <= 0 uses DefaultMaxHistory.
func NewEditHistory(session *models.WorkSession, maxHistory int) *EditHistory {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &EditHistory{session: session, maxHistory: maxHistory}
}

// Record pushes op onto the undo stack and clears the redo stack, dropping
// the oldest undo entry once the stack exceeds maxHistory.
func (h *EditHistory) Record(op models.FileOperation) {
	h.session.UndoStack = append(h.session.UndoStack, op)
	if len(h.session.UndoStack) > h.maxHistory {
		excess := len(h.session.UndoStack) - h.maxHistory
		h.session.UndoStack = h.session.UndoStack[excess:]
	}
	h.session.RedoStack = nil
}

// UndoCount and RedoCount report current stack depths.
func (h *EditHistory) UndoCount() int { return len(h.session.UndoStack) }
func (h *EditHistory) RedoCount() int { return len(h.session.RedoStack) }

// Undo pops up to n entries from the undo stack, reversing each on disk
// (delete on Create, restore old content on Modify/Delete) and pushing it
// onto the redo stack. A disk error aborts the remaining undo operations:
// the failing and not-yet-attempted entries stay on the undo stack, and
// every entry reversed before the failure moves to the redo stack.
func (h *EditHistory) Undo(n int) error {
	for i := 0; i < n; i++ {
		if len(h.session.UndoStack) == 0 {
			return nil
		}
		last := len(h.session.UndoStack) - 1
		op := h.session.UndoStack[last]

		if err := reverseOnDisk(op); err != nil {
			return fmt.Errorf("undo %s: %w", op.Path, err)
		}

		h.session.UndoStack = h.session.UndoStack[:last]
		h.session.RedoStack = append(h.session.RedoStack, op)
	}
	return nil
}

// Redo is the inverse of Undo: it pops up to n entries from the redo stack,
// re-applies each on disk, and pushes it back onto the undo stack. A disk
// error aborts the remaining redo operations the same way Undo does.
func (h *EditHistory) Redo(n int) error {
	for i := 0; i < n; i++ {
		if len(h.session.RedoStack) == 0 {
			return nil
		}
		last := len(h.session.RedoStack) - 1
		op := h.session.RedoStack[last]

		if err := applyOnDisk(op); err != nil {
			return fmt.Errorf("redo %s: %w", op.Path, err)
		}

		h.session.RedoStack = h.session.RedoStack[:last]
		h.session.UndoStack = append(h.session.UndoStack, op)
	}
	return nil
}

// reverseOnDisk undoes op: a Create is removed, a Modify or Delete is
// restored to its prior content.
func reverseOnDisk(op models.FileOperation) error {
	switch op.Kind {
	case models.FileOpCreate:
		if err := os.Remove(op.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	case models.FileOpModify, models.FileOpDelete:
		return writeFileContent(op.Path, op.Old)
	default:
		return fmt.Errorf("unknown file operation kind %q", op.Kind)
	}
}

// applyOnDisk redoes op: a Create or Modify is re-written with its new
// content, a Delete is removed again.
func applyOnDisk(op models.FileOperation) error {
	switch op.Kind {
	case models.FileOpCreate, models.FileOpModify:
		return writeFileContent(op.Path, op.New)
	case models.FileOpDelete:
		if err := os.Remove(op.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown file operation kind %q", op.Kind)
	}
}

func writeFileContent(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// NewFileOperation stamps a FileOperation with the current time, ready to
// pass to Record.
func NewFileOperation(kind models.FileOpKind, path, oldContent, newContent string) models.FileOperation {
	return models.FileOperation{
		Kind:      kind,
		Path:      path,
		Old:       oldContent,
		New:       newContent,
		Timestamp: time.Now(),
	}
}
