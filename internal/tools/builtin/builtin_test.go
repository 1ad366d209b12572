package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/tools"
)

func TestReadFileTool_ReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	tool := NewReadFileTool()
	params, _ := json.Marshal(map[string]string{"path": "notes.txt"})
	result, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: dir}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "hello" {
		t.Fatalf("expected 'hello', got %q", result.Content)
	}
}

func TestReadFileTool_MissingFileReturnsNotFound(t *testing.T) {
	tool := NewReadFileTool()
	params, _ := json.Marshal(map[string]string{"path": "missing.txt"})
	_, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: t.TempDir()}, params)
	if !errors.Is(err, corerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadFileTool_PathEscapeRejected(t *testing.T) {
	tool := NewReadFileTool()
	params, _ := json.Marshal(map[string]string{"path": "../../etc/passwd"})
	_, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: t.TempDir()}, params)
	if !errors.Is(err, corerr.ErrValidation) {
		t.Fatalf("expected ErrValidation for path escape, got %v", err)
	}
}

func TestWriteFileTool_CreatesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	tool := NewWriteFileTool()

	params, _ := json.Marshal(map[string]string{"path": "out.txt", "content": "v1"})
	if _, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: dir}, params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params2, _ := json.Marshal(map[string]string{"path": "out.txt", "content": "v2"})
	if _, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: dir}, params2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v2" {
		t.Fatalf("expected overwrite to 'v2', got %q", data)
	}
}

func TestWriteFileTool_DefinitionRequiresConfirmation(t *testing.T) {
	tool := NewWriteFileTool()
	if !tool.Definition().RequiresConfirmation {
		t.Fatal("expected write_file definition to set RequiresConfirmation")
	}
}

func TestRunCommandTool_CapturesStdout(t *testing.T) {
	tool := NewRunCommandTool()
	params, _ := json.Marshal(map[string]any{"command": "echo", "args": []string{"hi"}})
	result, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: t.TempDir()}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %s", result.Content)
	}
}

func TestRunCommandTool_NonZeroExitReturnsStderrAsError(t *testing.T) {
	tool := NewRunCommandTool()
	params, _ := json.Marshal(map[string]any{"command": "sh", "args": []string{"-c", "echo oops 1>&2; exit 1"}})
	result, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: t.TempDir()}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError for non-zero exit")
	}
}

func TestRunCommandTool_RejectsShellMetacharactersInCommand(t *testing.T) {
	tool := NewRunCommandTool()
	params, _ := json.Marshal(map[string]any{"command": "echo; rm -rf /"})
	_, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: t.TempDir()}, params)
	if !errors.Is(err, corerr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRunCommandTool_ExceedingTimeoutReturnsTimeoutError(t *testing.T) {
	tool := NewRunCommandTool()
	params, _ := json.Marshal(map[string]any{
		"command":         "sh",
		"args":            []string{"-c", "sleep 2"},
		"timeout_seconds": 1,
	})
	_, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: t.TempDir()}, params)
	if !errors.Is(err, corerr.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestRunCommandTool_DefinitionIsDangerous(t *testing.T) {
	tool := NewRunCommandTool()
	if !tool.Definition().Dangerous {
		t.Fatal("expected run_command definition to set Dangerous")
	}
}

func TestGitStatusTool_RunsInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	tool := NewGitStatusTool()
	_, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: dir}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGrepTool_FindsMatchesRecursively(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "a.txt"), []byte("needle\nhaystack\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tool := NewGrepTool()
	params, _ := json.Marshal(map[string]string{"pattern": "needle"})
	result, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: dir}, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Matches []grepMatch `json:"matches"`
	}
	if err := json.Unmarshal([]byte(result.Content), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Matches) != 1 || payload.Matches[0].Line != 1 {
		t.Fatalf("expected one match on line 1, got %+v", payload.Matches)
	}
}

func TestGrepTool_InvalidPatternReturnsValidationError(t *testing.T) {
	tool := NewGrepTool()
	params, _ := json.Marshal(map[string]string{"pattern": "("})
	_, err := tool.Execute(context.Background(), tools.Context{WorkingDirectory: t.TempDir()}, params)
	if !errors.Is(err, corerr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRegisterAll_RegistersAllBuiltins(t *testing.T) {
	reg := tools.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := []string{"read_file", "write_file", "run_command", "git_status", "grep", "execute_code"}
	for _, name := range names {
		if _, ok := reg.Get(name); !ok {
			t.Fatalf("expected %q to be registered", name)
		}
	}
}
