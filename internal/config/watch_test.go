package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikcli-go/nikcli/internal/modelrouter"
)

func TestWatcher_ReloadsScopeOverrideOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	router := modelrouter.New()
	w := NewWatcher(path, router, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer func() { _ = w.Close() }()

	updated := `
version: 1
model:
  scope_overrides:
    quick:
      primary: anthropic/claude-3-haiku
      max_tokens: 1024
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		strategy := router.GetStrategy("quick")
		if strategy != nil && strategy.Primary == "anthropic/claude-3-haiku" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("timed out waiting for scope override to apply")
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, modelrouter.New(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}
