package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nikcli-go/nikcli/internal/modelrouter"
)

const watchDebounce = 250 * time.Millisecond

// Watcher reloads a config file on change and pushes the new model
// strategy overrides into a Router, so changing scope_overrides on disk
// takes effect without restarting the CLI. Every other field requires a
// restart: provider credentials, session root, and sandbox backend are
// only read once at startup.
type Watcher struct {
	path    string
	router  *modelrouter.Router
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher constructs a Watcher for path, reloading into router.
func NewWatcher(path string, router *modelrouter.Router, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, router: router, logger: logger}
}

// Start begins watching the config file's directory for changes. Call
// Close to stop. Safe to call once; a second call is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watcher != nil {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(watchCtx)
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	watcher := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	if watcher != nil {
		_ = watcher.Close()
	}
	w.wg.Wait()
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}

	var mu sync.Mutex
	var timer *time.Timer
	scheduleReload := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, w.reload)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == filepath.Clean(w.path) && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous strategy table", "error", err)
		return
	}
	for scope, strategy := range cfg.Model.ScopeOverrides {
		if err := w.router.UpdateStrategy(scope, strategy); err != nil {
			w.logger.Warn("config reload: rejected scope override", "scope", scope, "error", err)
			continue
		}
		w.logger.Info("config reload: applied scope override", "scope", scope, "primary", strategy.Primary)
	}
}
