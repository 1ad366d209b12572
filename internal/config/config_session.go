package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RemoteMirrorConfig configures an optional Redis-backed mirror of work
// sessions, used to survive CLI restarts across machines.
type RemoteMirrorConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	TTL     time.Duration `yaml:"ttl"`
}

// SessionConfig controls where work sessions and edit history are
// persisted on disk, and whether they are mirrored remotely.
type SessionConfig struct {
	Root   string             `yaml:"root"`
	Remote RemoteMirrorConfig `yaml:"remote"`
}

const defaultRemoteTTL = 30 * 24 * time.Hour

func defaultSessionRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nikcli/work-sessions"
	}
	return filepath.Join(home, ".nikcli", "work-sessions")
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.Root == "" {
		cfg.Root = defaultSessionRoot()
	}
	if cfg.Remote.Enabled && cfg.Remote.TTL == 0 {
		cfg.Remote.TTL = defaultRemoteTTL
	}
}

func validateSession(cfg SessionConfig) []string {
	var issues []string
	if cfg.Root == "" {
		issues = append(issues, "session.root must not be empty")
	}
	if cfg.Remote.Enabled && cfg.Remote.URL == "" {
		issues = append(issues, "session.remote.url is required when session.remote.enabled is true")
	}
	if cfg.Remote.TTL < 0 {
		issues = append(issues, fmt.Sprintf("session.remote.ttl must not be negative, got %s", cfg.Remote.TTL))
	}
	return issues
}
