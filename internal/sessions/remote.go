package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikcli-go/nikcli/pkg/models"
)

// remoteKeyPrefix matches spec.md §6's persisted layout: remote mirror keys
// are "session:<uuid>".
const remoteKeyPrefix = "session:"

// RemoteMirror is a best-effort, write-through copy of sessions in a
// key-value store. Every failure is logged and swallowed: the local
// FileStore remains the source of truth, per spec.md §4.8 ("remote
// failures degrade silently to local-only").
type RemoteMirror struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRemoteMirror wraps client. ttl <= 0 uses 30 days, matching spec.md §6.
func NewRemoteMirror(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RemoteMirror {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteMirror{client: client, ttl: ttl, logger: logger}
}

func remoteKey(sessionID string) string {
	return remoteKeyPrefix + sessionID
}

// Put writes session through to the mirror. Failures are logged, not
// returned: callers never block a local write on the remote store.
func (m *RemoteMirror) Put(ctx context.Context, session *models.WorkSession) {
	if m == nil || m.client == nil {
		return
	}
	data, err := json.Marshal(session)
	if err != nil {
		m.logger.Warn("remote mirror encode failed", "session_id", session.ID, "error", err)
		return
	}
	if err := m.client.Set(ctx, remoteKey(session.ID), data, m.ttl).Err(); err != nil {
		m.logger.Warn("remote mirror write failed", "session_id", session.ID, "error", err)
	}
}

// Delete removes sessionID from the mirror, logging and swallowing failures.
func (m *RemoteMirror) Delete(ctx context.Context, sessionID string) {
	if m == nil || m.client == nil {
		return
	}
	if err := m.client.Del(ctx, remoteKey(sessionID)).Err(); err != nil {
		m.logger.Warn("remote mirror delete failed", "session_id", sessionID, "error", err)
	}
}

// Get fetches sessionID from the mirror for recovery when the local copy is
// missing. Unlike Put/Delete, the caller decides whether a miss here is
// fatal, so Get returns the error rather than swallowing it.
func (m *RemoteMirror) Get(ctx context.Context, sessionID string) (*models.WorkSession, error) {
	if m == nil || m.client == nil {
		return nil, fmt.Errorf("remote mirror is not configured")
	}
	data, err := m.client.Get(ctx, remoteKey(sessionID)).Bytes()
	if err != nil {
		return nil, err
	}
	var session models.WorkSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode mirrored session %q: %w", sessionID, err)
	}
	return &session, nil
}
