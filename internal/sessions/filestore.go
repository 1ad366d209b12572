package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// FileStore is the primary Store: one JSON file per session under root,
// written atomically and serialized per session ID.
type FileStore struct {
	root   string
	locks  *SessionLockManager
	remote *RemoteMirror // nil disables the mirror
}

// NewFileStore constructs a FileStore rooted at root. remote may be nil.
func NewFileStore(root string, remote *RemoteMirror) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, corerr.Validation("session root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create session root: %w", err)
	}
	return &FileStore{root: root, locks: NewSessionLockManager(), remote: remote}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.root, id+".json")
}

// Create writes a new session file, generating an ID if absent.
func (s *FileStore) Create(ctx context.Context, session *models.WorkSession) error {
	if session == nil {
		return corerr.Validation("session is required")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastAccessed = now

	release, err := s.locks.Acquire(ctx, session.ID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.writeFile(session); err != nil {
		return err
	}
	s.mirror(ctx, session)
	return nil
}

// Get reads and decodes session id. If the local file is missing and a
// remote mirror is configured, it recovers the session from the mirror and
// writes it back locally before returning it.
func (s *FileStore) Get(ctx context.Context, id string) (*models.WorkSession, error) {
	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.readFile(id)
	if err == nil || s.remote == nil || !errors.Is(err, corerr.ErrNotFound) {
		return session, err
	}

	recovered, remoteErr := s.remote.Get(ctx, id)
	if remoteErr != nil {
		return nil, err
	}
	local := cloneWorkSession(recovered)
	if writeErr := s.writeFile(local); writeErr != nil {
		return nil, fmt.Errorf("recover session %q from remote mirror: %w", id, writeErr)
	}
	return local, nil
}

// Update overwrites session's file atomically.
func (s *FileStore) Update(ctx context.Context, session *models.WorkSession) error {
	if session == nil || session.ID == "" {
		return corerr.Validation("session with a non-empty id is required")
	}
	release, err := s.locks.Acquire(ctx, session.ID)
	if err != nil {
		return err
	}
	defer release()

	session.LastAccessed = time.Now()
	if err := s.writeFile(session); err != nil {
		return err
	}
	s.mirror(ctx, session)
	return nil
}

// Delete removes session id's file and, best-effort, its remote mirror.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return corerr.NotFound("session %q not found", id)
		}
		return err
	}
	if s.remote != nil {
		s.remote.Delete(ctx, id)
	}
	return nil
}

// List returns every session under root, sorted by ID.
func (s *FileStore) List(ctx context.Context) ([]*models.WorkSession, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)

	out := make([]*models.WorkSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

// AppendMessage appends msg to session id's transcript, updating
// last_accessed, under the session's lock.
func (s *FileStore) AppendMessage(ctx context.Context, id string, msg models.ChatMessage) error {
	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	session, err := s.readFile(id)
	if err != nil {
		return err
	}
	session.Messages = append(session.Messages, msg)
	session.LastAccessed = time.Now()
	if err := s.writeFile(session); err != nil {
		return err
	}
	s.mirror(ctx, session)
	return nil
}

func (s *FileStore) mirror(ctx context.Context, session *models.WorkSession) {
	if s.remote != nil {
		s.remote.Put(ctx, session)
	}
}

// writeFile serializes session to a temp file in the same directory, then
// renames it into place so readers never observe a partial write.
func (s *FileStore) writeFile(session *models.WorkSession) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-"+session.ID+"-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write session: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write session: %w", closeErr)
	}
	if err := os.Rename(tmpPath, s.path(session.ID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

func (s *FileStore) readFile(id string) (*models.WorkSession, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, corerr.NotFound("session %q not found", id)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var session models.WorkSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %q: %w", id, err)
	}
	return &session, nil
}
