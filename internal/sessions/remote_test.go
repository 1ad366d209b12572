package sessions

import (
	"context"
	"testing"

	"github.com/nikcli-go/nikcli/pkg/models"
)

func TestRemoteMirror_NilClientDoesNotPanic(t *testing.T) {
	m := NewRemoteMirror(nil, 0, nil)
	ctx := context.Background()

	m.Put(ctx, &models.WorkSession{ID: "s1"})
	m.Delete(ctx, "s1")
	if _, err := m.Get(ctx, "s1"); err == nil {
		t.Fatal("expected an error fetching from an unconfigured mirror")
	}
}

func TestRemoteMirror_NilReceiverDoesNotPanic(t *testing.T) {
	var m *RemoteMirror
	ctx := context.Background()

	m.Put(ctx, &models.WorkSession{ID: "s1"})
	m.Delete(ctx, "s1")
}
