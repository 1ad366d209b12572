package streaming

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nikcli-go/nikcli/pkg/models"
)

type recordingWriter struct {
	mu      sync.Mutex
	written []models.StreamMessage
	redraws int
}

func (w *recordingWriter) Write(msg models.StreamMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, msg)
}

func (w *recordingWriter) Redraw() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.redraws++
}

func (w *recordingWriter) snapshot() ([]models.StreamMessage, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]models.StreamMessage(nil), w.written...)
	return out, w.redraws
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestArbiter_DeliversMessagesInFIFOOrder(t *testing.T) {
	w := &recordingWriter{}
	a := NewArbiter(w)
	a.Start()

	for i := 0; i < 5; i++ {
		a.Enqueue(models.StreamMessage{Type: models.StreamAgent, Content: string(rune('a' + i))})
	}

	waitFor(t, time.Second, func() bool {
		msgs, _ := w.snapshot()
		return len(msgs) == 5
	})

	msgs, _ := w.snapshot()
	for i, m := range msgs {
		if m.Content != string(rune('a'+i)) {
			t.Fatalf("message %d out of order: %+v", i, msgs)
		}
	}
}

func TestArbiter_RedrawSuppressedOutsideChatMode(t *testing.T) {
	w := &recordingWriter{}
	a := NewArbiter(w)
	a.Start()
	// chat mode defaults to false.
	a.Enqueue(models.StreamMessage{Type: models.StreamTool, Content: "x"})

	time.Sleep(redrawQuietPeriod * 3)
	_, redraws := w.snapshot()
	if redraws != 0 {
		t.Fatalf("expected no redraws outside chat mode, got %d", redraws)
	}
}

func TestArbiter_RedrawFiresOnceAfterQuietPeriod(t *testing.T) {
	w := &recordingWriter{}
	a := NewArbiter(w)
	a.SetChatMode(true)
	a.Start()

	for i := 0; i < 3; i++ {
		a.Enqueue(models.StreamMessage{Type: models.StreamAgent, Content: "x"})
		time.Sleep(redrawQuietPeriod / 5)
	}

	waitFor(t, time.Second, func() bool {
		_, redraws := w.snapshot()
		return redraws >= 1
	})

	time.Sleep(redrawQuietPeriod * 2)
	_, redraws := w.snapshot()
	if redraws != 1 {
		t.Fatalf("expected exactly one debounced redraw, got %d", redraws)
	}
}

func TestArbiter_RedrawSuppressedDuringPrintingPanel(t *testing.T) {
	w := &recordingWriter{}
	a := NewArbiter(w)
	a.SetChatMode(true)
	a.SetPrintingPanel(true)
	a.Start()

	a.Enqueue(models.StreamMessage{Type: models.StreamTool, Content: "x"})
	time.Sleep(redrawQuietPeriod * 3)

	_, redraws := w.snapshot()
	if redraws != 0 {
		t.Fatalf("expected redraw suppressed while printing panel, got %d", redraws)
	}
}

func TestArbiter_ModeCycleAnnouncesSystemMessage(t *testing.T) {
	w := &recordingWriter{}
	a := NewArbiter(w)
	a.Start()

	next := a.CycleMode()
	if next != ModePlan {
		t.Fatalf("expected first cycle to reach plan mode, got %s", next)
	}

	waitFor(t, time.Second, func() bool {
		msgs, _ := w.snapshot()
		return len(msgs) == 1
	})

	msgs, _ := w.snapshot()
	if msgs[0].Type != models.StreamSystem {
		t.Fatalf("expected a system message announcing the mode change, got %+v", msgs[0])
	}
}

func TestArbiter_SetModeToCurrentIsANoop(t *testing.T) {
	w := &recordingWriter{}
	a := NewArbiter(w)
	a.Start()

	a.SetMode(ModeDefault)
	time.Sleep(20 * time.Millisecond)

	msgs, _ := w.snapshot()
	if len(msgs) != 0 {
		t.Fatalf("expected no announcement for a no-op mode set, got %+v", msgs)
	}
}

func TestArbiter_ShutdownDrainsQueueBeforeReturning(t *testing.T) {
	w := &recordingWriter{}
	a := NewArbiter(w)
	a.Start()

	for i := 0; i < 50; i++ {
		a.Enqueue(models.StreamMessage{Type: models.StreamAgent, Content: "x"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	msgs, _ := w.snapshot()
	if len(msgs) != 50 {
		t.Fatalf("expected all 50 messages drained before shutdown returned, got %d", len(msgs))
	}
}

func TestIsPaste(t *testing.T) {
	if IsPaste("short") {
		t.Fatal("short single-line input should not be classified as a paste")
	}
	if !IsPaste(string(make([]byte, 1001))) {
		t.Fatal("input over 1000 bytes should be classified as a paste")
	}
	var longLines string
	for i := 0; i < 11; i++ {
		longLines += "line\n"
	}
	if !IsPaste(longLines) {
		t.Fatal("input with more than 10 lines should be classified as a paste")
	}
}
