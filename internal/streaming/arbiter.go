package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikcli-go/nikcli/pkg/models"
)

const redrawQuietPeriod = 50 * time.Millisecond

// Writer renders a StreamMessage and the prompt redraw to the terminal.
// Write and Redraw are only ever called from the arbiter's single worker
// goroutine, so implementations need no internal locking.
type Writer interface {
	Write(msg models.StreamMessage)
	Redraw()
}

// DiscardWriter is a Writer that writes nothing; useful for non-interactive
// CLI invocations where only the final result matters.
type DiscardWriter struct{}

func (DiscardWriter) Write(models.StreamMessage) {}
func (DiscardWriter) Redraw()                    {}

// PlainWriter writes message content as lines to an io.Writer, with no
// prompt redraw (suited to piped/non-TTY output).
type PlainWriter struct {
	Out io.Writer
}

func (w PlainWriter) Write(msg models.StreamMessage) {
	fmt.Fprintln(w.Out, msg.Content)
}

func (w PlainWriter) Redraw() {}

// JSONWriter writes each StreamMessage as one JSON object per line, for
// --structured-ui invocations piping output to another process instead of
// a human at a TTY. Like PlainWriter it never redraws a prompt.
type JSONWriter struct {
	Out io.Writer
}

func (w JSONWriter) Write(msg models.StreamMessage) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return
	}
	w.Out.Write(append(encoded, '\n'))
}

func (w JSONWriter) Redraw() {}

// Arbiter is the single serialization point for everything that wants to
// touch the terminal. It owns one FIFO queue, one drain worker, the current
// interaction mode, and the state that gates prompt redraws.
type Arbiter struct {
	queue  *Queue
	writer Writer
	mode   *ModeSwitch

	printingPanel  atomic.Bool
	inquirerActive atomic.Bool
	chatMode       atomic.Bool

	redrawMu      sync.Mutex
	redrawTimer   *time.Timer
	redrawPending bool

	wg      sync.WaitGroup
	started atomic.Bool
	done    chan struct{}
}

func NewArbiter(writer Writer) *Arbiter {
	if writer == nil {
		writer = DiscardWriter{}
	}
	return &Arbiter{
		queue:  NewQueue(),
		writer: writer,
		mode:   NewModeSwitch(),
		done:   make(chan struct{}),
	}
}

// Start launches the single drain worker. Calling Start more than once is a
// no-op.
func (a *Arbiter) Start() {
	if !a.started.CompareAndSwap(false, true) {
		return
	}
	a.wg.Add(1)
	go a.run()
}

func (a *Arbiter) run() {
	defer a.wg.Done()
	for {
		msg, ok := a.queue.dequeue()
		if !ok {
			close(a.done)
			return
		}
		msg.Status = models.StreamProcessing
		a.writer.Write(msg)
		a.scheduleRedraw()
	}
}

// Enqueue submits a message for serialized delivery. Non-blocking, O(1).
func (a *Arbiter) Enqueue(msg models.StreamMessage) {
	a.queue.Enqueue(msg)
}

// SetPrintingPanel toggles the flag that suppresses prompt redraws while a
// panel is rendering.
func (a *Arbiter) SetPrintingPanel(active bool) {
	a.printingPanel.Store(active)
}

// SetInquirerActive toggles the flag that suppresses prompt redraws while
// an interactive prompt (inquirer-style) owns the terminal.
func (a *Arbiter) SetInquirerActive(active bool) {
	a.inquirerActive.Store(active)
}

// SetChatMode toggles whether the CLI is in an interactive chat session;
// redraws are suppressed entirely outside chat mode.
func (a *Arbiter) SetChatMode(active bool) {
	a.chatMode.Store(active)
}

func (a *Arbiter) redrawSuppressed() bool {
	return a.printingPanel.Load() || a.inquirerActive.Load() || !a.chatMode.Load()
}

// scheduleRedraw debounces prompt redraws to at most one per quiet period.
func (a *Arbiter) scheduleRedraw() {
	a.redrawMu.Lock()
	defer a.redrawMu.Unlock()

	if a.redrawTimer != nil {
		a.redrawTimer.Stop()
	}
	a.redrawPending = true
	a.redrawTimer = time.AfterFunc(redrawQuietPeriod, a.fireRedraw)
}

func (a *Arbiter) fireRedraw() {
	a.redrawMu.Lock()
	if !a.redrawPending {
		a.redrawMu.Unlock()
		return
	}
	a.redrawPending = false
	a.redrawMu.Unlock()

	if !a.redrawSuppressed() {
		a.writer.Redraw()
	}
}

// SetMode transitions the interaction mode and announces the change as a
// system StreamMessage, unless mode is already current.
func (a *Arbiter) SetMode(mode Mode) {
	previous, ok := a.mode.Set(mode)
	if !ok {
		return
	}
	a.announceMode(previous, mode)
}

// CycleMode advances default -> plan -> vm -> default and announces it.
func (a *Arbiter) CycleMode() Mode {
	previous, next := a.mode.Cycle()
	a.announceMode(previous, next)
	return next
}

func (a *Arbiter) Mode() Mode {
	return a.mode.Current()
}

func (a *Arbiter) announceMode(previous, next Mode) {
	a.Enqueue(models.StreamMessage{
		Type:    models.StreamSystem,
		Content: fmt.Sprintf("mode changed: %s -> %s", previous, next),
	})
}

// Shutdown drains the queue without cancelling in-flight writes, flushes the
// terminal via a final redraw, and aborts the redraw timer. It blocks until
// the drain worker has delivered every message already queued at the time
// Shutdown is called.
func (a *Arbiter) Shutdown(ctx context.Context) error {
	a.queue.Close()

	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	a.redrawMu.Lock()
	if a.redrawTimer != nil {
		a.redrawTimer.Stop()
	}
	a.redrawPending = false
	a.redrawMu.Unlock()

	a.writer.Redraw()
	a.wg.Wait()
	return nil
}
