// Package streaming implements the output arbiter (C9): the terminal is a
// single non-threadsafe sink shared by the prompt redraw timer, async agent
// emissions, tool output, plan events, and raw user echo. This package
// serializes all of that through one FIFO queue and a single writer.
package streaming

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikcli-go/nikcli/pkg/models"
)

// Queue is an unbounded FIFO of StreamMessages. Enqueue is non-blocking and
// O(1); it never drops a message, unlike a bounded channel that would block
// or require a select/default drop path.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []models.StreamMessage
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a message and wakes the single drain worker.
func (q *Queue) Enqueue(msg models.StreamMessage) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msg.Status = models.StreamQueued

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()
	q.cond.Signal()
}

// dequeue blocks until a message is available or the queue is closed and
// drained. The second return value is false once there is nothing left to
// deliver.
func (q *Queue) dequeue() (models.StreamMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return models.StreamMessage{}, false
	}

	msg := q.items[0]
	q.items = q.items[1:]
	return msg, true
}

// Len reports the number of messages currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting new messages. Already-queued messages are still
// delivered by dequeue; the drain worker observes this via the closed flag
// once the backlog empties.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
