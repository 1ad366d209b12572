// Package planning implements the planning engine (C7): generating a
// skeleton plan from a task description and executing it step by step,
// emitting a typed event stream as each tool call and step completes.
package planning

import (
	"context"
	"time"
)

// EventKind is a closed enumeration of the planner's event stream, matching
// spec.md's {plan_generated, plan_start, plan_complete, step_start,
// step_complete, tool_complete, tool_failed} vocabulary.
type EventKind string

const (
	EventPlanGenerated EventKind = "plan_generated"
	EventPlanStart     EventKind = "plan_start"
	EventPlanComplete  EventKind = "plan_complete"
	EventStepStart     EventKind = "step_start"
	EventStepComplete  EventKind = "step_complete"
	EventToolComplete  EventKind = "tool_complete"
	EventToolFailed    EventKind = "tool_failed"
)

// Event is one entry in the planner's event stream.
type Event struct {
	Kind       EventKind `json:"event"`
	PlanID     string    `json:"plan_id"`
	StepID     string    `json:"step_id,omitempty"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	Message    string    `json:"message,omitempty"`
	Success    *bool     `json:"success,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func boolPtr(b bool) *bool { return &b }

// Sink receives planner events as execute_plan runs. Implementations must be
// safe to call from the executing goroutine and must not block it for long;
// the planner makes no attempt at backpressure beyond what the sink itself
// provides.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// ChanSink delivers events to a buffered channel, dropping events rather
// than blocking plan execution when the channel is full.
type ChanSink struct {
	ch chan<- Event
}

// NewChanSink wraps ch. The channel should be buffered; a full channel
// causes events to be dropped, never blocks execution.
func NewChanSink(ch chan<- Event) *ChanSink {
	return &ChanSink{ch: ch}
}

// Emit sends e to the channel, or drops it if the channel is full or ctx is
// done.
func (s *ChanSink) Emit(ctx context.Context, e Event) {
	select {
	case s.ch <- e:
	case <-ctx.Done():
	default:
	}
}

// CallbackSink wraps a function as a Sink for inline event handling, such as
// forwarding events into the streaming arbiter.
type CallbackSink struct {
	fn func(ctx context.Context, e Event)
}

// NewCallbackSink returns a Sink that calls fn for every event.
func NewCallbackSink(fn func(ctx context.Context, e Event)) *CallbackSink {
	return &CallbackSink{fn: fn}
}

// Emit calls the wrapped function.
func (s *CallbackSink) Emit(ctx context.Context, e Event) {
	if s.fn != nil {
		s.fn(ctx, e)
	}
}

// NopSink discards every event. The zero value is ready to use.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(context.Context, Event) {}
