// Package events provides a non-blocking pub/sub bus for run lifecycle
// events. The executor publishes as a run progresses; the job store and the
// audit logger subscribe. Delivery is asynchronous and best-effort: a full
// subscriber channel drops the event rather than stalling the pipeline.
package events

import (
	"sync"
	"time"
)

// EventType identifies what happened during a run.
type EventType string

const (
	// EventRunStarted is published when a run leaves the planned state.
	EventRunStarted EventType = "run_started"
	// EventStepCompleted is published after every step attempt, including
	// attempts whose gate failed.
	EventStepCompleted EventType = "step_completed"
	// EventGateFailed is published when an artifact fails its quality gate.
	EventGateFailed EventType = "gate_failed"
	// EventRunFinished is published once when a run reaches a terminal state.
	EventRunFinished EventType = "run_finished"
)

// Event is one run lifecycle notification. RunID is empty for runs executed
// outside the job store (the synchronous CLI path).
type Event struct {
	Type      EventType
	RunID     string
	Timestamp time.Time
	Data      map[string]any
}

// Subscriber receives events for one event type.
type Subscriber func(Event)

// Bus fans events out to subscribers over buffered channels.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]chan Event
	bufferSize  int
}

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Bus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers fn for one event type and returns an unsubscribe
// function. fn runs on its own goroutine; panics in fn are swallowed so one
// bad subscriber cannot take the bus down.
func (b *Bus) Subscribe(eventType EventType, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)

	go func() {
		for event := range ch {
			func() {
				defer func() {
					_ = recover()
				}()
				fn(event)
			}()
		}
	}()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subscribers[eventType]
		for i, subCh := range subs {
			if subCh == ch {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}
}

// Publish delivers an event to every subscriber of its type without
// blocking. Events to full channels are dropped.
func (b *Bus) Publish(eventType EventType, runID string, data map[string]any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	event := Event{
		Type:      eventType,
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	for _, ch := range b.subscribers[eventType] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes all subscriber channels and clears subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, eventType)
	}
}
