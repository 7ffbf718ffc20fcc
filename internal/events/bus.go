package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jodinathan/filedrive/internal/constants"
)

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers. Never blocks: a subscriber with
// a full buffer misses the event and the drop counter is incremented.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// DroppedEvents returns the number of events dropped due to full buffers.
func (eb *EventBus) DroppedEvents() int64 {
	return eb.droppedEvents.Load()
}

// Unsubscribe removes a subscription channel from a specific event type.
// This prevents leaking channels from abandoned subscriptions.
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	channels := eb.subscribers[eventType]
	for i, c := range channels {
		if c == ch {
			eb.subscribers[eventType] = append(channels[:i], channels[i+1:]...)
			close(c)
			return
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishSearch is a convenience method for publishing search commits
func (eb *EventBus) PublishSearch(accountID, query string) {
	eb.Publish(&SearchEvent{
		BaseEvent: BaseEvent{EventType: EventSearchCommitted, Time: time.Now()},
		AccountID: accountID,
		Query:     query,
	})
}

// PublishSearchCleared is a convenience method for publishing search clears
func (eb *EventBus) PublishSearchCleared(accountID string) {
	eb.Publish(&SearchEvent{
		BaseEvent: BaseEvent{EventType: EventSearchCleared, Time: time.Now()},
		AccountID: accountID,
	})
}

// PublishTransfer is a convenience method for publishing transfer events
func (eb *EventBus) PublishTransfer(eventType EventType, taskID, taskType, accountID, name string, size int64, progress float64, err error) {
	eb.Publish(&TransferEvent{
		BaseEvent: BaseEvent{EventType: eventType, Time: time.Now()},
		TaskID:    taskID,
		TaskType:  taskType,
		AccountID: accountID,
		Name:      name,
		Size:      size,
		Progress:  progress,
		Error:     err,
	})
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, scope string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{EventType: EventLog, Time: time.Now()},
		Level:     level,
		Message:   message,
		Scope:     scope,
		Error:     err,
	})
}
