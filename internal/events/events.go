// Package events provides the event bus that decouples the picker core from
// its CLI and GUI frontends.
package events

import (
	"time"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog EventType = "log"

	// Search events
	EventSearchCommitted EventType = "search_committed" // Debounced query delivered
	EventSearchCleared   EventType = "search_cleared"   // User cleared the input

	// Transfer queue events
	EventTransferQueued    EventType = "transfer_queued"    // Task added to queue
	EventTransferStarted   EventType = "transfer_started"   // Bytes started moving
	EventTransferProgress  EventType = "transfer_progress"  // Progress update
	EventTransferCompleted EventType = "transfer_completed" // Successfully completed
	EventTransferFailed    EventType = "transfer_failed"    // Failed with error
	EventTransferCancelled EventType = "transfer_cancelled" // Cancelled by user

	// Account events
	EventAccountAdded   EventType = "account_added"
	EventAccountRemoved EventType = "account_removed"
	EventAccountExpired EventType = "account_expired" // Credentials no longer refreshable
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// SearchEvent represents a committed or cleared search query
type SearchEvent struct {
	BaseEvent
	AccountID string
	Query     string // trimmed committed query, empty on clear
}

// TransferEvent represents transfer queue state changes
type TransferEvent struct {
	BaseEvent
	TaskID    string  // Unique task ID
	TaskType  string  // "upload" or "download"
	AccountID string  // Owning account
	Name      string  // Display name (filename)
	Size      int64   // File size in bytes
	Progress  float64 // 0.0 to 1.0
	Error     error   // Error if failed
}

// AccountEvent represents account lifecycle changes
type AccountEvent struct {
	BaseEvent
	AccountID   string
	Provider    string
	DisplayName string
}

// LogEvent represents log messages routed through the bus (GUI mode)
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Scope   string
	Error   error
}
