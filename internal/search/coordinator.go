// Package search owns the text-edit session behind the picker's search box.
// It converts rapid keystrokes into a throttled stream of committed query
// values, suppressing redundant notifications when the resolved query
// repeats.
package search

import (
	"strings"
	"sync"
	"time"

	"github.com/jodinathan/filedrive/internal/constants"
)

// SearchFunc receives a committed, trimmed query.
type SearchFunc func(query string)

// ClearFunc is invoked when the user explicitly clears the input.
type ClearFunc func()

// Coordinator debounces raw text-change events into search commits.
//
// Two states: Idle (no pending timer) and Pending (timer running). A changed
// text moves to Pending and resets any running timer (last-write-wins);
// expiry commits and returns to Idle; Submit and Clear commit immediately
// from either state.
//
// The coordinator must be closed when the owning UI element is torn down.
// After Close every operation is a no-op and no callback fires.
type Coordinator struct {
	mu sync.Mutex

	window   time.Duration
	onSearch SearchFunc
	onClear  ClearFunc

	lastCommitted string
	timer         *time.Timer
	generation    uint64 // invalidates superseded timers
	closed        bool

	// Tracks an in-flight commit callback so Close can wait it out.
	firing sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWindow overrides the debounce window. Values outside the supported
// range are clamped.
func WithWindow(d time.Duration) Option {
	return func(c *Coordinator) {
		if d < constants.MinDebounceWindow {
			d = constants.MinDebounceWindow
		}
		if d > constants.MaxDebounceWindow {
			d = constants.MaxDebounceWindow
		}
		c.window = d
	}
}

// NewCoordinator creates a coordinator that delivers committed queries to
// onSearch and clear notifications to onClear. Either callback may be nil.
func NewCoordinator(onSearch SearchFunc, onClear ClearFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		window:   constants.DefaultDebounceWindow,
		onSearch: onSearch,
		onClear:  onClear,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window returns the configured debounce window.
func (c *Coordinator) Window() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window
}

// LastCommitted returns the most recent query delivered to the consumer.
func (c *Coordinator) LastCommitted() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCommitted
}

// Pending reports whether a debounce timer is currently running.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// TextChanged feeds a raw text-change event into the session. The value is
// trimmed; if it equals the last committed query any pending timer is
// cancelled and nothing is committed. Otherwise the debounce timer restarts
// with this value.
func (c *Coordinator) TextChanged(raw string) {
	trimmed := strings.TrimSpace(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.stopTimerLocked()

	if trimmed == c.lastCommitted {
		// Input settled back to the committed value: no redundant commit.
		return
	}

	c.generation++
	gen := c.generation
	c.timer = time.AfterFunc(c.window, func() {
		c.expire(gen, trimmed)
	})
}

// Submit commits the raw value immediately, bypassing the debounce window.
// The dedup rule still applies: an unchanged trimmed value is not delivered.
func (c *Coordinator) Submit(raw string) {
	trimmed := strings.TrimSpace(raw)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.stopTimerLocked()

	if trimmed == c.lastCommitted {
		c.mu.Unlock()
		return
	}

	cb := c.commitLocked(trimmed)
	c.mu.Unlock()

	cb()
}

// Clear cancels any pending commit, resets the committed query to empty,
// then notifies the clear callback followed by the search callback with the
// empty query. Unlike Submit, Clear always notifies, even when the committed
// query was already empty.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.stopTimerLocked()
	c.lastCommitted = ""
	onClear := c.onClear
	onSearch := c.onSearch
	c.firing.Add(1)
	c.mu.Unlock()

	defer c.firing.Done()
	if onClear != nil {
		onClear()
	}
	if onSearch != nil {
		onSearch("")
	}
}

// Close tears down the session. Any pending timer is cancelled and every
// later operation becomes a no-op. Close waits for an in-flight commit
// callback to return, so no callback fires after Close.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()

	c.firing.Wait()
}

// expire runs on the timer goroutine when the debounce window elapses.
func (c *Coordinator) expire(gen uint64, trimmed string) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		// Superseded by a newer keystroke or torn down while scheduled.
		c.mu.Unlock()
		return
	}
	c.timer = nil
	cb := c.commitLocked(trimmed)
	c.mu.Unlock()

	cb()
}

// commitLocked records the committed value and returns the callback to run
// after the lock is released. Callers must hold c.mu and must invoke the
// returned function exactly once.
func (c *Coordinator) commitLocked(trimmed string) func() {
	c.lastCommitted = trimmed
	onSearch := c.onSearch
	c.firing.Add(1)
	return func() {
		defer c.firing.Done()
		if onSearch != nil {
			onSearch(trimmed)
		}
	}
}

// stopTimerLocked cancels a pending timer, if any. Callers must hold c.mu.
// Bumping the generation invalidates an AfterFunc that already fired and is
// waiting on the mutex.
func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
}
