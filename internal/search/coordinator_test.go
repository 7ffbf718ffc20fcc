package search

import (
	"sync"
	"testing"
	"time"
)

// recorder collects callback invocations for assertions.
type recorder struct {
	mu       sync.Mutex
	searches []string
	clears   int
}

func (r *recorder) search(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, q)
}

func (r *recorder) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
}

func (r *recorder) searchCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.searches))
	copy(out, r.searches)
	return out
}

func (r *recorder) clearCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

const testWindow = 80 * time.Millisecond

func newTestCoordinator(r *recorder) *Coordinator {
	return NewCoordinator(r.search, r.clear, WithWindow(testWindow))
}

// TestSingleKeystrokeCommitsAfterWindow verifies that stable input produces
// exactly one commit with the trimmed final text.
func TestSingleKeystrokeCommitsAfterWindow(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	defer c.Close()

	c.TextChanged("  hello  ")

	if got := r.searchCalls(); len(got) != 0 {
		t.Fatalf("commit fired before window elapsed: %v", got)
	}

	time.Sleep(2 * testWindow)

	got := r.searchCalls()
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("expected one commit of %q, got %v", "hello", got)
	}
	if c.LastCommitted() != "hello" {
		t.Errorf("LastCommitted = %q, want %q", c.LastCommitted(), "hello")
	}
}

// TestRapidKeystrokesCommitOnlyLastValue verifies last-write-wins debounce:
// N keystrokes inside the window produce one commit with the last value.
func TestRapidKeystrokesCommitOnlyLastValue(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	defer c.Close()

	for _, text := range []string{"a", "ab", "abc"} {
		c.TextChanged(text)
		time.Sleep(10 * time.Millisecond) // well inside the 80ms window
	}

	time.Sleep(2 * testWindow)

	got := r.searchCalls()
	if len(got) != 1 || got[0] != "abc" {
		t.Errorf("expected single commit of %q, got %v", "abc", got)
	}
}

// TestIdenticalTextDoesNotRecommit verifies the dedup rule: text equal to
// the committed query never triggers a callback, and cancels a pending timer.
func TestIdenticalTextDoesNotRecommit(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	defer c.Close()

	c.TextChanged("abc")
	time.Sleep(2 * testWindow)

	// Same value again (with surrounding whitespace): no new commit.
	c.TextChanged("  abc ")
	time.Sleep(2 * testWindow)

	if got := r.searchCalls(); len(got) != 1 {
		t.Errorf("expected 1 commit, got %v", got)
	}

	// Different value pending, then settle back to committed value:
	// the pending timer must be cancelled.
	c.TextChanged("abcd")
	c.TextChanged("abc")
	if c.Pending() {
		t.Error("timer should be cancelled when input settles to committed value")
	}
	time.Sleep(2 * testWindow)

	if got := r.searchCalls(); len(got) != 1 {
		t.Errorf("expected no commit after settling back, got %v", got)
	}
}

// TestSubmitBypassesDebounce verifies immediate commit on submit, including
// cancellation of a pending timer.
func TestSubmitBypassesDebounce(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	defer c.Close()

	c.TextChanged("pending")
	c.Submit("xyz")

	got := r.searchCalls()
	if len(got) != 1 || got[0] != "xyz" {
		t.Fatalf("expected immediate commit of %q, got %v", "xyz", got)
	}
	if c.Pending() {
		t.Error("Submit should cancel the pending timer")
	}

	// The cancelled "pending" timer must never fire.
	time.Sleep(2 * testWindow)
	if got := r.searchCalls(); len(got) != 1 {
		t.Errorf("cancelled timer fired: %v", got)
	}
}

// TestSubmitIdenticalValueIsNoop verifies the dedup rule applies to Submit.
func TestSubmitIdenticalValueIsNoop(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	defer c.Close()

	c.Submit("abc")
	c.Submit(" abc ")

	if got := r.searchCalls(); len(got) != 1 {
		t.Errorf("expected 1 commit, got %v", got)
	}
}

// TestClearNotifiesClearThenEmptySearch verifies Clear ordering and that it
// fires regardless of pending timer state.
func TestClearNotifiesClearThenEmptySearch(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	defer c.Close()

	c.Submit("abc")
	c.TextChanged("abcd") // leave a timer pending
	c.Clear()

	if c.Pending() {
		t.Error("Clear should cancel the pending timer")
	}
	if r.clearCalls() != 1 {
		t.Errorf("clear callback fired %d times, want 1", r.clearCalls())
	}
	got := r.searchCalls()
	if len(got) != 2 || got[1] != "" {
		t.Errorf("expected empty-query commit after clear, got %v", got)
	}
	if c.LastCommitted() != "" {
		t.Errorf("LastCommitted = %q after Clear, want empty", c.LastCommitted())
	}

	// Pending "abcd" timer must not fire after Clear.
	time.Sleep(2 * testWindow)
	if got := r.searchCalls(); len(got) != 2 {
		t.Errorf("cancelled timer fired after Clear: %v", got)
	}
}

// TestClearOnEmptySessionStillNotifies verifies Clear always notifies, even
// when nothing was committed yet.
func TestClearOnEmptySessionStillNotifies(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	defer c.Close()

	c.Clear()

	if r.clearCalls() != 1 {
		t.Errorf("clear callback fired %d times, want 1", r.clearCalls())
	}
	got := r.searchCalls()
	if len(got) != 1 || got[0] != "" {
		t.Errorf("expected search(\"\"), got %v", got)
	}
}

// TestCloseCancelsPendingTimer verifies no callback fires after teardown,
// even with a timer pending at Close time.
func TestCloseCancelsPendingTimer(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)

	c.TextChanged("doomed")
	c.Close()

	time.Sleep(2 * testWindow)

	if got := r.searchCalls(); len(got) != 0 {
		t.Errorf("callback fired after Close: %v", got)
	}
}

// TestOperationsAfterCloseAreNoops verifies post-teardown calls neither
// panic nor deliver callbacks.
func TestOperationsAfterCloseAreNoops(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	c.Close()
	c.Close() // double close is fine

	c.TextChanged("a")
	c.Submit("b")
	c.Clear()

	time.Sleep(2 * testWindow)

	if got := r.searchCalls(); len(got) != 0 {
		t.Errorf("callback fired on closed coordinator: %v", got)
	}
	if r.clearCalls() != 0 {
		t.Error("clear callback fired on closed coordinator")
	}
}

// TestScenarioTypeThenSubmit walks the end-to-end scenario: type "a", "ab",
// "abc" rapidly, wait for the commit, retype the identical text, then submit
// a new value.
func TestScenarioTypeThenSubmit(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)
	defer c.Close()

	c.TextChanged("a")
	c.TextChanged("ab")
	c.TextChanged("abc")
	time.Sleep(2 * testWindow)

	if got := r.searchCalls(); len(got) != 1 || got[0] != "abc" {
		t.Fatalf("after typing burst: got %v, want [abc]", got)
	}

	c.TextChanged("abc") // identical, no commit
	time.Sleep(2 * testWindow)
	if got := r.searchCalls(); len(got) != 1 {
		t.Fatalf("identical text recommitted: %v", got)
	}

	c.Submit("xyz")
	got := r.searchCalls()
	if len(got) != 2 || got[1] != "xyz" {
		t.Errorf("after submit: got %v, want [abc xyz]", got)
	}
}

// TestWindowClamping verifies out-of-range windows are clamped.
func TestWindowClamping(t *testing.T) {
	c := NewCoordinator(nil, nil, WithWindow(time.Millisecond))
	defer c.Close()
	if c.Window() != 50*time.Millisecond {
		t.Errorf("window = %v, want clamped minimum 50ms", c.Window())
	}

	c2 := NewCoordinator(nil, nil, WithWindow(time.Minute))
	defer c2.Close()
	if c2.Window() != 5*time.Second {
		t.Errorf("window = %v, want clamped maximum 5s", c2.Window())
	}
}

// TestConcurrentTextChanges hammers the coordinator from multiple goroutines
// to catch races; the final committed value must be one of the inputs.
func TestConcurrentTextChanges(t *testing.T) {
	r := &recorder{}
	c := newTestCoordinator(r)

	var wg sync.WaitGroup
	inputs := []string{"one", "two", "three", "four"}
	for _, in := range inputs {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.TextChanged(s)
			}
		}(in)
	}
	wg.Wait()

	time.Sleep(2 * testWindow)
	c.Close()

	valid := map[string]bool{"one": true, "two": true, "three": true, "four": true}
	for _, q := range r.searchCalls() {
		if !valid[q] {
			t.Errorf("committed value %q was never an input", q)
		}
	}
}
