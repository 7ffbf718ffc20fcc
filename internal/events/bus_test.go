package events

import (
	"testing"
	"time"
)

// TestSubscribeReceivesPublishedEvent verifies basic publish/subscribe flow.
func TestSubscribeReceivesPublishedEvent(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventSearchCommitted)
	bus.PublishSearch("acct-1", "report")

	select {
	case ev := <-ch:
		se, ok := ev.(*SearchEvent)
		if !ok {
			t.Fatalf("expected *SearchEvent, got %T", ev)
		}
		if se.Query != "report" || se.AccountID != "acct-1" {
			t.Errorf("unexpected event payload: %+v", se)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

// TestSubscriberOnlyReceivesItsType verifies type filtering.
func TestSubscriberOnlyReceivesItsType(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventTransferCompleted)
	bus.PublishSearch("acct-1", "nope")

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event delivered: %v", ev.Type())
	case <-time.After(50 * time.Millisecond):
	}
}

// TestSubscribeAllReceivesEverything verifies the firehose subscription.
func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()
	bus.PublishSearch("a", "x")
	bus.PublishSearchCleared("a")

	for i := 0; i < 2; i++ {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i+1)
		}
	}
}

// TestPublishDoesNotBlockOnFullBuffer verifies events are dropped, not blocked.
func TestPublishDoesNotBlockOnFullBuffer(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	_ = bus.Subscribe(EventSearchCommitted)

	done := make(chan struct{})
	go func() {
		// Second publish overflows the buffer of 1; must not block.
		bus.PublishSearch("a", "one")
		bus.PublishSearch("a", "two")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on full subscriber buffer")
	}

	if bus.DroppedEvents() == 0 {
		t.Error("expected dropped event counter to increment")
	}
}

// TestPublishAfterCloseIsNoop verifies closed-bus behavior.
func TestPublishAfterCloseIsNoop(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.Subscribe(EventSearchCommitted)
	bus.Close()

	bus.PublishSearch("a", "late") // must not panic

	// Channel should be closed with no pending events.
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after bus Close")
	}
}

// TestUnsubscribeStopsDelivery verifies unsubscribed channels are closed.
func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventSearchCleared)
	bus.Unsubscribe(EventSearchCleared, ch)

	if _, ok := <-ch; ok {
		t.Error("expected channel closed after Unsubscribe")
	}

	bus.PublishSearchCleared("a") // must not panic or deliver
}
