// ABOUTME: Tests for the invalidation bus
// ABOUTME: Covers fan-out, unsubscribe, non-blocking publish, and close semantics

package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(Event{Kind: EntryStatusConfirmed, EntryIDs: []int64{42}})

	select {
	case ev := <-ch:
		if ev.Kind != EntryStatusConfirmed {
			t.Errorf("expected EntryStatusConfirmed, got %v", ev.Kind)
		}
		if len(ev.EntryIDs) != 1 || ev.EntryIDs[0] != 42 {
			t.Errorf("unexpected entry ids: %v", ev.EntryIDs)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestFanOut(t *testing.T) {
	b := New()
	defer b.Close()

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(Event{Kind: QueuesDrained})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Kind != QueuesDrained {
				t.Errorf("subscriber %d: expected QueuesDrained, got %v", i, ev.Kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timed out", i)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	defer b.Close()

	ch, cancel := b.Subscribe()
	cancel()

	// Channel is closed after cancel
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic
	b.Publish(Event{Kind: FeedMarkedRead, FeedID: 1})
}

func TestPublishNeverBlocks(t *testing.T) {
	b := New()
	defer b.Close()

	_, cancel := b.Subscribe() // subscriber that never reads
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(Event{Kind: EntryStatusConfirmed})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	b := New()
	b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel from closed bus")
	}
}
