// ABOUTME: Cache invalidation bus, a small typed publish/subscribe channel
// ABOUTME: Fires once a mutation is confirmed against the remote, never on optimistic writes

package bus

import "sync"

// Kind enumerates the events the bus carries. The set is closed: consumers
// switch on it without worrying about unknown string names.
type Kind int

const (
	// EntryStatusConfirmed fires when a single-entry status update was
	// accepted by the server.
	EntryStatusConfirmed Kind = iota
	// FeedMarkedRead fires when a feed-wide mark-as-read was accepted.
	FeedMarkedRead
	// CategoryMarkedRead fires when a category-wide mark-as-read was accepted.
	CategoryMarkedRead
	// QueuesDrained fires once per coordinator run that confirmed anything.
	QueuesDrained
)

// Event is an invalidation signal. Only the fields relevant to the Kind are
// populated.
type Event struct {
	Kind       Kind
	EntryIDs   []int64
	FeedID     int64
	CategoryID int64
}

const subscriberBuffer = 16

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// that falls behind misses events, which is fine for invalidation (one
// delivered event already drops the whole cached aggregate).
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a consumer and returns its channel plus a cancel
// function. The channel is closed on cancel or bus close.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish broadcasts an event to all subscribers without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
