// ABOUTME: Owned unread-counts cache with an explicit lifecycle
// ABOUTME: Drops its aggregate on any invalidation event, recomputes lazily on next read

package cache

import (
	"sync"

	"github.com/AlgusDark/minisync/internal/bus"
	"github.com/AlgusDark/minisync/internal/store"
)

// CountsSource computes unread aggregates; satisfied by *store.Store.
type CountsSource interface {
	CountUnread() (*store.UnreadCounts, error)
}

// Counts caches unread aggregates so repeated reads avoid recomputation.
// The cache knows nothing about queues or workers; it only reacts to the
// invalidation bus. It is injected into consumers, never ambient state.
type Counts struct {
	src    CountsSource
	cancel func()
	done   chan struct{}

	mu     sync.Mutex
	cached *store.UnreadCounts
}

// New creates a cache over src and subscribes it to the bus.
func New(src CountsSource, b *bus.Bus) *Counts {
	events, cancel := b.Subscribe()
	c := &Counts{
		src:    src,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		for range events {
			c.Invalidate()
		}
	}()
	return c
}

// Get returns the unread aggregates, computing them if the cache is cold.
func (c *Counts) Get() (*store.UnreadCounts, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		return c.cached, nil
	}
	counts, err := c.src.CountUnread()
	if err != nil {
		return nil, err
	}
	c.cached = counts
	return counts, nil
}

// Invalidate drops the cached aggregate.
func (c *Counts) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

// Close unsubscribes from the bus and waits for the listener to exit.
func (c *Counts) Close() {
	c.cancel()
	<-c.done
}
