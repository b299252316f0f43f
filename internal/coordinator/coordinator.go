// ABOUTME: Sync coordinator draining the durable queues against the remote server
// ABOUTME: Batches entry operations by target status so N pending entries cost at most two calls

package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/AlgusDark/minisync/internal/bus"
	"github.com/AlgusDark/minisync/internal/models"
	"github.com/AlgusDark/minisync/internal/queue"
)

// ErrCanceled is returned when the confirmation callback declines the sync.
var ErrCanceled = errors.New("sync canceled")

// Remote is the slice of the API client the coordinator needs.
type Remote interface {
	UpdateEntries(ctx context.Context, ids []int64, status string) error
	MarkFeedAsRead(ctx context.Context, feedID int64) error
	MarkCategoryAsRead(ctx context.Context, categoryID int64) error
}

// Counts reports pending operations per queue.
type Counts struct {
	Entries    int
	Feeds      int
	Categories int
}

// Total sums all pending operations.
func (c Counts) Total() int {
	return c.Entries + c.Feeds + c.Categories
}

// Summary aggregates the outcome of one drain across all three queues.
type Summary struct {
	Processed Counts
	Failed    Counts
}

// ConfirmFunc is consulted before a drain touches the network. A nil
// ConfirmFunc auto-confirms, as on a connectivity-restored trigger.
type ConfirmFunc func(pending Counts) bool

// Coordinator reconciles everything accumulated in the durable queues while
// offline. Failed batches stay queued; there is no internal retry, the user
// re-triggers sync.
type Coordinator struct {
	entryQ *queue.Queue[queue.StatusOp]
	feedQ  *queue.Queue[queue.CollectionOp]
	catQ   *queue.Queue[queue.CollectionOp]
	remote Remote
	bus    *bus.Bus

	// batchLimit caps ids per remote call; zero means unlimited.
	batchLimit int
}

// New creates a coordinator over the three queues.
func New(entryQ *queue.Queue[queue.StatusOp], feedQ, catQ *queue.Queue[queue.CollectionOp], remote Remote, b *bus.Bus, batchLimit int) *Coordinator {
	return &Coordinator{
		entryQ:     entryQ,
		feedQ:      feedQ,
		catQ:       catQ,
		remote:     remote,
		bus:        b,
		batchLimit: batchLimit,
	}
}

// Counts returns the number of pending operations per queue.
func (c *Coordinator) Counts() Counts {
	return Counts{
		Entries:    c.entryQ.Count(),
		Feeds:      c.feedQ.Count(),
		Categories: c.catQ.Count(),
	}
}

// ProcessAll drains all three queues. Entry operations are grouped by target
// status, so any number of pending entries costs at most two batched calls
// (plus one call per queued feed or category, whose endpoints act on a whole
// collection). Each batch is all-or-nothing: the remote returns one status
// code per call, so a failed batch stays queued in full.
func (c *Coordinator) ProcessAll(ctx context.Context, confirm ConfirmFunc) (*Summary, error) {
	pending := c.Counts()
	if pending.Total() == 0 {
		return &Summary{}, nil
	}
	if confirm != nil && !confirm(pending) {
		return nil, ErrCanceled
	}

	summary := &Summary{}

	c.drainEntries(ctx, summary)
	c.drainCollections(ctx, c.feedQ, c.remote.MarkFeedAsRead, &summary.Processed.Feeds, &summary.Failed.Feeds)
	c.drainCollections(ctx, c.catQ, c.remote.MarkCategoryAsRead, &summary.Processed.Categories, &summary.Failed.Categories)

	if summary.Processed.Total() > 0 {
		c.bus.Publish(bus.Event{Kind: bus.QueuesDrained})
	}
	return summary, nil
}

func (c *Coordinator) drainEntries(ctx context.Context, summary *Summary) {
	ops := c.entryQ.Load()
	if len(ops) == 0 {
		return
	}

	byTarget := make(map[string][]int64)
	for id, op := range ops {
		byTarget[op.Target] = append(byTarget[op.Target], id)
	}

	// Stable order keeps logs and tests deterministic
	for _, target := range []string{models.StatusRead, models.StatusUnread} {
		ids := byTarget[target]
		if len(ids) == 0 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, batch := range chunk(ids, c.batchLimit) {
			if err := c.remote.UpdateEntries(ctx, batch, target); err != nil {
				slog.Debug("entry batch failed", "target", target,
					"count", len(batch), "error", err)
				summary.Failed.Entries += len(batch)
				continue
			}
			if err := c.entryQ.RemoveMany(batch); err != nil {
				slog.Warn("failed to clear synced entries from queue", "error", err)
			}
			summary.Processed.Entries += len(batch)
		}
	}
}

func (c *Coordinator) drainCollections(ctx context.Context, q *queue.Queue[queue.CollectionOp], call func(context.Context, int64) error, processed, failed *int) {
	for id := range q.Load() {
		if err := call(ctx, id); err != nil {
			slog.Debug("collection mark failed", "id", id, "error", err)
			*failed++
			continue
		}
		if err := q.Remove(id); err != nil {
			slog.Warn("failed to clear synced collection from queue", "id", id, "error", err)
		}
		*processed++
	}
}

// ClearAll deletes all three queues without reconciling, permanently
// discarding unsynced intent. Callers must confirm with the user first.
func (c *Coordinator) ClearAll() error {
	var errs []error
	if err := c.entryQ.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear entry queue: %w", err))
	}
	if err := c.feedQ.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear feed queue: %w", err))
	}
	if err := c.catQ.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear category queue: %w", err))
	}
	return errors.Join(errs...)
}

// chunk splits ids into slices of at most limit; limit <= 0 keeps one slice.
func chunk(ids []int64, limit int) [][]int64 {
	if limit <= 0 || len(ids) <= limit {
		return [][]int64{ids}
	}
	var out [][]int64
	for len(ids) > limit {
		out = append(out, ids[:limit])
		ids = ids[limit:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
