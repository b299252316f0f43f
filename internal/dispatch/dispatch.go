// ABOUTME: Background dispatcher running one isolated worker per triggered mutation
// ABOUTME: Optimistic local write, terminate-and-replace per entity, auto-heal on remote failure

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AlgusDark/minisync/internal/bus"
	"github.com/AlgusDark/minisync/internal/models"
	"github.com/AlgusDark/minisync/internal/netcheck"
	"github.com/AlgusDark/minisync/internal/notify"
	"github.com/AlgusDark/minisync/internal/queue"
	"github.com/AlgusDark/minisync/internal/store"
)

// RemoteUpdater is the slice of the API client the dispatcher needs.
type RemoteUpdater interface {
	UpdateEntries(ctx context.Context, ids []int64, status string) error
	MarkFeedAsRead(ctx context.Context, feedID int64) error
	MarkCategoryAsRead(ctx context.Context, categoryID int64) error
}

// Kind identifies the entity class a worker acts on.
type Kind string

const (
	KindEntry    Kind = "entry"
	KindFeed     Kind = "feed"
	KindCategory Kind = "category"
)

type key struct {
	kind Kind
	id   int64
}

// handle tracks one live worker. done is closed when the worker returns.
type handle struct {
	workerID string
	cancel   context.CancelFunc
	done     chan struct{}
}

// Config wires a Dispatcher. Store, queues, Remote, Probe, Bus, and Notifier
// are required.
type Config struct {
	Store         *store.Store
	EntryQueue    *queue.Queue[queue.StatusOp]
	FeedQueue     *queue.Queue[queue.CollectionOp]
	CategoryQueue *queue.Queue[queue.CollectionOp]
	Remote        RemoteUpdater
	Probe         netcheck.Probe
	Bus           *bus.Bus
	Notifier      notify.Notifier

	// CallTimeout bounds each worker's remote call. Defaults to 30s.
	CallTimeout time.Duration
	// ReapInterval is how often completed worker handles are swept.
	// Defaults to 30s.
	ReapInterval time.Duration
}

// Dispatcher performs remote status updates off the caller's path. The
// caller's local write happens synchronously; the network call runs in a
// worker goroutine holding a frozen snapshot of its inputs. Per entity there
// is at most one live worker: starting a new one cancels its predecessor.
type Dispatcher struct {
	store    *store.Store
	entryQ   *queue.Queue[queue.StatusOp]
	feedQ    *queue.Queue[queue.CollectionOp]
	catQ     *queue.Queue[queue.CollectionOp]
	remote   RemoteUpdater
	probe    netcheck.Probe
	bus      *bus.Bus
	notifier notify.Notifier
	timeout  time.Duration

	mu      sync.Mutex
	handles map[key]*handle
	wg      sync.WaitGroup

	stopReaper chan struct{}
	reaperDone chan struct{}
}

// New creates a dispatcher and starts its handle reaper.
func New(cfg Config) *Dispatcher {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = 30 * time.Second
	}

	d := &Dispatcher{
		store:      cfg.Store,
		entryQ:     cfg.EntryQueue,
		feedQ:      cfg.FeedQueue,
		catQ:       cfg.CategoryQueue,
		remote:     cfg.Remote,
		probe:      cfg.Probe,
		bus:        cfg.Bus,
		notifier:   cfg.Notifier,
		timeout:    cfg.CallTimeout,
		handles:    make(map[key]*handle),
		stopReaper: make(chan struct{}),
		reaperDone: make(chan struct{}),
	}

	go d.reapLoop(cfg.ReapInterval)
	return d
}

// Close stops the reaper and waits for in-flight workers to finish. Workers
// are not cancelled: their remote calls are already time-bounded.
func (d *Dispatcher) Close() {
	close(d.stopReaper)
	<-d.reaperDone
	d.wg.Wait()
}

type entryJob struct {
	entryID      int64
	target       string
	original     string
	dispatchedAt time.Time
}

// DispatchEntry applies a status change locally and triggers the matching
// remote update in the background. The local record reflects the new state
// before this returns; network failure later heals back and queues a retry.
func (d *Dispatcher) DispatchEntry(entryID int64, target string) error {
	if !models.ValidStatus(target) {
		return fmt.Errorf("invalid target status %q", target)
	}

	rec, err := d.store.Get(entryID)
	if err != nil {
		return fmt.Errorf("load entry %d: %w", entryID, err)
	}

	// Already in the requested state: nothing to tell the server. Any live
	// worker for this entry carries an obsolete intent, so kill it too.
	if rec.SameClassification(target) {
		d.Cancel(KindEntry, entryID)
		return nil
	}
	original := rec.ClassifiedStatus()

	if err := d.store.SetStatus(entryID, target); err != nil {
		return fmt.Errorf("update entry %d: %w", entryID, err)
	}

	if !d.probe.Online() {
		op := queue.StatusOp{Target: target, Original: original, QueuedAt: time.Now()}
		if err := d.entryQ.Enqueue(entryID, op); err != nil {
			return fmt.Errorf("queue offline change for entry %d: %w", entryID, err)
		}
		d.notifier.Info("Offline: change will sync when a connection is available")
		return nil
	}

	job := entryJob{
		entryID:      entryID,
		target:       target,
		original:     original,
		dispatchedAt: time.Now(),
	}
	d.spawn(key{KindEntry, entryID}, func(ctx context.Context, workerID string) {
		d.runEntryWorker(ctx, workerID, job)
	})
	return nil
}

func (d *Dispatcher) runEntryWorker(ctx context.Context, workerID string, job entryJob) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.remote.UpdateEntries(callCtx, []int64{job.entryID}, job.target)
	if err == nil {
		if rmErr := d.entryQ.Remove(job.entryID); rmErr != nil {
			slog.Warn("failed to clear queued fallback", "worker", workerID,
				"entry", job.entryID, "error", rmErr)
		}
		d.bus.Publish(bus.Event{Kind: bus.EntryStatusConfirmed, EntryIDs: []int64{job.entryID}})
		slog.Debug("entry status confirmed", "worker", workerID,
			"entry", job.entryID, "status", job.target)
		return
	}

	// A cancelled worker was replaced by a newer dispatch; the replacement
	// owns the entry now and this intent is obsolete.
	if errors.Is(ctx.Err(), context.Canceled) {
		slog.Debug("entry worker superseded", "worker", workerID, "entry", job.entryID)
		return
	}

	slog.Debug("remote update failed, healing", "worker", workerID,
		"entry", job.entryID, "error", err)

	applied, revErr := d.store.RevertStatus(job.entryID, job.original, job.dispatchedAt)
	if revErr != nil {
		slog.Warn("failed to revert entry after remote failure", "worker", workerID,
			"entry", job.entryID, "error", revErr)
	} else if !applied {
		slog.Debug("revert suppressed by newer local write", "worker", workerID,
			"entry", job.entryID)
	}

	op := queue.StatusOp{Target: job.target, Original: job.original, QueuedAt: time.Now()}
	if qErr := d.entryQ.Enqueue(job.entryID, op); qErr != nil {
		slog.Warn("failed to queue fallback after remote failure", "worker", workerID,
			"entry", job.entryID, "error", qErr)
		return
	}
	d.notifier.Warning("Server rejected the update; change queued for the next sync")
}

// DispatchFeed marks every unread entry of the feed as read locally and
// triggers the feed-wide remote mark in the background. Returns how many
// local records changed. Collection marks only roll forward: a failed remote
// call queues a retry instead of reverting local state.
func (d *Dispatcher) DispatchFeed(feedID int64) (int64, error) {
	n, err := d.store.MarkFeedRead(feedID)
	if err != nil {
		return 0, fmt.Errorf("mark feed %d read locally: %w", feedID, err)
	}
	return n, d.dispatchCollection(KindFeed, feedID)
}

// DispatchCategory is DispatchFeed for a whole category.
func (d *Dispatcher) DispatchCategory(categoryID int64) (int64, error) {
	n, err := d.store.MarkCategoryRead(categoryID)
	if err != nil {
		return 0, fmt.Errorf("mark category %d read locally: %w", categoryID, err)
	}
	return n, d.dispatchCollection(KindCategory, categoryID)
}

func (d *Dispatcher) dispatchCollection(kind Kind, id int64) error {
	q := d.feedQ
	if kind == KindCategory {
		q = d.catQ
	}

	if !d.probe.Online() {
		op := queue.CollectionOp{Op: queue.OpMarkAllRead, QueuedAt: time.Now()}
		if err := q.Enqueue(id, op); err != nil {
			return fmt.Errorf("queue offline %s mark for %d: %w", kind, id, err)
		}
		d.notifier.Info("Offline: change will sync when a connection is available")
		return nil
	}

	d.spawn(key{kind, id}, func(ctx context.Context, workerID string) {
		d.runCollectionWorker(ctx, workerID, kind, id, q)
	})
	return nil
}

func (d *Dispatcher) runCollectionWorker(ctx context.Context, workerID string, kind Kind, id int64, q *queue.Queue[queue.CollectionOp]) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var err error
	if kind == KindFeed {
		err = d.remote.MarkFeedAsRead(callCtx, id)
	} else {
		err = d.remote.MarkCategoryAsRead(callCtx, id)
	}

	if err == nil {
		if rmErr := q.Remove(id); rmErr != nil {
			slog.Warn("failed to clear queued fallback", "worker", workerID,
				"kind", kind, "id", id, "error", rmErr)
		}
		ev := bus.Event{Kind: bus.FeedMarkedRead, FeedID: id}
		if kind == KindCategory {
			ev = bus.Event{Kind: bus.CategoryMarkedRead, CategoryID: id}
		}
		d.bus.Publish(ev)
		slog.Debug("collection mark confirmed", "worker", workerID, "kind", kind, "id", id)
		return
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		slog.Debug("collection worker superseded", "worker", workerID, "kind", kind, "id", id)
		return
	}

	op := queue.CollectionOp{Op: queue.OpMarkAllRead, QueuedAt: time.Now()}
	if qErr := q.Enqueue(id, op); qErr != nil {
		slog.Warn("failed to queue fallback after remote failure", "worker", workerID,
			"kind", kind, "id", id, "error", qErr)
		return
	}
	d.notifier.Warning("Server rejected the update; change queued for the next sync")
}

// spawn starts a worker for k, terminating any live predecessor first.
func (d *Dispatcher) spawn(k key, fn func(ctx context.Context, workerID string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.handles[k]; ok {
		old.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{
		workerID: uuid.NewString(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	d.handles[k] = h

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(h.done)
		fn(ctx, h.workerID)
	}()
}

// Cancel terminates the live worker for the given entity, if any, and waits
// for it to exit. Call before destructive local operations such as deleting
// a locally stored entry, so a revived worker cannot write to state that no
// longer exists.
func (d *Dispatcher) Cancel(kind Kind, id int64) {
	d.mu.Lock()
	h, ok := d.handles[key{kind, id}]
	if ok {
		delete(d.handles, key{kind, id})
		h.cancel()
	}
	d.mu.Unlock()

	if ok {
		<-h.done
	}
}

// LiveWorkers returns the number of workers that have not yet finished.
func (d *Dispatcher) LiveWorkers() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, h := range d.handles {
		select {
		case <-h.done:
		default:
			n++
		}
	}
	return n
}

// reapLoop periodically drops handles of finished workers so the tracker map
// does not grow with every mutation ever dispatched.
func (d *Dispatcher) reapLoop(interval time.Duration) {
	defer close(d.reaperDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopReaper:
			return
		case <-ticker.C:
			d.reap()
		}
	}
}

func (d *Dispatcher) reap() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for k, h := range d.handles {
		select {
		case <-h.done:
			delete(d.handles, k)
		default:
		}
	}
}
