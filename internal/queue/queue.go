// ABOUTME: Durable file-backed mutation queue, one pending operation per entity id
// ABOUTME: JSON on disk with a schema version; corrupt or missing files read as empty

package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/AlgusDark/minisync/internal/fsutil"
)

// schemaVersion is embedded in every queue file. A file with a different
// version is treated as empty rather than migrated: losing unsynced intent
// is preferable to blocking the user on an unreadable queue.
const schemaVersion = 1

type fileFormat[T any] struct {
	Version int         `json:"version"`
	Entries map[int64]T `json:"entries"`
}

// Queue is a durable map of entity id to pending operation, backed by a
// single JSON file. Enqueueing twice for the same id keeps only the second
// operation, so the queue is bounded by the number of distinct entities no
// matter how often state flaps while offline.
//
// Every mutation is a fresh read-modify-write of the whole file under the
// queue's lock, so concurrent writers (dispatcher fallback, coordinator
// drain, CLI actions) stay consistent.
type Queue[T any] struct {
	mu   sync.Mutex
	path string
}

// New creates a queue backed by the file at path. The file is not touched
// until the first mutation.
func New[T any](path string) *Queue[T] {
	return &Queue[T]{path: path}
}

// Path returns the backing file path.
func (q *Queue[T]) Path() string {
	return q.path
}

// Load returns all pending operations. A missing, unreadable, or corrupt
// backing file yields an empty map, never an error.
func (q *Queue[T]) Load() map[int64]T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// load reads the backing file. Callers must hold q.mu.
func (q *Queue[T]) load() map[int64]T {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("queue file unreadable, treating as empty", "path", q.path, "error", err)
		}
		return map[int64]T{}
	}

	var f fileFormat[T]
	if err := json.Unmarshal(data, &f); err != nil {
		slog.Warn("queue file corrupt, treating as empty", "path", q.path, "error", err)
		return map[int64]T{}
	}
	if f.Version != schemaVersion {
		slog.Warn("queue file has unknown schema version, treating as empty",
			"path", q.path, "version", f.Version)
		return map[int64]T{}
	}
	if f.Entries == nil {
		return map[int64]T{}
	}
	return f.Entries
}

// Save persists entries, replacing whatever is on disk. An empty map deletes
// the backing file so "nothing pending" is detectable by existence alone.
func (q *Queue[T]) Save(entries map[int64]T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.save(entries)
}

// save writes the backing file. Callers must hold q.mu.
func (q *Queue[T]) save(entries map[int64]T) error {
	if len(entries) == 0 {
		if err := os.Remove(q.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove empty queue file: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(fileFormat[T]{Version: schemaVersion, Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	if err := fsutil.AtomicWrite(q.path, data, 0600); err != nil {
		return fmt.Errorf("write queue file: %w", err)
	}
	return nil
}

// Enqueue records a pending operation for id, overwriting any previous one.
func (q *Queue[T]) Enqueue(id int64, entry T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.load()
	entries[id] = entry
	return q.save(entries)
}

// Remove drops the pending operation for id. Removing an absent id is a no-op.
func (q *Queue[T]) Remove(id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.load()
	if _, ok := entries[id]; !ok {
		return nil
	}
	delete(entries, id)
	return q.save(entries)
}

// RemoveMany drops the pending operations for all given ids in one write.
func (q *Queue[T]) RemoveMany(ids []int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.load()
	changed := false
	for _, id := range ids {
		if _, ok := entries[id]; ok {
			delete(entries, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return q.save(entries)
}

// Count returns the number of pending operations.
func (q *Queue[T]) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.load())
}

// Clear deletes all pending operations and the backing file.
func (q *Queue[T]) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.save(map[int64]T{})
}
