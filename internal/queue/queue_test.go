// ABOUTME: Tests for the durable file-backed queue
// ABOUTME: Covers coalescing, idempotent removal, delete-on-empty, and corruption tolerance

package queue

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestQueue(t *testing.T) *Queue[StatusOp] {
	t.Helper()
	return New[StatusOp](filepath.Join(t.TempDir(), "entry-status-queue.json"))
}

func TestEnqueueCoalesces(t *testing.T) {
	q := newTestQueue(t)

	first := StatusOp{Target: "read", Original: "unread", QueuedAt: time.Now()}
	second := StatusOp{Target: "unread", Original: "read", QueuedAt: time.Now()}

	if err := q.Enqueue(42, first); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := q.Enqueue(42, second); err != nil {
		t.Fatalf("second Enqueue failed: %v", err)
	}

	entries := q.Load()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after coalescing, got %d", len(entries))
	}
	if entries[42].Target != "unread" {
		t.Errorf("expected second op to survive, got target %q", entries[42].Target)
	}
	if entries[42].Original != "read" {
		t.Errorf("expected original %q, got %q", "read", entries[42].Original)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	q := newTestQueue(t)

	// Removing from an empty queue is a no-op
	if err := q.Remove(99); err != nil {
		t.Fatalf("Remove on empty queue failed: %v", err)
	}

	if err := q.Enqueue(1, StatusOp{Target: "read", Original: "unread"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := q.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := q.Remove(1); err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
	if q.Count() != 0 {
		t.Errorf("expected empty queue, got %d entries", q.Count())
	}
}

func TestFileDeletedWhenDrained(t *testing.T) {
	q := newTestQueue(t)

	if err := q.Enqueue(7, StatusOp{Target: "read", Original: "unread"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := os.Stat(q.Path()); err != nil {
		t.Fatalf("expected backing file to exist: %v", err)
	}

	if err := q.Remove(7); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(q.Path()); !os.IsNotExist(err) {
		t.Errorf("expected backing file to be deleted after drain, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	q := newTestQueue(t)

	entries := q.Load()
	if len(entries) != 0 {
		t.Errorf("expected empty map for missing file, got %d entries", len(entries))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	q := newTestQueue(t)

	if err := os.WriteFile(q.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	entries := q.Load()
	if len(entries) != 0 {
		t.Errorf("expected corrupt file to read as empty, got %d entries", len(entries))
	}

	// A corrupt queue must not block new mutations
	if err := q.Enqueue(1, StatusOp{Target: "read", Original: "unread"}); err != nil {
		t.Fatalf("Enqueue after corruption failed: %v", err)
	}
	if q.Count() != 1 {
		t.Errorf("expected 1 entry after recovery, got %d", q.Count())
	}
}

func TestLoadUnknownSchemaVersion(t *testing.T) {
	q := newTestQueue(t)

	if err := os.WriteFile(q.Path(), []byte(`{"version": 99, "entries": {"1": {}}}`), 0600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if n := q.Count(); n != 0 {
		t.Errorf("expected unknown schema version to read as empty, got %d entries", n)
	}
}

func TestRemoveMany(t *testing.T) {
	q := newTestQueue(t)

	for id := int64(1); id <= 5; id++ {
		if err := q.Enqueue(id, StatusOp{Target: "read", Original: "unread"}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	if err := q.RemoveMany([]int64{1, 3, 5, 42}); err != nil {
		t.Fatalf("RemoveMany failed: %v", err)
	}

	entries := q.Load()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, id := range []int64{2, 4} {
		if _, ok := entries[id]; !ok {
			t.Errorf("expected entry %d to remain", id)
		}
	}
}

func TestClear(t *testing.T) {
	q := newTestQueue(t)

	if err := q.Enqueue(1, StatusOp{Target: "read"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := q.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if q.Count() != 0 {
		t.Errorf("expected empty queue after Clear, got %d", q.Count())
	}
	if _, err := os.Stat(q.Path()); !os.IsNotExist(err) {
		t.Errorf("expected backing file removed after Clear, got %v", err)
	}
}

func TestCollectionQueue(t *testing.T) {
	q := New[CollectionOp](filepath.Join(t.TempDir(), "feed-queue.json"))

	if err := q.Enqueue(3, CollectionOp{Op: OpMarkAllRead, QueuedAt: time.Now()}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	entries := q.Load()
	if entries[3].Op != OpMarkAllRead {
		t.Errorf("expected operation %q, got %q", OpMarkAllRead, entries[3].Op)
	}
}
