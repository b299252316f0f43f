// ABOUTME: Tests for the SQLite entity status store
// ABOUTME: Covers status writes, the worker clobber guard, bulk marks, and counts

package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlgusDark/minisync/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "minisync.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedEntry(t *testing.T, s *Store, id, feedID int64) *models.Entry {
	t.Helper()
	e := models.NewEntry(id, feedID, "Test Entry")
	if err := s.Upsert(e); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	return e
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	s := newTestStore(t)
	seedEntry(t, s, 42, 1)

	if err := s.SetStatus(42, models.StatusRead); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusRead {
		t.Errorf("status: got %q, want %q", got.Status, models.StatusRead)
	}
	if got.PendingFromWorker {
		t.Error("user write must clear the pending-from-worker marker")
	}
	if got.LastUpdated.IsZero() {
		t.Error("expected LastUpdated to be set")
	}
}

func TestSetStatusNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.SetStatus(999, models.StatusRead)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRevertStatusApplied(t *testing.T) {
	s := newTestStore(t)
	seedEntry(t, s, 42, 1)

	if err := s.SetStatus(42, models.StatusRead); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	// Worker dispatched after the optimistic write, so the revert applies
	applied, err := s.RevertStatus(42, models.StatusUnread, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("RevertStatus failed: %v", err)
	}
	if !applied {
		t.Fatal("expected revert to apply")
	}

	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusUnread {
		t.Errorf("status: got %q, want %q", got.Status, models.StatusUnread)
	}
	if !got.PendingFromWorker {
		t.Error("worker write must set the pending-from-worker marker")
	}
	if got.PendingFromWorkerAt == nil {
		t.Error("worker write must set the pending-from-worker timestamp")
	}
}

func TestRevertStatusSuppressedByNewerWrite(t *testing.T) {
	s := newTestStore(t)
	seedEntry(t, s, 42, 1)

	dispatchedAt := time.Now().Add(-time.Minute)

	// A user write lands after the worker's dispatch time
	if err := s.SetStatus(42, models.StatusRead); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	applied, err := s.RevertStatus(42, models.StatusUnread, dispatchedAt)
	if err != nil {
		t.Fatalf("RevertStatus failed: %v", err)
	}
	if applied {
		t.Fatal("expected stale worker revert to be suppressed")
	}

	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusRead {
		t.Errorf("newer user write was clobbered: got %q", got.Status)
	}
}

func TestUpsertKeepsLocalStatus(t *testing.T) {
	s := newTestStore(t)
	seedEntry(t, s, 42, 1)

	if err := s.SetStatus(42, models.StatusRead); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	// A re-download reporting unread must not undo the local read state
	remote := models.NewEntry(42, 1, "Updated Title")
	if err := s.Upsert(remote); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusRead {
		t.Errorf("local status clobbered by upsert: got %q", got.Status)
	}
	if got.Title != "Updated Title" {
		t.Errorf("descriptive fields should refresh: got %q", got.Title)
	}
}

func TestUpsertRemovedWins(t *testing.T) {
	s := newTestStore(t)
	seedEntry(t, s, 42, 1)

	remote := models.NewEntry(42, 1, "Test Entry")
	remote.Status = models.StatusRemoved
	if err := s.Upsert(remote); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusRemoved {
		t.Errorf("remote removed status should win: got %q", got.Status)
	}
	if !got.IsRead() {
		t.Error("removed entries must classify as read")
	}
}

func TestMarkFeedRead(t *testing.T) {
	s := newTestStore(t)
	seedEntry(t, s, 1, 10)
	seedEntry(t, s, 2, 10)
	seedEntry(t, s, 3, 20)

	n, err := s.MarkFeedRead(10)
	if err != nil {
		t.Fatalf("MarkFeedRead failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries marked, got %d", n)
	}

	other, err := s.Get(3)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if other.Status != models.StatusUnread {
		t.Errorf("entry in another feed should stay unread, got %q", other.Status)
	}
}

func TestMarkCategoryRead(t *testing.T) {
	s := newTestStore(t)

	e := models.NewEntry(1, 10, "A")
	e.CategoryID = 5
	if err := s.Upsert(e); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	seedEntry(t, s, 2, 10) // category 0

	n, err := s.MarkCategoryRead(5)
	if err != nil {
		t.Fatalf("MarkCategoryRead failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry marked, got %d", n)
	}
}

func TestCountUnread(t *testing.T) {
	s := newTestStore(t)
	seedEntry(t, s, 1, 10)
	seedEntry(t, s, 2, 10)
	seedEntry(t, s, 3, 20)

	if err := s.SetStatus(3, models.StatusRead); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	counts, err := s.CountUnread()
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if counts.Total != 2 {
		t.Errorf("total: got %d, want 2", counts.Total)
	}
	if counts.ByFeed[10] != 2 {
		t.Errorf("feed 10: got %d, want 2", counts.ByFeed[10])
	}
	if counts.ByFeed[20] != 0 {
		t.Errorf("feed 20: got %d, want 0", counts.ByFeed[20])
	}
}

func TestListUnreadBefore(t *testing.T) {
	s := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	a := models.NewEntry(1, 10, "old")
	a.PublishedAt = &old
	b := models.NewEntry(2, 10, "recent")
	b.PublishedAt = &recent
	for _, e := range []*models.Entry{a, b} {
		if err := s.Upsert(e); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	entries, err := s.List(&Filter{UnreadOnly: true, Before: &cutoff})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != 1 {
		t.Errorf("expected only the old entry, got %d entries", len(entries))
	}
}

func TestListSince(t *testing.T) {
	s := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	a := models.NewEntry(1, 10, "old")
	a.PublishedAt = &old
	b := models.NewEntry(2, 10, "recent")
	b.PublishedAt = &recent
	for _, e := range []*models.Entry{a, b} {
		if err := s.Upsert(e); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	entries, err := s.List(&Filter{Since: &cutoff})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != 2 {
		t.Errorf("expected only the recent entry, got %d entries", len(entries))
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	seedEntry(t, s, 42, 1)

	if err := s.Delete(42); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op
	if err := s.Delete(42); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}
