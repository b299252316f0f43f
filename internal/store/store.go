// ABOUTME: Entity status store backed by SQLite using modernc.org/sqlite (pure Go)
// ABOUTME: Persists one record per entry; the local ground truth for read/unread state

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AlgusDark/minisync/internal/models"
)

// ErrNotFound is returned when no record exists for the requested entry.
var ErrNotFound = errors.New("entry not found")

// Store persists entry status records. All writes are single statements, so
// a crash never leaves a partial record. Timestamps are stored as unix
// nanoseconds: the worker clobber guard compares them in SQL, and integer
// comparison is exact where formatted text is not.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the store at dbPath.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	// Owner-only: reading habits are personal data
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY,
			feed_id INTEGER NOT NULL DEFAULT 0,
			category_id INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'unread',
			title TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			published_at INTEGER,
			last_updated INTEGER NOT NULL,
			pending_from_worker INTEGER NOT NULL DEFAULT 0,
			pending_from_worker_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_entries_status ON entries(status);
		CREATE INDEX IF NOT EXISTS idx_entries_feed ON entries(feed_id);
		CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves the record for id, or ErrNotFound.
func (s *Store) Get(id int64) (*models.Entry, error) {
	row := s.db.QueryRow(`
		SELECT id, feed_id, category_id, status, title, url, published_at,
		       last_updated, pending_from_worker, pending_from_worker_at
		FROM entries WHERE id = ?
	`, id)
	return scanEntry(row)
}

// Upsert stores a record, creating it if absent. On conflict the descriptive
// fields are refreshed but the local status is kept: local state is the
// ground truth once an entry is materialized. A remote "removed" status is
// the one exception and always wins.
func (s *Store) Upsert(e *models.Entry) error {
	var publishedAt any
	if e.PublishedAt != nil {
		publishedAt = e.PublishedAt.Unix()
	}
	_, err := s.db.Exec(`
		INSERT INTO entries (id, feed_id, category_id, status, title, url, published_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			feed_id = excluded.feed_id,
			category_id = excluded.category_id,
			title = excluded.title,
			url = excluded.url,
			published_at = excluded.published_at,
			status = CASE WHEN excluded.status = ? THEN excluded.status ELSE entries.status END
	`, e.ID, e.FeedID, e.CategoryID, e.Status, e.Title, e.URL, publishedAt,
		time.Now().UnixNano(), models.StatusRemoved)
	if err != nil {
		return fmt.Errorf("upsert entry %d: %w", e.ID, err)
	}
	return nil
}

// SetStatus records a user-initiated status change. It clears the
// pending-from-worker marker, since the user's intent supersedes any
// in-flight worker result. Returns ErrNotFound if no record exists.
func (s *Store) SetStatus(id int64, status string) error {
	res, err := s.db.Exec(`
		UPDATE entries
		SET status = ?, last_updated = ?, pending_from_worker = 0, pending_from_worker_at = NULL
		WHERE id = ?
	`, status, time.Now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("set status for entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status for entry %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RevertStatus records a worker-initiated revert after a failed remote call.
// The write is suppressed when the record was touched after dispatchedAt: a
// slow worker completing late must not clobber a newer user action. Returns
// whether the revert was applied.
func (s *Store) RevertStatus(id int64, status string, dispatchedAt time.Time) (bool, error) {
	now := time.Now().UnixNano()
	res, err := s.db.Exec(`
		UPDATE entries
		SET status = ?, last_updated = ?, pending_from_worker = 1, pending_from_worker_at = ?
		WHERE id = ? AND last_updated <= ?
	`, status, now, now, id, dispatchedAt.UnixNano())
	if err != nil {
		return false, fmt.Errorf("revert status for entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revert status for entry %d: %w", id, err)
	}
	return n > 0, nil
}

// MarkFeedRead marks every unread entry of the feed as read locally and
// returns how many records changed.
func (s *Store) MarkFeedRead(feedID int64) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE entries
		SET status = ?, last_updated = ?, pending_from_worker = 0, pending_from_worker_at = NULL
		WHERE feed_id = ? AND status = ?
	`, models.StatusRead, time.Now().UnixNano(), feedID, models.StatusUnread)
	if err != nil {
		return 0, fmt.Errorf("mark feed %d read: %w", feedID, err)
	}
	return res.RowsAffected()
}

// MarkCategoryRead marks every unread entry of the category as read locally
// and returns how many records changed.
func (s *Store) MarkCategoryRead(categoryID int64) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE entries
		SET status = ?, last_updated = ?, pending_from_worker = 0, pending_from_worker_at = NULL
		WHERE category_id = ? AND status = ?
	`, models.StatusRead, time.Now().UnixNano(), categoryID, models.StatusUnread)
	if err != nil {
		return 0, fmt.Errorf("mark category %d read: %w", categoryID, err)
	}
	return res.RowsAffected()
}

// Delete removes the record for id. Deleting an absent id is a no-op.
func (s *Store) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}

// Filter narrows List results.
type Filter struct {
	FeedID     *int64
	CategoryID *int64
	UnreadOnly bool
	Since      *time.Time
	Before     *time.Time
	Limit      int
}

// List returns entries matching the filter, newest first.
func (s *Store) List(filter *Filter) ([]*models.Entry, error) {
	query := `
		SELECT id, feed_id, category_id, status, title, url, published_at,
		       last_updated, pending_from_worker, pending_from_worker_at
		FROM entries WHERE 1=1
	`
	var args []any
	if filter != nil {
		if filter.FeedID != nil {
			query += " AND feed_id = ?"
			args = append(args, *filter.FeedID)
		}
		if filter.CategoryID != nil {
			query += " AND category_id = ?"
			args = append(args, *filter.CategoryID)
		}
		if filter.UnreadOnly {
			query += " AND status = ?"
			args = append(args, models.StatusUnread)
		}
		if filter.Since != nil {
			query += " AND published_at IS NOT NULL AND published_at >= ?"
			args = append(args, filter.Since.Unix())
		}
		if filter.Before != nil {
			query += " AND published_at IS NOT NULL AND published_at < ?"
			args = append(args, filter.Before.Unix())
		}
	}
	query += " ORDER BY published_at DESC, id DESC"
	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UnreadCounts holds unread aggregates derived from the store.
type UnreadCounts struct {
	Total      int
	ByFeed     map[int64]int
	ByCategory map[int64]int
}

// CountUnread computes unread aggregates in one pass.
func (s *Store) CountUnread() (*UnreadCounts, error) {
	rows, err := s.db.Query(`
		SELECT feed_id, category_id, COUNT(*)
		FROM entries WHERE status = ?
		GROUP BY feed_id, category_id
	`, models.StatusUnread)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	defer rows.Close()

	counts := &UnreadCounts{
		ByFeed:     make(map[int64]int),
		ByCategory: make(map[int64]int),
	}
	for rows.Next() {
		var feedID, categoryID int64
		var n int
		if err := rows.Scan(&feedID, &categoryID, &n); err != nil {
			return nil, fmt.Errorf("scan unread counts: %w", err)
		}
		counts.Total += n
		counts.ByFeed[feedID] += n
		counts.ByCategory[categoryID] += n
	}
	return counts, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.Entry, error) {
	var e models.Entry
	var publishedAt, pendingAt sql.NullInt64
	var lastUpdated int64
	var pending int

	err := row.Scan(&e.ID, &e.FeedID, &e.CategoryID, &e.Status, &e.Title, &e.URL,
		&publishedAt, &lastUpdated, &pending, &pendingAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	e.LastUpdated = time.Unix(0, lastUpdated)
	if publishedAt.Valid {
		t := time.Unix(publishedAt.Int64, 0)
		e.PublishedAt = &t
	}
	e.PendingFromWorker = pending != 0
	if pendingAt.Valid {
		t := time.Unix(0, pendingAt.Int64)
		e.PendingFromWorkerAt = &t
	}
	return &e, nil
}
