// ABOUTME: Entry model representing a Miniflux entry tracked locally with read/unread status
// ABOUTME: Provides status classification helpers used by the dispatcher's no-op check

package models

import "time"

// Entry status values as reported by the Miniflux API. StatusRemoved is
// remote-only: the server may report it, but clients never set it.
const (
	StatusUnread  = "unread"
	StatusRead    = "read"
	StatusRemoved = "removed"
)

// Entry represents a single Miniflux entry tracked locally. The JSON tags
// match the Miniflux wire format so API responses decode directly into it.
type Entry struct {
	ID          int64      `json:"id"`
	FeedID      int64      `json:"feed_id"`
	CategoryID  int64      `json:"category_id"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	// LastUpdated is set on every local status write.
	LastUpdated time.Time `json:"-"`

	// PendingFromWorker marks that the last status write was an automatic
	// revert by a background worker rather than a user action.
	PendingFromWorker   bool       `json:"-"`
	PendingFromWorkerAt *time.Time `json:"-"`
}

// NewEntry creates an Entry with the given id, feed, and title, starting unread.
func NewEntry(id, feedID int64, title string) *Entry {
	return &Entry{
		ID:          id,
		FeedID:      feedID,
		Title:       title,
		Status:      StatusUnread,
		LastUpdated: time.Now(),
	}
}

// IsRead reports whether the entry classifies as read. Removed entries count
// as read: they are terminal and never surface as unread.
func (e *Entry) IsRead() bool {
	return e.Status != StatusUnread
}

// SameClassification reports whether status falls into the same read/unread
// bucket as the entry's current status.
func (e *Entry) SameClassification(status string) bool {
	return e.IsRead() == (status != StatusUnread)
}

// ClassifiedStatus returns the entry's status collapsed to read or unread,
// the only two values a client may send back to the server.
func (e *Entry) ClassifiedStatus() string {
	if e.IsRead() {
		return StatusRead
	}
	return StatusUnread
}

// ValidStatus reports whether s is a status a client may set.
func ValidStatus(s string) bool {
	return s == StatusRead || s == StatusUnread
}
