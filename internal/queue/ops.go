// ABOUTME: Pending operation payloads stored in the durable queues
// ABOUTME: StatusOp for per-entry status changes, CollectionOp for feed/category bulk marks

package queue

import "time"

// OpMarkAllRead is the only collection operation currently queued.
const OpMarkAllRead = "mark_all_read"

// StatusOp is a pending status change for a single entry. Original holds the
// value to roll back to if reconciliation is abandoned.
type StatusOp struct {
	Target   string    `json:"target_status"`
	Original string    `json:"original_status"`
	QueuedAt time.Time `json:"queued_at"`
}

// CollectionOp is a pending bulk operation on a whole feed or category.
type CollectionOp struct {
	Op       string    `json:"operation"`
	QueuedAt time.Time `json:"queued_at"`
}
