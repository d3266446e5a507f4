package model

import "time"

// BacklogSnapshot is an immutable copy of a queue manager backlog entry
type BacklogSnapshot struct {
	ID          string
	URL         string
	Path        string
	Priority    int // lower dispatches first
	SubmittedAt time.Time
	State       QueueState
}

// ActiveSnapshot is a backlog entry merged with the pool's live view of its
// task. Live carries the synthetic unknown state when the pool has already
// retired the handle; consumers must also tolerate a nil Live.
type ActiveSnapshot struct {
	BacklogSnapshot
	Handle string
	Live   *TaskSnapshot
}

// QueueStatus is a point-in-time snapshot of the queue manager's both sets
type QueueStatus struct {
	QueuedCount int
	ActiveCount int
	Queued      []BacklogSnapshot
	Active      []ActiveSnapshot
}

// EntryDetail is the per-entry status view returned by the queue manager.
// For an active entry the queue's own state label and the pool's actual
// state can transiently disagree, so both are reported.
type EntryDetail struct {
	ID         string
	Found      bool
	Handle     string
	QueueState QueueState
	PoolState  TaskState
	Error      string
	Detail     string
}

// MergeLive combines a backlog snapshot with the pool's live status for its
// handle. A nil live snapshot (handle already retired at the pool) produces
// the synthetic unknown state so status rendering never fails.
func MergeLive(entry BacklogSnapshot, handle string, live *TaskSnapshot) ActiveSnapshot {
	if live == nil {
		live = &TaskSnapshot{
			Handle: handle,
			URL:    entry.URL,
			Path:   entry.Path,
			State:  TaskStateUnknown,
		}
	}
	return ActiveSnapshot{
		BacklogSnapshot: entry,
		Handle:          handle,
		Live:            live,
	}
}
