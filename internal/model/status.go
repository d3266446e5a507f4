package model

// TaskState represents the state of a transfer task owned by the worker pool
type TaskState string

const (
	// TaskStatePending means the task is created but not transferring yet
	TaskStatePending TaskState = "Pending"

	// TaskStateDownloading means the transfer is in progress
	TaskStateDownloading TaskState = "Downloading"

	// TaskStatePaused means the task was marked paused by the user.
	// The transfer goroutine keeps running; this is a status annotation only.
	TaskStatePaused TaskState = "Paused"

	// TaskStateCancelling means cancellation was requested and the transfer
	// will stop at its next checkpoint
	TaskStateCancelling TaskState = "Cancelling"

	// TaskStateCancelled means the transfer stopped due to cancellation
	TaskStateCancelled TaskState = "Cancelled"

	// TaskStateCompleted means the transfer finished successfully
	TaskStateCompleted TaskState = "Completed"

	// TaskStateFailed means the transfer failed with an error
	TaskStateFailed TaskState = "Failed"

	// TaskStateUnknown is the synthetic state reported for an active entry
	// whose handle the pool no longer recognizes
	TaskStateUnknown TaskState = "unknown_at_downloader"
)

// String returns the string representation of TaskState
func (ts TaskState) String() string {
	return string(ts)
}

// IsTerminal returns true if no further transitions leave this state
func (ts TaskState) IsTerminal() bool {
	return ts == TaskStateCompleted || ts == TaskStateFailed || ts == TaskStateCancelled
}

// IsPausable returns true if Pause is a legal request in this state
func (ts TaskState) IsPausable() bool {
	return ts == TaskStatePending || ts == TaskStateDownloading
}

// QueueState represents the queue manager's view of a backlog entry. While an
// entry is active the reconciliation loop mirrors the pool's state label into
// it, so values beyond Queued/Active are TaskState strings.
type QueueState string

const (
	// QueueStateQueued means the entry is waiting in the backlog
	QueueStateQueued QueueState = "Queued"

	// QueueStateActive means the entry has been promoted into the pool
	QueueStateActive QueueState = "Active"
)

// String returns the string representation of QueueState
func (qs QueueState) String() string {
	return string(qs)
}
