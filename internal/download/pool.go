package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/dlget/dlq/internal/metrics"
	"github.com/dlget/dlq/internal/model"
	"github.com/dlget/dlq/internal/storage"
)

// DefaultChunkSize is the read-buffer size between checkpoints
const DefaultChunkSize = 8192

// task is the pool's mutable record of one transfer. All field access is
// serialized by the pool mutex; callers only ever see copies.
type task struct {
	handle     string
	url        string
	path       string
	state      model.TaskState
	bytes      int64
	total      int64
	progress   float64
	err        string
	startedAt  time.Time
	finishedAt time.Time
}

// Pool owns the set of concurrently-running transfer tasks. Every submitted
// task runs on its own goroutine immediately; the pool enforces no admission
// control, bounding concurrency is the queue manager's job.
type Pool struct {
	mu    sync.Mutex
	tasks map[string]*task

	fetcher   Fetcher
	cleaner   Cleaner
	chunkSize int
	metrics   *metrics.Metrics
}

// NewPool creates a worker pool using the given fetch and cleanup
// collaborators. A non-positive chunkSize falls back to DefaultChunkSize.
func NewPool(fetcher Fetcher, cleaner Cleaner, chunkSize int) *Pool {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Pool{
		tasks:     make(map[string]*task),
		fetcher:   fetcher,
		cleaner:   cleaner,
		chunkSize: chunkSize,
		metrics:   metrics.Get(),
	}
}

// Submit registers a transfer and starts executing it on its own goroutine.
// It always accepts and never blocks; the returned handle is the only way to
// observe or control the task afterwards.
func (p *Pool) Submit(url, path string) string {
	handle := uuid.NewString()

	p.mu.Lock()
	p.tasks[handle] = &task{
		handle:    handle,
		url:       url,
		path:      path,
		state:     model.TaskStatePending,
		startedAt: time.Now(),
	}
	p.tasks[handle].state = model.TaskStateDownloading
	p.mu.Unlock()

	go p.run(handle, url, path)

	logger.WithFields(logger.Fields{"handle": handle, "url": url, "path": path}).Info("Download started")
	return handle
}

// Status returns an immutable copy of the task's current fields, taken
// atomically with respect to all task-field writes. The second return is
// false for unknown handles.
func (p *Pool) Status(handle string) (model.TaskSnapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.tasks[handle]
	if !ok {
		return model.TaskSnapshot{}, false
	}
	return snapshotLocked(t), true
}

// Cancel requests best-effort cancellation. Non-terminal tasks move to
// Cancelling and the transfer finalizes Cancelled at its next checkpoint;
// already-terminal tasks are force-marked Cancelled without re-running side
// effects. Returns false for unknown handles.
func (p *Pool) Cancel(handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.tasks[handle]
	if !ok {
		logger.WithField("handle", handle).Warn("Cancel: handle not found")
		return false
	}

	switch {
	case t.state == model.TaskStateCancelling:
		// already on its way out
	case t.state.IsTerminal():
		// no further work will happen either way; reflect that
		t.state = model.TaskStateCancelled
	default:
		t.state = model.TaskStateCancelling
		logger.WithField("handle", handle).Info("Download marked for cancellation")
	}
	return true
}

// Pause marks a Pending or Downloading task Paused. The transfer goroutine
// keeps running; this is a status annotation only. Returns false if the
// handle is unknown or the state does not allow pausing.
func (p *Pool) Pause(handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.tasks[handle]
	if !ok {
		logger.WithField("handle", handle).Warn("Pause: handle not found")
		return false
	}
	if !t.state.IsPausable() {
		logger.WithFields(logger.Fields{"handle": handle, "state": t.state}).Warn("Cannot pause in current state")
		return false
	}
	t.state = model.TaskStatePaused
	return true
}

// Resume moves a Paused task back to Pending so whatever re-submits it can
// re-attempt the transfer. It does not restart the original goroutine.
func (p *Pool) Resume(handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.tasks[handle]
	if !ok {
		logger.WithField("handle", handle).Warn("Resume: handle not found")
		return false
	}
	if t.state != model.TaskStatePaused {
		logger.WithFields(logger.Fields{"handle": handle, "state": t.state}).Warn("Cannot resume in current state")
		return false
	}
	t.state = model.TaskStatePending
	return true
}

// Remove evicts a task from the pool's table. The pool never self-evicts;
// this is the retirement hook for the external owner that has observed a
// terminal state. Returns false for unknown handles.
func (p *Pool) Remove(handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.tasks[handle]; !ok {
		return false
	}
	delete(p.tasks, handle)
	return true
}

// snapshotLocked copies a task's fields. Caller must hold p.mu.
func snapshotLocked(t *task) model.TaskSnapshot {
	return model.TaskSnapshot{
		Handle:           t.handle,
		URL:              t.url,
		Path:             t.path,
		State:            t.state,
		BytesTransferred: t.bytes,
		TotalBytes:       t.total,
		Progress:         t.progress,
		Error:            t.err,
		StartedAt:        t.startedAt,
		FinishedAt:       t.finishedAt,
	}
}

// finalizeLocked moves a task into a terminal state, honoring monotone
// cancellation: a task already Cancelling only ever becomes Cancelled, and a
// task already terminal is left alone. Returns the state actually applied.
// Caller must hold p.mu.
func finalizeLocked(t *task, to model.TaskState, errMsg string) model.TaskState {
	if t.state.IsTerminal() {
		return t.state
	}
	if t.state == model.TaskStateCancelling && to != model.TaskStateCancelled {
		to = model.TaskStateCancelled
		errMsg = ""
	}
	t.state = to
	if to == model.TaskStateFailed {
		t.err = errMsg
	}
	t.finishedAt = time.Now()
	return to
}

// fail finalizes a task as Failed (or Cancelled if a cancel raced in) and
// performs cleanup according to the failure kind
func (p *Pool) fail(handle string, kind FailureKind, err error, wroteBytes bool, path string) {
	p.mu.Lock()
	t, ok := p.tasks[handle]
	var applied model.TaskState
	if ok {
		applied = finalizeLocked(t, model.TaskStateFailed, err.Error())
	}
	p.mu.Unlock()
	if !ok {
		return
	}

	logger.WithFields(logger.Fields{
		"handle": handle,
		"kind":   kind.String(),
		"state":  applied,
	}).WithError(err).Error("Download failed")

	switch applied {
	case model.TaskStateFailed:
		p.metrics.TasksTotal.WithLabelValues("failed").Inc()
		if kind != FailureDestinationPrepare && wroteBytes {
			p.cleaner.CleanupIncomplete(path)
		}
	case model.TaskStateCancelled:
		p.metrics.TasksTotal.WithLabelValues("cancelled").Inc()
		p.cleaner.CleanupIncomplete(path)
	}
}

// cancelAtCheckpoint finalizes a Cancelling task as Cancelled and cleans up
// the partial destination
func (p *Pool) cancelAtCheckpoint(handle, path string) {
	logger.WithField("handle", handle).Info("Download cancelled")
	p.metrics.TasksTotal.WithLabelValues("cancelled").Inc()
	p.cleaner.CleanupIncomplete(path)
}

// run executes one transfer. The checkpoint discipline is mandatory: the
// pool lock is taken briefly to read or write task fields and released
// before any network or disk I/O.
func (p *Pool) run(handle, url, path string) {
	// the task may have been externally removed before any I/O happened
	p.mu.Lock()
	t, ok := p.tasks[handle]
	if !ok {
		p.mu.Unlock()
		logger.WithField("handle", handle).Debug("Task disappeared before I/O, exiting")
		return
	}
	if t.state == model.TaskStatePending {
		t.state = model.TaskStateDownloading
	}
	p.mu.Unlock()

	p.metrics.ActiveTasks.Inc()
	defer p.metrics.ActiveTasks.Dec()

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, storage.DefaultDirPermissions); err != nil {
			p.fail(handle, FailureDestinationPrepare, fmt.Errorf("create directory: %w", err), false, path)
			return
		}
	}

	resp, err := p.fetcher.Fetch(context.Background(), url)
	if err != nil {
		p.fail(handle, FailureTransport, err, false, path)
		return
	}
	defer resp.Body.Close()

	// headers are in; record the total and take a cancellation checkpoint
	// before creating the destination file
	p.mu.Lock()
	t, ok = p.tasks[handle]
	if !ok {
		p.mu.Unlock()
		return
	}
	if t.state == model.TaskStateCancelling {
		finalizeLocked(t, model.TaskStateCancelled, "")
		p.mu.Unlock()
		p.cancelAtCheckpoint(handle, path)
		return
	}
	t.total = resp.TotalBytes
	t.bytes = 0
	p.mu.Unlock()

	out, err := os.Create(path)
	if err != nil {
		p.fail(handle, FailureDestinationPrepare, fmt.Errorf("open destination: %w", err), false, path)
		return
	}

	buf := make([]byte, p.chunkSize)
	var written int64

	for {
		// checkpoint: existence and cancellation, before the next read
		p.mu.Lock()
		t, ok = p.tasks[handle]
		if !ok {
			p.mu.Unlock()
			out.Close()
			logger.WithField("handle", handle).Debug("Task removed externally during download, stopping")
			return
		}
		if t.state == model.TaskStateCancelling {
			finalizeLocked(t, model.TaskStateCancelled, "")
			p.mu.Unlock()
			out.Close()
			p.cancelAtCheckpoint(handle, path)
			return
		}
		p.mu.Unlock()

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				p.fail(handle, FailureUnexpected, fmt.Errorf("write destination: %w", werr), written > 0, path)
				return
			}
			written += int64(n)
			p.metrics.BytesTransferred.Add(float64(n))

			// checkpoint: publish progress, re-check cancellation that may
			// have arrived while the write was in flight
			p.mu.Lock()
			t, ok = p.tasks[handle]
			if !ok {
				p.mu.Unlock()
				out.Close()
				return
			}
			if t.state == model.TaskStateCancelling {
				finalizeLocked(t, model.TaskStateCancelled, "")
				p.mu.Unlock()
				out.Close()
				p.cancelAtCheckpoint(handle, path)
				return
			}
			t.bytes = written
			if t.total > 0 {
				t.progress = float64(written) / float64(t.total) * 100
			}
			p.mu.Unlock()
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			p.fail(handle, FailureTransport, rerr, written > 0, path)
			return
		}
	}

	if err := out.Close(); err != nil {
		p.fail(handle, FailureUnexpected, fmt.Errorf("close destination: %w", err), written > 0, path)
		return
	}

	// stream ended normally; Completed only if still Downloading, a late
	// cancel must still win
	p.mu.Lock()
	t, ok = p.tasks[handle]
	if !ok {
		p.mu.Unlock()
		return
	}
	var applied model.TaskState
	switch t.state {
	case model.TaskStateDownloading:
		if t.total > 0 && written == t.total {
			t.progress = 100
		}
		applied = finalizeLocked(t, model.TaskStateCompleted, "")
	case model.TaskStateCancelling:
		applied = finalizeLocked(t, model.TaskStateCancelled, "")
	default:
		// Paused is a status annotation; the record keeps its label
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	switch applied {
	case model.TaskStateCompleted:
		p.metrics.TasksTotal.WithLabelValues("completed").Inc()
		logger.WithFields(logger.Fields{"handle": handle, "path": path, "bytes": written}).Info("Download completed")
	case model.TaskStateCancelled:
		p.cancelAtCheckpoint(handle, path)
	}
}
