package queue

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/dlget/dlq/internal/metrics"
	"github.com/dlget/dlq/internal/model"
)

// DefaultInterval is the reconciliation loop's wall-clock period
const DefaultInterval = time.Second

// stopTimeout bounds how long Stop waits for the loop to exit
const stopTimeout = 5 * time.Second

// Downloader is what the queue manager needs from the worker pool
type Downloader interface {
	Submit(url, path string) string
	Status(handle string) (model.TaskSnapshot, bool)
	Cancel(handle string) bool
	Remove(handle string) bool
}

// Outcome describes a retired entry, handed to the recorder when its task
// reached a terminal state (or vanished from the pool)
type Outcome struct {
	QueueID    string
	Handle     string
	URL        string
	Path       string
	State      model.TaskState
	Error      string
	Bytes      int64
	TotalBytes int64
	FinishedAt time.Time
}

// Recorder receives terminal outcomes. Implementations must not feed them
// back into scheduling state; the backlog is in-memory only.
type Recorder interface {
	Record(outcome Outcome) error
}

// entry is the manager's mutable record of one request
type entry struct {
	id          string
	url         string
	path        string
	priority    int
	submittedAt time.Time
	state       model.QueueState
	handle      string // set while active
}

// Manager owns the priority-ordered backlog and the active set. A background
// loop reconciles the pool's live statuses into the backlog view, retires
// terminal tasks, and promotes queued entries up to the worker capacity.
type Manager struct {
	downloader Downloader
	capacity   int
	interval   time.Duration
	recorder   Recorder

	mu      sync.Mutex
	pending []*entry
	active  map[string]*entry // keyed by pool handle
	nextID  int

	runMu   sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	metrics *metrics.Metrics
}

// NewManager creates a queue manager dispatching into the given pool with
// the given worker capacity. A non-positive capacity is clamped to 1 and a
// non-positive interval falls back to DefaultInterval.
func NewManager(downloader Downloader, capacity int, interval time.Duration) *Manager {
	if capacity < 1 {
		capacity = 1
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Manager{
		downloader: downloader,
		capacity:   capacity,
		interval:   interval,
		active:     make(map[string]*entry),
		metrics:    metrics.Get(),
	}
}

// SetRecorder installs an optional terminal-outcome recorder
func (m *Manager) SetRecorder(r Recorder) {
	m.recorder = r
}

// Add appends a request to the backlog in Queued state and returns its
// queue-local id. Lower priority numbers dispatch first; ties dispatch in
// arrival order. Add always succeeds and never blocks.
func (m *Manager) Add(url, path string, priority int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e := &entry{
		id:          fmt.Sprintf("qm-%d", m.nextID),
		url:         url,
		path:        path,
		priority:    priority,
		submittedAt: time.Now(),
		state:       model.QueueStateQueued,
	}
	m.pending = append(m.pending, e)
	m.sortPendingLocked()
	m.metrics.QueuedEntries.Set(float64(len(m.pending)))

	logger.WithFields(logger.Fields{"id": e.id, "url": url, "priority": priority}).Info("Added to queue")
	return e.id
}

// Remove withdraws a request. A still-queued entry is deleted outright; an
// active entry gets a cancel issued on its pool handle and retires once the
// loop observes the terminal state. Returns false for unknown ids.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.pending {
		if e.id == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			m.metrics.QueuedEntries.Set(float64(len(m.pending)))
			logger.WithField("id", id).Info("Removed from pending queue")
			return true
		}
	}

	for handle, e := range m.active {
		if e.id == id {
			logger.WithFields(logger.Fields{"id": id, "handle": handle}).Info("Requesting cancellation of active download")
			m.downloader.Cancel(handle)
			return true
		}
	}

	logger.WithField("id", id).Warn("Remove: id not found in pending or active")
	return false
}

// Status returns a snapshot of both sets. Each active entry is merged with
// the pool's live status for its handle; a handle the pool no longer knows
// is reported with the synthetic unknown state.
func (m *Manager) Status() model.QueueStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := model.QueueStatus{
		QueuedCount: len(m.pending),
		ActiveCount: len(m.active),
		Queued:      make([]model.BacklogSnapshot, 0, len(m.pending)),
		Active:      make([]model.ActiveSnapshot, 0, len(m.active)),
	}
	for _, e := range m.pending {
		st.Queued = append(st.Queued, snapshotEntry(e))
	}
	for handle, e := range m.active {
		var live *model.TaskSnapshot
		if snap, ok := m.downloader.Status(handle); ok {
			live = &snap
		}
		st.Active = append(st.Active, model.MergeLive(snapshotEntry(e), handle, live))
	}
	return st
}

// StatusOf looks a request up by queue id across both sets. Active entries
// report both the queue's own state label and the pool's actual state, since
// the two can transiently disagree. Unknown ids yield Found=false.
func (m *Manager) StatusOf(id string) model.EntryDetail {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.pending {
		if e.id == id {
			return model.EntryDetail{
				ID:         id,
				Found:      true,
				QueueState: e.state,
				Detail:     "Pending in queue",
			}
		}
	}

	for handle, e := range m.active {
		if e.id == id {
			detail := model.EntryDetail{
				ID:         id,
				Found:      true,
				Handle:     handle,
				QueueState: e.state,
				PoolState:  model.TaskStateUnknown,
				Detail:     "Active in downloader",
			}
			if snap, ok := m.downloader.Status(handle); ok {
				detail.PoolState = snap.State
				detail.Error = snap.Error
			}
			return detail
		}
	}

	return model.EntryDetail{ID: id, Detail: "Task not found in pending or active"}
}

// Start launches the reconciliation loop. Idempotent if already running.
func (m *Manager) Start() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.running {
		logger.Debug("Queue processing loop already running")
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.running = true
	go m.loop(m.stop, m.done)
	logger.Info("Queue processing started")
}

// Stop signals the loop to exit and waits for it to finish its current
// iteration. If the loop does not exit within the bound, an error reports
// that shutdown was not clean rather than hanging.
func (m *Manager) Stop() error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.running {
		return nil
	}
	close(m.stop)
	m.running = false

	select {
	case <-m.done:
		logger.Info("Queue processing stopped")
		return nil
	case <-time.After(stopTimeout):
		return errors.New("queue processing loop did not stop in time")
	}
}

// loop runs reconciliation on a fixed interval. Iterations never overlap;
// this goroutine is the sole writer of the queued-to-active transition.
func (m *Manager) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.reconcile()
		}
	}
}

// retired pairs a removed entry with the pool's last snapshot of it, nil if
// the pool had already forgotten the handle
type retired struct {
	entry *entry
	last  *model.TaskSnapshot
}

// reconcile performs one cycle: sync active entries against the pool,
// retire terminal or vanished tasks, then promote queued entries while the
// active set is below capacity.
func (m *Manager) reconcile() {
	m.mu.Lock()

	var gone []retired
	for handle, e := range m.active {
		snap, ok := m.downloader.Status(handle)
		if !ok {
			logger.WithFields(logger.Fields{"id": e.id, "handle": handle}).Warn("Could not get status for active handle, assuming it is gone")
			gone = append(gone, retired{entry: e})
			delete(m.active, handle)
			continue
		}
		e.state = model.QueueState(snap.State)
		if snap.State.IsTerminal() {
			s := snap
			gone = append(gone, retired{entry: e, last: &s})
			delete(m.active, handle)
		}
	}

	for len(m.active) < m.capacity && len(m.pending) > 0 {
		e := m.pending[0]
		m.pending = m.pending[1:]

		handle := m.downloader.Submit(e.url, e.path)
		if handle == "" {
			// submission in this design never fails, but keep the re-queue
			// path so an entry is reinserted in priority order, not dropped
			e.state = model.QueueStateQueued
			m.pending = append(m.pending, e)
			m.sortPendingLocked()
			break
		}
		e.handle = handle
		e.state = model.QueueStateActive
		m.active[handle] = e
		logger.WithFields(logger.Fields{"id": e.id, "handle": handle, "active": len(m.active)}).Info("Dispatched to downloader")
	}
	m.metrics.QueuedEntries.Set(float64(len(m.pending)))

	m.mu.Unlock()

	// retirement bookkeeping that touches collaborators happens outside the
	// queue lock
	for _, r := range gone {
		m.retire(r)
	}
}

// retire evicts the task from the pool's table and records the outcome
func (m *Manager) retire(r retired) {
	state := model.TaskStateUnknown
	out := Outcome{
		QueueID:    r.entry.id,
		Handle:     r.entry.handle,
		URL:        r.entry.url,
		Path:       r.entry.path,
		FinishedAt: time.Now(),
	}
	if r.last != nil {
		state = r.last.State
		out.State = r.last.State
		out.Error = r.last.Error
		out.Bytes = r.last.BytesTransferred
		out.TotalBytes = r.last.TotalBytes
		if !r.last.FinishedAt.IsZero() {
			out.FinishedAt = r.last.FinishedAt
		}
	} else {
		out.State = model.TaskStateUnknown
	}

	m.downloader.Remove(r.entry.handle)
	logger.WithFields(logger.Fields{"id": r.entry.id, "handle": r.entry.handle, "state": state}).Info("Retired from active set")

	if m.recorder != nil {
		if err := m.recorder.Record(out); err != nil {
			logger.WithError(err).WithField("id", r.entry.id).Warn("Failed to record outcome")
		}
	}
}

// sortPendingLocked keeps the backlog ordered by (priority asc, submittedAt
// asc). Caller must hold m.mu.
func (m *Manager) sortPendingLocked() {
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].priority != m.pending[j].priority {
			return m.pending[i].priority < m.pending[j].priority
		}
		return m.pending[i].submittedAt.Before(m.pending[j].submittedAt)
	})
}

func snapshotEntry(e *entry) model.BacklogSnapshot {
	return model.BacklogSnapshot{
		ID:          e.id,
		URL:         e.url,
		Path:        e.path,
		Priority:    e.priority,
		SubmittedAt: e.submittedAt,
		State:       e.state,
	}
}
