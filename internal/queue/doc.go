package queue

// Package queue implements the admission and scheduling layer above the
// worker pool: an unbounded priority-ordered backlog, a bounded active set,
// and a periodic reconciliation loop that syncs the pool's live task states
// into the backlog view, retires finished tasks, and promotes waiting
// entries up to the configured worker capacity.
