package progress

// Package progress renders human-readable download progress from the queue
// manager's status snapshots. It is the read-only status consumer; entries
// not yet reconciled or already retired at the pool render without failing.
