package download

// Package download implements the worker pool at the heart of the scheduler.
// It owns the task table, runs each accepted transfer on its own goroutine,
// and drives the task state machine through cooperative checkpoints: brief
// lock, read or write the flag, release, then perform I/O. The pool never
// bounds concurrency and never evicts its own tasks; both are the queue
// manager's responsibility.
