package model

// Package model defines domain data structures shared across the app: task
// and queue state enums, immutable task snapshots, and backlog entry views.
// The worker pool and the queue manager keep their mutable records private
// and exchange only these value types.
