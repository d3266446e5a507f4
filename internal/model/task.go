package model

import (
	"strings"
	"time"
)

// TaskSnapshot is an immutable copy of a pool task's fields, taken atomically
// with respect to all task-field writes. Callers never hold a reference into
// the pool's mutable task table.
type TaskSnapshot struct {
	Handle           string
	URL              string
	Path             string
	State            TaskState
	BytesTransferred int64
	TotalBytes       int64 // 0 means unknown total
	Progress         float64
	Error            string // set only when State is Failed
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Percent computes a progress percentage from transferred and total bytes.
// Returns -1 when the total is unknown.
func Percent(bytes, total int64) float64 {
	if total <= 0 {
		return -1
	}
	return float64(bytes) / float64(total) * 100
}

// DisplayName returns the destination filename, or the URL if no path is set
func (ts *TaskSnapshot) DisplayName() string {
	if ts.Path != "" {
		parts := strings.FieldsFunc(ts.Path, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}
	return ts.URL
}
