package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dlget/dlq/internal/model"
)

// barLength is the width of the rendered progress bar
const barLength = 30

// StatusProvider is the read-only view the tracker polls
type StatusProvider interface {
	Status() model.QueueStatus
}

// Tracker renders human-readable progress for the queue manager's snapshot.
// It is strictly a consumer: it never mutates scheduling state.
type Tracker struct {
	provider StatusProvider
	out      io.Writer
}

// NewTracker creates a tracker writing to out
func NewTracker(provider StatusProvider, out io.Writer) *Tracker {
	return &Tracker{provider: provider, out: out}
}

// HumanSize formats a byte count as B/KB/MB/GB/TB
func HumanSize(size int64) string {
	if size == 0 {
		return "0B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	num := float64(size)
	i := 0
	for num >= 1024 && i < len(units)-1 {
		num /= 1024
		i++
	}
	return fmt.Sprintf("%.2f%s", num, units[i])
}

// Render writes one status report
func (t *Tracker) Render() {
	st := t.provider.Status()

	fmt.Fprintln(t.out, "--- Download Progress ---")

	fmt.Fprintln(t.out, "\n== Pending Tasks ==")
	if len(st.Queued) == 0 {
		fmt.Fprintln(t.out, "  No tasks in queue.")
	}
	for _, e := range st.Queued {
		fmt.Fprintf(t.out, "  ID: %s | URL: %s | Status: %s | Priority: %d\n", e.ID, e.URL, e.State, e.Priority)
	}

	fmt.Fprintln(t.out, "\n== Active Downloads ==")
	if len(st.Active) == 0 {
		fmt.Fprintln(t.out, "  No active downloads.")
	}
	for _, a := range st.Active {
		t.renderActive(a)
	}

	fmt.Fprintln(t.out, "\n--- End of Report ---")
}

// renderActive writes one active entry, tolerating a missing live status and
// the synthetic unknown state for handles the pool has already retired
func (t *Tracker) renderActive(a model.ActiveSnapshot) {
	if a.Live == nil {
		fmt.Fprintf(t.out, "  ID: %s | Handle: %s | URL: %s | Status: %s\n", a.ID, a.Handle, a.URL, a.State)
		return
	}

	live := a.Live
	fmt.Fprintf(t.out, "  ID: %s | Handle: %s | %s\n", a.ID, a.Handle, strings.ToUpper(live.State.String()))
	fmt.Fprintf(t.out, "     URL: %s\n", a.URL)

	if live.State != model.TaskStateUnknown {
		percent := live.Progress
		filled := int(barLength * percent / 100)
		if filled < 0 {
			filled = 0
		}
		if filled > barLength {
			filled = barLength
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("-", barLength-filled)
		fmt.Fprintf(t.out, "     %s %.2f%%\n", bar, percent)
		fmt.Fprintf(t.out, "     %s / %s\n", HumanSize(live.BytesTransferred), HumanSize(live.TotalBytes))
	}

	if live.Error != "" {
		fmt.Fprintf(t.out, "     Error: %s\n", live.Error)
	}
}

// Live re-renders the report on a fixed interval until the context is done
func (t *Tracker) Live(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Render()
		}
	}
}
