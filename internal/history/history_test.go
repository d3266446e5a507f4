package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlget/dlq/internal/model"
	"github.com/dlget/dlq/internal/queue"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func outcome(id, handle string, state model.TaskState) queue.Outcome {
	return queue.Outcome{
		QueueID:    id,
		Handle:     handle,
		URL:        "http://example.com/" + id,
		Path:       "/tmp/" + id + ".bin",
		State:      state,
		Bytes:      100,
		TotalBytes: 100,
		FinishedAt: time.Now(),
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Record(outcome("qm-1", "h-1", model.TaskStateCompleted)))
	require.NoError(t, store.Record(outcome("qm-2", "h-2", model.TaskStateFailed)))
	require.NoError(t, store.Record(outcome("qm-3", "h-3", model.TaskStateCancelled)))

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// newest first
	assert.Equal(t, "qm-3", records[0].QueueID)
	assert.Equal(t, "qm-1", records[2].QueueID)
	assert.Equal(t, model.TaskStateCancelled.String(), records[0].State)
	assert.Equal(t, int64(100), records[0].Bytes)
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(outcome("qm-x", "h-x", model.TaskStateCompleted)))
	}

	records, err := store.Recent(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// non-positive limit falls back to the default
	records, err = store.Recent(0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestCount(t *testing.T) {
	store := openTestStore(t)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, store.Record(outcome("qm-1", "h-1", model.TaskStateCompleted)))
	require.NoError(t, store.Record(outcome("qm-2", "h-2", model.TaskStateFailed)))

	count, err = store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRecordFailureMessage(t *testing.T) {
	store := openTestStore(t)

	out := outcome("qm-1", "h-1", model.TaskStateFailed)
	out.Error = "fetch http://example.com/qm-1: connection refused"
	require.NoError(t, store.Record(out))

	records, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, out.Error, records[0].Error)
}

func TestNewStoreNilConnection(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}
