package model

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		snapshot TaskSnapshot
		expected string
	}{
		{
			name:     "filename from path",
			snapshot: TaskSnapshot{Path: "/tmp/downloads/report.pdf", URL: "http://example.com/report.pdf"},
			expected: "report.pdf",
		},
		{
			name:     "windows separators",
			snapshot: TaskSnapshot{Path: `C:\downloads\video.mp4`},
			expected: "video.mp4",
		},
		{
			name:     "url fallback",
			snapshot: TaskSnapshot{URL: "http://example.com/file.bin"},
			expected: "http://example.com/file.bin",
		},
		{
			name:     "empty",
			snapshot: TaskSnapshot{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestMergeLive(t *testing.T) {
	entry := BacklogSnapshot{ID: "qm-1", URL: "http://x/a", Path: "/tmp/a.bin", State: QueueStateActive}

	live := &TaskSnapshot{Handle: "h-1", State: TaskStateDownloading, BytesTransferred: 10}
	merged := MergeLive(entry, "h-1", live)
	if merged.Live.State != TaskStateDownloading {
		t.Errorf("Expected live state Downloading, got %s", merged.Live.State)
	}
	if merged.Handle != "h-1" {
		t.Errorf("Expected handle h-1, got %s", merged.Handle)
	}

	// pool already retired the handle: synthetic unknown, never a failure
	merged = MergeLive(entry, "h-1", nil)
	if merged.Live == nil {
		t.Fatal("Expected synthetic live snapshot, got nil")
	}
	if merged.Live.State != TaskStateUnknown {
		t.Errorf("Expected synthetic unknown state, got %s", merged.Live.State)
	}
	if merged.Live.URL != entry.URL {
		t.Errorf("Expected synthetic snapshot to carry the entry URL, got %q", merged.Live.URL)
	}
}
