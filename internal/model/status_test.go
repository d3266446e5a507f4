package model

import "testing"

func TestTaskStateIsTerminal(t *testing.T) {
	terminal := []TaskState{TaskStateCompleted, TaskStateFailed, TaskStateCancelled}
	for _, ts := range terminal {
		if !ts.IsTerminal() {
			t.Errorf("Expected %s to be terminal", ts)
		}
	}

	nonTerminal := []TaskState{TaskStatePending, TaskStateDownloading, TaskStatePaused, TaskStateCancelling, TaskStateUnknown}
	for _, ts := range nonTerminal {
		if ts.IsTerminal() {
			t.Errorf("Expected %s to not be terminal", ts)
		}
	}
}

func TestTaskStateIsPausable(t *testing.T) {
	pausable := []TaskState{TaskStatePending, TaskStateDownloading}
	for _, ts := range pausable {
		if !ts.IsPausable() {
			t.Errorf("Expected %s to be pausable", ts)
		}
	}

	notPausable := []TaskState{TaskStatePaused, TaskStateCancelling, TaskStateCancelled, TaskStateCompleted, TaskStateFailed}
	for _, ts := range notPausable {
		if ts.IsPausable() {
			t.Errorf("Expected %s to not be pausable", ts)
		}
	}
}

func TestTaskStateString(t *testing.T) {
	if TaskStateDownloading.String() != "Downloading" {
		t.Errorf("Expected 'Downloading', got '%s'", TaskStateDownloading.String())
	}
	if TaskStateUnknown.String() != "unknown_at_downloader" {
		t.Errorf("Expected 'unknown_at_downloader', got '%s'", TaskStateUnknown.String())
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		total    int64
		expected float64
	}{
		{"half", 50, 100, 50},
		{"full", 100, 100, 100},
		{"partial", 12, 100, 12},
		{"unknown total", 12, 0, -1},
		{"negative total", 12, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.bytes, tt.total); got != tt.expected {
				t.Errorf("Percent(%d, %d) = %f, expected %f", tt.bytes, tt.total, got, tt.expected)
			}
		})
	}
}
