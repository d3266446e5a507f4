package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.MaxParallel != DefaultMaxParallel {
		t.Errorf("MaxParallel = %d, expected %d", s.MaxParallel, DefaultMaxParallel)
	}
	if s.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, expected %v", s.PollInterval, DefaultPollInterval)
	}
	if s.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, expected %d", s.ChunkSize, DefaultChunkSize)
	}
	if s.DownloadDir == "" {
		t.Error("Expected a non-empty default download directory")
	}
	if s.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, expected %q", s.LogLevel, DefaultLogLevel)
	}
}

func TestLoadNoFile(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.MaxParallel != DefaultMaxParallel {
		t.Errorf("MaxParallel = %d, expected %d", s.MaxParallel, DefaultMaxParallel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("download_dir: /data/dl\nmax_parallel: 4\npoll_interval: 500ms\nchunk_size: 4096\nhistory_path: /data/history.db\nlog_level: debug\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.DownloadDir != "/data/dl" {
		t.Errorf("DownloadDir = %q, expected /data/dl", s.DownloadDir)
	}
	if s.MaxParallel != 4 {
		t.Errorf("MaxParallel = %d, expected 4", s.MaxParallel)
	}
	if s.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, expected 500ms", s.PollInterval)
	}
	if s.ChunkSize != 4096 {
		t.Errorf("ChunkSize = %d, expected 4096", s.ChunkSize)
	}
	if s.HistoryPath != "/data/history.db" {
		t.Errorf("HistoryPath = %q, expected /data/history.db", s.HistoryPath)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, expected debug", s.LogLevel)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("max_parallel: [not a number"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected a parse error for invalid YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDownloadDir, "/env/dl")
	t.Setenv(EnvMaxParallel, "6")
	t.Setenv(EnvPollInterval, "250ms")
	t.Setenv(EnvChunkSize, "1024")
	t.Setenv(EnvHistoryPath, "/env/history.db")
	t.Setenv(EnvLogLevel, "trace")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.DownloadDir != "/env/dl" {
		t.Errorf("DownloadDir = %q, expected /env/dl", s.DownloadDir)
	}
	if s.MaxParallel != 6 {
		t.Errorf("MaxParallel = %d, expected 6", s.MaxParallel)
	}
	if s.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, expected 250ms", s.PollInterval)
	}
	if s.ChunkSize != 1024 {
		t.Errorf("ChunkSize = %d, expected 1024", s.ChunkSize)
	}
	if s.HistoryPath != "/env/history.db" {
		t.Errorf("HistoryPath = %q, expected /env/history.db", s.HistoryPath)
	}
	if s.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, expected trace", s.LogLevel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("max_parallel: 4\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(EnvMaxParallel, "7")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.MaxParallel != 7 {
		t.Errorf("MaxParallel = %d, expected env to win over file, got file value", s.MaxParallel)
	}
}

func TestClamping(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		expected int
	}{
		{"below minimum", "0", MinParallel},
		{"negative", "-3", MinParallel},
		{"above maximum", "99", MaxParallelLimit},
		{"in range", "5", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvMaxParallel, tt.env)
			s, err := Load("")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if s.MaxParallel != tt.expected {
				t.Errorf("MaxParallel = %d, expected %d", s.MaxParallel, tt.expected)
			}
		})
	}
}

func TestClampBadValues(t *testing.T) {
	t.Setenv(EnvPollInterval, "-1s")
	t.Setenv(EnvChunkSize, "-5")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, expected default %v", s.PollInterval, DefaultPollInterval)
	}
	if s.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, expected default %d", s.ChunkSize, DefaultChunkSize)
	}
}
