package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment override keys
const (
	EnvDownloadDir  = "DLQ_DOWNLOAD_DIR"
	EnvMaxParallel  = "DLQ_MAX_PARALLEL"
	EnvPollInterval = "DLQ_POLL_INTERVAL"
	EnvChunkSize    = "DLQ_CHUNK_SIZE"
	EnvHistoryPath  = "DLQ_HISTORY_PATH"
	EnvLogLevel     = "DLQ_LOG_LEVEL"
)

// Default values
const (
	DefaultMaxParallel  = 2
	MinParallel         = 1
	MaxParallelLimit    = 10
	DefaultPollInterval = time.Second
	DefaultChunkSize    = 8192
	DefaultLogLevel     = "warn"
)

// Settings holds application configuration
type Settings struct {
	DownloadDir  string        `yaml:"download_dir"`
	MaxParallel  int           `yaml:"max_parallel"`
	PollInterval time.Duration `yaml:"poll_interval"`
	ChunkSize    int           `yaml:"chunk_size"`
	HistoryPath  string        `yaml:"history_path"`
	LogLevel     string        `yaml:"log_level"`
}

// Default returns settings with all defaults applied
func Default() Settings {
	return Settings{
		DownloadDir:  defaultDownloadDir(),
		MaxParallel:  DefaultMaxParallel,
		PollInterval: DefaultPollInterval,
		ChunkSize:    DefaultChunkSize,
		LogLevel:     DefaultLogLevel,
	}
}

// defaultDownloadDir returns the user's Downloads directory, or a local
// fallback when the home directory cannot be resolved
func defaultDownloadDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "downloads"
	}
	return filepath.Join(homeDir, "Downloads")
}

// Load builds settings from defaults, an optional YAML file, and environment
// overrides (a .env file is honored when present). Out-of-range values are
// clamped rather than rejected.
func Load(path string) (Settings, error) {
	s := Default()

	// missing .env is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Debug("No .env file loaded")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	s.applyEnv()
	s.clamp()
	return s, nil
}

// applyEnv overlays environment variables onto the settings
func (s *Settings) applyEnv() {
	if v := os.Getenv(EnvDownloadDir); v != "" {
		s.DownloadDir = v
	}
	if v := os.Getenv(EnvMaxParallel); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxParallel = n
		}
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			s.PollInterval = d
		}
	}
	if v := os.Getenv(EnvChunkSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.ChunkSize = n
		}
	}
	if v := os.Getenv(EnvHistoryPath); v != "" {
		s.HistoryPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
}

// clamp keeps settings inside supported ranges
func (s *Settings) clamp() {
	if s.MaxParallel < MinParallel {
		s.MaxParallel = MinParallel
	}
	if s.MaxParallel > MaxParallelLimit {
		s.MaxParallel = MaxParallelLimit
	}
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultPollInterval
	}
	if s.ChunkSize <= 0 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.DownloadDir == "" {
		s.DownloadDir = defaultDownloadDir()
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
}
