package storage

import (
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Filename constraints
const (
	// DefaultFileName is used when no filename can be derived from the URL
	DefaultFileName = "downloaded_file"

	// FallbackFileName is used when sanitization strips the name entirely
	FallbackFileName = "sanitized_download_file"

	// MaxFileNameLength bounds the filename part, conservative across filesystems
	MaxFileNameLength = 200
)

// Optimizer manages destination paths and disk housekeeping for downloads
type Optimizer struct {
	defaultDir string
}

// NewOptimizer creates an optimizer rooted at the given download directory.
// The directory is resolved to an absolute path and created if missing.
func NewOptimizer(defaultDir string) *Optimizer {
	abs, err := filepath.Abs(defaultDir)
	if err != nil {
		abs = defaultDir
	}
	if err := EnsureDir(abs); err != nil {
		logger.WithError(err).WithField("dir", abs).Warn("Could not create default download directory")
	}
	return &Optimizer{defaultDir: abs}
}

// DefaultDir returns the optimizer's download directory
func (o *Optimizer) DefaultDir() string {
	return o.defaultDir
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// SuggestPath returns a safe destination path for a URL inside an
// ensured-to-exist directory. An explicit filename wins over the URL-derived
// one; an empty directory falls back to the optimizer's default.
func (o *Optimizer) SuggestPath(rawURL, filename, directory string) string {
	targetDir := directory
	if targetDir == "" {
		targetDir = o.defaultDir
	}
	if err := EnsureDir(targetDir); err != nil {
		logger.WithError(err).WithField("dir", targetDir).Warn("Could not create target directory, using default")
		targetDir = o.defaultDir
		if err := EnsureDir(targetDir); err != nil {
			logger.WithError(err).WithField("dir", targetDir).Warn("Could not create default directory")
		}
	}

	if filename == "" {
		filename = fileNameFromURL(rawURL)
	}

	return filepath.Join(targetDir, SanitizeFileName(filename))
}

// fileNameFromURL extracts a candidate filename from a URL, dropping any
// query string and taking the last path segment
func fileNameFromURL(rawURL string) string {
	trimmed := rawURL
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	segments := strings.Split(trimmed, "/")
	name := strings.TrimSpace(segments[len(segments)-1])
	if name == "" || strings.HasSuffix(name, ".") {
		return DefaultFileName
	}
	return name
}

// SanitizeFileName reduces a filename to alphanumerics, dot, underscore and
// hyphen, trims leading/trailing separators, and bounds the length while
// preserving the extension. Sanitizing an already-sanitized name is a no-op.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	sanitized := strings.Trim(b.String(), "_.- ")
	if sanitized == "" {
		return FallbackFileName
	}

	if len(sanitized) > MaxFileNameLength {
		ext := filepath.Ext(sanitized)
		base := strings.TrimSuffix(sanitized, ext)
		cut := MaxFileNameLength - len(ext) - 1
		if cut < 1 {
			cut = 1
		}
		if cut < len(base) {
			base = base[:cut]
		}
		sanitized = base + ext
	}

	return sanitized
}

// Delete removes path if it exists and is a regular file, reporting whether
// a deletion occurred
func (o *Optimizer) Delete(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if err := os.Remove(path); err != nil {
		logger.WithError(err).WithField("path", path).Error("Error deleting file")
		return false
	}
	logger.WithField("path", path).Debug("File deleted")
	return true
}

// CleanupIncomplete removes the partial output of a failed or cancelled
// transfer
func (o *Optimizer) CleanupIncomplete(path string) bool {
	logger.WithField("path", path).Debug("Cleaning up incomplete download")
	return o.Delete(path)
}

// FileSize returns the size of a regular file, or 0 if it does not exist
func (o *Optimizer) FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0
	}
	return info.Size()
}

// FreeSpace reports the free bytes on the filesystem holding path. An empty
// path checks the default download directory; a file path checks its parent
// directory. Returns 0 when the path cannot be resolved.
func (o *Optimizer) FreeSpace(path string) uint64 {
	checkPath := path
	if checkPath == "" {
		checkPath = o.defaultDir
	}

	if info, err := os.Stat(checkPath); err == nil && info.Mode().IsRegular() {
		checkPath = filepath.Dir(checkPath)
	} else if err != nil {
		checkPath = filepath.Dir(checkPath)
	}
	if checkPath == "" || checkPath == "." {
		if wd, err := os.Getwd(); err == nil {
			checkPath = wd
		}
	}

	if info, err := os.Stat(checkPath); err != nil || !info.IsDir() {
		logger.WithField("path", checkPath).Error("Path for free space check does not exist or is not a directory")
		return 0
	}

	free, err := freeSpace(checkPath)
	if err != nil {
		logger.WithError(err).WithField("path", checkPath).Error("Error getting free space")
		return 0
	}
	return free
}
