package slogutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// DefaultMaxLogSize is the size above which the log file is rotated (5 MiB).
const DefaultMaxLogSize int64 = 5 * 1024 * 1024

// BackupSuffix is appended to the log path when it is rotated.
const BackupSuffix = ".old"

// RotatingFile implements io.WriteCloser with size-based rotation.
// Before each write, a file larger than maxSize is renamed to <path>.old,
// replacing any earlier backup, and a fresh file is started.
// Rotation is best-effort: failures never block the write.
type RotatingFile struct {
	path    string
	maxSize int64
	file    *os.File
	size    int64
	mu      sync.Mutex
}

// OpenRotatingFile opens a file with rotation support.
// If maxSize is 0, rotation is disabled.
func OpenRotatingFile(path string, maxSize int64) (*RotatingFile, error) {
	rf := &RotatingFile{
		path:    path,
		maxSize: maxSize,
	}

	if err := rf.openFile(); err != nil {
		return nil, err
	}

	return rf, nil
}

// openFile opens or creates the log file and gets its current size
func (r *RotatingFile) openFile() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}

	r.file = f
	r.size = info.Size()
	return nil
}

// Write implements io.Writer. It rotates the file if needed before writing.
func (r *RotatingFile) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxSize > 0 && r.size > r.maxSize {
		_ = r.rotate()
	}

	if r.file == nil {
		if err := r.openFile(); err != nil {
			return 0, err
		}
	}

	n, err = r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close implements io.Closer
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// BackupPath returns the path the log is renamed to on rotation.
func (r *RotatingFile) BackupPath() string {
	return r.path + BackupSuffix
}

// rotate performs the rotation: log -> log.old
func (r *RotatingFile) rotate() error {
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}

	// Rename fails if the file vanished underneath us; start fresh either way.
	_ = os.Rename(r.path, r.BackupPath())

	r.size = 0
	return r.openFile()
}

// ParseSize parses a size string like "10MB", "1GB", "500KB" into bytes.
// Supported suffixes: B, KB, MB, GB (case-insensitive)
// Returns 0 for empty or invalid strings.
func ParseSize(s string) int64 {
	if s == "" {
		return 0
	}

	s = strings.TrimSpace(strings.ToUpper(s))

	re := regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(B|KB|MB|GB)?$`)
	matches := re.FindStringSubmatch(s)
	if matches == nil {
		return 0
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0
	}

	var multiplier float64
	switch matches[2] {
	case "", "B":
		multiplier = 1
	case "KB":
		multiplier = 1024
	case "MB":
		multiplier = 1024 * 1024
	case "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0
	}

	return int64(value * multiplier)
}
