// Package backup writes and restores compressed snapshots of the ops store.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"pluginops/internal/storage"
)

const (
	filePrefix  = "ops-"
	fileSuffix  = ".db.zst"
	stampFormat = "20060102T150405.000000Z"
)

var now = time.Now

// Snapshot is a compressed store copy on disk.
type Snapshot struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

// Create copies the live store with VACUUM INTO and writes it to dir as a
// zstd-compressed ops-<stamp>.db.zst file.
func Create(db *storage.DB, dir string) (*Snapshot, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	created := now().UTC()
	name := filePrefix + created.Format(stampFormat) + fileSuffix
	dest := filepath.Join(dir, name)

	raw := filepath.Join(dir, "."+strings.TrimSuffix(name, ".zst"))
	_ = os.Remove(raw)
	defer func() { _ = os.Remove(raw) }()

	if _, err := db.Exec("VACUUM INTO ?", raw); err != nil {
		return nil, fmt.Errorf("copy store: %w", err)
	}

	if err := compressFile(raw, dest); err != nil {
		return nil, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Name: name, Path: dest, CreatedAt: created, Size: info.Size()}, nil
}

// List returns the snapshots in dir, newest first. A missing dir has none.
func List(dir string) ([]Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	snapshots := []Snapshot{}
	for _, entry := range entries {
		created, ok := parseName(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			CreatedAt: created,
			Size:      info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Prune keeps the newest keep snapshots in dir and deletes the rest.
// Returns the paths removed.
func Prune(dir string, keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}
	snapshots, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(snapshots) <= keep {
		return nil, nil
	}

	var removed []string
	for _, s := range snapshots[keep:] {
		if err := os.Remove(s.Path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", s.Name, err)
		}
		removed = append(removed, s.Path)
	}
	return removed, nil
}

// Restore replaces the store file at dbPath with the snapshot at src.
// The store must be closed; its WAL and shared-memory files are discarded.
func Restore(src, dbPath string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	staged := dbPath + ".restore"
	if err := decompressFile(src, staged); err != nil {
		_ = os.Remove(staged)
		return err
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			_ = os.Remove(staged)
			return fmt.Errorf("remove %s: %w", filepath.Base(dbPath+suffix), err)
		}
	}

	if err := os.Rename(staged, dbPath); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	t, err := time.Parse(stampFormat, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func compressFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open store copy: %w", err)
	}
	defer in.Close()

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("zstd writer: %w", err)
	}

	_, copyErr := io.Copy(enc, in)
	closeErr := enc.Close()
	fileErr := out.Close()
	for _, err := range []error{copyErr, closeErr, fileErr} {
		if err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize snapshot: %w", err)
	}
	return nil
}

func decompressFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create restored store: %w", err)
	}
	if _, err := io.Copy(out, dec); err != nil {
		_ = out.Close()
		return fmt.Errorf("decompress snapshot: %w", err)
	}
	return out.Close()
}
