// Package testutil provides shared helpers for store-backed and golden-file tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"pluginops/internal/slogutil"
	"pluginops/internal/storage"
)

// NewHandle opens a fresh store in a temp directory and closes it when the test ends.
func NewHandle(t *testing.T) *storage.Handle {
	t.Helper()

	h := storage.NewHandle(filepath.Join(t.TempDir(), "ops.db"), storage.HandleOptions{}, slogutil.NewDiscardLogger())
	if _, err := h.DB(); err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

// WriteTree creates files under a temp directory. Keys ending in "/" create
// directories; other keys are written with their value as content.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(path, 0755); err != nil {
				t.Fatalf("failed to create dir %s: %v", name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", name, err)
		}
	}
	return dir
}
