package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pluginops/internal/project"
	"pluginops/internal/slogutil"
	"pluginops/internal/storage"
)

func TestCreateAndRestore(t *testing.T) {
	dataDir := t.TempDir()
	dbPath := filepath.Join(dataDir, "ops.db")
	backupDir := filepath.Join(dataDir, "backups")

	h := storage.NewHandle(dbPath, storage.HandleOptions{}, slogutil.NewDiscardLogger())
	defer h.Close()

	projects := project.NewRepository(h)
	p, err := projects.Create(project.CreateInput{Name: "keep-me"})
	require.NoError(t, err)

	db, err := h.DB()
	require.NoError(t, err)
	snap, err := Create(db, backupDir)
	require.NoError(t, err)
	assert.FileExists(t, snap.Path)
	assert.Positive(t, snap.Size)

	deleted, err := projects.Delete(p.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	h.Close()
	require.NoError(t, Restore(snap.Path, dbPath))

	got, err := projects.Get(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "project should be back after restore")
	assert.Equal(t, "keep-me", got.Name)
}

func TestListAndPrune(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var names []string
	for i := 0; i < 4; i++ {
		name := filePrefix + base.Add(time.Duration(i)*time.Hour).Format(stampFormat) + fileSuffix
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
		names = append(names, name)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0644))

	list, err := List(dir)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, names[3], list[0].Name)
	assert.Equal(t, names[0], list[3].Name)

	removed, err := Prune(dir, 2)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	list, err = List(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, names[3], list[0].Name)
	assert.Equal(t, names[2], list[1].Name)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	removed, err = Prune(dir, 5)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestListMissingDir(t *testing.T) {
	list, err := List(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRestoreMissingSnapshot(t *testing.T) {
	err := Restore(filepath.Join(t.TempDir(), "missing.db.zst"), filepath.Join(t.TempDir(), "ops.db"))
	assert.Error(t, err)
}

func TestParseName(t *testing.T) {
	_, ok := parseName("ops-20250601T120000.000000Z.db.zst")
	assert.True(t, ok)

	for _, bad := range []string{"ops-garbage.db.zst", "other-20250601T120000.000000Z.db.zst", "ops-20250601T120000.000000Z.db"} {
		_, ok := parseName(bad)
		assert.False(t, ok, bad)
	}
}
