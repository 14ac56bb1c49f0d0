package release

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/testutil"
)

func TestRenderGolden(t *testing.T) {
	releases := []*Release{
		{
			Version:     "1.1.0",
			CreatedAt:   "2025-02-10T08:00:00.000000Z",
			Changelog:   "### Added\n- Export tool",
			FilesBumped: []string{"package.json", ".claude-plugin/plugin.json"},
			GitTag:      strPtr("v1.1.0"),
			CommitSHA:   strPtr("abcdef1234567890"),
		},
		{
			Version:     "1.0.0",
			CreatedAt:   "2025-01-05T12:30:00.000000Z",
			FilesBumped: []string{},
			GitTag:      strPtr("v1.0.0"),
		},
		{
			Version:   "0.9.0",
			CreatedAt: "2024-12-01T00:00:00.000000Z",
			Changelog: "Initial release",
			CommitSHA: strPtr("ignored-without-tag"),
		},
	}

	got := Render("demo-plugin", releases)
	testutil.CompareGolden(t, filepath.Join("testdata", "changelog.golden"), []byte(got))
}

func TestExport(t *testing.T) {
	h, repo, pid := setup(t)
	projectDir := t.TempDir()

	_, err := repo.Create(CreateInput{ProjectID: pid, Version: "1.0.0", Changelog: "first"})
	require.NoError(t, err)
	_, err = repo.Create(CreateInput{ProjectID: pid, Version: "1.1.0", Changelog: "second"})
	require.NoError(t, err)

	exp := NewExporter(h, projectDir, "")
	res, err := exp.Export(pid, "", false)
	require.NoError(t, err)
	assert.Equal(t, "CHANGELOG.md", res.FilePath)
	assert.Equal(t, 2, res.ReleasesExported)
	assert.False(t, res.OutsideProjectDir)

	data, err := os.ReadFile(filepath.Join(projectDir, "CHANGELOG.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "All notable changes to **demo-plugin**")
	assert.Less(t, strings.Index(string(data), "[1.1.0]"), strings.Index(string(data), "[1.0.0]"), "newest release first")

	list, err := repo.List(pid)
	require.NoError(t, err)
	for _, r := range list {
		require.NotNil(t, r.PublishedAt)
		require.NotNil(t, r.FilePath)
		assert.Equal(t, "CHANGELOG.md", *r.FilePath)
	}
	firstStamp := *list[0].PublishedAt

	// A second export without overwrite conflicts on the same path.
	_, err = exp.Export(pid, "", false)
	var exists *FileExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "CHANGELOG.md", exists.Path)
	assert.Equal(t, "File already exists: CHANGELOG.md. Use overwrite=true or provide a different target_path.", err.Error())

	res, err = exp.Export(pid, "", true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ReleasesExported)

	list, err = repo.List(pid)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, *list[0].PublishedAt, firstStamp)
}

func TestExportNestedTarget(t *testing.T) {
	h, repo, pid := setup(t)
	projectDir := t.TempDir()

	_, err := repo.Create(CreateInput{ProjectID: pid, Version: "0.1.0"})
	require.NoError(t, err)

	res, err := NewExporter(h, projectDir, "HISTORY.md").Export(pid, "docs/release/NOTES.md", false)
	require.NoError(t, err)
	assert.Equal(t, "docs/release/NOTES.md", res.FilePath)

	_, err = os.Stat(filepath.Join(projectDir, "docs", "release", "NOTES.md"))
	assert.NoError(t, err)
}

func TestExportOutsideProjectDir(t *testing.T) {
	h, repo, pid := setup(t)
	projectDir := t.TempDir()
	target := filepath.Join(t.TempDir(), "CHANGES.md")

	_, err := repo.Create(CreateInput{ProjectID: pid, Version: "0.1.0"})
	require.NoError(t, err)

	res, err := NewExporter(h, projectDir, "").Export(pid, target, false)
	require.NoError(t, err)
	assert.True(t, res.OutsideProjectDir)
	assert.Equal(t, target, res.FilePath)
}

func TestExportErrors(t *testing.T) {
	h, _, pid := setup(t)
	exp := NewExporter(h, t.TempDir(), "")

	_, err := exp.Export("missing", "", false)
	assert.Equal(t, opserrors.NotFound, opserrors.CodeOf(err))
	assert.EqualError(t, err, "Project not found")

	_, err = exp.Export(pid, "", false)
	assert.Equal(t, opserrors.NotFound, opserrors.CodeOf(err))
	assert.EqualError(t, err, "No releases found for project")
}
