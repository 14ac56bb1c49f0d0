package release

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/paths"
	"pluginops/internal/project"
	"pluginops/internal/storage"
)

// DefaultChangelogFile is the export target when none is given.
const DefaultChangelogFile = "CHANGELOG.md"

// FileExistsError is returned when an export would replace an existing file.
type FileExistsError struct {
	Path string
}

func (e *FileExistsError) Error() string {
	return fmt.Sprintf("File already exists: %s. Use overwrite=true or provide a different target_path.", e.Path)
}

// ExportResult describes a written changelog. FilePath is relative to the
// project directory unless OutsideProjectDir is set.
type ExportResult struct {
	FilePath          string `json:"file_path"`
	ReleasesExported  int    `json:"releases_exported"`
	OutsideProjectDir bool   `json:"outside_project_dir,omitempty"`
}

// Exporter renders a project's releases to a changelog file under a project directory.
type Exporter struct {
	handle      *storage.Handle
	projects    *project.Repository
	releases    *Repository
	projectDir  string
	defaultFile string
}

// NewExporter creates an exporter writing relative targets under projectDir.
func NewExporter(h *storage.Handle, projectDir string, defaultFile string) *Exporter {
	if defaultFile == "" {
		defaultFile = DefaultChangelogFile
	}
	return &Exporter{
		handle:      h,
		projects:    project.NewRepository(h),
		releases:    NewRepository(h),
		projectDir:  projectDir,
		defaultFile: defaultFile,
	}
}

// Export writes the changelog for projectID to target (the default file when
// empty) and stamps every exported release with the export time and path.
func (e *Exporter) Export(projectID string, target string, overwrite bool) (*ExportResult, error) {
	p, err := e.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, opserrors.NewResourceNotFoundError("project", projectID)
	}

	releases, err := e.releases.List(projectID)
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, opserrors.NewOpsError(opserrors.NotFound, "No releases found for project", nil, nil).
			WithDetails(map[string]string{"project_id": projectID})
	}

	if target == "" {
		target = e.defaultFile
	}
	absPath := paths.ResolveProjectPath(e.projectDir, target)

	if _, err := os.Stat(absPath); err == nil && !overwrite {
		return nil, &FileExistsError{Path: target}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("create changelog directory: %w", err)
	}
	if err := os.WriteFile(absPath, []byte(Render(p.Name, releases)), 0644); err != nil {
		return nil, fmt.Errorf("write changelog: %w", err)
	}

	result := &ExportResult{ReleasesExported: len(releases)}
	if paths.IsWithinDir(absPath, e.projectDir) {
		rel, err := paths.CanonicalizePath(absPath, e.projectDir)
		if err != nil {
			return nil, err
		}
		result.FilePath = rel
	} else {
		result.FilePath = absPath
		result.OutsideProjectDir = true
	}

	if err := e.stamp(releases, result.FilePath); err != nil {
		return nil, err
	}
	return result, nil
}

// stamp marks every release as published to filePath in one transaction.
func (e *Exporter) stamp(releases []*Release, filePath string) error {
	db, err := e.handle.DB()
	if err != nil {
		return err
	}

	now := storage.Now()
	return db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("UPDATE releases SET published_at = ?, file_path = ? WHERE id = ?")
		if err != nil {
			return fmt.Errorf("prepare stamp: %w", err)
		}
		defer stmt.Close()

		for _, r := range releases {
			if _, err := stmt.Exec(now, filePath, r.ID); err != nil {
				return fmt.Errorf("stamp release %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

// Render produces the changelog document for releases, which are expected newest first.
func Render(projectName string, releases []*Release) string {
	var b strings.Builder
	b.WriteString("# Changelog\n\nAll notable changes to **")
	b.WriteString(projectName)
	b.WriteString("** will be documented in this file.\n\n")

	for i, r := range releases {
		if i > 0 {
			b.WriteString("---\n\n")
		}
		b.WriteString(renderEntry(r))
	}
	return b.String()
}

func renderEntry(r *Release) string {
	lines := []string{
		fmt.Sprintf("## [%s] - %s", r.Version, datePart(r.CreatedAt)),
		"",
	}

	if r.Changelog != "" {
		lines = append(lines, r.Changelog, "")
	}

	if len(r.FilesBumped) > 0 {
		lines = append(lines, "**Files bumped:**", "")
		for _, f := range r.FilesBumped {
			lines = append(lines, "- "+f)
		}
		lines = append(lines, "")
	}

	if r.GitTag != nil && *r.GitTag != "" {
		lines = append(lines, "**Tag:** "+*r.GitTag)
		if r.CommitSHA != nil && *r.CommitSHA != "" {
			lines = append(lines, "**Commit:** "+shortSHA(*r.CommitSHA))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func datePart(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	return ts
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
