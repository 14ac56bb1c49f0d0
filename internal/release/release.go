// Package release records project releases and exports them as changelogs.
package release

import (
	"database/sql"
	"errors"
	"fmt"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/storage"
)

// Type is the semver bump kind of a release.
type Type string

const (
	TypeMajor Type = "major"
	TypeMinor Type = "minor"
	TypePatch Type = "patch"
)

// Release is a stored release. Only GitTag, CommitSHA and the export
// stamps change after creation.
type Release struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"project_id"`
	Version     string   `json:"version"`
	Type        Type     `json:"type"`
	Changelog   string   `json:"changelog"`
	FilesBumped []string `json:"files_bumped"`
	GitTag      *string  `json:"git_tag"`
	CommitSHA   *string  `json:"commit_sha"`
	PublishedAt *string  `json:"published_at"`
	FilePath    *string  `json:"file_path"`
	CreatedAt   string   `json:"created_at"`
}

// CreateInput holds a new release. Type defaults to patch.
type CreateInput struct {
	ProjectID   string
	Version     string
	Type        Type
	Changelog   string
	FilesBumped []string
	GitTag      *string
	CommitSHA   *string
}

const selectColumns = `id, project_id, version, type, changelog, files_bumped,
	git_tag, commit_sha, published_at, file_path, created_at`

// Repository reads and writes releases.
type Repository struct {
	handle *storage.Handle
}

// NewRepository creates a release repository over the store handle.
func NewRepository(h *storage.Handle) *Repository {
	return &Repository{handle: h}
}

// Create inserts a release and returns it as stored.
func (r *Repository) Create(in CreateInput) (*Release, error) {
	if in.ProjectID == "" {
		return nil, opserrors.NewInvalidParameterError("project_id", "required")
	}
	if in.Version == "" {
		return nil, opserrors.NewInvalidParameterError("version", "required")
	}
	if in.Type == "" {
		in.Type = TypePatch
	}
	if in.FilesBumped == nil {
		in.FilesBumped = []string{}
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	files, err := storage.EncodeJSON(in.FilesBumped)
	if err != nil {
		return nil, fmt.Errorf("encode files_bumped: %w", err)
	}

	id := storage.NewID()
	_, err = db.Exec(`
		INSERT INTO releases (id, project_id, version, type, changelog, files_bumped,
			git_tag, commit_sha, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, in.ProjectID, in.Version, string(in.Type), in.Changelog, files,
		storage.NullableString(in.GitTag), storage.NullableString(in.CommitSHA), storage.Now())
	if err != nil {
		return nil, fmt.Errorf("insert release: %w", err)
	}

	return r.Get(id)
}

// Get returns the release with id, or nil when there is none.
func (r *Repository) Get(id string) (*Release, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	rel, err := scanRelease(db.QueryRow("SELECT "+selectColumns+" FROM releases WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get release: %w", err)
	}
	return rel, nil
}

// List returns the releases of a project, newest first.
func (r *Repository) List(projectID string) ([]*Release, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT "+selectColumns+
		" FROM releases WHERE project_id = ? ORDER BY created_at DESC, rowid DESC", projectID)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	releases := []*Release{}
	for rows.Next() {
		rel, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		releases = append(releases, rel)
	}
	return releases, rows.Err()
}

// Latest returns the newest release of a project, or nil when it has none.
func (r *Repository) Latest(projectID string) (*Release, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	rel, err := scanRelease(db.QueryRow("SELECT "+selectColumns+
		" FROM releases WHERE project_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1", projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest release: %w", err)
	}
	return rel, nil
}

// Update sets the supplied tag and commit. With neither supplied it returns
// the release unchanged. Returns nil when the release does not exist.
func (r *Repository) Update(id string, gitTag, commitSHA *string) (*Release, error) {
	if gitTag == nil && commitSHA == nil {
		return r.Get(id)
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	a := storage.NewAssignments("git_tag", "commit_sha")
	if gitTag != nil {
		a.Set("git_tag", *gitTag)
	}
	if commitSHA != nil {
		a.Set("commit_sha", *commitSHA)
	}

	ok, err := a.Exec(db, "releases", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return r.Get(id)
}

func scanRelease(row storage.RowScanner) (*Release, error) {
	var (
		rel                                    Release
		typ, files                             string
		gitTag, commitSHA, published, filePath sql.NullString
	)
	err := row.Scan(&rel.ID, &rel.ProjectID, &rel.Version, &typ, &rel.Changelog, &files,
		&gitTag, &commitSHA, &published, &filePath, &rel.CreatedAt)
	if err != nil {
		return nil, err
	}
	rel.Type = Type(typ)
	rel.GitTag = storage.StringPtr(gitTag)
	rel.CommitSHA = storage.StringPtr(commitSHA)
	rel.PublishedAt = storage.StringPtr(published)
	rel.FilePath = storage.StringPtr(filePath)
	rel.FilesBumped = []string{}
	if err := storage.DecodeJSON(files, &rel.FilesBumped); err != nil {
		return nil, fmt.Errorf("decode files_bumped: %w", err)
	}
	return &rel, nil
}
