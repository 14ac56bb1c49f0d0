// Package health records health-check snapshots taken against projects.
package health

import (
	"database/sql"
	"errors"
	"fmt"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/storage"
)

// Status is the overall verdict of a health check.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusWarning, StatusFail:
		return true
	}
	return false
}

// CheckResult is one line item of a health check.
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Check is a stored health-check snapshot. Only the export stamp fields
// change after creation.
type Check struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"project_id"`
	Status      Status        `json:"status"`
	Score       int           `json:"score"`
	Checks      []CheckResult `json:"checks"`
	Summary     string        `json:"summary"`
	PublishedAt *string       `json:"published_at"`
	FilePath    *string       `json:"file_path"`
	CreatedAt   string        `json:"created_at"`
}

// Failing returns the line items whose status is not pass.
func (c *Check) Failing() []CheckResult {
	var out []CheckResult
	for _, r := range c.Checks {
		if r.Status != string(StatusPass) {
			out = append(out, r)
		}
	}
	return out
}

// ProjectCheck is the latest check of a project joined with its name.
type ProjectCheck struct {
	Check
	ProjectName string `json:"project_name"`
}

// CreateInput holds a new snapshot. Status defaults to pass and Score to 100
// when Score is nil.
type CreateInput struct {
	ProjectID string
	Status    Status
	Score     *int
	Checks    []CheckResult
	Summary   string
}

const selectColumns = `id, project_id, status, score, checks, summary, published_at, file_path, created_at`

// Repository reads and writes health checks.
type Repository struct {
	handle *storage.Handle
}

// NewRepository creates a health-check repository over the store handle.
func NewRepository(h *storage.Handle) *Repository {
	return &Repository{handle: h}
}

// Create stores a snapshot and returns it as stored.
func (r *Repository) Create(in CreateInput) (*Check, error) {
	if in.ProjectID == "" {
		return nil, opserrors.NewInvalidParameterError("project_id", "required")
	}
	if in.Status == "" {
		in.Status = StatusPass
	}
	score := 100
	if in.Score != nil {
		score = *in.Score
	}
	if in.Checks == nil {
		in.Checks = []CheckResult{}
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	checks, err := storage.EncodeJSON(in.Checks)
	if err != nil {
		return nil, fmt.Errorf("encode checks: %w", err)
	}

	id := storage.NewID()
	_, err = db.Exec(`
		INSERT INTO health_checks (id, project_id, status, score, checks, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, in.ProjectID, string(in.Status), score, checks, in.Summary, storage.Now())
	if err != nil {
		return nil, fmt.Errorf("insert health check: %w", err)
	}

	return r.Get(id)
}

// Get returns the check with id, or nil when there is none.
func (r *Repository) Get(id string) (*Check, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	c, err := scanCheck(db.QueryRow("SELECT "+selectColumns+" FROM health_checks WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get health check: %w", err)
	}
	return c, nil
}

// List returns the checks of a project, newest first.
func (r *Repository) List(projectID string) ([]*Check, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT "+selectColumns+
		" FROM health_checks WHERE project_id = ? ORDER BY created_at DESC, rowid DESC", projectID)
	if err != nil {
		return nil, fmt.Errorf("list health checks: %w", err)
	}
	defer rows.Close()

	checks := []*Check{}
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan health check: %w", err)
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// Latest returns the newest check of a project, or nil when it has none.
func (r *Repository) Latest(projectID string) (*Check, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	c, err := scanCheck(db.QueryRow("SELECT "+selectColumns+
		" FROM health_checks WHERE project_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1", projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest health check: %w", err)
	}
	return c, nil
}

// LatestPerProject returns, for every project with at least one check, its
// newest check merged with the project name. Ordered by project name.
func (r *Repository) LatestPerProject() ([]*ProjectCheck, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT h.id, h.project_id, h.status, h.score, h.checks, h.summary,
			h.published_at, h.file_path, h.created_at, p.name
		FROM projects p
		JOIN health_checks h ON h.id = (
			SELECT id FROM health_checks
			WHERE project_id = p.id
			ORDER BY created_at DESC, rowid DESC
			LIMIT 1
		)
		ORDER BY p.name, p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("latest health checks: %w", err)
	}
	defer rows.Close()

	out := []*ProjectCheck{}
	for rows.Next() {
		var pc ProjectCheck
		var checks string
		var published, filePath sql.NullString
		var status string
		err := rows.Scan(&pc.ID, &pc.ProjectID, &status, &pc.Score, &checks, &pc.Summary,
			&published, &filePath, &pc.CreatedAt, &pc.ProjectName)
		if err != nil {
			return nil, fmt.Errorf("scan health check: %w", err)
		}
		if err := fillCheck(&pc.Check, status, checks, published, filePath); err != nil {
			return nil, err
		}
		out = append(out, &pc)
	}
	return out, rows.Err()
}

func scanCheck(row storage.RowScanner) (*Check, error) {
	var (
		c                   Check
		status, checks      string
		published, filePath sql.NullString
	)
	err := row.Scan(&c.ID, &c.ProjectID, &status, &c.Score, &checks, &c.Summary,
		&published, &filePath, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := fillCheck(&c, status, checks, published, filePath); err != nil {
		return nil, err
	}
	return &c, nil
}

func fillCheck(c *Check, status, checks string, published, filePath sql.NullString) error {
	c.Status = Status(status)
	c.PublishedAt = storage.StringPtr(published)
	c.FilePath = storage.StringPtr(filePath)
	c.Checks = []CheckResult{}
	if err := storage.DecodeJSON(checks, &c.Checks); err != nil {
		return fmt.Errorf("decode checks: %w", err)
	}
	return nil
}
