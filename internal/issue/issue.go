// Package issue tracks maintenance issues raised against projects.
package issue

import (
	"database/sql"
	"errors"
	"fmt"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/storage"
)

// Status is the lifecycle state of an issue.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// Priority ranks an issue.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Category classifies an issue.
type Category string

const (
	CategoryBug        Category = "bug"
	CategoryDependency Category = "dependency"
	CategoryQuality    Category = "quality"
	CategoryStructure  Category = "structure"
	CategoryFeature    Category = "feature"
	CategoryTechDebt   Category = "tech-debt"
)

// Source records where an issue came from.
type Source string

const (
	SourceManual     Source = "manual"
	SourceHealthScan Source = "health-scan"
)

// Issue is a stored issue.
type Issue struct {
	ID            string   `json:"id"`
	ProjectID     string   `json:"project_id"`
	HealthCheckID *string  `json:"health_check_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Status        Status   `json:"status"`
	Priority      Priority `json:"priority"`
	Category      Category `json:"category"`
	Source        Source   `json:"source"`
	Resolution    *string  `json:"resolution"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// CreateInput holds a new issue. Priority defaults to medium, Category to
// bug and Source to manual.
type CreateInput struct {
	ProjectID     string
	HealthCheckID *string
	Title         string
	Description   string
	Priority      Priority
	Category      Category
	Source        Source
}

// Patch is a sparse issue update. Nil fields are left unchanged.
type Patch struct {
	HealthCheckID *string
	Title         *string
	Description   *string
	Status        *Status
	Priority      *Priority
	Category      *Category
	Source        *Source
	Resolution    *string
}

// Filter narrows List. Empty fields impose no constraint.
type Filter struct {
	ProjectID string
	Status    Status
	Priority  Priority
	Category  Category
}

// Stats counts issues along each classification.
type Stats struct {
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	ByCategory map[string]int `json:"by_category"`
	Total      int            `json:"total"`
}

var updatableColumns = []string{
	"health_check_id", "title", "description", "status", "priority",
	"category", "source", "resolution", "updated_at",
}

const selectColumns = `id, project_id, health_check_id, title, description, status,
	priority, category, source, resolution, created_at, updated_at`

// Repository reads and writes issues.
type Repository struct {
	handle *storage.Handle
}

// NewRepository creates an issue repository over the store handle.
func NewRepository(h *storage.Handle) *Repository {
	return &Repository{handle: h}
}

// Create inserts an issue and returns it as stored.
func (r *Repository) Create(in CreateInput) (*Issue, error) {
	if in.ProjectID == "" {
		return nil, opserrors.NewInvalidParameterError("project_id", "required")
	}
	if in.Title == "" {
		return nil, opserrors.NewInvalidParameterError("title", "required")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Category == "" {
		in.Category = CategoryBug
	}
	if in.Source == "" {
		in.Source = SourceManual
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	id := storage.NewID()
	now := storage.Now()
	_, err = db.Exec(`
		INSERT INTO issues (id, project_id, health_check_id, title, description,
			priority, category, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, in.ProjectID, storage.NullableString(in.HealthCheckID), in.Title, in.Description,
		string(in.Priority), string(in.Category), string(in.Source), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}

	return r.Get(id)
}

// Get returns the issue with id, or nil when there is none.
func (r *Repository) Get(id string) (*Issue, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	i, err := scanIssue(db.QueryRow("SELECT "+selectColumns+" FROM issues WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	return i, nil
}

// List returns the issues matching every set field of f, newest first.
func (r *Repository) List(f Filter) ([]*Issue, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	var where storage.Filters
	where.Eq("project_id", f.ProjectID).
		Eq("status", string(f.Status)).
		Eq("priority", string(f.Priority)).
		Eq("category", string(f.Category))

	rows, err := db.Query("SELECT "+selectColumns+" FROM issues"+where.Where()+
		" ORDER BY created_at DESC, rowid DESC", where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	issues := []*Issue{}
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

// Update applies patch and bumps updated_at. Returns nil when the issue does not exist.
func (r *Repository) Update(id string, patch Patch) (*Issue, error) {
	if patch.Title != nil && *patch.Title == "" {
		return nil, opserrors.NewInvalidParameterError("title", "must not be empty")
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	a := storage.NewAssignments(updatableColumns...)
	if patch.HealthCheckID != nil {
		a.Set("health_check_id", *patch.HealthCheckID)
	}
	if patch.Title != nil {
		a.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		a.Set("description", *patch.Description)
	}
	if patch.Status != nil {
		a.Set("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		a.Set("priority", string(*patch.Priority))
	}
	if patch.Category != nil {
		a.Set("category", string(*patch.Category))
	}
	if patch.Source != nil {
		a.Set("source", string(*patch.Source))
	}
	if patch.Resolution != nil {
		a.Set("resolution", *patch.Resolution)
	}
	a.Set("updated_at", storage.Now())

	ok, err := a.Exec(db, "issues", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return r.Get(id)
}

// Close marks the issue closed with the given resolution.
func (r *Repository) Close(id string, resolution string) (*Issue, error) {
	closed := StatusClosed
	return r.Update(id, Patch{Status: &closed, Resolution: &resolution})
}

// Delete removes the issue and reports whether a row was removed.
func (r *Repository) Delete(id string) (bool, error) {
	db, err := r.handle.DB()
	if err != nil {
		return false, err
	}

	res, err := db.Exec("DELETE FROM issues WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete issue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats counts issues by status, priority and category in one pass.
// An empty projectID counts every issue.
func (r *Repository) Stats(projectID string) (*Stats, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	var where storage.Filters
	where.Eq("project_id", projectID)

	rows, err := db.Query("SELECT status, priority, category FROM issues"+where.Where(), where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("issue stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
		ByCategory: map[string]int{},
	}
	for rows.Next() {
		var status, priority, category string
		if err := rows.Scan(&status, &priority, &category); err != nil {
			return nil, fmt.Errorf("scan issue stats: %w", err)
		}
		stats.ByStatus[status]++
		stats.ByPriority[priority]++
		stats.ByCategory[category]++
		stats.Total++
	}
	return stats, rows.Err()
}

func scanIssue(row storage.RowScanner) (*Issue, error) {
	var (
		i                                  Issue
		status, priority, category, source string
		healthCheckID, resolution          sql.NullString
	)
	err := row.Scan(&i.ID, &i.ProjectID, &healthCheckID, &i.Title, &i.Description,
		&status, &priority, &category, &source, &resolution, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.HealthCheckID = storage.StringPtr(healthCheckID)
	i.Resolution = storage.StringPtr(resolution)
	i.Status = Status(status)
	i.Priority = Priority(priority)
	i.Category = Category(category)
	i.Source = Source(source)
	return &i, nil
}
