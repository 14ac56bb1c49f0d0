// Package project tracks registered plugin projects and classifies project
// directories by the files they contain.
package project

import (
	"database/sql"
	"errors"
	"fmt"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/storage"
)

// Type is the shape of a plugin project.
type Type string

const (
	TypeSkillOnly Type = "skill-only"
	TypeMCP       Type = "mcp"
	TypeFull      Type = "full"
)

// Types lists every valid project type.
var Types = []Type{TypeSkillOnly, TypeMCP, TypeFull}

// Valid reports whether t is a known project type.
func (t Type) Valid() bool {
	switch t {
	case TypeSkillOnly, TypeMCP, TypeFull:
		return true
	}
	return false
}

// Project is a registered plugin project.
type Project struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Type        Type                   `json:"type"`
	Path        *string                `json:"path"`
	Version     *string                `json:"version"`
	Description string                 `json:"description"`
	HasSkills   bool                   `json:"has_skills"`
	HasMCP      bool                   `json:"has_mcp"`
	HasHooks    bool                   `json:"has_hooks"`
	HasAgents   bool                   `json:"has_agents"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}

// CreateInput holds the fields accepted when registering a project.
// Type defaults to skill-only and Metadata to an empty object.
type CreateInput struct {
	Name        string
	Type        Type
	Path        *string
	Version     *string
	Description string
	HasSkills   bool
	HasMCP      bool
	HasHooks    bool
	HasAgents   bool
	Metadata    map[string]interface{}
}

// Patch is a sparse project update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Type        *Type
	Path        *string
	Version     *string
	Description *string
	HasSkills   *bool
	HasMCP      *bool
	HasHooks    *bool
	HasAgents   *bool
	Metadata    map[string]interface{}
}

// updatableColumns is the allow-list for Update.
var updatableColumns = []string{
	"name", "type", "path", "version", "description",
	"has_skills", "has_mcp", "has_hooks", "has_agents",
	"metadata", "updated_at",
}

const selectColumns = `id, name, type, path, version, description,
	has_skills, has_mcp, has_hooks, has_agents, metadata, created_at, updated_at`

// Repository reads and writes projects.
type Repository struct {
	handle *storage.Handle
}

// NewRepository creates a project repository over the store handle.
func NewRepository(h *storage.Handle) *Repository {
	return &Repository{handle: h}
}

// Create inserts a project and returns it as stored.
func (r *Repository) Create(in CreateInput) (*Project, error) {
	if in.Name == "" {
		return nil, opserrors.NewInvalidParameterError("name", "required")
	}
	if in.Type == "" {
		in.Type = TypeSkillOnly
	}
	if in.Metadata == nil {
		in.Metadata = map[string]interface{}{}
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	metadata, err := storage.EncodeJSON(in.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	id := storage.NewID()
	now := storage.Now()
	_, err = db.Exec(`
		INSERT INTO projects (id, name, type, path, version, description,
			has_skills, has_mcp, has_hooks, has_agents, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, in.Name, string(in.Type), storage.NullableString(in.Path), storage.NullableString(in.Version),
		in.Description, storage.BoolInt(in.HasSkills), storage.BoolInt(in.HasMCP),
		storage.BoolInt(in.HasHooks), storage.BoolInt(in.HasAgents), metadata, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return r.Get(id)
}

// Get returns the project with id, or nil when there is none.
func (r *Repository) Get(id string) (*Project, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	p, err := scanProject(db.QueryRow("SELECT "+selectColumns+" FROM projects WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns all projects, newest first.
func (r *Repository) List() ([]*Project, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT " + selectColumns + " FROM projects ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update applies patch and bumps updated_at. Returns nil when the project does not exist.
func (r *Repository) Update(id string, patch Patch) (*Project, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, opserrors.NewInvalidParameterError("name", "must not be empty")
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	a := storage.NewAssignments(updatableColumns...)
	if patch.Name != nil {
		a.Set("name", *patch.Name)
	}
	if patch.Type != nil {
		a.Set("type", string(*patch.Type))
	}
	if patch.Path != nil {
		a.Set("path", *patch.Path)
	}
	if patch.Version != nil {
		a.Set("version", *patch.Version)
	}
	if patch.Description != nil {
		a.Set("description", *patch.Description)
	}
	setFlag(a, "has_skills", patch.HasSkills)
	setFlag(a, "has_mcp", patch.HasMCP)
	setFlag(a, "has_hooks", patch.HasHooks)
	setFlag(a, "has_agents", patch.HasAgents)
	if patch.Metadata != nil {
		a.SetJSON("metadata", patch.Metadata)
	}
	a.Set("updated_at", storage.Now())

	ok, err := a.Exec(db, "projects", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return r.Get(id)
}

// Delete removes the project and, by cascade, everything recorded against it.
// Reports whether a row was removed.
func (r *Repository) Delete(id string) (bool, error) {
	db, err := r.handle.DB()
	if err != nil {
		return false, err
	}

	res, err := db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func setFlag(a *storage.Assignments, column string, v *bool) {
	if v != nil {
		a.Set(column, storage.BoolInt(*v))
	}
}

func scanProject(row storage.RowScanner) (*Project, error) {
	var (
		p                                   Project
		typ, metadata                       string
		path, version                       sql.NullString
		hasSkills, hasMCP, hasHooks, hasAgt int
	)
	err := row.Scan(&p.ID, &p.Name, &typ, &path, &version, &p.Description,
		&hasSkills, &hasMCP, &hasHooks, &hasAgt, &metadata, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Type = Type(typ)
	p.Path = storage.StringPtr(path)
	p.Version = storage.StringPtr(version)
	p.HasSkills = hasSkills == 1
	p.HasMCP = hasMCP == 1
	p.HasHooks = hasHooks == 1
	p.HasAgents = hasAgt == 1
	p.Metadata = map[string]interface{}{}
	if err := storage.DecodeJSON(metadata, &p.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &p, nil
}
