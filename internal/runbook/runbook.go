// Package runbook tracks executions of multi-step maintenance procedures.
package runbook

import (
	"database/sql"
	"errors"
	"fmt"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/storage"
)

// Status is the state of an execution.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s ends an execution.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StepEntry is one logged step. Timestamp is assigned when the step is logged.
type StepEntry struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	DurationMs *int64 `json:"duration_ms,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Execution is a tracked runbook run.
type Execution struct {
	ID             string      `json:"id"`
	ProjectID      string      `json:"project_id"`
	RunbookName    string      `json:"runbook_name"`
	Status         Status      `json:"status"`
	StepsCompleted int         `json:"steps_completed"`
	TotalSteps     int         `json:"total_steps"`
	Log            []StepEntry `json:"log"`
	Error          *string     `json:"error"`
	StartedAt      string      `json:"started_at"`
	CompletedAt    *string     `json:"completed_at"`
}

// Filter narrows List. Empty fields impose no constraint.
type Filter struct {
	ProjectID   string
	Status      Status
	RunbookName string
}

const selectColumns = `id, project_id, runbook_name, status, steps_completed, total_steps,
	log, error, started_at, completed_at`

// Repository reads and writes runbook executions.
type Repository struct {
	handle *storage.Handle
}

// NewRepository creates a runbook repository over the store handle.
func NewRepository(h *storage.Handle) *Repository {
	return &Repository{handle: h}
}

// Start records a new running execution with an empty log.
func (r *Repository) Start(projectID, runbookName string, totalSteps int) (*Execution, error) {
	if projectID == "" {
		return nil, opserrors.NewInvalidParameterError("project_id", "required")
	}
	if runbookName == "" {
		return nil, opserrors.NewInvalidParameterError("runbook_name", "required")
	}
	if totalSteps < 0 {
		return nil, opserrors.NewInvalidParameterError("total_steps", "must not be negative")
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	id := storage.NewID()
	_, err = db.Exec(`
		INSERT INTO runbook_executions (id, project_id, runbook_name, status, steps_completed,
			total_steps, log, started_at)
		VALUES (?, ?, ?, 'running', 0, ?, '[]', ?)
	`, id, projectID, runbookName, totalSteps, storage.Now())
	if err != nil {
		return nil, fmt.Errorf("insert runbook execution: %w", err)
	}

	return r.Get(id)
}

// Get returns the execution with id, or nil when there is none.
func (r *Repository) Get(id string) (*Execution, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}
	return getExecution(db.QueryRow("SELECT "+selectColumns+" FROM runbook_executions WHERE id = ?", id))
}

// List returns executions matching every set field of f, most recently started first.
func (r *Repository) List(f Filter) ([]*Execution, error) {
	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	var where storage.Filters
	where.Eq("project_id", f.ProjectID).
		Eq("status", string(f.Status)).
		Eq("runbook_name", f.RunbookName)

	rows, err := db.Query("SELECT "+selectColumns+" FROM runbook_executions"+where.Where()+
		" ORDER BY started_at DESC, rowid DESC", where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list runbook executions: %w", err)
	}
	defer rows.Close()

	execs := []*Execution{}
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan runbook execution: %w", err)
		}
		execs = append(execs, e)
	}
	return execs, rows.Err()
}

// LogStep appends step with a fresh timestamp and increments steps_completed.
// Returns nil when the execution does not exist.
func (r *Repository) LogStep(id string, step StepEntry) (*Execution, error) {
	if step.Name == "" {
		return nil, opserrors.NewInvalidParameterError("step_name", "required")
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	var found bool
	err = db.WithTx(func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRow("SELECT log FROM runbook_executions WHERE id = ?", id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read runbook log: %w", err)
		}
		found = true

		entries := []StepEntry{}
		if err := storage.DecodeJSON(raw, &entries); err != nil {
			return fmt.Errorf("decode runbook log: %w", err)
		}
		step.Timestamp = storage.Now()
		entries = append(entries, step)

		encoded, err := storage.EncodeJSON(entries)
		if err != nil {
			return fmt.Errorf("encode runbook log: %w", err)
		}
		_, err = tx.Exec(`
			UPDATE runbook_executions
			SET steps_completed = steps_completed + 1, log = ?
			WHERE id = ?
		`, encoded, id)
		if err != nil {
			return fmt.Errorf("append runbook step: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return r.Get(id)
}

// Complete sets a terminal status, the completion time and an optional error.
// Returns nil when the execution does not exist.
func (r *Repository) Complete(id string, status Status, errMsg *string) (*Execution, error) {
	if !status.Terminal() {
		return nil, opserrors.NewInvalidParameterError("status", "must be completed or failed")
	}

	db, err := r.handle.DB()
	if err != nil {
		return nil, err
	}

	res, err := db.Exec(`
		UPDATE runbook_executions
		SET status = ?, completed_at = ?, error = ?
		WHERE id = ?
	`, string(status), storage.Now(), storage.NullableString(errMsg), id)
	if err != nil {
		return nil, fmt.Errorf("complete runbook: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return r.Get(id)
}

func getExecution(row *sql.Row) (*Execution, error) {
	e, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get runbook execution: %w", err)
	}
	return e, nil
}

func scanExecution(row storage.RowScanner) (*Execution, error) {
	var (
		e                   Execution
		status, log         string
		errMsg, completedAt sql.NullString
	)
	err := row.Scan(&e.ID, &e.ProjectID, &e.RunbookName, &status, &e.StepsCompleted, &e.TotalSteps,
		&log, &errMsg, &e.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	e.Status = Status(status)
	e.Error = storage.StringPtr(errMsg)
	e.CompletedAt = storage.StringPtr(completedAt)
	e.Log = []StepEntry{}
	if err := storage.DecodeJSON(log, &e.Log); err != nil {
		return nil, fmt.Errorf("decode runbook log: %w", err)
	}
	return &e, nil
}
