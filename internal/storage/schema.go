package storage

import (
	"database/sql"
	"fmt"
)

// nowDefault is the column default for timestamps written outside the repositories.
const nowDefault = "(strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))"

// ensureSchema creates the baseline tables and applies additive migrations.
// Safe to run on every open.
func (db *DB) ensureSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		creators := []func(*sql.Tx) error{
			createProjectsTable,
			createHealthChecksTable,
			createIssuesTable,
			createReleasesTable,
			createRunbookExecutionsTable,
		}
		for _, create := range creators {
			if err := create(tx); err != nil {
				return err
			}
		}

		added, err := applyAdditiveColumns(tx)
		if err != nil {
			return err
		}
		if added > 0 {
			db.logger.Info("Database schema upgraded", "columns_added", added)
		}
		return nil
	})
}

// createIndexes runs each CREATE INDEX IF NOT EXISTS statement.
func createIndexes(tx *sql.Tx, indexes []string) error {
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// createProjectsTable creates the projects table
func createProjectsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'skill-only' CHECK(type IN ('skill-only', 'mcp', 'full')),
			path TEXT,
			version TEXT,
			description TEXT NOT NULL DEFAULT '',
			has_skills INTEGER NOT NULL DEFAULT 0 CHECK(has_skills IN (0, 1)),
			has_mcp INTEGER NOT NULL DEFAULT 0 CHECK(has_mcp IN (0, 1)),
			has_hooks INTEGER NOT NULL DEFAULT 0 CHECK(has_hooks IN (0, 1)),
			has_agents INTEGER NOT NULL DEFAULT 0 CHECK(has_agents IN (0, 1)),
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT ` + nowDefault + `,
			updated_at TEXT NOT NULL DEFAULT ` + nowDefault + `
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}
	return nil
}

// createHealthChecksTable creates the health_checks table.
// published_at and file_path arrive through applyAdditiveColumns.
func createHealthChecksTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS health_checks (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'pass' CHECK(status IN ('pass', 'warning', 'fail')),
			score INTEGER NOT NULL DEFAULT 100 CHECK(score BETWEEN 0 AND 100),
			checks TEXT NOT NULL DEFAULT '[]',
			summary TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT ` + nowDefault + `
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create health_checks table: %w", err)
	}

	return createIndexes(tx, []string{
		"CREATE INDEX IF NOT EXISTS idx_health_checks_project ON health_checks(project_id)",
	})
}

// createIssuesTable creates the issues table
func createIssuesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS issues (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			health_check_id TEXT REFERENCES health_checks(id) ON DELETE SET NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'in_progress', 'closed')),
			priority TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('critical', 'high', 'medium', 'low')),
			category TEXT NOT NULL DEFAULT 'bug' CHECK(category IN ('bug', 'dependency', 'quality', 'structure', 'feature', 'tech-debt')),
			source TEXT NOT NULL DEFAULT 'manual' CHECK(source IN ('manual', 'health-scan')),
			resolution TEXT,
			created_at TEXT NOT NULL DEFAULT ` + nowDefault + `,
			updated_at TEXT NOT NULL DEFAULT ` + nowDefault + `
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create issues table: %w", err)
	}

	return createIndexes(tx, []string{
		"CREATE INDEX IF NOT EXISTS idx_issues_project ON issues(project_id)",
		"CREATE INDEX IF NOT EXISTS idx_issues_health_check ON issues(health_check_id)",
	})
}

// createReleasesTable creates the releases table.
// published_at and file_path arrive through applyAdditiveColumns.
func createReleasesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS releases (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			version TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'patch' CHECK(type IN ('major', 'minor', 'patch')),
			changelog TEXT NOT NULL DEFAULT '',
			files_bumped TEXT NOT NULL DEFAULT '[]',
			git_tag TEXT,
			commit_sha TEXT,
			created_at TEXT NOT NULL DEFAULT ` + nowDefault + `
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create releases table: %w", err)
	}

	return createIndexes(tx, []string{
		"CREATE INDEX IF NOT EXISTS idx_releases_project ON releases(project_id)",
	})
}

// createRunbookExecutionsTable creates the runbook_executions table
func createRunbookExecutionsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runbook_executions (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			runbook_name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'running' CHECK(status IN ('running', 'completed', 'failed')),
			steps_completed INTEGER NOT NULL DEFAULT 0,
			total_steps INTEGER NOT NULL DEFAULT 0,
			log TEXT NOT NULL DEFAULT '[]',
			error TEXT,
			started_at TEXT NOT NULL DEFAULT ` + nowDefault + `,
			completed_at TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runbook_executions table: %w", err)
	}

	return createIndexes(tx, []string{
		"CREATE INDEX IF NOT EXISTS idx_runbook_executions_project ON runbook_executions(project_id)",
	})
}
