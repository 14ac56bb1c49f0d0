package storage

import (
	"database/sql"
	"fmt"
)

// additiveColumn is a column added after the baseline schema shipped.
type additiveColumn struct {
	table  string
	column string
	decl   string
}

// additiveColumns are applied in order; each is added only when missing.
var additiveColumns = []additiveColumn{
	{"health_checks", "published_at", "TEXT"},
	{"health_checks", "file_path", "TEXT"},
	{"releases", "published_at", "TEXT"},
	{"releases", "file_path", "TEXT"},
}

// applyAdditiveColumns adds every missing additive column and returns how many were added.
func applyAdditiveColumns(tx *sql.Tx) (int, error) {
	columnsByTable := make(map[string]map[string]bool)
	added := 0

	for _, ac := range additiveColumns {
		cols, ok := columnsByTable[ac.table]
		if !ok {
			var err error
			cols, err = tableColumns(tx, ac.table)
			if err != nil {
				return added, err
			}
			columnsByTable[ac.table] = cols
		}

		if cols[ac.column] {
			continue
		}

		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", ac.table, ac.column, ac.decl)
		if _, err := tx.Exec(stmt); err != nil {
			return added, fmt.Errorf("failed to add %s.%s: %w", ac.table, ac.column, err)
		}
		cols[ac.column] = true
		added++
	}

	return added, nil
}

// tableColumns returns the live column names of table.
func tableColumns(tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan %s columns: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
