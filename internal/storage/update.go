package storage

import (
	"fmt"
	"strings"
)

// Assignments collects a sparse UPDATE restricted to an allow-list of columns.
// Column names never come from callers: Set rejects anything outside the list
// given to NewAssignments, and Exec reports the first rejection.
type Assignments struct {
	allowed map[string]bool
	columns []string
	args    []interface{}
	err     error
}

// NewAssignments creates an empty assignment set over the allowed columns.
func NewAssignments(allowed ...string) *Assignments {
	a := &Assignments{allowed: make(map[string]bool, len(allowed))}
	for _, c := range allowed {
		a.allowed[c] = true
	}
	return a
}

// Set assigns value to column.
func (a *Assignments) Set(column string, value interface{}) *Assignments {
	if !a.allowed[column] {
		if a.err == nil {
			a.err = fmt.Errorf("column %q is not updatable", column)
		}
		return a
	}
	a.columns = append(a.columns, column)
	a.args = append(a.args, value)
	return a
}

// SetJSON assigns the JSON encoding of value to column.
func (a *Assignments) SetJSON(column string, value interface{}) *Assignments {
	encoded, err := EncodeJSON(value)
	if err != nil {
		if a.err == nil {
			a.err = fmt.Errorf("encode %s: %w", column, err)
		}
		return a
	}
	return a.Set(column, encoded)
}

// Len returns the number of assignments.
func (a *Assignments) Len() int {
	return len(a.columns)
}

// Err returns the first rejected assignment, if any.
func (a *Assignments) Err() error {
	return a.err
}

// Exec runs UPDATE table SET ... WHERE id = ? and reports whether a row matched.
func (a *Assignments) Exec(db *DB, table string, id string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	if len(a.columns) == 0 {
		return false, fmt.Errorf("no columns to update")
	}

	sets := make([]string, len(a.columns))
	for i, c := range a.columns {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	args := append(append([]interface{}{}, a.args...), id)

	res, err := db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Filters builds an AND-ed WHERE clause from equality filters. Empty values are skipped.
// Columns are taken from the caller's fixed filter list.
type Filters struct {
	clauses []string
	args    []interface{}
}

// Eq adds column = value when value is non-empty.
func (f *Filters) Eq(column string, value string) *Filters {
	if value == "" {
		return f
	}
	f.clauses = append(f.clauses, column+" = ?")
	f.args = append(f.args, value)
	return f
}

// Where returns " WHERE ..." or "" when no filter applies.
func (f *Filters) Where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// Args returns the bound values in clause order.
func (f *Filters) Args() []interface{} {
	return f.args
}
