package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeFormat is fixed-width so that lexical order matches chronological order.
const TimeFormat = "2006-01-02T15:04:05.000000Z07:00"

var nowFunc = time.Now

// Now returns the current UTC time as an ISO-8601 string.
func Now() string {
	return nowFunc().UTC().Format(TimeFormat)
}

// NewID returns a fresh random record identifier.
func NewID() string {
	return uuid.New().String()
}

// EncodeJSON encodes a JSON column value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeJSON decodes a JSON column into v. An empty column leaves v untouched.
func DecodeJSON(raw string, v interface{}) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}

// IsConstraintViolation reports whether err is a SQLite constraint failure
// (foreign key, CHECK, NOT NULL or UNIQUE).
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "constraint failed")
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// StringPtr converts a nullable column into an optional string.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// NullableString binds an optional string, storing NULL when absent.
func NullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// BoolInt stores a flag as 0/1.
func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
