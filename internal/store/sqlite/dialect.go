package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/loykin/sqlrun/internal/constants"
)

// storedTimeLayout is what CURRENT_TIMESTAMP produces in SQLite.
const storedTimeLayout = "2006-01-02 15:04:05"

// Dialect implements SQL dialect for SQLite
type Dialect struct{}

// NewDialect creates a new SQLite dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// GetPlaceholder returns SQLite-style placeholders (?)
func (s *Dialect) GetPlaceholder(int) string {
	return "?"
}

// ConvertTimeFromStorage parses created_at values. Depending on the declared
// column type the driver hands back either text or time.Time.
func (s *Dialect) ConvertTimeFromStorage(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return parseStoredTime(string(v))
	case string:
		return parseStoredTime(v)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected sqlite time value %T", val)
	}
}

func parseStoredTime(s string) (time.Time, error) {
	for _, layout := range []string{storedTimeLayout, time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised sqlite timestamp %q", s)
}

// Open creates the pool for dsn. The store pins a single connection from it.
func (s *Dialect) Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(constants.DefaultMaxConnections)
	db.SetMaxIdleConns(constants.DefaultMaxIdleConns)
	return db, nil
}

// GetEnsureStatements returns the registry DDL. SQLite schemas are attached
// databases, so a qualified table never creates one.
func (s *Dialect) GetEnsureStatements(_ string, table string) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE, created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP)", table),
	}
}

// IsUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY constraint.
func (s *Dialect) IsUniqueViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE constraint failed")
}

// GetDriverName returns the driver name for logging
func (s *Dialect) GetDriverName() string {
	return constants.DriverSqlite
}
