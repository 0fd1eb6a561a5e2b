package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/loykin/sqlrun/internal/constants"
	"github.com/loykin/sqlrun/internal/store/postgresql"
	"github.com/loykin/sqlrun/internal/store/sqlite"
	"github.com/loykin/sqlrun/internal/util"
)

// Dialect hides the SQL and driver differences between backends.
type Dialect interface {
	GetDriverName() string
	GetPlaceholder(index int) string
	GetEnsureStatements(quotedSchema, quotedTable string) []string
	ConvertTimeFromStorage(val interface{}) (time.Time, error)
	IsUniqueViolation(err error) bool
	Open(dsn string) (*sql.DB, error)
}

// DialectFor maps a configured driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch util.TrimAndLower(driver) {
	case constants.DriverPostgresql, "postgres", "pg", "pgx", "":
		return postgresql.NewDialect(), nil
	case constants.DriverSqlite, "sqlite3":
		return sqlite.NewDialect(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
