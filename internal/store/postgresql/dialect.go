package postgresql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loykin/sqlrun/internal/constants"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

// Dialect implements SQL dialect for PostgreSQL
type Dialect struct{}

// NewDialect creates a new PostgreSQL dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// GetPlaceholder returns PostgreSQL-style placeholders ($1, $2, etc.)
func (p *Dialect) GetPlaceholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// ConvertTimeFromStorage converts TIMESTAMPTZ values to UTC time.
func (p *Dialect) ConvertTimeFromStorage(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, nil
		}
		return v.UTC(), nil
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected postgresql time value %T", val)
	}
}

// Open creates the pool for dsn through the pgx stdlib driver.
func (p *Dialect) Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(constants.DefaultMaxConnections)
	db.SetMaxIdleConns(constants.DefaultMaxIdleConns)
	return db, nil
}

// GetEnsureStatements returns the registry DDL, creating schema first when the table is qualified.
func (p *Dialect) GetEnsureStatements(schema string, table string) []string {
	stmts := make([]string, 0, 2)
	if schema != "" {
		stmts = append(stmts, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
	}
	return append(stmts,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL UNIQUE, created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP)", table),
	)
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func (p *Dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// GetDriverName returns the driver name for logging
func (p *Dialect) GetDriverName() string {
	return constants.DriverPostgresql
}
