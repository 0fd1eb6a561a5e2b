package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loykin/sqlrun/internal/common"
	"github.com/loykin/sqlrun/internal/constants"
	"github.com/loykin/sqlrun/internal/retry"
	"github.com/loykin/sqlrun/internal/util"
)

// Querier is the part of *sql.Conn and *sql.Tx the registry writes through.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Record is one row of the registry table.
type Record struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Store owns the database pool and the single connection every statement of
// an invocation runs on.
type Store struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect Dialect
	table   TableName
	logger  *common.Logger
}

// Open connects according to cfg, optionally waiting for the database to come
// up, and pins one connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	table, err := ParseTableName(util.TrimWithDefault(cfg.Table, constants.DefaultRegistryTable))
	if err != nil {
		return nil, err
	}
	// SQLite only knows attached databases, and a fresh connection has just "main".
	if dialect.GetDriverName() == constants.DriverSqlite && table.Schema != "" && !strings.EqualFold(table.Schema, "main") {
		return nil, fmt.Errorf("%w: %q: sqlite registry table cannot be schema qualified", ErrInvalidTableName, table.String())
	}

	var dsn string
	if cfg.DriverConfig != nil {
		dsn = cfg.DriverConfig.ConnString()
	}
	db, err := dialect.Open(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.Wait.Timeout > 0 {
		logger := common.GetLogger().WithStore(dialect.GetDriverName())
		logger.Info("waiting for database", "timeout", cfg.Wait.Timeout)
		if err := retry.Wait(ctx, cfg.Wait.Timeout, cfg.Wait.Interval, db.PingContext); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database not reachable: %w", err)
		}
	}

	st, err := New(ctx, db, dialect, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

// New pins a connection from db. The returned Store closes db on Close.
func New(ctx context.Context, db *sql.DB, dialect Dialect, table TableName) (*Store, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s connection: %w", dialect.GetDriverName(), err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect.GetDriverName(), err)
	}

	logger := common.GetLogger().WithStore(dialect.GetDriverName())
	logger.Debug("database connection established", "table", table.String())

	return &Store{
		db:      db,
		conn:    conn,
		dialect: dialect,
		table:   table,
		logger:  logger,
	}, nil
}

// Session returns the pinned connection.
func (s *Store) Session() *sql.Conn {
	return s.conn
}

// Driver returns the dialect name.
func (s *Store) Driver() string {
	return s.dialect.GetDriverName()
}

// Table returns the registry table name.
func (s *Store) Table() TableName {
	return s.table
}

// Close releases the pinned connection and then the pool. It is safe to call more than once.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
		s.conn = nil
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
		s.db = nil
	}
	return errors.Join(errs...)
}

// EnsureSchema creates the registry table when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.logger.Debug("ensuring registry table", "table", s.table.String())

	stmts := s.dialect.GetEnsureStatements(s.table.QuotedSchema(), s.table.Quoted())
	for _, q := range stmts {
		if _, err := s.conn.ExecContext(ctx, q); err != nil {
			s.logger.Error("failed to ensure registry table", "error", err, "sql", q)
			return fmt.Errorf("failed to ensure registry table %s: %w", s.table, err)
		}
	}
	return nil
}

// ListApplied returns every recorded migration name in no particular order.
func (s *Store) ListApplied(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT name FROM %s", s.table.Quoted())

	rows, err := s.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applied migrations: %w", err)
	}
	return names, nil
}

// ListRecords returns the registry rows ordered by id.
func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	q := fmt.Sprintf("SELECT id, name, created_at FROM %s ORDER BY id", s.table.Quoted())

	rows, err := s.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list migration records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdAt interface{}
		if err := rows.Scan(&rec.ID, &rec.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		if rec.CreatedAt, err = s.dialect.ConvertTimeFromStorage(createdAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration records: %w", err)
	}
	return out, nil
}

// RecordApplied inserts name through q, which is the open transaction in
// transactional mode and the pinned connection otherwise. A nil q uses the
// pinned connection. Uniqueness is enforced by the table.
func (s *Store) RecordApplied(ctx context.Context, q Querier, name string) error {
	if q == nil {
		q = s.conn
	}
	stmt := fmt.Sprintf("INSERT INTO %s(name) VALUES(%s)", s.table.Quoted(), s.dialect.GetPlaceholder(1))

	if _, err := q.ExecContext(ctx, stmt, name); err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s: %w", ErrDuplicateMigration, name, err)
		}
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}
	s.logger.WithMigration(name).Debug("migration recorded")
	return nil
}
