// Package sqlrun applies forward-only SQL migration files to PostgreSQL or
// SQLite and records each applied file in a registry table.
package sqlrun

import (
	"context"
	"errors"

	"github.com/loykin/sqlrun/internal/migration"
	"github.com/loykin/sqlrun/internal/store"
)

// Re-export commonly used types for public API

// Result reports how far a run got. It is filled on failure too.
type Result = migration.Result

// State is the final state of a run.
type State = migration.State

const (
	StateIdle      = migration.StateIdle
	StateResolving = migration.StateResolving
	StateApplying  = migration.StateApplying
	StateDone      = migration.StateDone
	StateFailed    = migration.StateFailed
)

// Error carries the migration name or path a failure relates to.
type Error = migration.Error

// Record is one applied migration as stored in the registry table.
type Record = store.Record

// Store is an open registry connection.
type Store = store.Store

var (
	ErrDirectoryRead      = migration.ErrDirectoryRead
	ErrFileRead           = migration.ErrFileRead
	ErrConnection         = migration.ErrConnection
	ErrSchema             = migration.ErrSchema
	ErrMigrationExecution = migration.ErrMigrationExecution
	ErrDuplicateMigration = migration.ErrDuplicateMigration

	ErrInvalidName = errors.New("migration name is empty")
	ErrDirRequired = errors.New("migration directory is required")
)

// OpenStore connects to the database described by cfg. Failures match ErrConnection,
// or ErrSchema when the registry table name is not a valid identifier.
func OpenStore(ctx context.Context, cfg Config) (*Store, error) {
	st, err := store.Open(ctx, cfg.storeConfig())
	if err != nil {
		if errors.Is(err, store.ErrInvalidTableName) {
			return nil, migration.SchemaError(err)
		}
		return nil, migration.ConnectionError(err)
	}
	return st, nil
}

// Resolve returns the candidates missing from applied, sorted and without duplicates.
func Resolve(candidates, applied []string) []string {
	return migration.Resolve(candidates, applied)
}
