package constants

import "time"

// Migration file constants
const (
	DefaultMigrationsDir = "migrations"
	MigrationFileExt     = ".sql"

	// IdentifierTimeLayout is the fixed-width prefix of a migration identifier
	// (yyyy_mm_dd_hhiiss). Lexical order of identifiers equals chronological order.
	IdentifierTimeLayout = "2006_01_02_150405"

	DirPerm  = 0o755
	FilePerm = 0o644
)

// Database Constants
const (
	DefaultRegistryTable = "migrations"

	DriverPostgresql = "postgresql"
	DriverSqlite     = "sqlite"
	DefaultDriver    = DriverPostgresql

	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	// One pinned session per invocation; the pool never needs more.
	DefaultMaxConnections = 1
	DefaultMaxIdleConns   = 1

	DefaultSQLiteBusyTimeoutMS = 5000

	// SQLiteFileName is the registry database created next to the migration
	// files when no SQLite path or DSN is configured.
	SQLiteFileName = "sqlrun.db"
)

// Wait Configuration Constants
const (
	DefaultWaitTimeout  = 0 // disabled
	DefaultWaitInterval = 500 * time.Millisecond
)
