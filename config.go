package sqlrun

import (
	"path/filepath"

	"github.com/loykin/sqlrun/internal/constants"
	"github.com/loykin/sqlrun/internal/store"
	"github.com/loykin/sqlrun/internal/util"
)

type (
	PostgresConfig = store.PostgresConfig
	SqliteConfig   = store.SqliteConfig
	WaitConfig     = store.WaitConfig
)

const (
	DriverPostgresql = constants.DriverPostgresql
	DriverSqlite     = constants.DriverSqlite
)

// Config is everything a run needs. The CLI fills it from flags, environment
// variables and the optional config file; library users build it directly.
type Config struct {
	// Dir holds the *.sql migration files.
	Dir string `mapstructure:"dir"`
	// Table is the registry table, optionally schema qualified.
	Table string `mapstructure:"table"`
	// Transactional wraps every migration in its own transaction.
	Transactional bool `mapstructure:"transactional"`

	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"database"`
	SQLite   SqliteConfig   `mapstructure:"sqlite"`
	Wait     WaitConfig     `mapstructure:"wait"`
}

// DefaultConfig returns a PostgreSQL configuration with transactional
// migrations read from ./migrations.
func DefaultConfig() Config {
	return Config{
		Dir:           constants.DefaultMigrationsDir,
		Table:         constants.DefaultRegistryTable,
		Transactional: true,
		Driver:        constants.DefaultDriver,
		Postgres: PostgresConfig{
			Port:    constants.DefaultPostgresPort,
			SSLMode: constants.DefaultPostgresSSLMode,
		},
		Wait: WaitConfig{
			Timeout:  constants.DefaultWaitTimeout,
			Interval: constants.DefaultWaitInterval,
		},
	}
}

func (c Config) dir() string {
	return util.TrimWithDefault(c.Dir, constants.DefaultMigrationsDir)
}

func (c Config) storeConfig() store.Config {
	cfg := store.Config{
		Driver: c.Driver,
		Table:  c.Table,
		Wait:   c.Wait,
	}
	switch util.TrimAndLower(c.Driver) {
	case constants.DriverSqlite, "sqlite3":
		sc := c.SQLite
		_, hasDSN := util.TrimEmptyCheck(sc.DSN)
		_, hasPath := util.TrimEmptyCheck(sc.Path)
		if !hasDSN && !hasPath {
			sc.Path = filepath.Join(c.dir(), constants.SQLiteFileName)
		}
		cfg.DriverConfig = &sc
	default:
		cfg.DriverConfig = &c.Postgres
	}
	return cfg
}
