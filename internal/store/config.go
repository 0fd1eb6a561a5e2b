package store

import (
	"time"

	"github.com/loykin/sqlrun/internal/store/postgresql"
	"github.com/loykin/sqlrun/internal/store/sqlite"
)

type (
	PostgresConfig = postgresql.Config
	SqliteConfig   = sqlite.Config
)

// Config selects the driver, the registry table and how to reach the database.
type Config struct {
	Driver       string `mapstructure:"driver"`
	Table        string `mapstructure:"table"`
	DriverConfig DriverConfig
	Wait         WaitConfig
}

// DriverConfig produces the connection string handed to database/sql.
type DriverConfig interface {
	ConnString() string
}

// WaitConfig enables polling the database until it accepts connections.
// A zero Timeout disables waiting.
type WaitConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Interval time.Duration `mapstructure:"interval"`
}
