package sqlite

import (
	"fmt"

	"github.com/loykin/sqlrun/internal/constants"
	"github.com/loykin/sqlrun/internal/util"
)

// Config selects the SQLite database file. DSN, when set, is passed to the
// driver untouched.
type Config struct {
	DSN  string `mapstructure:"dsn"`
	Path string `mapstructure:"path"`
}

// ConnString returns the modernc DSN for the configured file. An empty path
// falls back to SQLiteFileName in the working directory; an in-memory
// database is only used when asked for explicitly with ":memory:".
func (c *Config) ConnString() string {
	if dsn, ok := util.TrimEmptyCheck(c.DSN); ok {
		return dsn
	}
	path := util.TrimWithDefault(c.Path, constants.SQLiteFileName)
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		path, constants.DefaultSQLiteBusyTimeoutMS)
}
