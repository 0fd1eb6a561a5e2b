package postgresql

import (
	"strconv"
	"strings"

	"github.com/loykin/sqlrun/internal/util"
)

// Config holds libpq-style connection settings. Empty fields are left out of
// the connection string so pgx falls back to PGHOST, PGUSER and friends.
type Config struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString prefers an explicit DSN and otherwise builds a keyword/value string.
func (c *Config) ConnString() string {
	if dsn, ok := util.TrimEmptyCheck(c.DSN); ok {
		return dsn
	}

	var parts []string
	add := func(key, value string) {
		if v, ok := util.TrimEmptyCheck(value); ok {
			parts = append(parts, key+"="+quoteValue(v))
		}
	}
	add("host", c.Host)
	if c.Port > 0 {
		add("port", strconv.Itoa(c.Port))
	}
	add("user", c.User)
	add("password", c.Password)
	add("dbname", c.DBName)
	add("sslmode", c.SSLMode)
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
