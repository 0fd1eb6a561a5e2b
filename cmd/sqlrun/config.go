package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/sqlrun"
	"github.com/loykin/sqlrun/internal/constants"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SQLRUN"

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
	Color         *bool  `mapstructure:"color" yaml:"color"`                   // enable/disable colorized output
}

// ConfigDoc is the resolved configuration: defaults, then the config file,
// then environment variables, then flags.
type ConfigDoc struct {
	sqlrun.Config `mapstructure:",squash"`
	Logging       LoggingConfig `mapstructure:"logging"`
}

// pgEnv maps configuration keys to the libpq variables that may also set them.
var pgEnv = map[string]string{
	"database.host":     "PGHOST",
	"database.port":     "PGPORT",
	"database.user":     "PGUSER",
	"database.password": "PGPASSWORD",
	"database.dbname":   "PGDATABASE",
	"database.sslmode":  "PGSSLMODE",
}

// newViper returns a viper instance carrying every default and environment
// binding the commands understand.
func newViper() *viper.Viper {
	v := viper.New()
	def := sqlrun.DefaultConfig()

	v.SetDefault("config", "")
	v.SetDefault("dir", def.Dir)
	v.SetDefault("table", def.Table)
	v.SetDefault("transactional", def.Transactional)
	v.SetDefault("driver", def.Driver)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", def.Postgres.Port)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "")
	v.SetDefault("database.sslmode", def.Postgres.SSLMode)
	v.SetDefault("sqlite.dsn", "")
	v.SetDefault("sqlite.path", "")
	v.SetDefault("wait.timeout", def.Wait.Timeout)
	v.SetDefault("wait.interval", def.Wait.Interval)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "color")

	// Environment variables support: SQLRUN_DIR, SQLRUN_DATABASE_HOST, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, pg := range pgEnv {
		_ = v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), pg)
	}
	_ = v.BindEnv("logging.mask_sensitive")
	_ = v.BindEnv("logging.color")
	return v
}

// Load decodes a YAML config file into a generic map viper can merge.
func Load(path string) (map[string]any, error) {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return nil, statErr
		}
		return nil, fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user/CI; cleaned and validated above
	f, err := os.Open(clean)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	doc := map[string]any{}
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config file %s: %w", clean, err)
	}
	return doc, nil
}

// resolveConfig layers the optional config file under env and flags and
// decodes the result.
func resolveConfig(v *viper.Viper) (ConfigDoc, error) {
	var doc ConfigDoc
	if path := strings.TrimSpace(v.GetString("config")); path != "" {
		m, err := Load(path)
		if err != nil {
			return doc, fmt.Errorf("failed to load config: %w", err)
		}
		if err := v.MergeConfigMap(m); err != nil {
			return doc, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&doc, hook); err != nil {
		return doc, fmt.Errorf("invalid configuration: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(doc.Driver)) {
	case "", "postgres", "pg", "pgx", constants.DriverPostgresql:
		doc.Driver = constants.DriverPostgresql
	case "sqlite3", constants.DriverSqlite:
		doc.Driver = constants.DriverSqlite
	default:
		return doc, fmt.Errorf("invalid driver: %s (valid: postgresql, sqlite)", doc.Driver)
	}
	return doc, nil
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging() error {
	level, ok := sqlrun.ParseLogLevel(c.Logging.Level)
	if !ok {
		return fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}

	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	useColor := format == "color" || format == "colour"
	if c.Logging.Color != nil {
		useColor = *c.Logging.Color
	}

	var logger *sqlrun.Logger
	switch format {
	case "json":
		logger = sqlrun.NewJSONLogger(level)
	case "color", "colour", "text", "":
		if useColor {
			logger = sqlrun.NewColorLogger(level)
		} else {
			logger = sqlrun.NewLogger(level)
		}
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	sqlrun.EnableMasking(maskingEnabled)
	sqlrun.SetDefaultLogger(logger)

	logger.Debug("logging configured",
		"level", level.String(),
		"format", format,
		"color", useColor,
		"mask_sensitive", maskingEnabled)
	return nil
}
