package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/loykin/sqlrun"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestResolveConfig_Defaults(t *testing.T) {
	isolateEnv(t)
	doc, err := resolveConfig(newViper())
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if doc.Dir != "migrations" || doc.Table != "migrations" || !doc.Transactional {
		t.Fatalf("unexpected defaults: %+v", doc.Config)
	}
	if doc.Driver != sqlrun.DriverPostgresql || doc.Postgres.Port != 5432 || doc.Postgres.SSLMode != "disable" {
		t.Fatalf("unexpected database defaults: %+v", doc.Postgres)
	}
	if doc.Wait.Timeout != 0 || doc.Wait.Interval != 500*time.Millisecond {
		t.Fatalf("unexpected wait defaults: %+v", doc.Wait)
	}
	if doc.Logging.Color != nil || doc.Logging.MaskSensitive != nil {
		t.Fatalf("optional logging switches should be unset: %+v", doc.Logging)
	}
}

func TestResolveConfig_File(t *testing.T) {
	isolateEnv(t)
	p := writeConfig(t, `
dir: ./db/migrations
table: app.schema_migrations
transactional: false
driver: sqlite
sqlite:
  path: /tmp/app.db
wait:
  timeout: 30s
  interval: 250ms
logging:
  level: debug
  format: json
  mask_sensitive: false
`)
	v := newViper()
	v.Set("config", p)
	doc, err := resolveConfig(v)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if doc.Dir != "./db/migrations" || doc.Table != "app.schema_migrations" || doc.Transactional {
		t.Fatalf("file values not applied: %+v", doc.Config)
	}
	if doc.Driver != sqlrun.DriverSqlite || doc.SQLite.Path != "/tmp/app.db" {
		t.Fatalf("sqlite settings not applied: %+v", doc.Config)
	}
	if doc.Wait.Timeout != 30*time.Second || doc.Wait.Interval != 250*time.Millisecond {
		t.Fatalf("durations not decoded: %+v", doc.Wait)
	}
	if doc.Logging.Level != "debug" || doc.Logging.Format != "json" ||
		doc.Logging.MaskSensitive == nil || *doc.Logging.MaskSensitive {
		t.Fatalf("logging not applied: %+v", doc.Logging)
	}
}

func TestResolveConfig_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	p := writeConfig(t, "dir: from-file\ntransactional: true\n")
	t.Setenv("SQLRUN_DIR", "from-env")
	t.Setenv("SQLRUN_TRANSACTIONAL", "false")
	t.Setenv("SQLRUN_WAIT_TIMEOUT", "5s")

	v := newViper()
	v.Set("config", p)
	doc, err := resolveConfig(v)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if doc.Dir != "from-env" || doc.Transactional || doc.Wait.Timeout != 5*time.Second {
		t.Fatalf("env should win over file: %+v", doc.Config)
	}
}

func TestResolveConfig_LibpqEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGPORT", "6543")
	t.Setenv("PGUSER", "deploy")
	t.Setenv("PGPASSWORD", "s3cret")
	t.Setenv("PGDATABASE", "app")
	t.Setenv("PGSSLMODE", "require")

	doc, err := resolveConfig(newViper())
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	want := sqlrun.PostgresConfig{Host: "db.internal", Port: 6543, User: "deploy", Password: "s3cret", DBName: "app", SSLMode: "require"}
	if doc.Postgres != want {
		t.Fatalf("Postgres = %+v, want %+v", doc.Postgres, want)
	}

	t.Setenv("SQLRUN_DATABASE_HOST", "primary")
	doc, err = resolveConfig(newViper())
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if doc.Postgres.Host != "primary" {
		t.Fatalf("SQLRUN_DATABASE_HOST should win over PGHOST, got %q", doc.Postgres.Host)
	}
}

func TestResolveConfig_DriverAliases(t *testing.T) {
	isolateEnv(t)
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "postgres", want: sqlrun.DriverPostgresql},
		{in: "PG", want: sqlrun.DriverPostgresql},
		{in: "sqlite3", want: sqlrun.DriverSqlite},
		{in: "mysql", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := newViper()
			v.Set("driver", tt.in)
			doc, err := resolveConfig(v)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveConfig: %v", err)
			}
			if doc.Driver != tt.want {
				t.Fatalf("driver = %q, want %q", doc.Driver, tt.want)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load(t.TempDir()); err == nil || !strings.Contains(err.Error(), "not a regular file") {
		t.Fatalf("expected not-a-regular-file error, got %v", err)
	}
	bad := writeConfig(t, "dir: [unterminated\n")
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected YAML error")
	}
	empty := writeConfig(t, "")
	m, err := Load(empty)
	if err != nil || len(m) != 0 {
		t.Fatalf("empty file should decode to an empty map: %v %v", m, err)
	}
}

func TestSetupLogging(t *testing.T) {
	isolateEnv(t)
	off := false
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr bool
	}{
		{name: "defaults", cfg: LoggingConfig{}},
		{name: "json debug", cfg: LoggingConfig{Level: "debug", Format: "json"}},
		{name: "text without color", cfg: LoggingConfig{Level: "warning", Format: "text", Color: &off}},
		{name: "masking off", cfg: LoggingConfig{Level: "info", MaskSensitive: &off}},
		{name: "bad level", cfg: LoggingConfig{Level: "verbose"}, wantErr: true},
		{name: "bad format", cfg: LoggingConfig{Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ConfigDoc{Logging: tt.cfg}
			err := doc.SetupLogging()
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetupLogging() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetupLogging_MaskingSwitch(t *testing.T) {
	isolateEnv(t)
	off := false
	doc := ConfigDoc{Logging: LoggingConfig{MaskSensitive: &off}}
	if err := doc.SetupLogging(); err != nil {
		t.Fatal(err)
	}
	dsn := "postgres://app:hunter2@db/app"
	if got := sqlrun.MaskSensitiveData(dsn); got != dsn {
		t.Fatalf("masking should be disabled, got %q", got)
	}

	doc.Logging.MaskSensitive = nil
	if err := doc.SetupLogging(); err != nil {
		t.Fatal(err)
	}
	if got := sqlrun.MaskSensitiveData(dsn); strings.Contains(got, "hunter2") {
		t.Fatalf("masking should be enabled, got %q", got)
	}
}
