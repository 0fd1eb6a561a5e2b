package common

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNewLoggerTo_LevelFilter(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  []string
	}{
		{LogLevelError, []string{"migration run halted"}},
		{LogLevelWarn, []string{"rollback failed", "migration run halted"}},
		{LogLevelInfo, []string{"applying migrations", "rollback failed", "migration run halted"}},
		{LogLevelDebug, []string{"ensuring registry table", "applying migrations", "rollback failed", "migration run halted"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerTo(&buf, tt.level)
			logger.Debug("ensuring registry table")
			logger.Info("applying migrations")
			logger.Warn("rollback failed")
			logger.Error("migration run halted")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(tt.want), buf.String())
			}
			for i, msg := range tt.want {
				if !strings.Contains(lines[i], "msg=\""+msg+"\"") {
					t.Errorf("line %d = %q, want message %q", i, lines[i], msg)
				}
			}
			if logger.Level() != tt.level {
				t.Errorf("Level() = %v, want %v", logger.Level(), tt.level)
			}
		})
	}
}

func TestLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelInfo)

	logger.WithComponent("executor").WithMigration("2024_01_01_000000_init").WithStore("sqlite").Info("applied")

	output := buf.String()
	for _, want := range []string{"component=executor", "migration=2024_01_01_000000_init", "store=sqlite", "msg=applied"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output %q", want, output)
		}
	}
	if logger.WithMigration("x").Level() != LogLevelInfo {
		t.Error("derived logger should keep the parent level")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"", LogLevelInfo, true},
		{"info", LogLevelInfo, true},
		{"DEBUG", LogLevelDebug, true},
		{" warn ", LogLevelWarn, true},
		{"warning", LogLevelWarn, true},
		{"error", LogLevelError, true},
		{"verbose", LogLevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLogLevel(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseLogLevel(%q) = %v, %t; want %v, %t", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func useBufferLogger(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	prev := GetLogger()
	var buf bytes.Buffer
	SetDefaultLogger(NewLoggerTo(&buf, level))
	t.Cleanup(func() { SetDefaultLogger(prev) })
	return &buf
}

func TestDefaultLoggerSwap(t *testing.T) {
	buf := useBufferLogger(t, LogLevelInfo)

	GetLogger().WithComponent("executor").Info("no pending migrations")
	if !strings.Contains(buf.String(), "component=executor") || !strings.Contains(buf.String(), "no pending migrations") {
		t.Fatalf("default logger not replaced: %q", buf.String())
	}
}

func TestLogHelpers(t *testing.T) {
	buf := useBufferLogger(t, LogLevelInfo)

	LogError("migration run halted", errors.New("near \"CREAT\": syntax error"), "migration", "2024_01_02_000000_bad")
	LogWarn("rollback failed", "migration", "2024_01_02_000000_bad")
	LogInfo("migrations complete", "applied", 2)
	LogDebug("ensuring registry table")

	out := buf.String()
	for _, want := range []string{
		"level=ERROR", "migration run halted", "syntax error", "migration=2024_01_02_000000_bad",
		"level=WARN", "level=INFO", "applied=2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ensuring registry table") {
		t.Errorf("debug record written at info level:\n%s", out)
	}
}

func TestLogFunctionsMaskCredentials(t *testing.T) {
	buf := useBufferLogger(t, LogLevelDebug)

	LogInfo("connecting", "password", "hunter2", "dsn", "postgres://app:hunter2@db:5432/app")

	output := buf.String()
	if strings.Contains(output, "hunter2") {
		t.Errorf("credentials leaked into log output: %q", output)
	}
	if !strings.Contains(output, "postgres://app:***MASKED***@db:5432/app") {
		t.Errorf("expected masked dsn in output, got %q", output)
	}
}
