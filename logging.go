package sqlrun

import "github.com/loykin/sqlrun/internal/common"

// Logger is the structured logger used across sqlrun.
type Logger = common.Logger

// LogLevel selects logging verbosity.
type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

// ParseLogLevel maps "error", "warn", "info" or "debug" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, bool) { return common.ParseLogLevel(s) }

// NewLogger creates a plain text logger on stderr.
func NewLogger(level LogLevel) *Logger { return common.NewLogger(level) }

// NewJSONLogger creates a JSON logger on stderr.
func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }

// NewColorLogger creates a colourised logger on stderr.
func NewColorLogger(level LogLevel) *Logger { return common.NewColorLogger(level) }

// SetDefaultLogger replaces the logger every component writes to.
func SetDefaultLogger(logger *Logger) { common.SetDefaultLogger(logger) }

// GetLogger returns the current default logger.
func GetLogger() *Logger { return common.GetLogger() }

// EnableMasking turns credential masking in log output on or off.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }

// MaskSensitiveData hides passwords and DSN credentials in s.
func MaskSensitiveData(s string) string { return common.MaskSensitiveData(s) }
