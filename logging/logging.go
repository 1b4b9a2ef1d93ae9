package logging

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// ANSI color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorBold   = "\033[1m"
)

// Level represents log levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < DebugLevel || l > FatalLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts a level name (case insensitive) into a Level
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// Fields represents structured logging fields
type Fields map[string]any

// Logger defines the interface that the library expects for logging
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Fatal(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields
	WithFields(fields Fields) Logger

	// WithContext returns a logger carrying the fields stored in ctx
	WithContext(ctx context.Context) Logger

	// SetLevel sets the minimum log level
	SetLevel(level Level)
}

type fieldsKey struct{}

// ContextWithFields returns a context carrying fields for WithContext
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FieldsFromContext returns the fields stored by ContextWithFields
func FieldsFromContext(ctx context.Context) (Fields, bool) {
	if ctx == nil {
		return nil, false
	}
	fields, ok := ctx.Value(fieldsKey{}).(Fields)
	return fields, ok
}

// loggerHolder lets the global logger live in an atomic.Value, which requires
// a single concrete type
type loggerHolder struct {
	logger Logger
}

var global atomic.Value

func init() {
	global.Store(loggerHolder{NewDefaultLogger()})
}

// SetGlobalLogger replaces the logger used by the package level functions.
// A nil logger discards everything.
func SetGlobalLogger(logger Logger) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	global.Store(loggerHolder{logger})
}

// GetGlobalLogger returns the current global logger
func GetGlobalLogger() Logger {
	return global.Load().(loggerHolder).logger
}

// Debug logs through the global logger
func Debug(msg string, fields ...Fields) { GetGlobalLogger().Debug(msg, fields...) }

// Info logs through the global logger
func Info(msg string, fields ...Fields) { GetGlobalLogger().Info(msg, fields...) }

// Warn logs through the global logger
func Warn(msg string, fields ...Fields) { GetGlobalLogger().Warn(msg, fields...) }

// Error logs through the global logger
func Error(err error, msg string, fields ...Fields) { GetGlobalLogger().Error(err, msg, fields...) }

// Fatal logs through the global logger and exits
func Fatal(err error, msg string, fields ...Fields) { GetGlobalLogger().Fatal(err, msg, fields...) }

// WithFields scopes the global logger
func WithFields(fields Fields) Logger {
	return GetGlobalLogger().WithFields(fields)
}

// WithContext scopes the global logger with the fields stored in ctx
func WithContext(ctx context.Context) Logger {
	return GetGlobalLogger().WithContext(ctx)
}

// SetLevel changes the minimum level of the global logger
func SetLevel(level Level) {
	GetGlobalLogger().SetLevel(level)
}

// DisableColors globally disables color output for the default logger
func DisableColors() {
	setColors(false)
}

// EnableColors globally enables color output for the default logger
func EnableColors() {
	setColors(true)
}

func setColors(enabled bool) {
	if defaultLogger, ok := GetGlobalLogger().(*DefaultLogger); ok {
		defaultLogger.colors = enabled
	}
}
