package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
	"sync/atomic"
)

// levelColors maps the levels that are highlighted to their ANSI prefix
var levelColors = map[Level]string{
	WarnLevel:  ColorYellow,
	ErrorLevel: ColorRed,
	FatalLevel: ColorBold + ColorRed,
}

// DefaultLogger writes one line per entry through the standard log package.
// Debug and Info go to the info writer; Warn, Error and Fatal go to the alert
// writer and are colored when colors are enabled.
type DefaultLogger struct {
	info   *log.Logger
	alert  *log.Logger
	level  atomic.Int32
	fields Fields
	colors bool
	exit   func(int)
}

// Option customises a DefaultLogger at construction
type Option func(*DefaultLogger)

// WithColors forces colored alert output on or off
func WithColors(enabled bool) Option {
	return func(d *DefaultLogger) { d.colors = enabled }
}

// WithExit replaces the hook Fatal calls after writing its entry
func WithExit(exit func(int)) Option {
	return func(d *DefaultLogger) { d.exit = exit }
}

// NewDefaultLogger logs Info and above to stdout/stderr with timestamps.
// Colors are on when stderr is a terminal.
func NewDefaultLogger(opts ...Option) *DefaultLogger {
	d := newLogger(os.Stdout, os.Stderr, log.LstdFlags, InfoLevel)
	d.colors = isTerminal(os.Stderr)
	d.exit = os.Exit
	return d.apply(opts)
}

// NewWriterLogger writes every level to w without timestamps or colors.
// Fatal does not exit the process unless WithExit says otherwise.
func NewWriterLogger(w io.Writer, level Level, opts ...Option) *DefaultLogger {
	d := newLogger(w, w, 0, level)
	d.exit = func(int) {}
	return d.apply(opts)
}

func newLogger(info, alert io.Writer, flags int, level Level) *DefaultLogger {
	d := &DefaultLogger{
		info:   log.New(info, "", flags),
		alert:  log.New(alert, "", flags),
		fields: Fields{},
	}
	d.level.Store(int32(level))
	return d
}

func (d *DefaultLogger) apply(opts []Option) *DefaultLogger {
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// isTerminal reports whether w is a file attached to a character device
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// merged returns the logger fields overlaid with extra. The logger's own map
// is returned as is when there is nothing to add.
func (d *DefaultLogger) merged(extra []Fields) Fields {
	if len(extra) == 0 {
		return d.fields
	}
	out := make(Fields, len(d.fields))
	maps.Copy(out, d.fields)
	for _, f := range extra {
		maps.Copy(out, f)
	}
	return out
}

// entry renders "[LEVEL] msg: err k=v ..." with keys in sorted order
func (d *DefaultLogger) entry(level Level, err error, msg string, extra []Fields) string {
	var b strings.Builder
	b.WriteString("[" + level.String() + "] " + msg)
	if err != nil {
		b.WriteString(": " + err.Error())
	}

	fields := d.merged(extra)
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	if color, ok := levelColors[level]; ok && d.colors {
		return color + b.String() + ColorReset
	}
	return b.String()
}

func (d *DefaultLogger) write(level Level, err error, msg string, extra []Fields) {
	if level < Level(d.level.Load()) {
		return
	}

	line := d.entry(level, err, msg, extra)
	if level >= WarnLevel {
		d.alert.Println(line)
	} else {
		d.info.Println(line)
	}

	if level == FatalLevel {
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.write(DebugLevel, nil, msg, fields)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.write(InfoLevel, nil, msg, fields)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.write(WarnLevel, nil, msg, fields)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.write(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.write(FatalLevel, err, msg, fields)
}

// WithFields returns a child logger; the parent is left untouched
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := &DefaultLogger{
		info:   d.info,
		alert:  d.alert,
		fields: d.merged([]Fields{fields}),
		colors: d.colors,
		exit:   d.exit,
	}
	child.level.Store(d.level.Load())
	return child
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel may be called while other goroutines are logging
func (d *DefaultLogger) SetLevel(level Level) {
	d.level.Store(int32(level))
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
