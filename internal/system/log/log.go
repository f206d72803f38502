// Package log provides the shared structured logger used across the server.
package log

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LoggerKeyComponentName is the conventional field key identifying the
// emitting component.
const LoggerKeyComponentName = "component"

// Field is a single structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Any creates a field holding an arbitrary value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Error creates a field for an error value under the conventional "error" key.
func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

// Logger wraps a logrus entry with field-helper methods.
type Logger struct {
	entry *logrus.Entry
}

var (
	rootOnce sync.Once
	root     *logrus.Logger
)

func rootLogger() *logrus.Logger {
	rootOnce.Do(func() {
		root = logrus.New()
		root.SetOutput(os.Stdout)
		root.SetFormatter(&logrus.JSONFormatter{})
		root.SetLevel(logrus.InfoLevel)
	})
	return root
}

// Configure sets the log level and format from configuration values.
// Unknown values fall back to the defaults (info, json).
func Configure(level, format string) {
	l := rootLogger()
	if parsed, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(parsed)
	}
	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
}

// GetLogger returns the shared logger.
func GetLogger() *Logger {
	return &Logger{entry: logrus.NewEntry(rootLogger())}
}

// With returns a logger with the given fields attached to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{entry: l.entry.WithFields(toLogrusFields(fields))}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

// Fatal logs a message at fatal level and exits.
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Fatal(msg)
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
