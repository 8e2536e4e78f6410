// Package logging provides a logging abstraction layer that decouples the
// engine from specific logging frameworks. Components receive a Logger through
// their constructors; tests inject a MockLogger to assert on output.
package logging

import "github.com/sirupsen/logrus"

// Logger is the structured logging interface used throughout the engine.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with multiple fields attached
	WithFields(fields ...Field) Logger

	// Fatal logs a fatal-level message and exits the program
	Fatal(msg string, fields ...Field)

	// Fatalf logs a fatal-level message with formatting and exits the program
	Fatalf(msg string, args ...interface{})
}

// Field is a key-value pair attached to a log message.
type Field struct {
	Key   string
	Value interface{}
}

// GetLogger returns a logger backed by the logrus standard logger. Prefer
// injecting a Logger through constructors; this exists for bootstrap code
// that runs before configuration is loaded.
func GetLogger() Logger {
	return NewLogrusAdapterFromLogger(logrus.StandardLogger())
}

// SetAllLogLevels sets the global logrus level, which applies to every logger
// derived from the standard logger before per-command configuration runs.
func SetAllLogLevels(level logrus.Level) {
	logrus.SetLevel(level)
}
