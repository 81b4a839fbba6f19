package log

import (
	"io"
	"sync"
)

var (
	defaultLogger = NewWithWriter(io.Discard, "error")
	mu            sync.RWMutex
)

// SetDefaultLogger sets the logger used by the package level helpers.  Passing nil restores the discarding logger.
func SetDefaultLogger(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = NewWithWriter(io.Discard, "error")
	}
	defaultLogger = logger
}

// DefaultLogger returns the current default logger
func DefaultLogger() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Debug logs at debug Level using the default logger.
func Debug(msg string, args ...any) {
	DefaultLogger().Debug(msg, args...)
}

// Info logs at info Level using the default logger.
func Info(msg string, args ...any) {
	DefaultLogger().Info(msg, args...)
}

// Warn logs at warn Level using the default logger.
func Warn(msg string, args ...any) {
	DefaultLogger().Warn(msg, args...)
}

// Error logs at error Level using the default logger.
func Error(msg string, args ...any) {
	DefaultLogger().Error(msg, args...)
}

// Trace logs at debug level, but only if trace logging is enabled.
// This is a 'fake' trace level.
func Trace(msg string, args ...any) {
	DefaultLogger().Trace(msg, args...)
}
