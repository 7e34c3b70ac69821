// Package logger provides the logging interface used across relayq.
// Backends exist for console output, plain files, and tests; MultiLogger
// fans a message out to several backends at once.
package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger is the logging contract all relayq components depend on.
type Logger interface {
	// Info logs an informational message (e.g. "task accepted").
	Info(format string, args ...interface{})

	// Warning logs a non-fatal problem (e.g. a failed dispatch).
	Warning(format string, args ...interface{})

	// Error logs an error (e.g. "failed to bind listener").
	Error(format string, args ...interface{})

	// Close releases backend resources (e.g. an open log file).
	// Safe to call multiple times.
	Close() error
}

// StandardLogger wraps a stdlib *log.Logger for console output.
type StandardLogger struct {
	logger *log.Logger
}

// NewStandardLogger creates a logger on top of the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// Info logs with an [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs with a [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs with an [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close is a no-op for StandardLogger.
func (s *StandardLogger) Close() error {
	return nil
}

// FileLogger appends log lines to a file.
type FileLogger struct {
	logger *log.Logger
	f      *os.File
}

// NewFileLogger opens (or creates) path in append mode and returns a
// logger writing to it.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", path, err)
	}
	return &FileLogger{
		logger: log.New(f, "", log.LstdFlags),
		f:      f,
	}, nil
}

// Info logs with an [INFO] prefix.
func (fl *FileLogger) Info(format string, args ...interface{}) {
	fl.logger.Printf("[INFO] "+format, args...)
}

// Warning logs with a [WARNING] prefix.
func (fl *FileLogger) Warning(format string, args ...interface{}) {
	fl.logger.Printf("[WARNING] "+format, args...)
}

// Error logs with an [ERROR] prefix.
func (fl *FileLogger) Error(format string, args ...interface{}) {
	fl.logger.Printf("[ERROR] "+format, args...)
}

// Close closes the underlying file. Subsequent calls return nil.
func (fl *FileLogger) Close() error {
	if fl.f == nil {
		return nil
	}
	err := fl.f.Close()
	fl.f = nil
	return err
}

// NopLogger discards all messages. Useful in tests and benchmarks.
type NopLogger struct{}

// NewNopLogger creates a logger that discards everything.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)
