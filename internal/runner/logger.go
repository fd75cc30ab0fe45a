package runner

import (
	"fmt"
	"os"
)

// stdoutLogger implements the Logger interface for CLI runs.
type stdoutLogger struct {
	verbose bool
	debug   bool
}

// NewStdoutLogger creates a logger that writes to stdout/stderr.
func NewStdoutLogger(verbose, debug bool) Logger {
	return &stdoutLogger{verbose: verbose, debug: debug}
}

func (l *stdoutLogger) Debug(format string, args ...interface{}) {
	if l.debug {
		fmt.Printf(format, args...)
	}
}

func (l *stdoutLogger) Info(format string, args ...interface{}) {
	if l.verbose || l.debug {
		fmt.Printf(format, args...)
	}
}

func (l *stdoutLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func (l *stdoutLogger) IsDebugEnabled() bool {
	return l.debug
}

func (l *stdoutLogger) IsVerboseEnabled() bool {
	return l.verbose
}

// silentLogger suppresses all output. Used in tests and watch-mode reruns
// where the reporter owns the terminal.
type silentLogger struct{}

// NewSilentLogger creates a logger that drops everything.
func NewSilentLogger() Logger {
	return &silentLogger{}
}

func (l *silentLogger) Debug(format string, args ...interface{}) {}
func (l *silentLogger) Info(format string, args ...interface{})  {}
func (l *silentLogger) Error(format string, args ...interface{}) {}
func (l *silentLogger) IsDebugEnabled() bool                     { return false }
func (l *silentLogger) IsVerboseEnabled() bool                   { return false }
