package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// LogLevel is the severity of a log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var slogLevels = map[LogLevel]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// String makes LogLevel satisfy fmt.Stringer.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// SlogLevel maps the level onto the slog scale. Unknown levels map to INFO.
func (l LogLevel) SlogLevel() slog.Level {
	if lvl, ok := slogLevels[l]; ok {
		return lvl
	}
	return slog.LevelInfo
}

var defaultLogger *slog.Logger

// InitForCLI initializes the process logger. Call once at startup, before
// any other package logs.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	defaultLogger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: filterLevel.SlogLevel(),
	}))
	slog.SetDefault(defaultLogger)
}

func emit(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	if defaultLogger == nil {
		// Logging before InitForCLI; write to stderr rather than dropping
		// the message.
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", level, subsystem, msg)
		return
	}
	if !defaultLogger.Enabled(context.Background(), level.SlogLevel()) {
		return
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	defaultLogger.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
}

// Debug logs a debug message for the given subsystem.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	emit(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message for the given subsystem.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	emit(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning for the given subsystem.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	emit(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error with its cause attached as an attribute.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	emit(LevelError, subsystem, err, messageFmt, args...)
}
