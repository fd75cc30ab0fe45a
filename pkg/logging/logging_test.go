package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)

	Debug("Test", "debug message")
	Info("Test", "info message")
	Warn("Test", "warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug message logged despite Warn filter level")
	}
	if strings.Contains(out, "info message") {
		t.Error("info message logged despite Warn filter level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message missing from output")
	}
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	Error("Test", errSentinel, "operation failed")

	out := buf.String()
	if !strings.Contains(out, "operation failed") {
		t.Error("error message missing from output")
	}
	if !strings.Contains(out, "sentinel") {
		t.Error("error cause missing from output")
	}
	if !strings.Contains(out, "subsystem=Test") {
		t.Error("subsystem attribute missing from output")
	}
}

type sentinelError struct{}

func (sentinelError) Error() string { return "sentinel" }

var errSentinel = sentinelError{}
