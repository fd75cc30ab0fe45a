package config

import (
	"fmt"
	"strings"
)

// ConfigError reports a malformed application configuration document. It is
// fatal: the run must abort before any scenario executes, since a bad config
// cannot be retried into correctness.
type ConfigError struct {
	// Path is the file that caused the error, empty for directory-level
	// problems.
	Path string
	// Message describes what is wrong.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UnknownAppError reports a requested application name that is not
// registered. Raised at CLI filter validation (aborting the run) or at
// per-scenario resolution (failing that scenario).
type UnknownAppError struct {
	// Names are the unregistered application names that were requested.
	Names []string
	// Known are the registered names, included so the message is
	// self-describing.
	Known []string
}

// Error implements the error interface.
func (e *UnknownAppError) Error() string {
	return fmt.Sprintf("unknown app(s): %s (registered apps: %s)",
		strings.Join(e.Names, ", "), strings.Join(e.Known, ", "))
}

// UnknownEnvironmentError reports an environment absent from one
// application's base_urls. There is no implicit fallback: running against the
// wrong target silently is worse than failing loudly.
type UnknownEnvironmentError struct {
	App         string
	Environment Environment
	Known       []Environment
}

// Error implements the error interface.
func (e *UnknownEnvironmentError) Error() string {
	known := make([]string, len(e.Known))
	for i, env := range e.Known {
		known[i] = string(env)
	}
	return fmt.Sprintf("app %s has no base URL for environment %s (configured environments: %s)",
		e.App, e.Environment, strings.Join(known, ", "))
}
