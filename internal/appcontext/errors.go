package appcontext

import (
	"fmt"

	"appcheck/internal/config"
)

// ContextClosedError reports an operation attempted on a closed AppContext.
// This is a programming error in the caller, not a flaky target.
type ContextClosedError struct {
	App string
	Op  string
}

// Error implements the error interface.
func (e *ContextClosedError) Error() string {
	return fmt.Sprintf("app context for %s is closed, cannot %s", e.App, e.Op)
}

// NavigationError reports a failed browser navigation. The message names the
// app, the environment and the full URL so a failure is diagnosable without
// re-running.
type NavigationError struct {
	App         string
	Environment config.Environment
	URL         string
	Err         error
}

// Error implements the error interface.
func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed for app %s (env %s): %v",
		e.URL, e.App, e.Environment, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *NavigationError) Unwrap() error {
	return e.Err
}

// RequestError reports a failed HTTP call, carrying the same identifying
// detail as NavigationError.
type RequestError struct {
	App         string
	Environment config.Environment
	Method      string
	URL         string
	Err         error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("request %s %s failed for app %s (env %s): %v",
		e.Method, e.URL, e.App, e.Environment, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}
