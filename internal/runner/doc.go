// Package runner loads scenario documents, selects which ones to execute,
// drives them against live app sessions and reports the outcome.
//
// A scenario binds a sequence of steps (navigate, request, click, fill, wait,
// screenshot) to exactly one app. The runner resolves the app for the
// requested environment, opens one AppContext per scenario, executes steps
// with template variable support, and guarantees the context is closed on
// every exit path. Execution is sequential or parallel with a worker limit.
package runner
