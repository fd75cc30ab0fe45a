// Package logging provides structured logging for appcheck, built on the
// standard slog package.
//
// All log entries carry a subsystem identifier so that output from the
// configuration layer, the scenario runner, and the session drivers can be
// told apart:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Config", "loaded %d app configurations", n)
//	logging.Error("Runner", err, "scenario %s failed", name)
//
// Level filtering happens at the handler, so disabled levels cost no
// allocations beyond the call itself. The package is safe for concurrent use
// by parallel scenario workers.
package logging
