package runner

import (
	"fmt"
	"time"

	"appcheck/internal/config"
)

// DefaultRunConfig returns the run configuration the CLI starts from.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Environment: config.EnvDev,
		Parallel:    1,
		FailFast:    false,
		Verbose:     false,
		Debug:       false,
		Timeout:     10 * time.Minute,
		ConfigDir:   "config/apps",
		ScenarioDir: "scenarios",
		ArtifactDir: "test-results",
	}
}

// ValidateRunConfig rejects configurations that cannot produce a meaningful
// run.
func ValidateRunConfig(cfg RunConfig) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if cfg.Parallel < 1 {
		return fmt.Errorf("parallel workers must be at least 1")
	}
	if _, err := config.ParseEnvironment(string(cfg.Environment)); err != nil {
		return err
	}
	return nil
}

// Framework bundles the components of one configured run.
type Framework struct {
	Registry *config.Registry
	Loader   Loader
	Reporter Reporter
	Runner   *Runner
	Logger   Logger
}

// NewFramework loads the app registry and wires loader, reporter and runner
// for the given run configuration.
func NewFramework(cfg RunConfig, quiet bool) (*Framework, error) {
	registry, err := config.LoadRegistry(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	logger := NewStdoutLogger(cfg.Verbose, cfg.Debug)
	loader := NewLoader(logger)

	var reporter Reporter
	if quiet {
		reporter = NewQuietReporter(cfg.ReportDir)
	} else {
		reporter = NewConsoleReporter(cfg.Verbose, cfg.ReportDir)
	}

	return &Framework{
		Registry: registry,
		Loader:   loader,
		Reporter: reporter,
		Runner:   New(registry, loader, reporter, logger),
		Logger:   logger,
	}, nil
}
