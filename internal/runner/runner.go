package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"appcheck/internal/appcontext"
	"appcheck/internal/config"
	"appcheck/internal/template"
)

// errFailFast cancels the worker group once a failure has been reported in
// fail-fast mode. It never escapes Run.
var errFailFast = errors.New("fail-fast triggered")

// Runner executes scenarios against the registered apps.
type Runner struct {
	registry *config.Registry
	loader   Loader
	reporter Reporter
	logger   Logger
	engine   *template.Engine
}

// New creates a runner.
func New(registry *config.Registry, loader Loader, reporter Reporter, logger Logger) *Runner {
	return &Runner{
		registry: registry,
		loader:   loader,
		reporter: reporter,
		logger:   logger,
		engine:   template.New(),
	}
}

// Run executes the scenarios selected by cfg and returns the aggregate
// result. The error return covers run-level problems only; scenario failures
// are reflected in the result counters.
func (r *Runner) Run(ctx context.Context, cfg RunConfig, scenarios []Scenario) (*SuiteResult, error) {
	if err := r.registry.ValidateAppFilter(cfg.Apps); err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	selected := r.loader.Filter(scenarios, cfg)
	result := &SuiteResult{
		StartTime:       time.Now(),
		TotalScenarios:  len(selected),
		ScenarioResults: make([]ScenarioResult, 0, len(selected)),
		Configuration:   cfg,
	}

	r.reporter.ReportStart(cfg, len(selected))

	if len(selected) == 0 {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		r.reporter.ReportSuiteResult(*result)
		return result, nil
	}

	if cfg.Parallel <= 1 {
		r.reporter.SetParallelMode(false)
		r.runSequential(ctx, cfg, selected, result)
	} else {
		r.reporter.SetParallelMode(true)
		r.runParallel(ctx, cfg, selected, result)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	r.reporter.ReportSuiteResult(*result)

	return result, nil
}

func (r *Runner) runSequential(ctx context.Context, cfg RunConfig, scenarios []Scenario, result *SuiteResult) {
	for _, scenario := range scenarios {
		scenarioResult := r.runScenario(ctx, scenario, cfg)
		result.ScenarioResults = append(result.ScenarioResults, scenarioResult)
		updateCounters(result, scenarioResult)
		r.reporter.ReportScenarioResult(scenarioResult)

		if cfg.FailFast && (scenarioResult.Result == ResultFailed || scenarioResult.Result == ResultError) {
			r.logger.Debug("fail-fast triggered by scenario %s\n", scenario.Name)
			break
		}
	}
}

// runParallel executes scenarios through a bounded worker group. Results are
// collected and reported as they arrive; in fail-fast mode the group context
// is canceled after the first failure, and scenarios already in flight finish
// with that canceled context.
func (r *Runner) runParallel(ctx context.Context, cfg RunConfig, scenarios []Scenario, result *SuiteResult) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Parallel)

	var mu sync.Mutex

	for _, scenario := range scenarios {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}

			scenarioResult := r.runScenario(groupCtx, scenario, cfg)

			mu.Lock()
			result.ScenarioResults = append(result.ScenarioResults, scenarioResult)
			updateCounters(result, scenarioResult)
			r.reporter.ReportScenarioResult(scenarioResult)
			mu.Unlock()

			if cfg.FailFast && (scenarioResult.Result == ResultFailed || scenarioResult.Result == ResultError) {
				return errFailFast
			}
			return nil
		})
	}

	group.Wait()
}

// runScenario executes one scenario with its own app context, which is
// closed on every exit path.
func (r *Runner) runScenario(ctx context.Context, scenario Scenario, cfg RunConfig) ScenarioResult {
	result := ScenarioResult{
		Scenario:    scenario,
		App:         scenario.App,
		Environment: cfg.Environment,
		StartTime:   time.Now(),
		StepResults: make([]StepResult, 0, len(scenario.Steps)),
		Result:      ResultPassed,
	}
	finish := func() ScenarioResult {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		return result
	}

	r.reporter.ReportScenarioStart(scenario)

	if scenario.Skip {
		result.Result = ResultSkipped
		return finish()
	}

	scenarioCtx := ctx
	if scenario.Timeout > 0 {
		var cancel context.CancelFunc
		scenarioCtx, cancel = context.WithTimeout(ctx, scenario.Timeout)
		defer cancel()
	}

	app, err := r.registry.Get(scenario.App)
	if err != nil {
		result.Result = ResultError
		result.Error = err.Error()
		return finish()
	}

	resolved, err := config.Resolve(app, cfg.Environment)
	if err != nil {
		result.Result = ResultFailed
		result.Error = err.Error()
		return finish()
	}
	result.BaseURL = resolved.BaseURL

	ac, err := appcontext.New(resolved, appcontext.Options{
		Headful:     cfg.Headful,
		Trace:       cfg.Trace,
		ArtifactDir: cfg.ArtifactDir,
	})
	if err != nil {
		result.Result = ResultError
		result.Error = err.Error()
		return finish()
	}
	defer func() {
		if err := ac.Close(); err != nil {
			r.logger.Error("failed to close app context for %s: %v\n", scenario.App, err)
		}
	}()
	result.Trace = ac.TracePath()

	vars := scenarioVars(resolved)

	for _, step := range scenario.Steps {
		stepResult := r.runStep(scenarioCtx, step, ac, vars)
		result.StepResults = append(result.StepResults, stepResult)
		r.reporter.ReportStepResult(stepResult)

		if stepResult.Result == ResultFailed || stepResult.Result == ResultError {
			result.Result = stepResult.Result
			result.Error = stepResult.Error
			r.captureFailureScreenshot(&result, ac, resolved, step.ID)
			break
		}
	}

	// Cleanup steps run regardless of the main outcome. A cleanup failure
	// fails the scenario only when it had passed so far.
	for _, step := range scenario.Cleanup {
		stepResult := r.runStep(scenarioCtx, step, ac, vars)
		result.StepResults = append(result.StepResults, stepResult)
		r.reporter.ReportStepResult(stepResult)

		if stepResult.Result != ResultPassed && result.Result == ResultPassed {
			result.Result = stepResult.Result
			result.Error = stepResult.Error
		}
	}

	return finish()
}

func (r *Runner) captureFailureScreenshot(result *ScenarioResult, ac *appcontext.AppContext, resolved *config.ResolvedConfig, stepID string) {
	if resolved.Kind != config.AppKindBrowser || !resolved.ScreenshotOnFailure {
		return
	}
	path, err := ac.Screenshot(result.Scenario.Name + "-" + stepID + "-failure")
	if err != nil {
		r.logger.Error("failed to capture failure screenshot for %s: %v\n", result.Scenario.Name, err)
		return
	}
	result.Screenshot = path
}

// scenarioVars builds the initial template variables for a scenario: the
// resolved app fields, the config's extra settings under "extra", and the
// resolved credentials under "credentials".
func scenarioVars(resolved *config.ResolvedConfig) map[string]interface{} {
	vars := map[string]interface{}{
		"app":      resolved.Name,
		"env":      string(resolved.Environment),
		"base_url": resolved.BaseURL,
	}
	if len(resolved.Extra) > 0 {
		vars["extra"] = resolved.Extra
	}
	if len(resolved.Credentials) > 0 {
		creds := make(map[string]interface{}, len(resolved.Credentials))
		for role := range resolved.Credentials {
			cred, _ := resolved.Credential(role)
			creds[role] = map[string]interface{}{
				"username": cred.Username,
				"secret":   cred.Secret,
			}
		}
		vars["credentials"] = creds
	}
	return vars
}

func updateCounters(result *SuiteResult, scenarioResult ScenarioResult) {
	switch scenarioResult.Result {
	case ResultPassed:
		result.PassedScenarios++
	case ResultFailed:
		result.FailedScenarios++
	case ResultSkipped:
		result.SkippedScenarios++
	case ResultError:
		result.ErrorScenarios++
	}
}
