package runner

import (
	"time"

	"appcheck/internal/appcontext"
	"appcheck/internal/config"
)

// Result classifies the outcome of a scenario or step.
type Result string

const (
	// ResultPassed indicates all steps met their expectations.
	ResultPassed Result = "PASSED"
	// ResultFailed indicates an expectation was not met.
	ResultFailed Result = "FAILED"
	// ResultSkipped indicates the scenario was not executed.
	ResultSkipped Result = "SKIPPED"
	// ResultError indicates execution broke before expectations could be
	// checked (setup failure, bad template, unknown app).
	ResultError Result = "ERROR"
)

// Action names what a step does against the app session.
type Action string

const (
	// ActionNavigate drives the browser to a path under the base URL.
	ActionNavigate Action = "navigate"
	// ActionRequest performs an HTTP call scoped to the base URL.
	ActionRequest Action = "request"
	// ActionClick clicks an element by selector.
	ActionClick Action = "click"
	// ActionFill types a value into an element by selector.
	ActionFill Action = "fill"
	// ActionWait pauses for a fixed duration.
	ActionWait Action = "wait"
	// ActionScreenshot captures the current page into the artifacts dir.
	ActionScreenshot Action = "screenshot"
)

// RunConfig defines one test run.
type RunConfig struct {
	// Environment selects which base URLs the scenarios run against.
	Environment config.Environment `yaml:"environment"`
	// Apps restricts execution to the named apps. Empty runs everything.
	Apps []string `yaml:"apps,omitempty"`
	// Scenario restricts execution to one scenario by name.
	Scenario string `yaml:"scenario,omitempty"`
	// Tags restricts execution to scenarios carrying any of these tags.
	Tags []string `yaml:"tags,omitempty"`
	// Parallel is the number of scenario workers.
	Parallel int `yaml:"parallel"`
	// FailFast stops scheduling new scenarios after the first failure.
	FailFast bool `yaml:"fail_fast"`
	// Verbose enables step-level console output.
	Verbose bool `yaml:"verbose"`
	// Debug enables debug logging.
	Debug bool `yaml:"debug"`
	// Timeout bounds the whole run.
	Timeout time.Duration `yaml:"timeout"`
	// ConfigDir holds the app configuration documents.
	ConfigDir string `yaml:"config_dir,omitempty"`
	// ScenarioDir holds the scenario documents.
	ScenarioDir string `yaml:"scenario_dir,omitempty"`
	// ReportDir, when set, receives a timestamped JSON report.
	ReportDir string `yaml:"report_dir,omitempty"`
	// ArtifactDir receives screenshots and traces.
	ArtifactDir string `yaml:"artifact_dir,omitempty"`
	// Headful shows browser windows instead of running headless.
	Headful bool `yaml:"headful,omitempty"`
	// Trace records playwright traces for browser scenarios.
	Trace bool `yaml:"trace,omitempty"`
}

// Scenario is one executable test case against one app.
type Scenario struct {
	// Name is the unique identifier for the scenario.
	Name string `yaml:"name"`
	// App names the target application. Exactly one app per scenario.
	App string `yaml:"app"`
	// Description provides a human-readable summary.
	Description string `yaml:"description,omitempty"`
	// Tags categorize the scenario for selection (smoke, regression, ...).
	Tags []string `yaml:"tags,omitempty"`
	// Steps are executed in order until one fails.
	Steps []Step `yaml:"steps"`
	// Cleanup steps run regardless of the main outcome.
	Cleanup []Step `yaml:"cleanup,omitempty"`
	// Timeout bounds this scenario.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Skip excludes the scenario from execution while keeping it listed.
	Skip bool `yaml:"skip,omitempty"`
}

// Step is a single action within a scenario.
type Step struct {
	// ID is the step identifier, unique within the scenario.
	ID string `yaml:"id"`
	// Description explains what the step does.
	Description string `yaml:"description,omitempty"`
	// Action selects the operation.
	Action Action `yaml:"action"`
	// Args parameterize the action. Values support {{ var }} templating
	// against previously stored results and the resolved app config.
	Args map[string]interface{} `yaml:"args,omitempty"`
	// Expected defines the step's expectations.
	Expected Expectation `yaml:"expected,omitempty"`
	// Store captures the step's response under this variable name.
	Store string `yaml:"store,omitempty"`
	// Timeout bounds this step.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Expectation defines what outcome a step must produce.
type Expectation struct {
	// Success, when set to false, expects the action itself to fail.
	// Omitted means success is expected.
	Success *bool `yaml:"success,omitempty"`
	// Status is the exact HTTP status code expected.
	Status int `yaml:"status,omitempty"`
	// BodyContains requires each substring to appear in the response body.
	BodyContains []string `yaml:"body_contains,omitempty"`
	// BodyNotContains requires each substring to be absent.
	BodyNotContains []string `yaml:"body_not_contains,omitempty"`
	// JSON maps dotted paths into the decoded response body to expected
	// values.
	JSON map[string]interface{} `yaml:"json,omitempty"`
	// SelectorVisible requires an element matching the selector to be
	// visible on the page.
	SelectorVisible string `yaml:"selector_visible,omitempty"`
	// SelectorText maps selectors to substrings their text must contain.
	SelectorText map[string]string `yaml:"selector_text,omitempty"`
	// ErrorContains requires the action error to contain each substring.
	ErrorContains []string `yaml:"error_contains,omitempty"`
}

// ExpectSuccess reports whether the step's action itself must succeed.
func (e Expectation) ExpectSuccess() bool {
	return e.Success == nil || *e.Success
}

// IsZero reports whether no expectation was declared.
func (e Expectation) IsZero() bool {
	return e.Success == nil && e.Status == 0 &&
		len(e.BodyContains) == 0 && len(e.BodyNotContains) == 0 &&
		len(e.JSON) == 0 && e.SelectorVisible == "" &&
		len(e.SelectorText) == 0 && len(e.ErrorContains) == 0
}

// SuiteResult is the aggregate outcome of one run.
type SuiteResult struct {
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time"`
	Duration         time.Duration    `json:"duration"`
	TotalScenarios   int              `json:"total_scenarios"`
	PassedScenarios  int              `json:"passed_scenarios"`
	FailedScenarios  int              `json:"failed_scenarios"`
	SkippedScenarios int              `json:"skipped_scenarios"`
	ErrorScenarios   int              `json:"error_scenarios"`
	ScenarioResults  []ScenarioResult `json:"scenario_results"`
	Configuration    RunConfig        `json:"configuration"`
}

// Succeeded reports whether the run had no failures or errors.
func (s *SuiteResult) Succeeded() bool {
	return s.FailedScenarios == 0 && s.ErrorScenarios == 0
}

// ScenarioResult is the outcome of a single scenario.
type ScenarioResult struct {
	Scenario    Scenario           `json:"scenario"`
	App         string             `json:"app"`
	Environment config.Environment `json:"environment"`
	BaseURL     string             `json:"base_url,omitempty"`
	Result      Result             `json:"result"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Duration    time.Duration      `json:"duration"`
	StepResults []StepResult       `json:"step_results"`
	Error       string             `json:"error,omitempty"`
	// Screenshot is the failure screenshot path, when one was captured.
	Screenshot string `json:"screenshot,omitempty"`
	// Trace is the playwright trace path, when tracing was on.
	Trace string `json:"trace,omitempty"`
}

// StepResult is the outcome of a single step.
type StepResult struct {
	Step      Step                 `json:"step"`
	Result    Result               `json:"result"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Duration  time.Duration        `json:"duration"`
	Response  *appcontext.Response `json:"response,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// Loader defines how scenario documents are read and selected.
type Loader interface {
	// Load reads scenarios from a file or directory.
	Load(path string) ([]Scenario, error)
	// Filter returns the scenarios the run configuration selects.
	Filter(scenarios []Scenario, cfg RunConfig) []Scenario
}

// Reporter defines how run progress and results are presented.
type Reporter interface {
	// ReportStart is called once before any scenario executes.
	ReportStart(cfg RunConfig, total int)
	// ReportScenarioStart is called as a scenario begins.
	ReportScenarioStart(scenario Scenario)
	// ReportStepResult is called as each step completes.
	ReportStepResult(stepResult StepResult)
	// ReportScenarioResult is called as each scenario completes.
	ReportScenarioResult(scenarioResult ScenarioResult)
	// ReportSuiteResult is called once after the run.
	ReportSuiteResult(suiteResult SuiteResult)
	// SetParallelMode switches the reporter's output discipline.
	SetParallelMode(parallel bool)
}

// Logger provides run-scoped logging independent of the process logger.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	IsDebugEnabled() bool
	IsVerboseEnabled() bool
}
