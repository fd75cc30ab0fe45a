package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// consoleReporter implements the Reporter interface for interactive runs.
// In verbose mode every step is printed; otherwise a spinner tracks progress
// and one line is printed per completed scenario.
type consoleReporter struct {
	verbose   bool
	reportDir string

	mu        sync.Mutex
	parallel  bool
	spinner   *spinner.Spinner
	total     int
	completed int
}

// NewConsoleReporter creates the default reporter.
func NewConsoleReporter(verbose bool, reportDir string) Reporter {
	return &consoleReporter{
		verbose:   verbose,
		reportDir: reportDir,
	}
}

// SetParallelMode switches between sequential and parallel output.
func (r *consoleReporter) SetParallelMode(parallel bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parallel = parallel
}

// ReportStart is called once before any scenario executes.
func (r *consoleReporter) ReportStart(cfg RunConfig, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	r.completed = 0

	fmt.Printf("🧪 appcheck: %d scenario(s) against environment %s\n", total, cfg.Environment)

	if r.verbose {
		fmt.Printf("\n⚙️  Configuration:\n")
		fmt.Printf("   • Apps: %s\n", stringOrDefault(strings.Join(cfg.Apps, ", "), "all"))
		fmt.Printf("   • Scenario: %s\n", stringOrDefault(cfg.Scenario, "all"))
		fmt.Printf("   • Tags: %s\n", stringOrDefault(strings.Join(cfg.Tags, ", "), "all"))
		fmt.Printf("   • Parallel workers: %d\n", cfg.Parallel)
		fmt.Printf("   • Fail fast: %t\n", cfg.FailFast)
		fmt.Printf("   • Timeout: %v\n", cfg.Timeout)
		if cfg.ReportDir != "" {
			fmt.Printf("   • Report dir: %s\n", cfg.ReportDir)
		}
		fmt.Printf("\n")
		return
	}

	if total > 0 {
		r.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		r.spinner.Suffix = fmt.Sprintf(" Running scenarios (0/%d)...", total)
		r.spinner.Start()
	}
}

// ReportScenarioStart is called as a scenario begins.
func (r *consoleReporter) ReportScenarioStart(scenario Scenario) {
	if !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Printf("🎯 Starting scenario: %s (app: %s)\n", scenario.Name, scenario.App)
	if scenario.Description != "" {
		fmt.Printf("   📝 %s\n", scenario.Description)
	}
	if len(scenario.Tags) > 0 {
		fmt.Printf("   🏷️  Tags: %s\n", strings.Join(scenario.Tags, ", "))
	}
	fmt.Printf("   📋 Steps: %d\n", len(scenario.Steps))
}

// ReportStepResult is called as each step completes.
func (r *consoleReporter) ReportStepResult(stepResult StepResult) {
	if !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Printf("   %s Step: %s [%s] (%v)\n",
		resultSymbol(stepResult.Result), stepResult.Step.ID, stepResult.Step.Action,
		stepResult.Duration.Round(time.Millisecond))
	if stepResult.Step.Description != "" {
		fmt.Printf("      📝 %s\n", stepResult.Step.Description)
	}
	if stepResult.Response != nil {
		fmt.Printf("      📤 HTTP %d (%d bytes)\n", stepResult.Response.Status, len(stepResult.Response.Body))
	}
	if stepResult.Error != "" {
		fmt.Printf("      ❌ %s\n", stepResult.Error)
	}
}

// ReportScenarioResult is called as each scenario completes.
func (r *consoleReporter) ReportScenarioResult(scenarioResult ScenarioResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++

	if r.verbose {
		fmt.Printf("%s Scenario completed: %s (%v)\n",
			resultSymbol(scenarioResult.Result), scenarioResult.Scenario.Name,
			scenarioResult.Duration.Round(time.Millisecond))
		if scenarioResult.Error != "" {
			fmt.Printf("   ❌ %s\n", scenarioResult.Error)
		}
		if scenarioResult.Screenshot != "" {
			fmt.Printf("   📷 Screenshot: %s\n", scenarioResult.Screenshot)
		}
		fmt.Printf("\n")
		return
	}

	if r.spinner != nil {
		r.spinner.Stop()
	}
	fmt.Printf("%s %s [%s] (%v)\n",
		resultSymbol(scenarioResult.Result), scenarioResult.Scenario.Name,
		scenarioResult.App, scenarioResult.Duration.Round(time.Millisecond))
	if scenarioResult.Error != "" && scenarioResult.Result != ResultPassed {
		fmt.Printf("   %s\n", scenarioResult.Error)
	}
	if r.spinner != nil && r.completed < r.total {
		r.spinner.Suffix = fmt.Sprintf(" Running scenarios (%d/%d)...", r.completed, r.total)
		r.spinner.Start()
	}
}

// ReportSuiteResult prints the summary table and saves the JSON report when a
// report directory is configured.
func (r *consoleReporter) ReportSuiteResult(suiteResult SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spinner != nil {
		r.spinner.Stop()
		r.spinner = nil
	}

	fmt.Printf("\n🏁 Run complete (%v)\n", suiteResult.Duration.Round(time.Millisecond))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("RESULT"),
		text.FgHiCyan.Sprint("COUNT"),
	})
	t.AppendRow(table.Row{text.FgGreen.Sprint("passed"), suiteResult.PassedScenarios})
	if suiteResult.FailedScenarios > 0 {
		t.AppendRow(table.Row{text.FgRed.Sprint("failed"), suiteResult.FailedScenarios})
	}
	if suiteResult.ErrorScenarios > 0 {
		t.AppendRow(table.Row{text.FgRed.Sprint("errors"), suiteResult.ErrorScenarios})
	}
	if suiteResult.SkippedScenarios > 0 {
		t.AppendRow(table.Row{text.FgYellow.Sprint("skipped"), suiteResult.SkippedScenarios})
	}
	t.AppendFooter(table.Row{"total", suiteResult.TotalScenarios})
	t.Render()

	if suiteResult.Succeeded() {
		fmt.Printf("\n🎉 All scenarios passed\n")
	} else {
		fmt.Printf("\n💔 Some scenarios did not pass\n")
	}

	if r.reportDir != "" {
		path, err := saveReport(r.reportDir, suiteResult)
		if err != nil {
			fmt.Printf("⚠️  Failed to save report: %v\n", err)
		} else {
			fmt.Printf("📄 Report saved to: %s\n", path)
		}
	}
}

// saveReport writes the suite result as a timestamped JSON file.
func saveReport(dir string, suiteResult SuiteResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	filename := fmt.Sprintf("appcheck-report-%s.json", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(suiteResult, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

func resultSymbol(result Result) string {
	switch result {
	case ResultPassed:
		return "✅"
	case ResultFailed:
		return "❌"
	case ResultSkipped:
		return "⏭️"
	case ResultError:
		return "💥"
	default:
		return "❓"
	}
}

func stringOrDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// NewQuietReporter creates a reporter that only surfaces failures and the
// final summary line, for CI output.
func NewQuietReporter(reportDir string) Reporter {
	return &quietReporter{reportDir: reportDir}
}

type quietReporter struct {
	reportDir string
}

func (r *quietReporter) ReportStart(cfg RunConfig, total int) {}

func (r *quietReporter) ReportScenarioStart(scenario Scenario) {}

func (r *quietReporter) ReportStepResult(stepResult StepResult) {}

func (r *quietReporter) ReportScenarioResult(scenarioResult ScenarioResult) {
	if scenarioResult.Result == ResultFailed || scenarioResult.Result == ResultError {
		fmt.Printf("%s %s: %s\n", resultSymbol(scenarioResult.Result),
			scenarioResult.Scenario.Name, scenarioResult.Error)
	}
}

func (r *quietReporter) ReportSuiteResult(suiteResult SuiteResult) {
	if suiteResult.Succeeded() {
		fmt.Printf("✅ All %d scenario(s) passed (%v)\n",
			suiteResult.TotalScenarios, suiteResult.Duration.Round(time.Millisecond))
	} else {
		fmt.Printf("❌ %d/%d scenario(s) did not pass (%v)\n",
			suiteResult.FailedScenarios+suiteResult.ErrorScenarios,
			suiteResult.TotalScenarios, suiteResult.Duration.Round(time.Millisecond))
	}

	if r.reportDir != "" {
		if path, err := saveReport(r.reportDir, suiteResult); err == nil {
			fmt.Printf("📄 Report saved to: %s\n", path)
		}
	}
}

func (r *quietReporter) SetParallelMode(parallel bool) {}
