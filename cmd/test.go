package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"appcheck/internal/config"
	"appcheck/internal/runner"
	"appcheck/pkg/logging"
)

var (
	testApps        []string
	testEnv         string
	testScenario    string
	testTags        []string
	testParallel    int
	testFailFast    bool
	testVerbose     bool
	testDebug       bool
	testQuiet       bool
	testTimeout     time.Duration
	testConfigDir   string
	testScenarioDir string
	testReportDir   string
	testArtifactDir string
	testWatch       bool
	testHeadful     bool
	testTrace       bool
)

// completeEnvFlag provides shell completion for the env flag.
func completeEnvFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	envs := make([]string, len(config.Environments))
	for i, env := range config.Environments {
		envs[i] = string(env)
	}
	return envs, cobra.ShellCompDirectiveNoFileComp
}

// completeAppFlag provides shell completion for the app flag by loading the
// registered app names.
func completeAppFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	registry, err := config.LoadRegistry(testConfigDir)
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return registry.Names(), cobra.ShellCompDirectiveNoFileComp
}

// completeScenarioFlag provides shell completion for the scenario flag by
// loading the available scenario names.
func completeScenarioFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	scenarios, err := runner.NewLoader(runner.NewSilentLogger()).Load(testScenarioDir)
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, scenario := range scenarios {
		names = append(names, scenario.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// testCmd represents the test command.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Execute test scenarios against the configured applications",
	Long: `The test command loads the app registry and the scenario documents,
selects scenarios by app, name and tag, and executes them against the
requested environment.

Each scenario runs with its own app session: a playwright browser page
for browser apps, an HTTP client for API apps. Scenarios never share
sessions, so parallel execution is safe.

Selection:
- --app restricts execution to the named apps (repeatable). An empty
  selection runs every scenario. Unknown names abort the run before
  anything executes.
- --scenario runs a single scenario by name.
- --tag runs scenarios carrying any of the given tags (repeatable).

Environments:
- --env picks which base URLs to run against (dev, staging, production).
  An app without a base URL for the requested environment fails its
  scenarios; there is no fallback to another environment.

Example usage:
  appcheck test                            # All scenarios against dev
  appcheck test --env=staging              # All scenarios against staging
  appcheck test --app=sauce_demo           # One app only
  appcheck test --tag=smoke --fail-fast    # Smoke tests, stop on failure
  appcheck test --parallel=4               # Four scenario workers
  appcheck test --watch                    # Rerun on config/scenario changes
  appcheck test --headful --trace          # Visible browser with tracing
  appcheck test --report=test-results/report`,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)

	// Selection
	testCmd.Flags().StringArrayVar(&testApps, "app", nil, "Run scenarios for this app only (repeatable)")
	testCmd.Flags().StringVar(&testEnv, "env", string(config.EnvDev), "Environment to run against (dev, staging, production)")
	testCmd.Flags().StringVar(&testScenario, "scenario", "", "Run a single scenario by name")
	testCmd.Flags().StringArrayVar(&testTags, "tag", nil, "Run scenarios carrying this tag (repeatable)")

	// Execution control
	testCmd.Flags().IntVar(&testParallel, "parallel", 1, "Number of parallel scenario workers (1-20)")
	testCmd.Flags().BoolVar(&testFailFast, "fail-fast", false, "Stop execution on first failure")
	testCmd.Flags().DurationVar(&testTimeout, "timeout", 10*time.Minute, "Overall run timeout")
	testCmd.Flags().BoolVar(&testWatch, "watch", false, "Rerun scenarios when config or scenario files change")

	// Output
	testCmd.Flags().BoolVar(&testVerbose, "verbose", false, "Enable step-level output")
	testCmd.Flags().BoolVar(&testDebug, "debug", false, "Enable debug logging")
	testCmd.Flags().BoolVar(&testQuiet, "quiet", false, "Only print failures and the final summary")

	// Paths
	testCmd.Flags().StringVar(&testConfigDir, "config-dir", "config/apps", "Directory with app configuration documents")
	testCmd.Flags().StringVar(&testScenarioDir, "scenario-dir", "scenarios", "Directory with scenario documents")
	testCmd.Flags().StringVar(&testReportDir, "report", "", "Directory to save the JSON run report")
	testCmd.Flags().StringVar(&testArtifactDir, "artifact-dir", "test-results", "Directory for screenshots and traces")

	// Browser behavior
	testCmd.Flags().BoolVar(&testHeadful, "headful", false, "Show browser windows instead of running headless")
	testCmd.Flags().BoolVar(&testTrace, "trace", false, "Record playwright traces for browser scenarios")

	_ = testCmd.RegisterFlagCompletionFunc("env", completeEnvFlag)
	_ = testCmd.RegisterFlagCompletionFunc("app", completeAppFlag)
	_ = testCmd.RegisterFlagCompletionFunc("scenario", completeScenarioFlag)

	testCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")
	testCmd.MarkFlagsMutuallyExclusive("watch", "fail-fast")

	testCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if testParallel < 1 || testParallel > 20 {
			return fmt.Errorf("parallel workers must be between 1 and 20, got %d", testParallel)
		}
		return nil
	}
}

func runTest(cmd *cobra.Command, args []string) error {
	initLogging()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupts gracefully; the runner closes open sessions on
	// context cancellation.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, stopping scenarios gracefully...")
		cancel()
	}()

	env, err := config.ParseEnvironment(testEnv)
	if err != nil {
		return err
	}

	runCfg := runner.RunConfig{
		Environment: env,
		Apps:        testApps,
		Scenario:    testScenario,
		Tags:        testTags,
		Parallel:    testParallel,
		FailFast:    testFailFast,
		Verbose:     testVerbose,
		Debug:       testDebug,
		Timeout:     testTimeout,
		ConfigDir:   testConfigDir,
		ScenarioDir: testScenarioDir,
		ReportDir:   testReportDir,
		ArtifactDir: testArtifactDir,
		Headful:     testHeadful,
		Trace:       testTrace,
	}
	if err := runner.ValidateRunConfig(runCfg); err != nil {
		return err
	}

	if testWatch {
		return runWatch(ctx, runCfg)
	}

	result, err := executeRun(ctx, runCfg)
	if err != nil {
		return err
	}
	if !result.Succeeded() {
		os.Exit(ExitCodeError)
	}
	return nil
}

// executeRun wires a framework for the run configuration and executes one
// full pass.
func executeRun(ctx context.Context, runCfg runner.RunConfig) (*runner.SuiteResult, error) {
	framework, err := runner.NewFramework(runCfg, testQuiet)
	if err != nil {
		return nil, err
	}

	scenarios, err := framework.Loader.Load(runCfg.ScenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	if len(scenarios) == 0 {
		fmt.Printf("⚠️  No scenarios found in %s\n", runCfg.ScenarioDir)
		return &runner.SuiteResult{}, nil
	}

	return framework.Runner.Run(ctx, runCfg, scenarios)
}

// runWatch reruns the suite whenever a config or scenario document changes.
// Failing scenarios do not end the process; the next change triggers the
// next run.
func runWatch(ctx context.Context, runCfg runner.RunConfig) error {
	if _, err := executeRun(ctx, runCfg); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
	}

	watcher, err := runner.NewWatcher([]string{runCfg.ConfigDir, runCfg.ScenarioDir}, 500*time.Millisecond)
	if err != nil {
		return err
	}

	err = watcher.Run(ctx, func(ctx context.Context) {
		if _, err := executeRun(ctx, runCfg); err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		}
	})
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// initLogging configures the process logger from the shared output flags.
func initLogging() {
	level := logging.LevelWarn
	if testVerbose {
		level = logging.LevelInfo
	}
	if testDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)
}
