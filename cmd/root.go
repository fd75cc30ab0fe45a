package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"appcheck/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution with all scenarios
	// passing.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error or failing scenarios.
	ExitCodeError = 1
	// ExitCodeConfig indicates a configuration problem: malformed app
	// document, unknown app in a filter, unknown environment.
	ExitCodeConfig = 2
)

// rootCmd represents the base command for the appcheck application.
var rootCmd = &cobra.Command{
	Use:   "appcheck",
	Short: "Run browser and API test scenarios against configured applications",
	Long: `appcheck drives test scenarios against independently configured target
applications. Browser apps are exercised through playwright, API apps
through an HTTP client; both are selected per scenario and resolved to
one environment's base URL at run time.

Apps are described by YAML documents in the config directory, scenarios
by YAML documents in the scenario directory.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "appcheck version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes for scripting.
func getExitCode(err error) int {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfig
	}

	var unknownApp *config.UnknownAppError
	if errors.As(err, &unknownApp) {
		return ExitCodeConfig
	}

	var unknownEnv *config.UnknownEnvironmentError
	if errors.As(err, &unknownEnv) {
		return ExitCodeConfig
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
