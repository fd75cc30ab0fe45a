package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"appcheck/internal/config"
	"appcheck/internal/runner"
	"appcheck/internal/template"
)

var (
	validateConfigDir   string
	validateScenarioDir string
)

// validateCmd checks configuration and scenarios without executing anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate app configuration and scenario documents",
	Long: `Loads the app registry and every scenario document, then verifies
that each scenario references a registered app and that every template
placeholder in its steps resolves against the app's variables or an
earlier step's stored result. Nothing is executed; this is the check to
run in CI before the test job.

Example usage:
  appcheck validate
  appcheck validate --config-dir=./config/apps --scenario-dir=./scenarios`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateConfigDir, "config-dir", "config/apps", "Directory with app configuration documents")
	validateCmd.Flags().StringVar(&validateScenarioDir, "scenario-dir", "scenarios", "Directory with scenario documents")
}

func runValidate(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry(validateConfigDir)
	if err != nil {
		return err
	}
	fmt.Printf("✅ %d app(s) loaded from %s\n", registry.Len(), validateConfigDir)

	scenarios, err := runner.NewLoader(runner.NewSilentLogger()).Load(validateScenarioDir)
	if err != nil {
		return err
	}
	fmt.Printf("✅ %d scenario(s) loaded from %s\n", len(scenarios), validateScenarioDir)

	engine := template.New()
	problems := 0
	for _, scenario := range scenarios {
		app, err := registry.Get(scenario.App)
		if err != nil {
			fmt.Printf("❌ scenario %q: %v\n", scenario.Name, err)
			problems++
			continue
		}
		if err := validateScenarioTemplates(engine, scenario, app); err != nil {
			fmt.Printf("❌ scenario %q: %v\n", scenario.Name, err)
			problems++
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d scenario(s) failed validation", problems)
	}

	fmt.Println("🎉 Configuration and scenarios are valid")
	return nil
}

// validateScenarioTemplates checks every placeholder in the scenario's step
// arguments without executing anything. Variables rooted in an earlier step's
// store are accepted by root only, since their shape is not known until run
// time; everything else must resolve against the app-level variables.
func validateScenarioTemplates(engine *template.Engine, scenario runner.Scenario, app *config.AppConfig) error {
	vars := template.Merge(
		map[string]interface{}{
			"app":      app.Name,
			"env":      "",
			"base_url": "",
		},
		appLevelVars(app),
	)

	stored := make(map[string]bool)
	steps := make([]runner.Step, 0, len(scenario.Steps)+len(scenario.Cleanup))
	steps = append(steps, scenario.Steps...)
	steps = append(steps, scenario.Cleanup...)

	for _, step := range steps {
		var unresolved []interface{}
		for _, name := range engine.ExtractVariables(step.Args) {
			if stored[strings.SplitN(name, ".", 2)[0]] {
				continue
			}
			unresolved = append(unresolved, "{{ "+name+" }}")
		}
		if len(unresolved) > 0 {
			if err := engine.ValidateVars(unresolved, vars); err != nil {
				return fmt.Errorf("step %q: %w", step.ID, err)
			}
		}
		if step.Store != "" {
			stored[step.Store] = true
		}
	}
	return nil
}

// appLevelVars mirrors the variable layout scenarios see at run time, with
// secrets blanked since validation must not touch the process environment.
func appLevelVars(app *config.AppConfig) map[string]interface{} {
	vars := make(map[string]interface{})
	if len(app.Extra) > 0 {
		vars["extra"] = app.Extra
	}
	if len(app.Credentials) > 0 {
		creds := make(map[string]interface{}, len(app.Credentials))
		for role, cred := range app.Credentials {
			creds[role] = map[string]interface{}{
				"username": cred.Username,
				"secret":   "",
			}
		}
		vars["credentials"] = creds
	}
	return vars
}
