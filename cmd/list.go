package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"appcheck/internal/config"
	"appcheck/internal/runner"
)

var (
	listConfigDir   string
	listScenarioDir string
	listApp         string
)

// listCmd groups the listing subcommands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured apps or available scenarios",
}

var listAppsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List the applications in the registry",
	Long: `Shows every application the config directory defines, with its kind,
the environments it exposes and the credential roles it carries.

Example usage:
  appcheck list apps
  appcheck list apps --config-dir=./config/apps`,
	RunE: runListApps,
}

var listScenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the available test scenarios",
	Long: `Shows every scenario the scenario directory defines, with the app it
targets, its tags and its step count.

Example usage:
  appcheck list scenarios
  appcheck list scenarios --app=sauce_demo`,
	RunE: runListScenarios,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listAppsCmd)
	listCmd.AddCommand(listScenariosCmd)

	listAppsCmd.Flags().StringVar(&listConfigDir, "config-dir", "config/apps", "Directory with app configuration documents")

	listScenariosCmd.Flags().StringVar(&listScenarioDir, "scenario-dir", "scenarios", "Directory with scenario documents")
	listScenariosCmd.Flags().StringVar(&listApp, "app", "", "Only show scenarios for this app")
}

func runListApps(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry(listConfigDir)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"NAME", "DISPLAY NAME", "KIND", "ENVIRONMENTS", "CREDENTIALS"})

	for _, name := range registry.Names() {
		app, err := registry.Get(name)
		if err != nil {
			return err
		}

		var envs []string
		for _, env := range config.Environments {
			if _, ok := app.BaseURLs[env]; ok {
				envs = append(envs, string(env))
			}
		}

		roles := make([]string, 0, len(app.Credentials))
		for role := range app.Credentials {
			roles = append(roles, role)
		}
		sort.Strings(roles)

		t.AppendRow(table.Row{
			text.FgHiCyan.Sprint(app.Name),
			app.DisplayName,
			string(app.Kind),
			strings.Join(envs, ", "),
			strings.Join(roles, ", "),
		})
	}

	t.Render()
	fmt.Printf("\n%d app(s) configured in %s\n", registry.Len(), listConfigDir)
	return nil
}

func runListScenarios(cmd *cobra.Command, args []string) error {
	loader := runner.NewLoader(runner.NewSilentLogger())
	scenarios, err := loader.Load(listScenarioDir)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"NAME", "APP", "TAGS", "STEPS", "DESCRIPTION"})

	shown := 0
	for _, scenario := range scenarios {
		if listApp != "" && scenario.App != listApp {
			continue
		}
		steps := len(scenario.Steps)
		if len(scenario.Cleanup) > 0 {
			steps += len(scenario.Cleanup)
		}
		t.AppendRow(table.Row{
			text.FgHiCyan.Sprint(scenario.Name),
			scenario.App,
			strings.Join(scenario.Tags, ", "),
			steps,
			scenario.Description,
		})
		shown++
	}

	t.Render()
	fmt.Printf("\n%d scenario(s) in %s\n", shown, listScenarioDir)
	return nil
}
