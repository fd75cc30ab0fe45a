package runner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// scenarioLoader implements the Loader interface.
type scenarioLoader struct {
	logger Logger
}

// NewLoader creates a scenario loader.
func NewLoader(logger Logger) Loader {
	return &scenarioLoader{logger: logger}
}

// Load reads scenarios from a file or a directory tree of YAML documents.
func (l *scenarioLoader) Load(path string) ([]Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scenario path not readable: %w", err)
	}

	if !info.IsDir() {
		scenario, err := l.loadFile(path)
		if err != nil {
			return nil, err
		}
		return []Scenario{scenario}, nil
	}

	var scenarios []Scenario
	seen := make(map[string]string)

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAMLFile(p) {
			return nil
		}

		scenario, err := l.loadFile(p)
		if err != nil {
			return err
		}
		if prev, exists := seen[scenario.Name]; exists {
			return fmt.Errorf("duplicate scenario name %q in %s (already defined in %s)",
				scenario.Name, p, prev)
		}
		seen[scenario.Name] = p
		scenarios = append(scenarios, scenario)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded %d scenario(s) from %s\n", len(scenarios), path)
	return scenarios, nil
}

func (l *scenarioLoader) loadFile(path string) (Scenario, error) {
	var scenario Scenario

	content, err := os.ReadFile(path)
	if err != nil {
		return scenario, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, &scenario); err != nil {
		return scenario, fmt.Errorf("failed to parse YAML in %s: %w", path, err)
	}
	if err := validateScenario(scenario); err != nil {
		return scenario, fmt.Errorf("invalid scenario in %s: %w", path, err)
	}

	return scenario, nil
}

func validateScenario(scenario Scenario) error {
	if scenario.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if scenario.App == "" {
		return fmt.Errorf("scenario %q must declare exactly one app", scenario.Name)
	}
	if len(scenario.Steps) == 0 {
		return fmt.Errorf("scenario %q must have at least one step", scenario.Name)
	}

	ids := make(map[string]bool)
	for i, step := range scenario.Steps {
		if err := validateStep(step, ids); err != nil {
			return fmt.Errorf("scenario %q step %d: %w", scenario.Name, i+1, err)
		}
	}
	for i, step := range scenario.Cleanup {
		if err := validateStep(step, ids); err != nil {
			return fmt.Errorf("scenario %q cleanup step %d: %w", scenario.Name, i+1, err)
		}
	}
	return nil
}

func validateStep(step Step, ids map[string]bool) error {
	if step.ID == "" {
		return fmt.Errorf("step id is required")
	}
	if ids[step.ID] {
		return fmt.Errorf("duplicate step id %q", step.ID)
	}
	ids[step.ID] = true

	switch step.Action {
	case ActionNavigate, ActionRequest, ActionClick, ActionFill, ActionWait, ActionScreenshot:
	case "":
		return fmt.Errorf("step %q has no action", step.ID)
	default:
		return fmt.Errorf("step %q has unknown action %q", step.ID, step.Action)
	}

	if step.Timeout < 0 {
		return fmt.Errorf("step %q has negative timeout", step.ID)
	}
	return nil
}

// Filter applies the run configuration's app, scenario and tag selection.
func (l *scenarioLoader) Filter(scenarios []Scenario, cfg RunConfig) []Scenario {
	var filtered []Scenario
	for _, scenario := range scenarios {
		if !ShouldRun(scenario.App, cfg.Apps) {
			continue
		}
		if cfg.Scenario != "" && scenario.Name != cfg.Scenario {
			continue
		}
		if len(cfg.Tags) > 0 && !hasAnyTag(scenario.Tags, cfg.Tags) {
			continue
		}
		filtered = append(filtered, scenario)
	}

	l.logger.Debug("selected %d of %d scenario(s)\n", len(filtered), len(scenarios))
	return filtered
}

func hasAnyTag(tags, wanted []string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
