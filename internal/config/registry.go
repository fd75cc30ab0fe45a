package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"appcheck/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Registry holds every application configuration, indexed by name. It is
// loaded once per process, before any scenario executes, so a bad document is
// caught immediately rather than deep into a run. After LoadRegistry returns
// the registry is read-only and safe for concurrent use.
type Registry struct {
	apps map[string]*AppConfig
}

// LoadRegistry reads every YAML document under dir and parses it into an
// AppConfig. Any malformed document (missing name, missing base_urls,
// duplicate name across files) returns a *ConfigError and no registry.
func LoadRegistry(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &ConfigError{Path: dir, Message: "app config directory not readable", Err: err}
	}
	if !info.IsDir() {
		return nil, &ConfigError{Path: dir, Message: "app config path is not a directory"}
	}

	registry := &Registry{apps: make(map[string]*AppConfig)}
	sources := make(map[string]string) // name -> file, for duplicate reporting

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAMLFile(path) {
			return nil
		}

		app, err := loadAppConfig(path)
		if err != nil {
			return err
		}

		if prev, exists := sources[app.Name]; exists {
			return &ConfigError{
				Path:    path,
				Message: fmt.Sprintf("duplicate app name %q (already defined in %s)", app.Name, prev),
			}
		}

		sources[app.Name] = path
		registry.apps[app.Name] = app
		return nil
	})
	if err != nil {
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			err = &ConfigError{Path: dir, Message: "failed to walk app config directory", Err: err}
		}
		return nil, err
	}

	logging.Info("Config", "loaded %d app configuration(s) from %s", len(registry.apps), dir)
	return registry, nil
}

// loadAppConfig parses and validates a single application document.
func loadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: "failed to read app config", Err: err}
	}

	var app AppConfig
	if err := yaml.Unmarshal(data, &app); err != nil {
		return nil, &ConfigError{Path: path, Message: "invalid YAML", Err: err}
	}

	if err := validateAppConfig(&app); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	applyAppDefaults(&app)
	return &app, nil
}

func validateAppConfig(app *AppConfig) error {
	if app.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if len(app.BaseURLs) == 0 {
		return fmt.Errorf("app %q must declare at least one base URL", app.Name)
	}
	for env, url := range app.BaseURLs {
		if _, err := ParseEnvironment(string(env)); err != nil {
			return fmt.Errorf("app %q: %v", app.Name, err)
		}
		if url == "" {
			return fmt.Errorf("app %q has an empty base URL for environment %s", app.Name, env)
		}
	}
	if app.DefaultTimeoutMS < 0 {
		return fmt.Errorf("app %q: default_timeout_ms must be positive", app.Name)
	}
	switch app.Kind {
	case "", AppKindBrowser, AppKindAPI:
	default:
		return fmt.Errorf("app %q has unknown kind %q, must be %q or %q",
			app.Name, app.Kind, AppKindBrowser, AppKindAPI)
	}
	return nil
}

func applyAppDefaults(app *AppConfig) {
	if app.DisplayName == "" {
		app.DisplayName = app.Name
	}
	if app.Kind == "" {
		app.Kind = AppKindAPI
	}
	if app.DefaultTimeoutMS == 0 {
		app.DefaultTimeoutMS = DefaultTimeoutMS
	}
}

// Get returns a deep copy of the named application's configuration, or an
// *UnknownAppError if it is not registered. Pure lookup, safe to call
// repeatedly.
func (r *Registry) Get(name string) (*AppConfig, error) {
	app, ok := r.apps[name]
	if !ok {
		return nil, &UnknownAppError{Names: []string{name}, Known: r.Names()}
	}
	return app.Clone(), nil
}

// Names returns the sorted set of registered application names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.apps))
	for name := range r.apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered applications.
func (r *Registry) Len() int {
	return len(r.apps)
}

// ValidateAppFilter fails fast with an *UnknownAppError when any requested
// app is not registered. This prevents a typo from silently running zero
// scenarios.
func (r *Registry) ValidateAppFilter(requested []string) error {
	var unknown []string
	for _, name := range requested {
		if _, ok := r.apps[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return &UnknownAppError{Names: unknown, Known: r.Names()}
	}
	return nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
